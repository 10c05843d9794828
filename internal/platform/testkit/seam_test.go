package testkit

import (
	"testing"
	"time"
)

var sleepFn = time.Sleep

func TestSwap_RestoresAfterSubtest(t *testing.T) {
	var slept []time.Duration
	t.Run("swapped", func(t *testing.T) {
		Swap(t, &sleepFn, func(d time.Duration) { slept = append(slept, d) })
		sleepFn(time.Hour)
	})
	if len(slept) != 1 || slept[0] != time.Hour {
		t.Fatalf("swap did not take effect: %v", slept)
	}
	sleepFn(0)
	if len(slept) != 1 {
		t.Fatalf("swap was not restored")
	}
}

func TestSerial_ReleasesOnCleanup(t *testing.T) {
	t.Run("first", func(t *testing.T) { Serial(t) })
	t.Run("second", func(t *testing.T) { Serial(t) })
}
