package strings

import (
	"testing"

	kit "customerlens/internal/platform/testkit"
)

func TestIfEmpty(t *testing.T) {
	if got := IfEmpty(nil, []string{"*"}); len(got) != 1 || got[0] != "*" {
		t.Fatalf("IfEmpty(nil) = %v", got)
	}
	if got := IfEmpty([]int{1}, []int{2}); got[0] != 1 {
		t.Fatalf("IfEmpty kept default over input")
	}
}

func TestMustPrefix(t *testing.T) {
	for in, want := range map[string]string{
		"datasets":   "/datasets",
		" /charts/ ": "/charts",
		"/api/v1":    "/api/v1",
		"//meta//":   "/meta",
	} {
		if got := MustPrefix(in); got != want {
			t.Fatalf("MustPrefix(%q) = %q, want %q", in, got, want)
		}
	}
	kit.MustPanic(t, func() { _ = MustPrefix(" / ") })
}

func TestFileSafe(t *testing.T) {
	for in, want := range map[string]string{
		"Age by Gender":       "age-by-gender",
		"  Customers / City ": "customers-city",
		"Städte 2024!":        "städte-2024",
		"???":                 "chart",
		"":                    "chart",
	} {
		if got := FileSafe(in); got != want {
			t.Fatalf("FileSafe(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestDeref(t *testing.T) {
	s := "x"
	if Deref(&s) != "x" || Deref(nil) != "" {
		t.Fatalf("Deref mismatch")
	}
}
