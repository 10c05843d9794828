// Package testkit provides test helpers and shared customer fixtures
package testkit

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// CustomersCSV is a small export covering every normalization branch
const CustomersCSV = `age,salutation,name,city
45,Mr.,Ann Smith,London
age-33,Mrs.,Bo Li,Paris
unknown,Dr.,Cy Ray,London
-3,Miss.,Di Ng,Berlin
thirty,Master.,Ed Po,Paris
,Ms.,Fa Wu,London
`

// MustPanic asserts that fn panics
func MustPanic(t *testing.T, fn func()) {
	t.Helper()
	defer func() {
		if r := recover(); r == nil {
			t.Fatalf("expected panic, got none")
		}
	}()
	fn()
}

// MustContain asserts haystack contains needle, on failure the haystack is written to a temp file
func MustContain(t *testing.T, haystack, needle string) {
	t.Helper()
	if !strings.Contains(haystack, needle) {
		tmp := filepath.Join(t.TempDir(), "output.txt")
		_ = os.WriteFile(tmp, []byte(haystack), 0o600)
		t.Fatalf("expected output to contain %q\n\nfull output written to %s", needle, tmp)
	}
}

// WriteFile writes content under a fresh temp dir and returns its path
func WriteFile(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(p, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", p, err)
	}
	return p
}
