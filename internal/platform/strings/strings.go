// Package strings holds small string helpers shared by transports and adapters
package strings

import (
	std "strings"
	"unicode"
)

// IfEmpty returns def when in is empty
func IfEmpty[T any](in []T, def []T) []T {
	if len(in) == 0 {
		return def
	}
	return in
}

// MustPrefix normalises a mount path like "/datasets", panics on an empty or root path
func MustPrefix(s string) string {
	s = "/" + std.Trim(std.TrimSpace(s), " /")
	if s == "/" {
		panic("root path is required")
	}
	return s
}

// FileSafe turns a display name into a lowercase file stem
// runs of anything other than letters and digits become a single dash
func FileSafe(name string) string {
	var b std.Builder
	dash := false
	for _, r := range std.ToLower(name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	out := std.TrimRight(b.String(), "-")
	if out == "" {
		return "chart"
	}
	return out
}

// Deref returns "" for a nil pointer
func Deref(ps *string) string {
	if ps == nil {
		return ""
	}
	return *ps
}
