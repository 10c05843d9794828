package normalize

import (
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// chainPool holds transformer chains, a chain is stateful and not safe to share
var chainPool = sync.Pool{
	New: func() any {
		return transform.Chain(
			runes.Remove(runes.Predicate(isDroppedControl)),
			norm.NFC,
		)
	},
}

// isDroppedControl covers C0 and C1 controls and DEL, tab survives
func isDroppedControl(r rune) bool {
	if r == '\t' {
		return false
	}
	return unicode.IsControl(r)
}

// Sanitize cleans an opaque passthrough value before it is stored or charted
// drops invalid UTF-8 and control characters then composes to NFC
// case and punctuation are left alone
func Sanitize(s string) string {
	if s == "" {
		return s
	}
	s = strings.ToValidUTF8(s, "")

	tr := chainPool.Get().(transform.Transformer)
	out, _, err := transform.String(tr, s)
	tr.Reset()
	chainPool.Put(tr)
	if err != nil {
		return s
	}
	return out
}
