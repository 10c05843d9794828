// Package normalize cleans the two customer fields the charts depend on
// Both functions are total: every input maps to a value, nothing is returned as an error
// Unparseable input collapses to an explicit unknown sentinel
package normalize

import (
	"strconv"
	"strings"
)

// UnknownToken is the wire and storage form of the unknown sentinel for both fields
const UnknownToken = "unknown"

// agePrefix is matched case sensitively, eg "age-33"
const agePrefix = "age-"

// Age is a normalized age token
// Known is false for the unknown sentinel, Years is meaningless then
type Age struct {
	Years int
	Known bool
}

// UnknownAge is the sentinel returned for malformed or missing ages
var UnknownAge = Age{}

// KnownAge wraps n as a known age
func KnownAge(n int) Age { return Age{Years: n, Known: true} }

// String renders the integer or the unknown token
func (a Age) String() string {
	if !a.Known {
		return UnknownToken
	}
	return strconv.Itoa(a.Years)
}

// IsUnknown reports whether a is the sentinel
func (a Age) IsUnknown() bool { return !a.Known }

// NormalizeAge maps a free form age token to an Age
// order: plain base 10 integer (sign allowed), then "age-<digits>", then unknown
// whitespace is not trimmed, " 45" is unknown
func NormalizeAge(raw string) Age {
	if n, err := strconv.Atoi(raw); err == nil {
		return KnownAge(n)
	}
	if digits, ok := strings.CutPrefix(raw, agePrefix); ok && isDigits(digits) {
		// overflow falls through to unknown
		if n, err := strconv.Atoi(digits); err == nil {
			return KnownAge(n)
		}
	}
	return UnknownAge
}

// ParseAge reads back a token produced by Age.String
func ParseAge(token string) Age {
	if token == UnknownToken {
		return UnknownAge
	}
	if n, err := strconv.Atoi(token); err == nil {
		return KnownAge(n)
	}
	return UnknownAge
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// Gender is the closed set derived from a salutation
type Gender string

const (
	// GenderMale is derived from Mr. and Master.
	GenderMale Gender = "male"
	// GenderFemale is derived from Mrs. and Miss.
	GenderFemale Gender = "female"
	// GenderUnknown is the sentinel for everything else
	GenderUnknown Gender = UnknownToken
)

// Genders lists the closed set in display order
var Genders = []Gender{GenderMale, GenderFemale, GenderUnknown}

// salutations is matched by exact string equality, no case or punctuation folding
var salutations = map[string]Gender{
	"Mr.":     GenderMale,
	"Master.": GenderMale,
	"Mrs.":    GenderFemale,
	"Miss.":   GenderFemale,
}

// NormalizeGender maps a salutation token to a Gender
// feeding it its own output yields GenderUnknown
func NormalizeGender(salutation string) Gender {
	if g, ok := salutations[salutation]; ok {
		return g
	}
	return GenderUnknown
}

// ParseGender reads back a stored gender token, anything outside the set is unknown
func ParseGender(token string) Gender {
	switch Gender(token) {
	case GenderMale, GenderFemale:
		return Gender(token)
	default:
		return GenderUnknown
	}
}

// String returns the token
func (g Gender) String() string { return string(g) }
