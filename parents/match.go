package parents

import (
	"strings"
	"unicode"
)

// minPhoneDigits is the shortest whitespace-free, all-digit input treated as a phone number.
const minPhoneDigits = 8

// IsPhoneLike reports whether raw, with all whitespace removed, is 8 or more digits.
func IsPhoneLike(raw string) bool {
	compact := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, raw)
	if len(compact) < minPhoneDigits {
		return false
	}
	for _, r := range compact {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// NormalizePhone strips every non-digit character.
func NormalizePhone(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
}

func NormalizeName(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Match returns the first candidate whose phone (for phone-like input) or
// name (for anything else) equals the normalised identifier.
func Match(candidates []*Parent, identifier string) (*Parent, bool) {
	if IsPhoneLike(identifier) {
		want := NormalizePhone(identifier)
		for _, p := range candidates {
			if p != nil && NormalizePhone(p.Phone) == want {
				return p, true
			}
		}
		return nil, false
	}

	want := NormalizeName(identifier)
	if want == "" {
		return nil, false
	}
	for _, p := range candidates {
		if p != nil && NormalizeName(p.Name) == want {
			return p, true
		}
	}
	return nil, false
}
