// Package normalize maps raw corpus tokens to the comparison keys used for
// aggregation and classification.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Func transforms a token into a comparison key.
type Func func(string) string

// Separator starts the annotation (part-of-speech tag) appended to a token,
// as in "house_NOUN".
const Separator = "_"

// foldASCII decomposes compatibility characters and drops everything outside
// ASCII, so combining marks disappear and base letters remain.
var foldASCII = transform.Chain(norm.NFKD, runes.Remove(runes.Predicate(func(r rune) bool {
	return r > unicode.MaxASCII
})))

// Canonical truncates the annotation, strips diacritics, lowercases and keeps
// only ASCII letters and digits (e.g. CAFÉ_NN -> cafe).
func Canonical(token string) string {
	if i := strings.Index(token, Separator); i >= 0 {
		token = token[:i]
	}
	return Unannotated(token)
}

// Unannotated is Canonical without annotation truncation: the separator is
// dropped like any other punctuation (e.g. New_York -> newyork).
func Unannotated(token string) string {
	folded, _, _ := transform.String(foldASCII, token)
	return strings.Map(keepAlnum, folded)
}

func keepAlnum(r rune) rune {
	switch {
	case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
		return r
	case r >= 'A' && r <= 'Z':
		return r + ('a' - 'A')
	}
	return -1
}

// IsAlpha reports whether key is non-empty and made of ASCII letters only.
// Keys produced by Canonical contain nothing but lowercase letters and digits.
func IsAlpha(key string) bool {
	if key == "" {
		return false
	}
	for i := 0; i < len(key); i++ {
		c := key[i]
		if (c < 'a' || c > 'z') && (c < 'A' || c > 'Z') {
			return false
		}
	}
	return true
}

// Get returns the normalizer for the given mode.
// Default is canonical.
func Get(mode string) Func {
	switch mode {
	case "unannotated":
		return Unannotated
	default:
		return Canonical
	}
}
