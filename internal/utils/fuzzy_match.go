package utils

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var nonLetterRe = regexp.MustCompile(`[^\p{L}\p{N}]+`)

// FoldAccents removes diacritics so that "Málaga" and "Malaga" compare equal
func FoldAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return folded
}

// NormalizePlaceName lower-cases, folds accents and turns punctuation into single spaces
func NormalizePlaceName(name string) string {
	s := strings.ToLower(FoldAccents(name))
	s = nonLetterRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// ContainsPhrase reports whether phrase occurs in text on word boundaries.
// Both arguments are expected to be normalized with NormalizePlaceName.
func ContainsPhrase(text, phrase string) bool {
	if phrase == "" {
		return false
	}
	return strings.Contains(" "+text+" ", " "+phrase+" ")
}

// FuzzyMatchPlace performs accent and case insensitive matching of a place name
// Returns true on an exact match or when either name contains the other as whole words
func FuzzyMatchPlace(searchTerm, place string) bool {
	search := NormalizePlaceName(searchTerm)
	candidate := NormalizePlaceName(place)
	if search == "" || candidate == "" {
		return false
	}

	// Exact match
	if search == candidate {
		return true
	}

	return ContainsPhrase(candidate, search) || ContainsPhrase(search, candidate)
}
