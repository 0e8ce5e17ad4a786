// Package parser turns free-text property questions into search filters and
// builds the canonical search link and summary sentence from them.
package parser

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var whitespaceRe = regexp.MustCompile(`\s+`)

// NormalizeWhitespace collapses runs of whitespace into one space and trims the ends
func NormalizeWhitespace(s string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}

// CapitalizeWords upper-cases the first letter of every word and lower-cases the rest
func CapitalizeWords(s string) string {
	words := make([]string, 0)
	for _, w := range strings.Split(s, " ") {
		if w == "" {
			continue
		}
		r, size := utf8.DecodeRuneInString(w)
		words = append(words, string(unicode.ToUpper(r))+strings.ToLower(w[size:]))
	}
	return strings.Join(words, " ")
}
