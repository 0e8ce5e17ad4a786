package parser

import (
	"strings"
)

// SupportedLocales lists the site's language prefixes
var SupportedLocales = []string{"en", "es", "de", "fr", "nl", "sv", "da", "no", "fi"}

// NormalizeLocale reduces a locale such as "es-ES" to its two-letter language code,
// falling back to DefaultLocale when the result is not a supported site locale.
// SupportedLocales is the authority: "pt-BR" becomes "en" because the site has no /pt pages.
func NormalizeLocale(locale string) string {
	l := strings.ToLower(strings.TrimSpace(locale))
	if len(l) < 2 {
		return DefaultLocale
	}
	l = l[:2]
	for _, supported := range SupportedLocales {
		if l == supported {
			return l
		}
	}
	return DefaultLocale
}

var languageNames = map[string]string{
	"en": "English",
	"es": "Spanish",
	"de": "German",
	"fr": "French",
	"nl": "Dutch",
	"sv": "Swedish",
	"da": "Danish",
	"no": "Norwegian",
	"fi": "Finnish",
}

// LanguageName returns the English name of a site locale's language
func LanguageName(locale string) string {
	return languageNames[NormalizeLocale(locale)]
}
