package unimailer

import (
	"strings"

	"golang.org/x/text/language"
)

const defaultLocale = "en"

// translations is the process-wide, read-only message table keyed by locale
// then message key.
var translations = map[string]map[string]string{
	"en": {
		"invalid_email": "Invalid email address.",
		"empty_email":   "Email address is empty.",
	},
	"nl": {
		"invalid_email": "Ongeldig e-mailadres.",
		"empty_email":   "E-mailadres is leeg.",
	},
}

// Translate looks key up for locale. A regional locale such as "nl-BE" falls
// back to its base language. Unknown locales and keys return key unchanged.
func Translate(locale, key string) string {
	if msg, ok := translations[locale][key]; ok {
		return msg
	}

	tag, err := language.Parse(locale)
	if err != nil {
		return key
	}
	base, _ := tag.Base()
	if msg, ok := translations[base.String()][key]; ok {
		return msg
	}
	return key
}

// withDetail turns a sentence such as "Invalid email address." into
// "Invalid email address: detail".
func withDetail(sentence, detail string) string {
	return strings.TrimSuffix(sentence, ".") + ": " + detail
}
