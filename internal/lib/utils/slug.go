package utils

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Slugify turns a display name into a URL slug: accents stripped,
// lowercased, anything non-alphanumeric collapsed into single hyphens.
// "Consultório 2" becomes "consultorio-2".
func Slugify(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	normalized, _, err := transform.String(t, s)
	if err != nil {
		normalized = s
	}

	var b strings.Builder
	previousHyphen := true // also swallows leading separators
	for _, r := range strings.ToLower(normalized) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			previousHyphen = false
		default:
			if !previousHyphen {
				b.WriteRune('-')
				previousHyphen = true
			}
		}
	}

	return strings.TrimSuffix(b.String(), "-")
}
