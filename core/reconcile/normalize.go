package reconcile

import (
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// NormalizeTitle returns the comparison form of a title: accents folded, lower case,
// "&" spelled out, separators turned into spaces, other punctuation dropped and
// whitespace collapsed.
func NormalizeTitle(title string) string {
	// transform.Chain keeps state, so a fresh chain is built per call.
	fold := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(fold, title)
	if err != nil {
		folded = title
	}
	folded = strings.ToLower(folded)
	folded = strings.ReplaceAll(folded, "&", " and ")

	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case unicode.IsSpace(r), r == '.', r == '-', r == '_', r == ':', r == '/':
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// normalizeExternalID trims and lower-cases provider identifiers so "TT0133093"
// and "tt0133093" land on the same key.
func normalizeExternalID(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}

func externalKey(namespace, id string) string {
	return "ext:" + strings.ToLower(namespace) + ":" + normalizeExternalID(id)
}

func titleYearKey(normalizedTitle string, year int) string {
	if year <= 0 {
		return "ty:" + normalizedTitle + ":"
	}
	return "ty:" + normalizedTitle + ":" + strconv.Itoa(year)
}
