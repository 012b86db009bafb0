package nlp

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const combiningTilde = '\u0303'

// StripAccents removes every combining mark.
func StripAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// FoldAccents removes diacritics but keeps the tilde of ñ/Ñ.
func FoldAccents(s string) string {
	decomposed := norm.NFD.String(s)
	var b strings.Builder
	b.Grow(len(decomposed))
	var prev rune
	for _, r := range decomposed {
		if unicode.Is(unicode.Mn, r) {
			if r == combiningTilde && (prev == 'n' || prev == 'N') {
				b.WriteRune(r)
				prev = r
			}
			continue
		}
		b.WriteRune(r)
		prev = r
	}
	return norm.NFC.String(b.String())
}
