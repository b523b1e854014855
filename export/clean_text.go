package export

import (
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// asciiCleaner decomposes accented characters (NFKD) and drops everything
// outside the single-byte range the PDF font tables can encode.
var asciiCleaner = transform.Chain(
	norm.NFKD,
	runes.Remove(runes.Predicate(func(r rune) bool { return r > unicode.MaxASCII })),
)

// CleanText reduces text to the ASCII subset before it enters the document.
// Lossy: non-transliterable characters are silently dropped rather than
// rejected.
func CleanText(s string) string {
	out, _, err := transform.String(asciiCleaner, s)
	if err != nil {
		return s
	}
	return out
}
