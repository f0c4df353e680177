package gatherer

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Characters that don't decompose to ASCII
var asciiReplacer = strings.NewReplacer(
	"Æ", "AE",
	"æ", "ae",
	"—", "-",
	"–", "-",
	"−", "-",
	"‘", "'",
	"’", "'",
	"“", `"`,
	"”", `"`,
	"•", "*",
	"½", "1/2",
	"\u00a0", " ",
)

// asciiFold strips diacritics and replaces the typographic characters used
// by Gatherer with their ASCII equivalent. Anything left outside of the
// ASCII range is caught by the sanity checks.
func asciiFold(s string) string {
	s = asciiReplacer.Replace(s)

	// Transformers are stateful, create a new chain for every call
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		return s
	}

	return folded
}

// cleanText folds a string and collapses its whitespace.
func cleanText(s string) string {
	return strings.Join(strings.Fields(asciiFold(s)), " ")
}
