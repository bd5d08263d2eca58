package usecase

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// sizePatternRegex matches size/quantity phrases in product titles, e.g.
// "500ml", "1 kg", "12 oz", "6 unidades".
var sizePatternRegex = regexp.MustCompile(
	`(?i)\b\d+(?:[.,]\d+)?\s*(?:fl\s*oz|oz|ml|cc|litros?|lts?|l|gallons?|gal|lbs?|pounds?|kg|kilos?|grs?|gramos?|grams?|g|unidades?|unid|un|uds?|ct|count|pk|pack|ea|each|qt|quart|pt|pint)\b`,
)

var multipleSpacesRegex = regexp.MustCompile(`\s+`)

var stripAccentsTransformer = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// stripAccents lowercases s and removes combining marks ("Azúcar" -> "azucar").
func stripAccents(s string) string {
	result, _, err := transform.String(stripAccentsTransformer, strings.ToLower(s))
	if err != nil {
		return strings.ToLower(s)
	}
	return result
}

// splitWords lowercases s and splits it on anything that is not a letter or a
// digit.
func splitWords(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}

// isNumeric checks if a string contains only digits
func isNumeric(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return len(s) > 0
}

// GroupKey normalizes a base ingredient into a grouping key:
// lowercase, accents stripped, whitespace runs collapsed to "_".
func GroupKey(baseIngredient string) string {
	return strings.Join(strings.Fields(stripAccents(baseIngredient)), "_")
}

// DisplayName capitalizes each whitespace-separated word.
func DisplayName(baseIngredient string) string {
	words := strings.Fields(baseIngredient)
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}
	return strings.Join(words, " ")
}

// containsWholeWord reports whether word occurs in text delimited by
// non-letter, non-digit runes (or the text edges).
func containsWholeWord(text, word string) bool {
	if word == "" {
		return false
	}
	offset := 0
	for {
		idx := strings.Index(text[offset:], word)
		if idx < 0 {
			return false
		}
		start := offset + idx
		end := start + len(word)
		if isBoundaryBefore(text, start) && isBoundaryAfter(text, end) {
			return true
		}
		_, size := utf8.DecodeRuneInString(text[start:])
		offset = start + size
	}
}

func isBoundaryBefore(text string, i int) bool {
	if i == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(text[:i])
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}

func isBoundaryAfter(text string, i int) bool {
	if i >= len(text) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(text[i:])
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}

// QuantityLabel returns the first size phrase of a title ("500ml", "1kg"), or
// fallback when the title has none.
func QuantityLabel(title, fallback string) string {
	match := sizePatternRegex.FindString(title)
	if match == "" {
		return fallback
	}
	return strings.ToLower(multipleSpacesRegex.ReplaceAllString(match, ""))
}
