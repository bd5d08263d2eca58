package usecase

import (
	"strings"
)

// maxFallbackWords is how many title words make up a fallback base ingredient.
const maxFallbackWords = 3

// BaseIngredientExtractor derives the canonical ingredient name from the title
// of a BASE product ("Aceite de Oliva Extra Virgen 500ml" -> "aceite de oliva").
type BaseIngredientExtractor struct {
	vocab     Vocabulary
	modifiers map[string]bool
}

// NewBaseIngredientExtractor creates an extractor over the vocabulary's
// patterns and quality modifiers.
func NewBaseIngredientExtractor(vocab Vocabulary) *BaseIngredientExtractor {
	modifiers := make(map[string]bool, len(vocab.QualityModifiers))
	for _, m := range vocab.QualityModifiers {
		modifiers[strings.ToLower(m)] = true
	}
	return &BaseIngredientExtractor{vocab: vocab, modifiers: modifiers}
}

// Extract returns the base ingredient for a product title. It never returns an
// empty string for a non-empty title.
//
// Steps:
//  1. first "<staple> de <ingredient>" pattern that matches wins
//  2. otherwise strip sizes and quality modifiers and keep the first three
//     remaining words longer than two characters
//  3. otherwise the lowercased title
func (x *BaseIngredientExtractor) Extract(title string) string {
	lower := strings.ToLower(strings.TrimSpace(title))
	if lower == "" {
		return ""
	}

	for _, pattern := range x.vocab.BaseIngredientPatterns {
		if match := pattern.FindString(lower); match != "" {
			return multipleSpacesRegex.ReplaceAllString(match, " ")
		}
	}

	cleaned := sizePatternRegex.ReplaceAllString(lower, " ")

	kept := make([]string, 0, maxFallbackWords)
	for _, word := range splitWords(cleaned) {
		if runeLen(word) <= 2 || x.modifiers[word] || isNumeric(word) {
			continue
		}
		kept = append(kept, word)
		if len(kept) == maxFallbackWords {
			break
		}
	}

	if len(kept) == 0 {
		return lower
	}
	return strings.Join(kept, " ")
}
