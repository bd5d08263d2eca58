package usecase

import (
	"strings"
)

// Word-match scoring weights.
const (
	wholeWordPoints     = 3
	substringPoints     = 1
	DefaultMinWordScore = 3
)

// minRatioWordLength is the rune length a word must exceed to count in
// GroupRatioScore, on both the ingredient and the group key side.
const minRatioWordLength = 2

// WordMatchScore scores a product title against an ingredient's search terms:
// 3 points per term found as a whole word, 1 point per term found only as a
// substring. Used by the direct recipe matcher.
func WordMatchScore(terms []string, title string) int {
	lower := strings.ToLower(title)
	score := 0
	for _, term := range terms {
		term = strings.ToLower(term)
		if term == "" {
			continue
		}
		switch {
		case containsWholeWord(lower, term):
			score += wholeWordPoints
		case strings.Contains(lower, term):
			score += substringPoints
		}
	}
	return score
}

// GroupRatioScore returns the share of an ingredient's words (longer than two
// characters) that equal, contain or are contained by a word of the group key.
// The result is in [0, 1]; an ingredient without such words scores 0.
func GroupRatioScore(ingredientName, groupKey string) float64 {
	var ingredientWords []string
	for _, w := range splitWords(stripAccents(ingredientName)) {
		if runeLen(w) > minRatioWordLength {
			ingredientWords = append(ingredientWords, w)
		}
	}
	if len(ingredientWords) == 0 {
		return 0
	}

	var keyWords []string
	for _, w := range strings.Split(stripAccents(groupKey), "_") {
		if runeLen(w) > minRatioWordLength {
			keyWords = append(keyWords, w)
		}
	}

	matches := 0
	for _, iw := range ingredientWords {
		for _, kw := range keyWords {
			if iw == kw || strings.Contains(iw, kw) || strings.Contains(kw, iw) {
				matches++
				break
			}
		}
	}

	return float64(matches) / float64(len(ingredientWords))
}
