package usecase

import (
	"sort"
	"strings"
)

// minTermLength is the rune length a word must exceed to become a search term.
const minTermLength = 3

// TermExtractor turns an ingredient name into search terms, expanded through
// a bilingual glossary.
type TermExtractor struct {
	glossary map[string][]string
	keys     []string // glossary keys, sorted for deterministic expansion
}

// NewTermExtractor creates a term extractor over the vocabulary's glossary.
func NewTermExtractor(vocab Vocabulary) *TermExtractor {
	glossary := make(map[string][]string, len(vocab.Glossary))
	keys := make([]string, 0, len(vocab.Glossary))
	for key, synonyms := range vocab.Glossary {
		k := strings.ToLower(key)
		lowered := make([]string, len(synonyms))
		for i, s := range synonyms {
			lowered[i] = strings.ToLower(s)
		}
		glossary[k] = lowered
		keys = append(keys, k)
	}
	sort.Strings(keys)

	return &TermExtractor{glossary: glossary, keys: keys}
}

// Extract returns the deduplicated search terms for an ingredient name, in
// first-seen order. Words of three characters or fewer are dropped.
func (e *TermExtractor) Extract(ingredientName string) []string {
	var terms []string
	seen := make(map[string]bool)
	add := func(t string) {
		if t != "" && !seen[t] {
			seen[t] = true
			terms = append(terms, t)
		}
	}

	for _, word := range splitWords(ingredientName) {
		if runeLen(word) <= minTermLength {
			continue
		}
		add(word)

		if synonyms, ok := e.glossary[word]; ok {
			for _, s := range synonyms {
				add(s)
			}
		}

		for _, key := range e.keys {
			for _, value := range e.glossary[key] {
				if strings.Contains(value, word) {
					add(key)
					break
				}
			}
		}
	}

	return terms
}
