package usecase

import (
	"sort"

	"github.com/recipematch/backend/internal/domain"
)

// DefaultMaxRecipeProducts caps how many products the direct matcher assigns to
// one recipe.
const DefaultMaxRecipeProducts = 4

// DirectMatcherConfig holds configuration for the direct matcher
type DirectMatcherConfig struct {
	MinScore    int
	MaxProducts int
}

// DirectMatcher assigns catalog products straight to recipe ingredients by
// word-match score, without grouping. It is the strategy used when recipes are
// authored in bulk.
type DirectMatcher struct {
	terms        *TermExtractor
	classifier   *ProductClassifier
	minScore     int
	maxProducts  int
	defaultLabel string
}

// directCandidate is one eligible (ingredient, product) pair.
type directCandidate struct {
	ingredient string
	product    domain.Product
	variant    domain.Variant
	score      int
}

// NewDirectMatcher creates a direct matcher. The classifier is only used for
// its PROCESSED keyword check; it never calls the annotator.
func NewDirectMatcher(vocab Vocabulary, classifier *ProductClassifier, config DirectMatcherConfig) *DirectMatcher {
	minScore := config.MinScore
	if minScore <= 0 {
		minScore = DefaultMinWordScore
	}

	maxProducts := config.MaxProducts
	if maxProducts <= 0 {
		maxProducts = DefaultMaxRecipeProducts
	}

	return &DirectMatcher{
		terms:        NewTermExtractor(vocab),
		classifier:   classifier,
		minScore:     minScore,
		maxProducts:  maxProducts,
		defaultLabel: vocab.DefaultQuantityLabel,
	}
}

// Match picks up to maxProducts products for the ingredients. For each
// ingredient the products carrying one of dietIDs are searched first and the
// whole pool only when that finds nothing. Candidates from all ingredients are
// ranked together by score and assigned greedily, so one ingredient may take
// several products; a product is used at most once.
func (m *DirectMatcher) Match(ingredients []string, products []domain.Product, dietIDs []string) domain.DirectMatchResult {
	pool := make([]domain.Product, 0, len(products))
	var dietPool []domain.Product
	for _, p := range products {
		if m.classifier.IsProcessedTitle(p.Title) {
			continue
		}
		if len(p.Variants) == 0 {
			continue
		}
		pool = append(pool, p)
		if p.HasAnyTag(dietIDs) {
			dietPool = append(dietPool, p)
		}
	}

	var candidates []directCandidate
	for _, ingredient := range ingredients {
		terms := m.terms.Extract(ingredient)
		if len(terms) == 0 {
			continue
		}

		found := m.scorePool(ingredient, terms, dietPool)
		if len(found) == 0 {
			found = m.scorePool(ingredient, terms, pool)
		}
		candidates = append(candidates, found...)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	result := domain.DirectMatchResult{
		Products: []domain.RecommendedProduct{},
		Matches:  []domain.DirectMatch{},
	}
	usedProducts := make(map[string]bool)

	for _, c := range candidates {
		if len(result.Products) >= m.maxProducts {
			break
		}
		if usedProducts[c.product.ID] {
			continue
		}
		usedProducts[c.product.ID] = true

		result.Products = append(result.Products, newRecommendedProduct(c.product, c.variant, 0, m.defaultLabel))
		result.Matches = append(result.Matches, domain.DirectMatch{
			IngredientName: c.ingredient,
			ProductID:      c.product.ID,
			Score:          float64(c.score),
		})
	}

	return result
}

func (m *DirectMatcher) scorePool(ingredient string, terms []string, pool []domain.Product) []directCandidate {
	var found []directCandidate
	for _, p := range pool {
		score := WordMatchScore(terms, p.Title)
		if score < m.minScore {
			continue
		}
		variant, ok := p.PricedVariant()
		if !ok {
			variant = p.Variants[0]
		}
		found = append(found, directCandidate{
			ingredient: ingredient,
			product:    p,
			variant:    variant,
			score:      score,
		})
	}
	return found
}

// newRecommendedProduct builds a final list entry for a product and the
// variant that will be offered.
func newRecommendedProduct(p domain.Product, v domain.Variant, alternatives int, defaultLabel string) domain.RecommendedProduct {
	return domain.RecommendedProduct{
		ProductID:        p.ID,
		VariantID:        v.ID,
		Title:            p.Title,
		Handle:           p.Handle,
		Thumbnail:        p.Thumbnail,
		QuantityLabel:    QuantityLabel(p.Title, defaultLabel),
		Price:            v.Price,
		HasAlternatives:  alternatives > 0,
		AlternativeCount: alternatives,
	}
}
