package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/recipematch/backend/internal/domain"
	"go.uber.org/zap"
)

// Recommendation defaults
const (
	defaultMinGroupRatio       = 0.5
	defaultLowConfidence       = 0.7
	defaultAnnotatedConfidence = 0.8
	defaultMaxGroupNames       = 30
	DefaultMaxProducts         = 4
)

const (
	reasonRatioMatch = "matched product group by ingredient words"
	reasonNoMatch    = "no product group matched"
	reasonAnnotated  = "suggested by annotation service"
)

// RecommendationConfig holds configuration for the recommendation service
type RecommendationConfig struct {
	MinGroupRatio       float64
	LowConfidence       float64
	AnnotatedConfidence float64
	MaxGroupNames       int
	MaxProducts         int
}

// RecommendationService turns a recipe's ingredient list into a short list of
// store products, one product group per ingredient.
type RecommendationService struct {
	classifier *ProductClassifier
	annotator  domain.Annotator
	config     RecommendationConfig
	label      string
	logger     *zap.Logger
}

// NewRecommendationService creates a recommendation service. annotator may be
// nil; low-confidence ingredients then stay unmatched.
func NewRecommendationService(
	vocab Vocabulary,
	classifier *ProductClassifier,
	annotator domain.Annotator,
	config RecommendationConfig,
	logger *zap.Logger,
) *RecommendationService {
	if config.MinGroupRatio <= 0 {
		config.MinGroupRatio = defaultMinGroupRatio
	}
	if config.LowConfidence <= 0 {
		config.LowConfidence = defaultLowConfidence
	}
	if config.AnnotatedConfidence <= 0 {
		config.AnnotatedConfidence = defaultAnnotatedConfidence
	}
	if config.MaxGroupNames <= 0 {
		config.MaxGroupNames = defaultMaxGroupNames
	}
	if config.MaxProducts <= 0 {
		config.MaxProducts = DefaultMaxProducts
	}

	return &RecommendationService{
		classifier: classifier,
		annotator:  annotator,
		config:     config,
		label:      vocab.DefaultQuantityLabel,
		logger:     nopIfNil(logger),
	}
}

// Recommend picks the best product group for every ingredient. A group is
// kept only when its ratio score reaches MinGroupRatio and beats every other
// group; on equal scores a group with a product tagged with one of dietIDs
// wins. Ingredients left unmatched are sent to the annotator in one request.
func (s *RecommendationService) Recommend(
	ctx context.Context,
	ingredients []string,
	groups []domain.ProductGroup,
	dietIDs []string,
) []domain.IngredientRecommendation {
	logger := runLogger(ctx, s.logger)
	recs := make([]domain.IngredientRecommendation, len(ingredients))

	for i, ingredient := range ingredients {
		recs[i] = domain.IngredientRecommendation{IngredientName: ingredient, Reason: reasonNoMatch}

		bestScore := 0.0
		best := -1
		for gi := range groups {
			score := GroupRatioScore(ingredient, groups[gi].Key)
			if score < s.config.MinGroupRatio {
				continue
			}
			switch {
			case score > bestScore:
				best, bestScore = gi, score
			case score == bestScore && best >= 0 &&
				!groupHasDiet(&groups[best], dietIDs) && groupHasDiet(&groups[gi], dietIDs):
				best = gi
			}
		}

		if best >= 0 {
			group := groups[best]
			recs[i].MatchedGroup = &group
			recs[i].Confidence = bestScore
			recs[i].Reason = reasonRatioMatch
		}
	}

	var low []int
	for i, rec := range recs {
		if rec.Confidence < s.config.LowConfidence && rec.MatchedGroup == nil {
			low = append(low, i)
		}
	}

	if len(low) == 0 || len(groups) == 0 {
		return recs
	}
	if s.annotator == nil {
		logger.Debug("no annotator configured, leaving ingredients unmatched", zap.Int("unmatched", len(low)))
		return recs
	}

	s.annotatePairings(ctx, logger, recs, low, groups)
	return recs
}

// annotatePairings asks the annotator to pair unmatched ingredients with group
// display names and applies every pairing that names an existing group.
func (s *RecommendationService) annotatePairings(
	ctx context.Context,
	logger *zap.Logger,
	recs []domain.IngredientRecommendation,
	low []int,
	groups []domain.ProductGroup,
) {
	names := make([]string, len(low))
	for i, idx := range low {
		names[i] = recs[idx].IngredientName
	}

	groupNames := make([]string, 0, s.config.MaxGroupNames)
	for i := range groups {
		if len(groupNames) == s.config.MaxGroupNames {
			break
		}
		groupNames = append(groupNames, groups[i].DisplayName)
	}

	annotation, err := s.annotator.Annotate(ctx, domain.AnnotationRequest{
		Prompt: buildPairingPrompt(names, groupNames),
		Items:  append(append([]string{}, names...), groupNames...),
	})
	if err != nil {
		logger.Warn("pairing request failed, ingredients stay unmatched",
			zap.Int("unmatched", len(low)),
			zap.Error(err))
		return
	}

	var pairings []pairingItem
	if err := parseAnnotationList(annotation.Text, &pairings); err != nil {
		logger.Warn("pairing response unparseable, ingredients stay unmatched", zap.Error(err))
		return
	}

	byName := make(map[string]int, len(groups))
	for i := range groups {
		key := strings.ToLower(strings.TrimSpace(groups[i].DisplayName))
		if _, exists := byName[key]; !exists {
			byName[key] = i
		}
	}

	applied := 0
	for _, pairing := range pairings {
		gi, ok := byName[strings.ToLower(strings.TrimSpace(pairing.Group))]
		if !ok {
			continue
		}
		for _, idx := range low {
			if recs[idx].MatchedGroup != nil ||
				!strings.EqualFold(strings.TrimSpace(recs[idx].IngredientName), strings.TrimSpace(pairing.Ingredient)) {
				continue
			}
			group := groups[gi]
			recs[idx].MatchedGroup = &group
			recs[idx].Confidence = s.config.AnnotatedConfidence
			recs[idx].Reason = pairing.Reason
			if recs[idx].Reason == "" {
				recs[idx].Reason = reasonAnnotated
			}
			applied++
			break
		}
	}

	logger.Debug("pairing annotations applied",
		zap.Int("pairings", len(pairings)),
		zap.Int("applied", applied))
}

// GetSmartMatches runs the whole pipeline: classify the catalog, group BASE
// products, match ingredients to groups and return at most maxProducts
// products, never two from the same group. maxProducts <= 0 uses the
// configured default.
func (s *RecommendationService) GetSmartMatches(
	ctx context.Context,
	ingredients []string,
	products []domain.Product,
	dietIDs []string,
	maxProducts int,
) domain.SmartMatchResult {
	start := time.Now()
	if RunID(ctx) == "" {
		ctx = WithRunID(ctx, uuid.NewString())
	}
	logger := runLogger(ctx, s.logger)

	if maxProducts <= 0 {
		maxProducts = s.config.MaxProducts
	}

	groups, stats := s.BuildGroups(ctx, products)
	recs := s.Recommend(ctx, ingredients, groups, dietIDs)

	result := domain.SmartMatchResult{
		Products: []domain.RecommendedProduct{},
		Stats:    stats,
	}
	used := make(map[string]bool)

	for _, rec := range recs {
		if len(result.Products) >= maxProducts {
			break
		}
		group := rec.MatchedGroup
		if group == nil || used[group.Key] {
			continue
		}
		variant, ok := group.Primary.PricedVariant()
		if !ok {
			continue
		}
		used[group.Key] = true
		result.Products = append(result.Products,
			newRecommendedProduct(group.Primary.Product, variant, len(group.Alternatives), s.label))
	}

	logger.Info("smart matches computed",
		zap.Int("ingredients", len(ingredients)),
		zap.Int("total_products", stats.TotalProducts),
		zap.Int("groups_created", stats.GroupsCreated),
		zap.Int("recommended", len(result.Products)),
		zap.Duration("duration", time.Since(start)))

	return result
}

// BuildGroups classifies products and groups the BASE ones, returning the
// groups with the run's diagnostic counters.
func (s *RecommendationService) BuildGroups(ctx context.Context, products []domain.Product) ([]domain.ProductGroup, domain.MatchStats) {
	classified := s.classifier.Classify(ctx, products)
	groups := Deduplicate(classified)

	stats := domain.MatchStats{
		TotalProducts: len(products),
		GroupsCreated: len(groups),
	}
	for _, cp := range classified {
		switch cp.Category {
		case domain.CategoryBase:
			stats.BaseProducts++
		case domain.CategoryPrepared:
			stats.PreparedProducts++
		}
	}

	return groups, stats
}

func groupHasDiet(g *domain.ProductGroup, dietIDs []string) bool {
	if len(dietIDs) == 0 {
		return false
	}
	if g.Primary.HasAnyTag(dietIDs) {
		return true
	}
	for _, alt := range g.Alternatives {
		if alt.HasAnyTag(dietIDs) {
			return true
		}
	}
	return false
}
