package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/recipematch/backend/internal/domain"
	"go.uber.org/zap"
)

const (
	defaultClassificationBatchSize = 20
	defaultClassificationDelay     = 500 * time.Millisecond
)

// Classification is the state of one product between the two passes: either
// Resolved or Unresolved. Every Unresolved value is turned into a Resolved one
// before grouping.
type Classification interface {
	isClassification()
}

// ClassificationSource records which pass resolved a product.
type ClassificationSource string

const (
	SourceKeyword   ClassificationSource = "keyword"
	SourceAnnotator ClassificationSource = "annotator"
	SourceDefault   ClassificationSource = "default"
)

// Resolved is a final category, with the base ingredient when the annotator
// supplied one.
type Resolved struct {
	Category       domain.Category
	BaseIngredient string
	Source         ClassificationSource
}

// Unresolved matched neither keyword list.
type Unresolved struct{}

func (Resolved) isClassification()   {}
func (Unresolved) isClassification() {}

// ClassifierConfig holds configuration for the product classifier
type ClassifierConfig struct {
	BatchSize  int
	BatchDelay time.Duration
}

// ProductClassifier sorts catalog products into BASE and PREPARED, asking the
// annotator about titles the keyword lists cannot decide.
type ProductClassifier struct {
	processed  []string
	base       []string
	extractor  *BaseIngredientExtractor
	annotator  domain.Annotator
	batchSize  int
	batchDelay time.Duration
	logger     *zap.Logger
}

// NewProductClassifier creates a classifier. annotator may be nil, in which
// case unresolved products default to PREPARED.
func NewProductClassifier(vocab Vocabulary, annotator domain.Annotator, config ClassifierConfig, logger *zap.Logger) *ProductClassifier {
	batchSize := config.BatchSize
	if batchSize <= 0 {
		batchSize = defaultClassificationBatchSize
	}

	delay := config.BatchDelay
	if delay < 0 {
		delay = defaultClassificationDelay
	}

	return &ProductClassifier{
		processed:  lowerAll(vocab.ProcessedKeywords),
		base:       lowerAll(vocab.BaseKeywords),
		extractor:  NewBaseIngredientExtractor(vocab),
		annotator:  annotator,
		batchSize:  batchSize,
		batchDelay: delay,
		logger:     nopIfNil(logger),
	}
}

// QuickClassify runs the keyword pass on a single title. PROCESSED keywords are
// checked first so "raw-cacao cookie" is PREPARED.
func (c *ProductClassifier) QuickClassify(title string) Classification {
	lower := strings.ToLower(title)
	if _, ok := containsAny(lower, c.processed); ok {
		return Resolved{Category: domain.CategoryPrepared, Source: SourceKeyword}
	}
	if _, ok := containsAny(lower, c.base); ok {
		return Resolved{Category: domain.CategoryBase, Source: SourceKeyword}
	}
	return Unresolved{}
}

// IsProcessedTitle reports whether a title contains a PROCESSED keyword.
func (c *ProductClassifier) IsProcessedTitle(title string) bool {
	_, ok := containsAny(strings.ToLower(title), c.processed)
	return ok
}

// Classify assigns a category to every product. It never fails: annotator
// errors and unparseable answers make the affected batch PREPARED.
func (c *ProductClassifier) Classify(ctx context.Context, products []domain.Product) []domain.ClassifiedProduct {
	logger := runLogger(ctx, c.logger)

	states := make([]Classification, len(products))
	var unresolved []int
	for i, p := range products {
		states[i] = c.QuickClassify(p.Title)
		if _, ok := states[i].(Unresolved); ok {
			unresolved = append(unresolved, i)
		}
	}

	logger.Debug("keyword classification done",
		zap.Int("products", len(products)),
		zap.Int("unresolved", len(unresolved)))

	if len(unresolved) > 0 {
		if c.annotator == nil {
			logger.Debug("no annotator configured, unresolved products default to PREPARED",
				zap.Int("unresolved", len(unresolved)))
		} else {
			c.annotateUnresolved(ctx, logger, products, unresolved, states)
		}
	}

	classified := make([]domain.ClassifiedProduct, len(products))
	for i, p := range products {
		r := resolve(states[i])
		cp := domain.ClassifiedProduct{Product: p, Category: r.Category}
		if r.Category == domain.CategoryBase {
			cp.BaseIngredient = r.BaseIngredient
			if cp.BaseIngredient == "" {
				cp.BaseIngredient = c.extractor.Extract(p.Title)
			}
		}
		classified[i] = cp
	}

	return classified
}

// annotateUnresolved sends unresolved titles to the annotator in batches, one
// at a time with a pause between them, and writes the results into states.
func (c *ProductClassifier) annotateUnresolved(
	ctx context.Context,
	logger *zap.Logger,
	products []domain.Product,
	unresolved []int,
	states []Classification,
) {
	for start := 0; start < len(unresolved); start += c.batchSize {
		end := start + c.batchSize
		if end > len(unresolved) {
			end = len(unresolved)
		}
		batch := unresolved[start:end]

		if start > 0 && c.batchDelay > 0 {
			select {
			case <-ctx.Done():
				logger.Warn("classification stopped, remaining products default to PREPARED",
					zap.Int("remaining", len(unresolved)-start),
					zap.Error(ctx.Err()))
				return
			case <-time.After(c.batchDelay):
			}
		}

		titles := make([]string, len(batch))
		for i, idx := range batch {
			titles[i] = products[idx].Title
		}

		items, err := c.annotateBatch(ctx, titles)
		if err != nil {
			var aerr *domain.AnnotationError
			kind := "parse"
			if errors.As(err, &aerr) {
				kind = string(aerr.Kind)
			}
			logger.Warn("classification batch failed, defaulting to PREPARED",
				zap.Int("batch_start", start),
				zap.Int("batch_size", len(batch)),
				zap.String("kind", kind),
				zap.Error(err))
			continue
		}

		for _, item := range items {
			if item.Index == nil || *item.Index < 0 || *item.Index >= len(batch) {
				continue
			}
			states[batch[*item.Index]] = Resolved{
				Category:       parseCategory(item.Category),
				BaseIngredient: strings.ToLower(strings.TrimSpace(item.BaseIngredient)),
				Source:         SourceAnnotator,
			}
		}

		logger.Debug("classification batch annotated",
			zap.Int("batch_start", start),
			zap.Int("batch_size", len(batch)),
			zap.Int("answers", len(items)))
	}
}

func (c *ProductClassifier) annotateBatch(ctx context.Context, titles []string) ([]classificationItem, error) {
	annotation, err := c.annotator.Annotate(ctx, domain.AnnotationRequest{
		Prompt: buildClassificationPrompt(titles),
		Items:  titles,
	})
	if err != nil {
		return nil, err
	}

	var items []classificationItem
	if err := parseAnnotationList(annotation.Text, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// resolve turns any classification state into a final one.
func resolve(state Classification) Resolved {
	if r, ok := state.(Resolved); ok {
		if r.Category == domain.CategoryBase || r.Category == domain.CategoryPrepared {
			return r
		}
	}
	return Resolved{Category: domain.CategoryPrepared, Source: SourceDefault}
}

func lowerAll(words []string) []string {
	out := make([]string, 0, len(words))
	for _, w := range words {
		if w = strings.ToLower(strings.TrimSpace(w)); w != "" {
			out = append(out, w)
		}
	}
	return out
}
