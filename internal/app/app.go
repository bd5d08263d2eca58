// Package app wires configuration into the infrastructure and usecase layers.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/recipematch/backend/config"
	"github.com/recipematch/backend/internal/domain"
	"github.com/recipematch/backend/internal/infrastructure/annotator"
	"github.com/recipematch/backend/internal/infrastructure/cache"
	"github.com/recipematch/backend/internal/infrastructure/catalog"
	"github.com/recipematch/backend/internal/usecase"
	"go.uber.org/zap"
)

// App holds the services shared by the HTTP server and the CLI
type App struct {
	Catalog     *usecase.CatalogService
	Recommender *usecase.RecommendationService
	Matcher     *usecase.DirectMatcher

	closers []io.Closer
}

// New builds every service from cfg. The annotator is optional: without an
// API key the pipeline runs on keyword rules only.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	app := &App{}

	snapshotCache, err := newCache(ctx, cfg.Cache)
	if err != nil {
		return nil, err
	}
	app.closers = append(app.closers, snapshotCache)

	source, sourceName := newCatalogSource(cfg.Catalog, logger)

	ann, err := newAnnotator(cfg.Annotator, logger)
	if err != nil {
		app.Close()
		return nil, err
	}
	if ann == nil {
		logger.Warn("annotation service not configured, ambiguous products fall back to keyword rules")
	}

	vocab := usecase.DefaultVocabulary()
	classifier := usecase.NewProductClassifier(vocab, annotatorOrNil(ann), usecase.ClassifierConfig{
		BatchSize:  cfg.Matching.ClassificationBatchSize,
		BatchDelay: cfg.Matching.BatchDelay,
	}, logger)

	app.Catalog = usecase.NewCatalogService(source, snapshotCache, usecase.CatalogServiceConfig{
		SourceName: sourceName,
		Limit:      cfg.Catalog.Limit,
		CacheTTL:   cfg.Cache.TTL,
	}, logger)

	app.Recommender = usecase.NewRecommendationService(vocab, classifier, annotatorOrNil(ann), usecase.RecommendationConfig{
		MinGroupRatio:       cfg.Matching.MinGroupRatio,
		LowConfidence:       cfg.Matching.LowConfidence,
		AnnotatedConfidence: cfg.Matching.AnnotatedConfidence,
		MaxGroupNames:       cfg.Matching.MaxGroupNames,
		MaxProducts:         cfg.Matching.MaxProducts,
	}, logger)

	app.Matcher = usecase.NewDirectMatcher(vocab, classifier, usecase.DirectMatcherConfig{
		MinScore:    cfg.Matching.MinWordScore,
		MaxProducts: cfg.Matching.MaxRecipeProducts,
	})

	logger.Info("services initialized",
		zap.String("catalog_source", sourceName),
		zap.String("cache_type", cfg.Cache.Type),
		zap.Bool("annotator_enabled", ann != nil),
		zap.String("model", cfg.Annotator.Model))

	return app, nil
}

// Close releases the cache connections
func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

type closableCache interface {
	domain.CacheRepository
	io.Closer
}

func newCache(ctx context.Context, cfg config.CacheConfig) (closableCache, error) {
	switch cfg.Type {
	case "redis":
		redisCache, err := cache.NewRedisCache(ctx, cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize redis cache: %w", err)
		}
		return redisCache, nil
	case "memory", "":
		return cache.NewMemoryCache(), nil
	default:
		return nil, fmt.Errorf("unknown cache type: %s", cfg.Type)
	}
}

func newCatalogSource(cfg config.CatalogConfig, logger *zap.Logger) (domain.CatalogSource, string) {
	if cfg.Source == "file" {
		return catalog.NewFileSource(cfg.File), "file:" + cfg.File
	}
	return catalog.NewClient(catalog.ClientConfig{
		BaseURL:        cfg.BaseURL,
		PublishableKey: cfg.PublishableKey,
		PageSize:       cfg.PageSize,
		Timeout:        cfg.Timeout,
	}, logger), "api"
}

// newAnnotator returns nil, nil when no API key is configured
func newAnnotator(cfg config.AnnotatorConfig, logger *zap.Logger) (*annotator.Client, error) {
	policy := annotator.DefaultRetryPolicy()
	policy.MaxAttempts = cfg.Retry.MaxAttempts
	if cfg.Retry.InitialBackoff > 0 {
		policy.InitialBackoff = cfg.Retry.InitialBackoff
	}
	if cfg.Retry.MaxBackoff > 0 {
		policy.MaxBackoff = cfg.Retry.MaxBackoff
	}

	client, err := annotator.NewClient(annotator.Config{
		APIKey:            cfg.APIKey,
		BaseURL:           cfg.BaseURL,
		Model:             cfg.Model,
		MaxTokens:         cfg.MaxTokens,
		Timeout:           cfg.Timeout,
		RequestsPerSecond: cfg.RequestsPerSecond,
		Burst:             cfg.Burst,
		Retry:             policy,
	}, logger)
	if errors.Is(err, domain.ErrAnnotatorNotConfigured) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to initialize annotator: %w", err)
	}
	return client, nil
}

// annotatorOrNil keeps a nil *annotator.Client from becoming a non-nil
// domain.Annotator.
func annotatorOrNil(c *annotator.Client) domain.Annotator {
	if c == nil {
		return nil
	}
	return c
}
