package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/recipematch/backend/internal/domain"
	"go.uber.org/zap"
)

// DefaultCatalogLimit bounds the catalog snapshot handed to the pipeline.
const DefaultCatalogLimit = 500

// CatalogServiceConfig holds configuration for the catalog service
type CatalogServiceConfig struct {
	// SourceName identifies the source in cache keys ("api", "file:<path>").
	SourceName string
	Limit      int
	CacheTTL   time.Duration
}

// CatalogService returns bounded catalog snapshots, cached for CacheTTL.
// Only the raw catalog is cached; classification is recomputed per run.
type CatalogService struct {
	source   domain.CatalogSource
	cache    domain.CacheRepository
	name     string
	limit    int
	cacheTTL time.Duration
	logger   *zap.Logger
}

// NewCatalogService creates a catalog service. cache may be nil to disable
// snapshot caching.
func NewCatalogService(
	source domain.CatalogSource,
	cache domain.CacheRepository,
	config CatalogServiceConfig,
	logger *zap.Logger,
) *CatalogService {
	limit := config.Limit
	if limit <= 0 {
		limit = DefaultCatalogLimit
	}

	cacheTTL := config.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = 5 * time.Minute
	}

	name := config.SourceName
	if name == "" {
		name = "default"
	}

	return &CatalogService{
		source:   source,
		cache:    cache,
		name:     name,
		limit:    limit,
		cacheTTL: cacheTTL,
		logger:   nopIfNil(logger),
	}
}

// Products returns the current catalog snapshot.
// Flow: check cache -> fetch from source -> cache -> return
func (s *CatalogService) Products(ctx context.Context) ([]domain.Product, error) {
	key := s.cacheKey()

	if products, err := s.getFromCache(ctx, key); err == nil {
		s.logger.Debug("catalog snapshot served from cache", zap.String("key", key), zap.Int("products", len(products)))
		return products, nil
	}

	products, err := s.source.ListProducts(ctx, s.limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCatalogUnavailable, err)
	}
	if len(products) > s.limit {
		products = products[:s.limit]
	}

	if err := s.setInCache(ctx, key, products); err != nil {
		s.logger.Warn("failed to cache catalog snapshot", zap.String("key", key), zap.Error(err))
	}

	return products, nil
}

// Invalidate drops the cached snapshot so the next call refetches.
func (s *CatalogService) Invalidate(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Delete(ctx, s.cacheKey())
}

// cacheKey format: "catalog:{source}:{limit}"
func (s *CatalogService) cacheKey() string {
	return fmt.Sprintf("catalog:%s:%d", s.name, s.limit)
}

func (s *CatalogService) getFromCache(ctx context.Context, key string) ([]domain.Product, error) {
	if s.cache == nil {
		return nil, domain.ErrCacheMiss
	}

	data, err := s.cache.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	var products []domain.Product
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, domain.ErrCacheMiss
	}
	return products, nil
}

func (s *CatalogService) setInCache(ctx context.Context, key string, products []domain.Product) error {
	if s.cache == nil {
		return nil
	}

	data, err := json.Marshal(products)
	if err != nil {
		return err
	}
	return s.cache.Set(ctx, key, data, s.cacheTTL)
}
