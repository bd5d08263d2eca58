package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/recipematch/backend/internal/domain"
)

func price(v float64) *float64 {
	return &v
}

func newProduct(id, title string, p *float64, tags ...string) domain.Product {
	return domain.Product{
		ID:       id,
		Title:    title,
		Handle:   id,
		Tags:     tags,
		Variants: []domain.Variant{{ID: "var_" + id, Price: p}},
	}
}

func base(p domain.Product, ingredient string) domain.ClassifiedProduct {
	return domain.ClassifiedProduct{Product: p, Category: domain.CategoryBase, BaseIngredient: ingredient}
}

type fakeResponse struct {
	text string
	err  error
}

// fakeAnnotator records requests and replays canned responses in call order.
// Calls past the end of responses fail with an empty-answer error.
type fakeAnnotator struct {
	mu        sync.Mutex
	responses []fakeResponse
	requests  []domain.AnnotationRequest
}

func (f *fakeAnnotator) Annotate(ctx context.Context, req domain.AnnotationRequest) (*domain.Annotation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	i := len(f.requests)
	f.requests = append(f.requests, req)
	if i >= len(f.responses) {
		return nil, &domain.AnnotationError{Kind: domain.AnnotationErrEmpty}
	}
	if f.responses[i].err != nil {
		return nil, f.responses[i].err
	}
	return &domain.Annotation{Text: f.responses[i].text, Model: "fake"}, nil
}

func (f *fakeAnnotator) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

type fakeCatalogSource struct {
	products []domain.Product
	err      error
	calls    int
	limits   []int
}

func (f *fakeCatalogSource) ListProducts(ctx context.Context, limit int) ([]domain.Product, error) {
	f.calls++
	f.limits = append(f.limits, limit)
	if f.err != nil {
		return nil, f.err
	}
	return f.products, nil
}

type fakeCache struct {
	data   map[string][]byte
	setErr error
	ttls   []time.Duration
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: make(map[string][]byte)}
}

func (c *fakeCache) Get(ctx context.Context, key string) ([]byte, error) {
	v, ok := c.data[key]
	if !ok {
		return nil, domain.ErrCacheMiss
	}
	return v, nil
}

func (c *fakeCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if c.setErr != nil {
		return c.setErr
	}
	c.data[key] = value
	c.ttls = append(c.ttls, ttl)
	return nil
}

func (c *fakeCache) Delete(ctx context.Context, key string) error {
	delete(c.data, key)
	return nil
}

func (c *fakeCache) Exists(ctx context.Context, key string) (bool, error) {
	_, ok := c.data[key]
	return ok, nil
}
