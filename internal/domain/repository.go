package domain

import (
	"context"
	"time"
)

// CacheRepository defines the interface for caching operations
type CacheRepository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// CatalogSource returns a bounded snapshot of the store catalog.
type CatalogSource interface {
	ListProducts(ctx context.Context, limit int) ([]Product, error)
}

// AnnotationRequest is a prompt plus the short text items it refers to.
type AnnotationRequest struct {
	Prompt string
	Items  []string
}

// Annotation is the raw, best-effort answer of the annotation service.
// Callers parse Text themselves.
type Annotation struct {
	Text  string
	Model string
}

// Annotator is the external AI capability used to resolve ambiguous items.
// Any failure is returned as *AnnotationError.
type Annotator interface {
	Annotate(ctx context.Context, req AnnotationRequest) (*Annotation, error)
}
