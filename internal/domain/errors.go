package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrCatalogUnavailable is returned when the product catalog cannot be fetched
	ErrCatalogUnavailable = errors.New("product catalog unavailable")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrAnnotatorNotConfigured is returned when no annotation service credentials are set
	ErrAnnotatorNotConfigured = errors.New("annotation service not configured")

	// ErrAnnotationFailed is matched by every *AnnotationError
	ErrAnnotationFailed = errors.New("annotation request failed")

	// ErrUnparseableAnnotation is returned when the annotation text holds no usable JSON
	ErrUnparseableAnnotation = errors.New("annotation response is not parseable")
)

// AnnotationErrorKind tells why an annotation request failed.
type AnnotationErrorKind string

const (
	AnnotationErrTransport   AnnotationErrorKind = "transport"
	AnnotationErrStatus      AnnotationErrorKind = "status"
	AnnotationErrRateLimited AnnotationErrorKind = "rate_limited"
	AnnotationErrEmpty       AnnotationErrorKind = "empty"
	AnnotationErrParse       AnnotationErrorKind = "parse"
)

// AnnotationError is the failure side of an Annotator call.
type AnnotationError struct {
	Kind       AnnotationErrorKind
	StatusCode int
	Attempts   int
	Err        error
}

func (e *AnnotationError) Error() string {
	msg := fmt.Sprintf("annotation %s error", e.Kind)
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.StatusCode)
	}
	if e.Attempts > 1 {
		msg = fmt.Sprintf("%s after %d attempts", msg, e.Attempts)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *AnnotationError) Unwrap() error {
	return e.Err
}

// Is makes every AnnotationError match ErrAnnotationFailed.
func (e *AnnotationError) Is(target error) bool {
	return target == ErrAnnotationFailed
}

// Retryable reports whether another attempt could succeed.
func (e *AnnotationError) Retryable() bool {
	switch e.Kind {
	case AnnotationErrTransport, AnnotationErrRateLimited:
		return true
	case AnnotationErrStatus:
		return e.StatusCode >= 500
	default:
		return false
	}
}
