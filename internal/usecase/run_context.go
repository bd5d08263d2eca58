package usecase

import (
	"context"

	"go.uber.org/zap"
)

type runIDKey struct{}

// WithRunID tags ctx with a pipeline run id so every log line of one run can be
// correlated.
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, runIDKey{}, runID)
}

// RunID returns the run id stored by WithRunID, or "".
func RunID(ctx context.Context) string {
	id, _ := ctx.Value(runIDKey{}).(string)
	return id
}

func runLogger(ctx context.Context, logger *zap.Logger) *zap.Logger {
	if id := RunID(ctx); id != "" {
		return logger.With(zap.String("run_id", id))
	}
	return logger
}

func nopIfNil(logger *zap.Logger) *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}
