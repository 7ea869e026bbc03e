package ports

import (
	"context"
	"time"

	"github.com/ahrav/go-compare/internal/domain"
)

// RecomputeObserver brackets each service operation that recomputes and
// persists a comparative. Implementations are shared across goroutines and
// must keep per-call state in the returned context.
type RecomputeObserver interface {
	// PreRecompute is called before the lock is taken. The returned context
	// is used for the rest of the operation.
	PreRecompute(ctx context.Context, operation, comparativeID string) context.Context

	// PostRecompute is called once the operation finished. c and res are the
	// zero values when the operation failed before scoring.
	PostRecompute(
		ctx context.Context,
		operation string,
		c domain.Comparative,
		res domain.ScoreResult,
		elapsed time.Duration,
		err error,
	)
}
