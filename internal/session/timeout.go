package session

import (
	"context"
	"time"
)

// defaultCallTimeout bounds every network-bound call the session makes, so a
// hung backend degrades to the caller's fallback instead of an indefinite wait.
const defaultCallTimeout = 10 * time.Second

// withTimeout runs op under a deadline-bound context. The operation must honor
// context cancellation, which every repository call does.
func withTimeout[T any](ctx context.Context, d time.Duration, op func(context.Context) (T, error)) (T, error) {
	ctx, cancel := context.WithTimeout(ctx, d)
	defer cancel()
	return op(ctx)
}
