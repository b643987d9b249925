package ctxutil

import (
	"context"
	"time"
)

// Default returns context.Background() when ctx is nil.
func Default(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}

// Bounded applies d as a timeout unless ctx already carries an earlier deadline.
func Bounded(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	ctx = Default(ctx)
	if dl, ok := ctx.Deadline(); ok && time.Until(dl) <= d {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
