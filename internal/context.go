package internal

import (
	"context"
	"time"
)

// WithTimeout returns a context with timeout, defaulting to 15 seconds if
// duration is zero or negative. Used on every gateway call so an unresponsive
// gateway surfaces as a network error instead of hanging the request.
func WithTimeout(ctx context.Context, duration time.Duration) (context.Context, context.CancelFunc) {
	if duration <= 0 {
		duration = 15 * time.Second
	}
	return context.WithTimeout(ctx, duration)
}
