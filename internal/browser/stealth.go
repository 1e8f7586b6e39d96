package browser

import (
	"context"
	"time"

	"go-critique-crawler/internal/config"
)

// RandomDelay waits for a random duration inside r. Returns early when ctx is done.
func RandomDelay(ctx context.Context, r config.Range) {
	d := r.Random()
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
