package scraper

import (
	"context"
	"math/rand"
	"time"
)

// RandomDelay sleeps for a random duration between min and max, returning
// early if the context is done. Crawls pace themselves with this so request
// timing looks human.
func RandomDelay(ctx context.Context, min, max time.Duration) error {
	if max < min {
		max = min
	}
	delay := min
	if span := max - min; span > 0 {
		delay += time.Duration(rand.Int63n(int64(span)))
	}

	select {
	case <-time.After(delay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
