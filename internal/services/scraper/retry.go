package scraper

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
)

// RetryPolicy retries an operation with exponential backoff.
type RetryPolicy struct {
	MaxRetries int
	BaseDelay  time.Duration
	Logger     arbor.ILogger
}

// Do runs fn up to MaxRetries+1 times, doubling the delay between attempts.
// It stops early when the context is done and returns the last error.
func (p RetryPolicy) Do(ctx context.Context, label string, fn func(context.Context) error) error {
	maxRetries := p.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}
	baseDelay := p.BaseDelay
	if baseDelay <= 0 {
		baseDelay = time.Second
	}

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			if lastErr != nil {
				return fmt.Errorf("%s cancelled after %d attempts: %w", label, attempt, lastErr)
			}
			return err
		}

		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}

		if attempt < maxRetries {
			delay := baseDelay * (1 << attempt)
			p.Logger.Warn().
				Str("operation", label).
				Int("attempt", attempt+1).
				Dur("retry_in", delay).
				Err(lastErr).
				Msg("Attempt failed, retrying")

			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return fmt.Errorf("%s cancelled during backoff: %w", label, lastErr)
			}
		}
	}

	p.Logger.Error().Str("operation", label).Err(lastErr).Msg("All retry attempts failed")
	return lastErr
}
