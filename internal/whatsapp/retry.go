package whatsapp

import (
	"context"
	"errors"
	"time"
)

// RetryConfig tunes CallWithRetry. Zero values take the defaults below.
type RetryConfig struct {
	MaxAttempts int
	BaseDelay   time.Duration

	// sleep is injectable for deterministic tests.
	sleep func(ctx context.Context, d time.Duration) error
}

const (
	defaultMaxAttempts = 3
	defaultBaseDelay   = time.Second
)

func (c RetryConfig) withDefaults() RetryConfig {
	out := c
	if out.MaxAttempts <= 0 {
		out.MaxAttempts = defaultMaxAttempts
	}
	if out.BaseDelay <= 0 {
		out.BaseDelay = defaultBaseDelay
	}
	if out.sleep == nil {
		out.sleep = sleepCtx
	}
	return out
}

// CallWithRetry runs fn up to MaxAttempts times.
//
// Classification:
// - An *APIError with a 4xx status is permanent: returned immediately
//   without consuming further attempts.
// - Everything else (5xx, network error, missing status) is retryable.
//
// Between retryable failures the delay grows linearly: BaseDelay * attempt
// (1-indexed). No delay after the final attempt; its error is returned.
//
// The wrapper holds no locks and touches no shared state; concurrent calls
// for independent messages are safe.
func CallWithRetry(ctx context.Context, cfg RetryConfig, fn func(ctx context.Context) (string, error)) (string, error) {
	cfg = cfg.withDefaults()

	var lastErr error
	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		id, err := fn(ctx)
		if err == nil {
			return id, nil
		}
		lastErr = err

		var apiErr *APIError
		if errors.As(err, &apiErr) && !apiErr.Retryable() {
			return "", err
		}

		if attempt < cfg.MaxAttempts {
			if err := cfg.sleep(ctx, cfg.BaseDelay*time.Duration(attempt)); err != nil {
				return "", err
			}
		}
	}
	return "", lastErr
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
