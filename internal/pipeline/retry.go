package pipeline

import (
	"errors"
	"math/rand/v2"
	"time"

	"github.com/dgallion1/learnaloud/internal/arxiv"
)

// IsRetryable checks if an error is worth retrying.
func IsRetryable(err error) bool {
	var retryErr *arxiv.RetryableError
	return errors.As(err, &retryErr)
}

// retryDelay prefers the server's Retry-After over the computed backoff.
func retryDelay(err error, attempt int, backoff func(int) time.Duration) time.Duration {
	var retryErr *arxiv.RetryableError
	if errors.As(err, &retryErr) && retryErr.RetryAfter > 0 {
		return min(retryErr.RetryAfter, maxBackoff)
	}
	return backoff(attempt)
}

const maxBackoff = 30 * time.Second

// Backoff returns a duration for attempt n (0-indexed) with jitter.
func Backoff(attempt int) time.Duration {
	base := time.Duration(1<<uint(attempt)) * time.Second
	if base > maxBackoff {
		base = maxBackoff
	}
	jitter := time.Duration(rand.Int64N(int64(base) / 2))
	return base + jitter
}

const MaxRetries = 3
