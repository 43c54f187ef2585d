package analysis

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"
)

// backoffCap bounds the exponential component of the retry wait, in seconds.
const backoffCap = 60.0

// retrier runs a request with the rate-limit retry protocol: non-rate-limited
// failures propagate immediately; rate-limited ones wait and retry until
// maxRetries sleeps have been spent.
type retrier struct {
	maxRetries int
	buffer     time.Duration
	sleep      func(ctx context.Context, d time.Duration) error
	jitter     func() float64 // uniform in [0,1)
}

func newRetrier(maxRetries int, buffer time.Duration) *retrier {
	return &retrier{
		maxRetries: maxRetries,
		buffer:     buffer,
		sleep:      sleepContext,
		jitter:     rand.Float64,
	}
}

// do invokes fn, retrying rate-limited failures. The wait before each retry
// prefers a server-suggested delay; otherwise it is
// min(cap, 2^attempt) + jitter + buffer.
func (r *retrier) do(ctx context.Context, fn func(ctx context.Context) (string, error)) (string, error) {
	var lastErr error
	for attempt := 0; ; attempt++ {
		text, err := fn(ctx)
		if err == nil {
			return text, nil
		}
		if !isRateLimited(err) {
			return "", err
		}
		lastErr = err

		if attempt >= r.maxRetries {
			return "", fmt.Errorf("%w: retries exhausted after %d attempts: %v", ErrRateLimited, attempt+1, lastErr)
		}

		wait := suggestedDelaySeconds(err)
		if wait <= 0 {
			wait = math.Min(backoffCap, math.Pow(2, float64(attempt))) + r.jitter()
		}
		delay := time.Duration(wait*float64(time.Second)) + r.buffer

		if err := r.sleep(ctx, delay); err != nil {
			return "", err
		}
	}
}

// sleepContext sleeps for d but returns early if the context is cancelled, so
// a shutdown signal interrupts a backoff wait instead of sitting it out.
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
