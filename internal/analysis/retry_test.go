package analysis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/yutanakamurajp/Miru-Log/internal/llm"
)

func newTestRetrier(maxRetries int, buffer time.Duration, slept *[]time.Duration) *retrier {
	r := newRetrier(maxRetries, buffer)
	r.sleep = func(_ context.Context, d time.Duration) error {
		*slept = append(*slept, d)
		return nil
	}
	r.jitter = func() float64 { return 0.5 }
	return r
}

func TestRetrier_SuccessFirstTry(t *testing.T) {
	var slept []time.Duration
	r := newTestRetrier(3, time.Second, &slept)

	text, err := r.do(context.Background(), func(ctx context.Context) (string, error) {
		return "ok", nil
	})
	if err != nil {
		t.Fatalf("do() error = %v", err)
	}
	if text != "ok" {
		t.Errorf("do() = %q, want %q", text, "ok")
	}
	if len(slept) != 0 {
		t.Errorf("do() slept %d times, want 0", len(slept))
	}
}

func TestRetrier_NonRateLimitedDoesNotRetry(t *testing.T) {
	var slept []time.Duration
	r := newTestRetrier(3, time.Second, &slept)

	calls := 0
	wantErr := errors.New("connection refused")
	_, err := r.do(context.Background(), func(ctx context.Context) (string, error) {
		calls++
		return "", wantErr
	})

	if !errors.Is(err, wantErr) {
		t.Errorf("do() error = %v, want %v", err, wantErr)
	}
	if calls != 1 {
		t.Errorf("fn called %d times, want 1", calls)
	}
	if len(slept) != 0 {
		t.Errorf("do() slept %d times, want 0", len(slept))
	}
}

func TestRetrier_ExhaustsRetries(t *testing.T) {
	var slept []time.Duration
	buffer := 2 * time.Second
	r := newTestRetrier(3, buffer, &slept)

	calls := 0
	_, err := r.do(context.Background(), func(ctx context.Context) (string, error) {
		calls++
		return "", &llm.StatusError{Code: 429, Body: "quota exceeded"}
	})

	if !errors.Is(err, ErrRateLimited) {
		t.Fatalf("do() error = %v, want ErrRateLimited", err)
	}
	// maxRetries sleeps, maxRetries+1 attempts.
	if calls != 4 {
		t.Errorf("fn called %d times, want 4", calls)
	}
	if len(slept) != 3 {
		t.Fatalf("do() slept %d times, want 3", len(slept))
	}

	// Each wait is min(60, 2^attempt) + jitter + buffer.
	maxWait := time.Duration((60+1)*float64(time.Second)) + buffer
	for i, d := range slept {
		if d <= 0 || d > maxWait {
			t.Errorf("slept[%d] = %v, want in (0, %v]", i, d, maxWait)
		}
	}
	// Exponential growth before the cap.
	if slept[0] >= slept[1] || slept[1] >= slept[2] {
		t.Errorf("waits not increasing: %v", slept)
	}
}

func TestRetrier_PrefersServerSuggestedDelay(t *testing.T) {
	var slept []time.Duration
	buffer := time.Second
	r := newTestRetrier(1, buffer, &slept)

	_, err := r.do(context.Background(), func(ctx context.Context) (string, error) {
		return "", &llm.StatusError{Code: 429, Body: "slow down", RetryAfter: 40}
	})

	if !errors.Is(err, ErrRateLimited) {
		t.Fatalf("do() error = %v, want ErrRateLimited", err)
	}
	if len(slept) != 1 {
		t.Fatalf("do() slept %d times, want 1", len(slept))
	}
	want := 40*time.Second + buffer
	if slept[0] != want {
		t.Errorf("slept[0] = %v, want %v", slept[0], want)
	}
}

func TestRetrier_RecoversAfterRetry(t *testing.T) {
	var slept []time.Duration
	r := newTestRetrier(3, 0, &slept)

	calls := 0
	text, err := r.do(context.Background(), func(ctx context.Context) (string, error) {
		calls++
		if calls < 3 {
			return "", errors.New("429 Too Many Requests")
		}
		return "done", nil
	})

	if err != nil {
		t.Fatalf("do() error = %v", err)
	}
	if text != "done" {
		t.Errorf("do() = %q, want %q", text, "done")
	}
	if len(slept) != 2 {
		t.Errorf("do() slept %d times, want 2", len(slept))
	}
}

func TestRetrier_CancelledDuringSleep(t *testing.T) {
	r := newRetrier(3, 0)
	r.jitter = func() float64 { return 0 }
	r.sleep = func(ctx context.Context, d time.Duration) error {
		return context.Canceled
	}

	_, err := r.do(context.Background(), func(ctx context.Context) (string, error) {
		return "", errors.New("rate limit hit")
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("do() error = %v, want context.Canceled", err)
	}
}

func TestSleepContext_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	err := sleepContext(ctx, time.Hour)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("sleepContext() error = %v, want context.Canceled", err)
	}
	if time.Since(start) > time.Second {
		t.Error("sleepContext() did not return promptly on cancellation")
	}
}

func TestIsRateLimited(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"status 429", &llm.StatusError{Code: 429, Body: "too many requests"}, true},
		{"status 500", &llm.StatusError{Code: 500, Body: "internal"}, false},
		{"429 substring", errors.New("got HTTP 429 from upstream"), true},
		{"quota message", errors.New("Quota exceeded for model"), true},
		{"rate limit message", errors.New("rate limit reached, slow down"), true},
		{"resource exhausted", errors.New("rpc error: RESOURCE_EXHAUSTED"), true},
		{"unrelated error", errors.New("connection reset by peer"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isRateLimited(tt.err); got != tt.want {
				t.Errorf("isRateLimited(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestSuggestedDelaySeconds(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want float64
	}{
		{"status error retry after", &llm.StatusError{Code: 429, RetryAfter: 12.5}, 12.5},
		{"retry_delay block", errors.New("quota exceeded retry_delay { seconds: 40 }"), 40},
		{"retryDelay json", errors.New(`rpc failed: {"retryDelay": "7.5s"}`), 7.5},
		{"retry in prose", errors.New("Please retry in 21.5s"), 21.5},
		{"no suggestion", errors.New("429 too many requests"), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := suggestedDelaySeconds(tt.err); got != tt.want {
				t.Errorf("suggestedDelaySeconds(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
