package analysis

import (
	"errors"
	"regexp"
	"strconv"
	"strings"

	"github.com/yutanakamurajp/Miru-Log/internal/llm"
)

var (
	// ErrNotFound is returned when the referenced capture image is missing.
	ErrNotFound = errors.New("capture image not found")
	// ErrRateLimited wraps the last upstream error once retries are exhausted.
	ErrRateLimited = errors.New("rate limited")
)

var (
	// Server-suggested delays, e.g. Gemini's `retry_delay { seconds: 40 }`,
	// a JSON `"retryDelay": "7.5s"`, or prose like "Please retry in 21.5s".
	retryDelayBlockRe = regexp.MustCompile(`retry_delay\s*\{\s*seconds:\s*(\d+)`)
	retryDelayJSONRe  = regexp.MustCompile(`"retryDelay"\s*:\s*"([0-9.]+)s"`)
	retryInRe         = regexp.MustCompile(`[Rr]etry in ([0-9.]+)\s*s`)
)

// isRateLimited classifies an upstream failure as rate limiting. The status
// code is authoritative when available; string matching is the fallback for
// opaque SDK errors.
func isRateLimited(err error) bool {
	var statusErr *llm.StatusError
	if errors.As(err, &statusErr) {
		if statusErr.Code == 429 {
			return true
		}
	}

	message := strings.ToLower(err.Error())
	for _, pattern := range []string{"429", "quota", "rate limit", "resource exhausted", "resource_exhausted"} {
		if strings.Contains(message, pattern) {
			return true
		}
	}
	return false
}

// suggestedDelaySeconds extracts a server-suggested wait from the error, or 0
// if none was provided.
func suggestedDelaySeconds(err error) float64 {
	var statusErr *llm.StatusError
	if errors.As(err, &statusErr) && statusErr.RetryAfter > 0 {
		return statusErr.RetryAfter
	}

	message := err.Error()
	if m := retryDelayBlockRe.FindStringSubmatch(message); m != nil {
		if seconds, err := strconv.ParseFloat(m[1], 64); err == nil {
			return seconds
		}
	}
	if m := retryDelayJSONRe.FindStringSubmatch(message); m != nil {
		if seconds, err := strconv.ParseFloat(m[1], 64); err == nil {
			return seconds
		}
	}
	if m := retryInRe.FindStringSubmatch(message); m != nil {
		if seconds, err := strconv.ParseFloat(m[1], 64); err == nil {
			return seconds
		}
	}
	return 0
}
