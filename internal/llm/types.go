package llm

import "fmt"

// SystemPrompt is the instruction sent with every capture. The response is
// expected to be a single JSON object, but callers must not rely on that.
const SystemPrompt = `You are Miru-Log, a meticulous self-tracking assistant. You receive desktop screenshots and contextual metadata.
Analyze what the user was doing. Respond strictly as compact JSON with keys:
  - description: 1 sentence summary of the activity.
  - primary_task: concise task label (<=6 words).
  - tags: array of activity tags/keywords.
  - confidence: float between 0 and 1 reflecting your certainty.
  - observed_files: array of file paths/names you can read from the screenshot (if any).
  - observed_repositories: array of repository/workspace names you can read from the screenshot (if any).
  - observed_urls: array of http(s) URLs you can read from the screenshot (if any).
Focus on observable actions only.
If you cannot confidently read items, return empty arrays for those keys.`

// StatusError is an upstream model failure carrying the HTTP status code, so
// rate limiting can be classified from the code instead of message text.
type StatusError struct {
	Code       int
	Body       string
	RetryAfter float64 // seconds, 0 when the server did not suggest a delay
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("model request failed with status %d: %s", e.Code, e.Body)
}
