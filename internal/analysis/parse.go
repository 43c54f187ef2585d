package analysis

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
)

// defaultConfidence is assigned when the model omitted confidence or returned
// something non-numeric, and to raw-text fallback results.
const defaultConfidence = 0.6

// unclassifiedTask labels results where the model supplied no task.
const unclassifiedTask = "Unclassified"

var braceObjectRe = regexp.MustCompile(`\{[\s\S]*\}`)

// payload is the structured form of a model response. Parsed reports whether
// the response text actually contained one; when false every field holds its
// fallback value and Description carries the raw text.
type payload struct {
	Parsed               bool
	Description          string
	PrimaryTask          string
	Tags                 []string
	Confidence           float64
	ObservedFiles        []string
	ObservedRepositories []string
	ObservedURLs         []string
}

// parsePayload turns raw model output into a payload, degrading instead of
// failing: fenced blocks are stripped, a brace-delimited object is salvaged
// from surrounding chatter, and unparsable text becomes the description.
func parsePayload(text string) payload {
	cleaned := stripFence(strings.TrimSpace(text))

	fields := decodeObject(cleaned)
	if fields == nil {
		if m := braceObjectRe.FindString(cleaned); m != "" {
			fields = decodeObject(m)
		}
	}
	if fields == nil {
		return payload{
			Parsed:      false,
			Description: strings.TrimSpace(text),
			PrimaryTask: unclassifiedTask,
			Confidence:  defaultConfidence,
		}
	}

	p := payload{
		Parsed:               true,
		Description:          stringField(fields, "description"),
		PrimaryTask:          stringField(fields, "primary_task"),
		Tags:                 stringSliceField(fields, "tags"),
		Confidence:           confidenceField(fields),
		ObservedFiles:        stringSliceField(fields, "observed_files"),
		ObservedRepositories: stringSliceField(fields, "observed_repositories"),
		ObservedURLs:         stringSliceField(fields, "observed_urls"),
	}
	if p.Description == "" {
		p.Description = strings.TrimSpace(text)
	}
	if p.PrimaryTask == "" {
		p.PrimaryTask = unclassifiedTask
	}
	return p
}

// stripFence removes a leading ```/```json fence and everything after the
// closing fence.
func stripFence(text string) string {
	if !strings.HasPrefix(text, "```") {
		return text
	}
	rest := text
	if idx := strings.Index(rest, "\n"); idx >= 0 {
		rest = rest[idx+1:]
	} else {
		rest = strings.TrimPrefix(rest, "```")
	}
	if idx := strings.Index(rest, "```"); idx >= 0 {
		rest = rest[:idx]
	}
	return strings.TrimSpace(rest)
}

func decodeObject(text string) map[string]any {
	var fields map[string]any
	if err := json.Unmarshal([]byte(text), &fields); err != nil {
		return nil
	}
	return fields
}

func stringField(fields map[string]any, key string) string {
	if value, ok := fields[key].(string); ok {
		return strings.TrimSpace(value)
	}
	return ""
}

func stringSliceField(fields map[string]any, key string) []string {
	raw, ok := fields[key].([]any)
	if !ok {
		return nil
	}
	var values []string
	for _, item := range raw {
		switch v := item.(type) {
		case string:
			if trimmed := strings.TrimSpace(v); trimmed != "" {
				values = append(values, trimmed)
			}
		case float64:
			values = append(values, strconv.FormatFloat(v, 'f', -1, 64))
		}
	}
	return values
}

func confidenceField(fields map[string]any) float64 {
	switch v := fields["confidence"].(type) {
	case float64:
		if v >= 0 && v <= 1 {
			return v
		}
	case string:
		if parsed, err := strconv.ParseFloat(v, 64); err == nil && parsed >= 0 && parsed <= 1 {
			return parsed
		}
	}
	return defaultConfidence
}
