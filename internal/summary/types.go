// Package summary folds a day of analyzed captures into contiguous activity
// segments with derived blockers, follow-ups, and dev context.
package summary

import "time"

// Segment is a maximal run of consecutive observations sharing the same
// normalized task. Segments are rebuilt from scratch on every run.
type Segment struct {
	Period          string   `json:"period"` // "HH:MM - HH:MM"
	Task            string   `json:"task"`
	DurationMinutes float64  `json:"duration_minutes"`
	Highlights      []string `json:"highlights"`

	Start time.Time `json:"-"`
	End   time.Time `json:"-"`
}

// DevContext is the set of files, repositories, and URLs inferred as visible
// on screen across the day.
type DevContext struct {
	ObservedFiles        []string `json:"observed_files"`
	ObservedRepositories []string `json:"observed_repositories"`
	ObservedURLs         []string `json:"observed_urls"`
}

// TaskTotal is one row of the per-task duration aggregation.
type TaskTotal struct {
	Task    string  `json:"task"`
	Minutes float64 `json:"minutes"`
}

// DailySummary is the artifact consumed by the report renderer and calendar
// exporter. Field layout is a published contract.
type DailySummary struct {
	Date               string      `json:"date"`
	TotalActiveMinutes float64     `json:"total_active_minutes"`
	DevContext         *DevContext `json:"dev_context,omitempty"`
	Segments           []Segment   `json:"segments"`
	BlockingIssues     []string    `json:"blocking_issues"`
	FollowUps          []string    `json:"follow_ups"`
}
