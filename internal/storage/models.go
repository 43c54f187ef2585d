package storage

import "time"

// CaptureRecord represents one sampled snapshot of screen state.
// The ID is assigned when the record is persisted, not at sampling time.
type CaptureRecord struct {
	ID                int64
	CapturedAt        time.Time
	ImagePath         string
	WindowTitle       string
	ActiveApplication string
	SessionState      string // "active" unless the scheduler knows otherwise
	Hash              string // SHA256 hex digest of the image file
}

// AnalysisRecord represents the model's classification of a capture.
// There is at most one per capture; re-analysis overwrites the previous row.
type AnalysisRecord struct {
	CaptureID   int64
	Description string
	PrimaryTask string
	Confidence  float64
	Tags        []string
	RawResponse string
}

// Observation is a capture joined with its analysis result.
type Observation struct {
	Capture  CaptureRecord
	Analysis AnalysisRecord
}

// PendingDay is the number of unanalyzed captures for one calendar day.
type PendingDay struct {
	Date  string // YYYY-MM-DD
	Count int
}
