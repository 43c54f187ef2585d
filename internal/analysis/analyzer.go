// Package analysis turns raw captures into structured observations via a
// rate-limited, retryable call to a vision model.
package analysis

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_analyzer.go -package=mocks github.com/yutanakamurajp/Miru-Log/internal/analysis Analyzer,VisionModel

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/yutanakamurajp/Miru-Log/internal/llm"
	"github.com/yutanakamurajp/Miru-Log/internal/storage"
)

// VisionModel describes a screenshot. Implemented by llm.VisionClient and
// llm.GeminiClient.
type VisionModel interface {
	Describe(ctx context.Context, system, userText string, imagePNG []byte) (string, error)
}

// Analyzer produces an analysis result for a capture.
type Analyzer interface {
	Analyze(ctx context.Context, record *storage.CaptureRecord) (*storage.AnalysisRecord, error)
}

// Extraction carries the contextual artifacts the model read off the screen.
// It rides alongside the persisted record so the summarizer can merge it with
// its own heuristics.
type Extraction struct {
	Files        []string
	Repositories []string
	URLs         []string
}

// ModelAnalyzer analyzes captures with a vision model, applying the request
// spacing throttle and the rate-limit retry protocol.
type ModelAnalyzer struct {
	model   VisionModel
	retrier *retrier
	spacing time.Duration
	sleep   func(ctx context.Context, d time.Duration) error
}

// NewModelAnalyzer creates a ModelAnalyzer. spacing is an optional fixed
// pre-request delay, independent of retry backoff.
func NewModelAnalyzer(model VisionModel, maxRetries int, buffer, spacing time.Duration) *ModelAnalyzer {
	return &ModelAnalyzer{
		model:   model,
		retrier: newRetrier(maxRetries, buffer),
		spacing: spacing,
		sleep:   sleepContext,
	}
}

// Analyze reads the capture image, requests a classification, and normalizes
// the response. Malformed model output degrades to a low-confidence result
// instead of failing; a missing image fails with ErrNotFound.
func (a *ModelAnalyzer) Analyze(ctx context.Context, record *storage.CaptureRecord) (*storage.AnalysisRecord, error) {
	image, err := os.ReadFile(record.ImagePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, record.ImagePath)
		}
		return nil, fmt.Errorf("failed to read capture image: %w", err)
	}

	if a.spacing > 0 {
		if err := a.sleep(ctx, a.spacing); err != nil {
			return nil, err
		}
	}

	userText := fmt.Sprintf("Timestamp: %s\nWindow: %s\nApplication: %s\n",
		record.CapturedAt.Format(time.RFC3339), record.WindowTitle, record.ActiveApplication)

	text, err := a.retrier.do(ctx, func(ctx context.Context) (string, error) {
		return a.model.Describe(ctx, llm.SystemPrompt, userText, image)
	})
	if err != nil {
		return nil, err
	}

	result, _ := resultFromText(record.ID, text)
	return result, nil
}

// ParseExtraction recovers the contextual artifacts from a stored raw
// response. The summarizer merges these with its own heuristics.
func ParseExtraction(raw string) Extraction {
	p := parsePayload(raw)
	return Extraction{
		Files:        p.ObservedFiles,
		Repositories: p.ObservedRepositories,
		URLs:         p.ObservedURLs,
	}
}

// resultFromText normalizes raw model output into a persistable record and
// the contextual extraction.
func resultFromText(captureID int64, text string) (*storage.AnalysisRecord, *Extraction) {
	p := parsePayload(text)
	record := &storage.AnalysisRecord{
		CaptureID:   captureID,
		Description: p.Description,
		PrimaryTask: p.PrimaryTask,
		Confidence:  p.Confidence,
		Tags:        p.Tags,
		RawResponse: text,
	}
	extraction := &Extraction{
		Files:        p.ObservedFiles,
		Repositories: p.ObservedRepositories,
		URLs:         p.ObservedURLs,
	}
	return record, extraction
}
