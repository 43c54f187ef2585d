package analysis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/yutanakamurajp/Miru-Log/internal/storage"
)

// Archiver disposes of a capture image after successful analysis.
// Implemented by capture.Manager.
type Archiver interface {
	Archive(record *storage.CaptureRecord, deleteOriginal bool) (string, error)
}

// Indexer feeds analyzed observations into the optional semantic search
// index. Implemented by search.Indexer.
type Indexer interface {
	IndexObservation(ctx context.Context, capture *storage.CaptureRecord, result *storage.AnalysisRecord) error
}

// Runner pulls pending captures in bounded batches and analyzes them
// sequentially, oldest first. Processing is deliberately serial: both the
// backoff discipline and chronological ordering depend on one in-flight
// request at a time.
type Runner struct {
	store       storage.ObservationStore
	analyzer    Analyzer
	archiver    Archiver
	indexer     Indexer // nil when search is disabled
	batchSize   int
	deleteAfter bool
}

// NewRunner creates a batch Runner. indexer may be nil.
func NewRunner(store storage.ObservationStore, analyzer Analyzer, archiver Archiver, indexer Indexer, batchSize int, deleteAfter bool) *Runner {
	if batchSize <= 0 {
		batchSize = 20
	}
	return &Runner{
		store:       store,
		analyzer:    analyzer,
		archiver:    archiver,
		indexer:     indexer,
		batchSize:   batchSize,
		deleteAfter: deleteAfter,
	}
}

// Run processes one batch of pending captures, or keeps pulling batches until
// none remain when untilEmpty is set. Rate-limit exhaustion stops the entire
// run; other per-capture failures are logged and the run continues. Skipped
// captures stay pending, so a pass that saves nothing would re-fetch the same
// batch forever; untilEmpty stops instead once a full pass makes no progress.
func (r *Runner) Run(ctx context.Context, untilEmpty bool) error {
	for {
		pending, err := r.store.PendingCaptures(ctx, r.batchSize)
		if err != nil {
			return fmt.Errorf("failed to load pending captures: %w", err)
		}
		if len(pending) == 0 {
			slog.Info("No pending captures to analyze")
			return nil
		}

		slog.Info("Analyzing pending captures", "count", len(pending))
		saved, err := r.runBatch(ctx, pending)
		if err != nil {
			return err
		}

		if !untilEmpty {
			return nil
		}
		if saved == 0 {
			slog.Warn("Batch made no progress; stopping run", "skipped", len(pending))
			return nil
		}
	}
}

// runBatch analyzes each capture in order and returns how many analyses were
// saved.
func (r *Runner) runBatch(ctx context.Context, pending []storage.CaptureRecord) (int, error) {
	saved := 0
	for i := range pending {
		record := &pending[i]

		result, err := r.analyzer.Analyze(ctx, record)
		if err != nil {
			switch {
			case errors.Is(err, ErrRateLimited):
				// Sustained throttling: stop the whole run, not just this batch.
				slog.Warn("Rate limited; stopping run", "capture_id", record.ID, "error", err)
				return saved, err
			case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
				return saved, err
			case errors.Is(err, ErrNotFound):
				slog.Warn("Capture image missing; skipping", "capture_id", record.ID, "path", record.ImagePath)
				continue
			default:
				slog.Error("Failed to analyze capture", "capture_id", record.ID, "error", err)
				continue
			}
		}

		if err := r.store.SaveAnalysis(ctx, result); err != nil {
			return saved, fmt.Errorf("failed to save analysis for capture %d: %w", record.ID, err)
		}
		saved++

		if _, err := r.archiver.Archive(record, r.deleteAfter); err != nil {
			slog.Warn("Failed to archive capture image", "capture_id", record.ID, "error", err)
		}

		if r.indexer != nil {
			if err := r.indexer.IndexObservation(ctx, record, result); err != nil {
				slog.Warn("Failed to index observation for search", "capture_id", record.ID, "error", err)
			}
		}

		slog.Info("Capture analyzed", "capture_id", record.ID, "task", result.PrimaryTask)
	}
	return saved, nil
}
