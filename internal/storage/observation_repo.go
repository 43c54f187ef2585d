package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_observation_store.go -package=mocks github.com/yutanakamurajp/Miru-Log/internal/storage ObservationStore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrNotFound is returned when a record is not found.
	ErrNotFound = errors.New("record not found")
)

// ObservationStore defines the interface for capture and analysis persistence.
type ObservationStore interface {
	// AddCapture persists a capture and returns its assigned id.
	AddCapture(ctx context.Context, record *CaptureRecord) (int64, error)
	// PendingCaptures returns captures without an analysis result,
	// ordered by captured_at ascending, limited to the given count.
	PendingCaptures(ctx context.Context, limit int) ([]CaptureRecord, error)
	// PendingCount returns the total number of unanalyzed captures.
	PendingCount(ctx context.Context) (int, error)
	// PendingCountsByDay returns per-day pending counts, newest day first.
	PendingCountsByDay(ctx context.Context) ([]PendingDay, error)
	// SaveAnalysis upserts the analysis row for a capture.
	SaveAnalysis(ctx context.Context, result *AnalysisRecord) error
	// DailyObservations returns analyzed captures for a YYYY-MM-DD date,
	// ordered by captured_at ascending.
	DailyObservations(ctx context.Context, date string) ([]Observation, error)
	// Observations returns analyzed captures by id, preserving input order.
	Observations(ctx context.Context, ids []int64) ([]Observation, error)
}

// ObservationRepo provides SQLite-backed observation persistence.
// It implements the ObservationStore interface.
type ObservationRepo struct {
	db *sql.DB
}

// NewObservationRepo creates a new ObservationRepo.
func NewObservationRepo(db *sql.DB) *ObservationRepo {
	return &ObservationRepo{db: db}
}

// AddCapture persists a capture and returns its assigned id.
func (r *ObservationRepo) AddCapture(ctx context.Context, record *CaptureRecord) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO captures (captured_at, image_path, window_title, active_application, session_state, hash)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		record.CapturedAt.Format(time.RFC3339),
		record.ImagePath,
		record.WindowTitle,
		record.ActiveApplication,
		record.SessionState,
		record.Hash,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert capture: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read capture id: %w", err)
	}
	record.ID = id
	return id, nil
}

// PendingCaptures returns captures lacking an analysis row, oldest first.
func (r *ObservationRepo) PendingCaptures(ctx context.Context, limit int) ([]CaptureRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, captured_at, image_path, window_title, active_application, session_state, hash
		 FROM captures
		 WHERE id NOT IN (SELECT capture_id FROM analysis)
		 ORDER BY captured_at ASC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query pending captures: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var records []CaptureRecord
	for rows.Next() {
		record, err := scanCapture(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate pending captures: %w", err)
	}
	return records, nil
}

// PendingCount returns the total number of unanalyzed captures.
func (r *ObservationRepo) PendingCount(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM captures WHERE id NOT IN (SELECT capture_id FROM analysis)`,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count pending captures: %w", err)
	}
	return count, nil
}

// PendingCountsByDay returns per-day pending counts, newest day first.
func (r *ObservationRepo) PendingCountsByDay(ctx context.Context) ([]PendingDay, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT substr(captured_at, 1, 10) AS day, COUNT(*)
		 FROM captures
		 WHERE id NOT IN (SELECT capture_id FROM analysis)
		 GROUP BY day
		 ORDER BY day DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query pending counts: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var days []PendingDay
	for rows.Next() {
		var day PendingDay
		if err := rows.Scan(&day.Date, &day.Count); err != nil {
			return nil, fmt.Errorf("failed to scan pending count: %w", err)
		}
		days = append(days, day)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate pending counts: %w", err)
	}
	return days, nil
}

// SaveAnalysis upserts the analysis row for a capture. Overwriting an existing
// row for the same capture id is permitted (idempotent re-analysis).
func (r *ObservationRepo) SaveAnalysis(ctx context.Context, result *AnalysisRecord) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO analysis (capture_id, description, primary_task, confidence, tags, raw_response)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		result.CaptureID,
		result.Description,
		result.PrimaryTask,
		result.Confidence,
		strings.Join(result.Tags, ","),
		result.RawResponse,
	)
	if err != nil {
		return fmt.Errorf("failed to save analysis: %w", err)
	}
	return nil
}

// DailyObservations returns analyzed captures for a YYYY-MM-DD date.
func (r *ObservationRepo) DailyObservations(ctx context.Context, date string) ([]Observation, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT c.id, c.captured_at, c.image_path, c.window_title, c.active_application, c.session_state, c.hash,
		        a.description, a.primary_task, a.confidence, a.tags, a.raw_response
		 FROM captures c
		 JOIN analysis a ON c.id = a.capture_id
		 WHERE substr(c.captured_at, 1, 10) = ?
		 ORDER BY c.captured_at ASC`,
		date,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily observations: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	return scanObservations(rows)
}

// Observations returns analyzed captures by id, preserving input order.
func (r *ObservationRepo) Observations(ctx context.Context, ids []int64) ([]Observation, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT c.id, c.captured_at, c.image_path, c.window_title, c.active_application, c.session_state, c.hash,
		        a.description, a.primary_task, a.confidence, a.tags, a.raw_response
		 FROM captures c
		 JOIN analysis a ON c.id = a.capture_id
		 WHERE c.id IN (`+placeholders+`)`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query observations: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	observations, err := scanObservations(rows)
	if err != nil {
		return nil, err
	}

	byID := make(map[int64]Observation, len(observations))
	for _, obs := range observations {
		byID[obs.Capture.ID] = obs
	}
	ordered := make([]Observation, 0, len(observations))
	for _, id := range ids {
		if obs, ok := byID[id]; ok {
			ordered = append(ordered, obs)
		}
	}
	return ordered, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCapture(row rowScanner) (*CaptureRecord, error) {
	var record CaptureRecord
	var capturedAt string
	var windowTitle, activeApp, sessionState, hash sql.NullString

	if err := row.Scan(&record.ID, &capturedAt, &record.ImagePath, &windowTitle, &activeApp, &sessionState, &hash); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan capture: %w", err)
	}

	ts, err := time.Parse(time.RFC3339, capturedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse captured_at timestamp: %w", err)
	}
	record.CapturedAt = ts
	record.WindowTitle = windowTitle.String
	record.ActiveApplication = activeApp.String
	record.SessionState = sessionState.String
	if record.SessionState == "" {
		record.SessionState = "active"
	}
	record.Hash = hash.String
	return &record, nil
}

func scanObservations(rows *sql.Rows) ([]Observation, error) {
	var observations []Observation
	for rows.Next() {
		var obs Observation
		var capturedAt string
		var windowTitle, activeApp, sessionState, hash sql.NullString
		var task, tags, rawResponse sql.NullString
		var confidence sql.NullFloat64

		err := rows.Scan(
			&obs.Capture.ID, &capturedAt, &obs.Capture.ImagePath, &windowTitle, &activeApp, &sessionState, &hash,
			&obs.Analysis.Description, &task, &confidence, &tags, &rawResponse,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan observation: %w", err)
		}

		ts, err := time.Parse(time.RFC3339, capturedAt)
		if err != nil {
			// A single malformed row must not abort the whole day's aggregation.
			continue
		}
		obs.Capture.CapturedAt = ts
		obs.Capture.WindowTitle = windowTitle.String
		obs.Capture.ActiveApplication = activeApp.String
		obs.Capture.SessionState = sessionState.String
		obs.Capture.Hash = hash.String

		obs.Analysis.CaptureID = obs.Capture.ID
		obs.Analysis.PrimaryTask = task.String
		obs.Analysis.Confidence = confidence.Float64
		obs.Analysis.RawResponse = rawResponse.String
		if tags.String != "" {
			for _, tag := range strings.Split(tags.String, ",") {
				if trimmed := strings.TrimSpace(tag); trimmed != "" {
					obs.Analysis.Tags = append(obs.Analysis.Tags, trimmed)
				}
			}
		}

		observations = append(observations, obs)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate observations: %w", err)
	}
	return observations, nil
}
