package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/yutanakamurajp/Miru-Log/internal/contextutil"
	"github.com/yutanakamurajp/Miru-Log/internal/search"
	"github.com/yutanakamurajp/Miru-Log/internal/storage"
	"github.com/yutanakamurajp/Miru-Log/internal/summary"
)

// statusResponse reports analysis progress: how many captures still lack a
// result, broken down per day.
type statusResponse struct {
	PendingTotal int                  `json:"pending_total"`
	PendingByDay []storage.PendingDay `json:"pending_by_day"`
}

type searchHit struct {
	CaptureID   int64   `json:"capture_id"`
	CapturedAt  string  `json:"captured_at"`
	Task        string  `json:"task"`
	Description string  `json:"description"`
	Score       float32 `json:"score"`
}

type handlers struct {
	store        storage.ObservationStore
	searchEngine *search.Engine // nil when search is disabled
	interval     time.Duration
}

func (h *handlers) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handlers) status(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	total, err := h.store.PendingCount(ctx)
	if err != nil {
		logger.ErrorContext(ctx, "failed to count pending captures", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to query pending captures")
		return
	}
	byDay, err := h.store.PendingCountsByDay(ctx)
	if err != nil {
		logger.ErrorContext(ctx, "failed to count pending captures by day", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to query pending captures")
		return
	}
	if byDay == nil {
		byDay = []storage.PendingDay{}
	}

	writeJSON(w, http.StatusOK, statusResponse{PendingTotal: total, PendingByDay: byDay})
}

// dailySummary builds the summary artifact for the requested date on the fly.
func (h *handlers) dailySummary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	date := chi.URLParam(r, "date")
	if _, err := time.Parse("2006-01-02", date); err != nil {
		writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}

	observations, err := h.store.DailyObservations(ctx, date)
	if err != nil {
		contextutil.LoggerFromContext(ctx).ErrorContext(ctx, "failed to load observations", "date", date, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load observations")
		return
	}
	if len(observations) == 0 {
		writeError(w, http.StatusNotFound, "no analyzed captures for "+date)
		return
	}

	writeJSON(w, http.StatusOK, summary.BuildDailySummary(observations, date, h.interval))
}

func (h *handlers) search(w http.ResponseWriter, r *http.Request) {
	if h.searchEngine == nil {
		writeError(w, http.StatusNotImplemented, "semantic search is not configured")
		return
	}

	query := r.URL.Query().Get("q")
	if query == "" {
		writeError(w, http.StatusBadRequest, "q parameter is required")
		return
	}
	k := 10
	if raw := r.URL.Query().Get("k"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeError(w, http.StatusBadRequest, "k must be a positive integer")
			return
		}
		k = parsed
	}

	ctx := r.Context()
	matches, err := h.searchEngine.Search(ctx, query, k)
	if err != nil {
		contextutil.LoggerFromContext(ctx).ErrorContext(ctx, "search failed", "error", err)
		writeError(w, http.StatusInternalServerError, "search failed")
		return
	}

	hits := make([]searchHit, 0, len(matches))
	for _, match := range matches {
		hits = append(hits, searchHit{
			CaptureID:   match.Observation.Capture.ID,
			CapturedAt:  match.Observation.Capture.CapturedAt.Format(time.RFC3339),
			Task:        match.Observation.Analysis.PrimaryTask,
			Description: match.Observation.Analysis.Description,
			Score:       match.Score,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"hits": hits})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
