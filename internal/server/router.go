// Package server exposes read-only progress and summary queries over HTTP
// while the capture and analysis processes write to the same store.
package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/yutanakamurajp/Miru-Log/internal/search"
	"github.com/yutanakamurajp/Miru-Log/internal/storage"
)

// Deps holds dependencies for the HTTP router. SearchEngine may be nil.
type Deps struct {
	Store        storage.ObservationStore
	SearchEngine *search.Engine
	Interval     time.Duration
}

// NewRouter creates the HTTP router.
func NewRouter(deps *Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(LoggerMiddleware)

	h := &handlers{
		store:        deps.Store,
		searchEngine: deps.SearchEngine,
		interval:     deps.Interval,
	}

	r.Get("/healthz", h.health)
	r.Route("/api", func(r chi.Router) {
		r.Get("/status", h.status)
		r.Get("/summary/{date}", h.dailySummary)
		r.Get("/search", h.search)
	})

	return r
}
