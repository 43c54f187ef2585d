// Package search provides optional semantic search over analyzed activity
// descriptions, backed by an embeddings endpoint and Qdrant.
package search

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/yutanakamurajp/Miru-Log/internal/storage"
	"github.com/yutanakamurajp/Miru-Log/internal/vectorstore"
)

// Embedder turns texts into vectors. Implemented by llm.EmbeddingsClient.
type Embedder interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Indexer writes analyzed observations into the vector collection.
type Indexer struct {
	embedder   Embedder
	vectors    vectorstore.VectorStore
	collection string
}

// NewIndexer creates an Indexer.
func NewIndexer(embedder Embedder, vectors vectorstore.VectorStore, collection string) *Indexer {
	return &Indexer{
		embedder:   embedder,
		vectors:    vectors,
		collection: collection,
	}
}

// IndexObservation embeds the observation's description and upserts it. The
// point id is derived from the capture id, so re-analysis overwrites the
// previous point instead of duplicating it.
func (i *Indexer) IndexObservation(ctx context.Context, capture *storage.CaptureRecord, result *storage.AnalysisRecord) error {
	text := result.Description
	if result.PrimaryTask != "" {
		text = result.PrimaryTask + ": " + text
	}

	vecs, err := i.embedder.EmbedTexts(ctx, []string{text})
	if err != nil {
		return fmt.Errorf("failed to embed observation: %w", err)
	}

	point := vectorstore.Point{
		ID:  pointID(capture.ID),
		Vec: vecs[0],
		Meta: map[string]any{
			"capture_id": capture.ID,
			"date":       capture.CapturedAt.Format("2006-01-02"),
			"task":       result.PrimaryTask,
		},
	}
	if err := i.vectors.Upsert(ctx, i.collection, []vectorstore.Point{point}); err != nil {
		return fmt.Errorf("failed to upsert observation point: %w", err)
	}
	return nil
}

// Match is one search hit joined back to its stored observation.
type Match struct {
	Observation storage.Observation
	Score       float32
}

// Engine answers semantic queries against indexed observations.
type Engine struct {
	embedder   Embedder
	vectors    vectorstore.VectorStore
	collection string
	store      storage.ObservationStore
}

// NewEngine creates a search Engine.
func NewEngine(embedder Embedder, vectors vectorstore.VectorStore, collection string, store storage.ObservationStore) *Engine {
	return &Engine{
		embedder:   embedder,
		vectors:    vectors,
		collection: collection,
		store:      store,
	}
}

// Search embeds the query, finds the k closest observation points, and
// hydrates the matching rows from the store in score order.
func (e *Engine) Search(ctx context.Context, query string, k int) ([]Match, error) {
	if k <= 0 {
		k = 10
	}

	vecs, err := e.embedder.EmbedTexts(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	results, err := e.vectors.Search(ctx, e.collection, vecs[0], k, nil)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	var ids []int64
	scores := make(map[int64]float32, len(results))
	for _, result := range results {
		id, ok := captureID(result.Meta)
		if !ok {
			continue
		}
		ids = append(ids, id)
		scores[id] = result.Score
	}

	observations, err := e.store.Observations(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load observations: %w", err)
	}

	matches := make([]Match, 0, len(observations))
	for _, obs := range observations {
		matches = append(matches, Match{
			Observation: obs,
			Score:       scores[obs.Capture.ID],
		})
	}
	return matches, nil
}

// pointID derives a stable UUID from a capture id.
func pointID(captureID int64) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(fmt.Sprintf("mirulog-capture-%d", captureID))).String()
}

func captureID(meta map[string]any) (int64, bool) {
	switch v := meta["capture_id"].(type) {
	case int64:
		return v, true
	case float64:
		return int64(v), true
	}
	return 0, false
}
