// Command mirulog is the Miru-Log activity logger: it captures desktop
// screenshots, classifies them with a vision model, and folds a day's
// observations into a summary artifact.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/yutanakamurajp/Miru-Log/internal/analysis"
	"github.com/yutanakamurajp/Miru-Log/internal/config"
	"github.com/yutanakamurajp/Miru-Log/internal/llm"
	"github.com/yutanakamurajp/Miru-Log/internal/search"
	"github.com/yutanakamurajp/Miru-Log/internal/storage"
	"github.com/yutanakamurajp/Miru-Log/internal/vectorstore"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "mirulog",
	Short: "Unattended personal-activity logging",
	Long: `Miru-Log periodically captures what you are doing, has a vision model
describe each capture, and folds a day of observations into activity
segments with blockers, follow-ups, and dev context.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		opts := &slog.HandlerOptions{Level: cfg.LogLevel}
		var handler slog.Handler
		if cfg.LogFormat == "json" {
			handler = slog.NewJSONHandler(os.Stdout, opts)
		} else {
			handler = slog.NewTextHandler(os.Stdout, opts)
		}
		slog.SetDefault(slog.New(handler))
		return nil
	},
}

func main() {
	rootCmd.AddCommand(observeCmd, analyzeCmd, summarizeCmd, pipelineCmd, serveCmd, searchCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// openStore opens the sqlite database and runs migrations.
func openStore() (*sql.DB, *storage.ObservationRepo, error) {
	db, err := storage.New(cfg.DBPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := storage.Migrate(db); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return db, storage.NewObservationRepo(db), nil
}

// newAnalyzer builds the configured vision backend wrapped in the retry
// protocol.
func newAnalyzer(ctx context.Context) (*analysis.ModelAnalyzer, error) {
	var model analysis.VisionModel
	switch cfg.Backend {
	case config.BackendGemini:
		gemini, err := llm.NewGeminiClient(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model, cfg.Gemini.MaxTokens, cfg.Gemini.Temperature)
		if err != nil {
			return nil, err
		}
		model = gemini
	case config.BackendLocal:
		model = llm.NewVisionClient(cfg.Local.BaseURL, cfg.Local.APIKey, cfg.Local.Model, cfg.Local.Timeout)
	default:
		return nil, fmt.Errorf("unknown analyzer backend %q", cfg.Backend)
	}
	return analysis.NewModelAnalyzer(model, cfg.Retry.MaxRetries, cfg.Retry.Buffer, cfg.Retry.RequestSpacing), nil
}

// newSearchEngine builds the semantic search engine, or returns nil when
// search is not configured.
func newSearchEngine(ctx context.Context, store storage.ObservationStore) (*search.Engine, error) {
	if !cfg.Search.Enabled {
		return nil, nil
	}
	embedder, vectors, err := newSearchBackend(ctx)
	if err != nil {
		return nil, err
	}
	return search.NewEngine(embedder, vectors, cfg.Search.Collection, store), nil
}

// newSearchIndexer builds the analysis-time search indexer, or returns nil
// when search is not configured.
func newSearchIndexer(ctx context.Context) (analysis.Indexer, error) {
	if !cfg.Search.Enabled {
		return nil, nil
	}
	embedder, vectors, err := newSearchBackend(ctx)
	if err != nil {
		return nil, err
	}
	return search.NewIndexer(embedder, vectors, cfg.Search.Collection), nil
}

func newSearchBackend(ctx context.Context) (search.Embedder, vectorstore.VectorStore, error) {
	vectors, err := vectorstore.NewQdrantStore(cfg.Search.QdrantURL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create Qdrant client: %w", err)
	}
	if err := vectors.EnsureCollection(ctx, cfg.Search.Collection, cfg.Search.VectorSize); err != nil {
		return nil, nil, fmt.Errorf("failed to ensure Qdrant collection: %w", err)
	}
	embedder := llm.NewEmbeddingsClient(cfg.Search.EmbeddingBaseURL, cfg.Local.APIKey, cfg.Search.EmbeddingModel, cfg.Search.VectorSize)
	return embedder, vectors, nil
}
