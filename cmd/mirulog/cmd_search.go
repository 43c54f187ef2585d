package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var searchTop int

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search analyzed activity semantically",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSearch,
}

func init() {
	searchCmd.Flags().IntVar(&searchTop, "top", 10, "Number of results to return")
}

func runSearch(cmd *cobra.Command, args []string) error {
	if !cfg.Search.Enabled {
		return fmt.Errorf("semantic search is not configured (set QDRANT_URL and QDRANT_VECTOR_SIZE)")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, store, err := openStore()
	if err != nil {
		return err
	}
	defer func() {
		_ = db.Close()
	}()

	engine, err := newSearchEngine(ctx, store)
	if err != nil {
		return err
	}

	query := strings.Join(args, " ")
	matches, err := engine.Search(ctx, query, searchTop)
	if err != nil {
		return err
	}
	if len(matches) == 0 {
		fmt.Println("No matching observations.")
		return nil
	}

	for _, match := range matches {
		obs := match.Observation
		fmt.Printf("%.3f  %s  [%s] %s\n",
			match.Score,
			obs.Capture.CapturedAt.Format("2006-01-02 15:04"),
			obs.Analysis.PrimaryTask,
			obs.Analysis.Description,
		)
	}
	return nil
}
