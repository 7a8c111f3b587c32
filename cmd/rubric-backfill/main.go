// rubric-backfill re-runs the extraction pipeline for rubrics stuck in
// the processing state, a few at a time. Useful after an outage of the
// Vision API or the database left rows without extracted text.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"cloud.google.com/go/storage"
	"golang.org/x/sync/errgroup"

	"github.com/sidreyli/edugrade/internal/gcp"
	"github.com/sidreyli/edugrade/internal/models"
	"github.com/sidreyli/edugrade/internal/services"
	"github.com/sidreyli/edugrade/internal/store"
)

func main() {
	limit := flag.Int("limit", 100, "maximum number of rubrics to reprocess")
	workers := flag.Int("workers", 4, "concurrent extractions")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	ctx := context.Background()
	if err := run(ctx, *limit, *workers); err != nil {
		slog.Error("Backfill failed.", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, limit, workers int) error {
	dsn := gcp.GetEnv("DATABASE_URL", "")
	if dsn == "" {
		return fmt.Errorf("DATABASE_URL environment variable must be set")
	}

	pool, err := store.Open(ctx, store.Config{DSN: dsn})
	if err != nil {
		return err
	}
	defer pool.Close()
	if err := store.HealthCheck(ctx, pool, 5*time.Second); err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}

	storageClient, err := storage.NewClient(ctx)
	if err != nil {
		return err
	}

	rubrics := store.NewRubricStore(pool)
	deps := services.ExtractorDeps{
		Fetcher:       services.NewFetcher(nil, storageClient),
		Rubrics:       rubrics,
		StorageClient: storageClient,
		ArchiveBucket: gcp.GetEnv("EXTRACTED_TEXT_BUCKET", ""),
	}
	if saJSON := gcp.GetEnv("OCR_SERVICE_ACCOUNT", ""); saJSON != "" {
		sa, err := gcp.ParseServiceAccount([]byte(saJSON))
		if err != nil {
			return err
		}
		tokens, err := gcp.NewTokenProvider(sa)
		if err != nil {
			return err
		}
		deps.Tokens = tokens
		deps.Vision = gcp.NewVisionClient()
	}
	extractor := services.NewExtractor(deps)

	pending, err := rubrics.ListProcessing(ctx, limit)
	if err != nil {
		return err
	}
	slog.Info("Found rubrics to reprocess.", "count", len(pending))

	// Each extraction is an independent invocation with its own single
	// write, so running several at once is safe.
	eg, gctx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)
	for _, rubric := range pending {
		eg.Go(func() error {
			req := &models.ExtractRubricRequest{FileURL: rubric.FileURL, RubricID: rubric.ID}
			if _, err := extractor.Process(gctx, req); err != nil {
				// Logged with its kind inside the pipeline. One stuck
				// rubric should not abort the rest of the batch.
				return nil
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}

	slog.Info("Backfill complete.")
	return nil
}
