package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/dvloznov/spendsense/internal/app"
	"github.com/dvloznov/spendsense/internal/config"
	"github.com/dvloznov/spendsense/internal/gcsuploader"
	"github.com/dvloznov/spendsense/internal/logger"
	"github.com/dvloznov/spendsense/internal/pipeline"
)

func main() {
	log := logger.New()

	gcsURI := flag.String("gcs-uri", "", "GCS URI of the message export (e.g. gs://bucket/exports/2024/06/inbox.jsonl)")
	flag.Parse()

	if *gcsURI == "" {
		log.Fatal().Msg("Error: --gcs-uri is required")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	logger.SetLevel(cfg.LogLevel)

	// Create context with timeout so the command doesn't hang
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	repo, err := app.OpenRepository(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open transaction store")
	}
	defer repo.Close()

	storage, err := gcsuploader.NewGCSStorageService(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create storage client")
	}
	defer storage.Close()

	service := app.NewService(cfg, repo, log, pipeline.WithStorage(storage))

	log.Info().Str("gcs_uri", *gcsURI).Msg("Starting ingestion")

	summary, err := service.IngestExport(ctx, *gcsURI)
	if err != nil {
		log.Fatal().Err(err).Msg("Ingestion failed")
	}

	fmt.Printf("Ingestion completed: %d lines, %d accepted, %d rejected, %d failed\n",
		summary.Lines, summary.Accepted, summary.Rejected, summary.Failed)
}
