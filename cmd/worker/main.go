package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dvloznov/spendsense/internal/app"
	"github.com/dvloznov/spendsense/internal/budget"
	"github.com/dvloznov/spendsense/internal/config"
	"github.com/dvloznov/spendsense/internal/jobs/inmemory"
	"github.com/dvloznov/spendsense/internal/logger"
	"github.com/dvloznov/spendsense/internal/recurring"
)

func main() {
	log := logger.New()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	logger.SetLevel(cfg.LogLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	repo, err := app.OpenRepository(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("backend", cfg.StoreBackend).Msg("Failed to open transaction store")
	}
	defer repo.Close()

	// Run history is kept in memory and only shows up in this process's logs.
	scheduler := inmemory.NewScheduler(inmemory.NewStore(), log)
	app.RegisterJobs(scheduler, cfg,
		recurring.NewScheduler(repo, log),
		budget.NewEvaluator(repo, budget.NewLogNotifier(log), cfg.BudgetCeiling, log),
	)

	log.Info().Msg("Starting worker service")

	if err := scheduler.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to start job scheduler")
	}

	for _, job := range scheduler.Jobs() {
		log.Info().Str("job", job.Name).Dur("interval", job.Interval).Msg("Periodic job scheduled")
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down worker service...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := scheduler.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error during graceful shutdown")
	}

	log.Info().Msg("Worker service exited")
}
