package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dvloznov/spendsense/internal/api/handlers"
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

	port := flag.String("port", cfg.Port, "HTTP server port (or set PORT env)")
	noJobs := flag.Bool("no-jobs", false, "Do not run periodic jobs in this process")
	flag.Parse()

	ctx := context.Background()

	repo, err := app.OpenRepository(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("backend", cfg.StoreBackend).Msg("Failed to open transaction store")
	}
	defer repo.Close()

	service := app.NewService(cfg, repo, log)
	billing := recurring.NewScheduler(repo, log)
	evaluator := budget.NewEvaluator(repo, budget.NewLogNotifier(log), cfg.BudgetCeiling, log)

	if !evaluator.Enabled() {
		log.Warn().Msg("No BUDGET_CEILING configured - budget alerts are disabled")
	}

	// Periodic jobs. Registered even with -no-jobs so they can be triggered manually.
	runStore := inmemory.NewStore()
	scheduler := inmemory.NewScheduler(runStore, log)
	app.RegisterJobs(scheduler, cfg, billing, evaluator)

	if !*noJobs {
		if err := scheduler.Start(ctx); err != nil {
			log.Fatal().Err(err).Msg("Failed to start job scheduler")
		}
	}

	msgs := handlers.NewMessagesHandler(service, service.Parser(), log)
	jobsHandler := handlers.NewJobsHandler(scheduler, runStore, log)

	server := &http.Server{
		Addr:         ":" + *port,
		Handler:      handlers.NewRouter(msgs, jobsHandler, log),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().
			Str("port", *port).
			Str("backend", cfg.StoreBackend).
			Bool("periodic_jobs", !*noJobs).
			Msg("Starting API server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	// Wait for in-flight job runs
	if err := scheduler.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error stopping job scheduler")
	}

	log.Info().Msg("Server exited")
}
