package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/dvloznov/spendsense/internal/app"
	"github.com/dvloznov/spendsense/internal/budget"
	"github.com/dvloznov/spendsense/internal/config"
	"github.com/dvloznov/spendsense/internal/domain"
	"github.com/dvloznov/spendsense/internal/gcsuploader"
	"github.com/dvloznov/spendsense/internal/logger"
	"github.com/dvloznov/spendsense/internal/parser"
	"github.com/dvloznov/spendsense/internal/pipeline"
	"github.com/dvloznov/spendsense/internal/recurring"
	"github.com/rs/zerolog"
)

func main() {
	log := logger.New()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "parse":
		runParse(log)
	case "ingest":
		runIngest(log)
	case "upload":
		runUpload(log)
	case "bill":
		runBill(log)
	case "budget":
		runBudget(log)
	case "init-schema":
		runInitSchema(log)
	case "flag-recurring":
		runFlagRecurring(log)
	case "delete":
		runDelete(log)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("SpendSense CLI")
	fmt.Println("\nUsage:")
	fmt.Println("  cli <command> [options]")
	fmt.Println("\nCommands:")
	fmt.Println("  parse           Parse a message without storing it")
	fmt.Println("  ingest          Ingest a JSONL message export from GCS or a local file")
	fmt.Println("  upload          Upload a message export to GCS")
	fmt.Println("  bill            Run recurring billing once")
	fmt.Println("  budget          Check spending against the budget ceiling")
	fmt.Println("  init-schema     Create the transactions table if it is missing")
	fmt.Println("  flag-recurring  Mark or unmark a transaction as a recurring template")
	fmt.Println("  delete          Delete a transaction by ID")
	fmt.Println("  help            Show this help message")
	fmt.Println("\nRun 'cli <command> -h' for more information on a command.")
}

// mustConfig loads configuration and applies the configured log level.
func mustConfig(log zerolog.Logger) *config.Config {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	logger.SetLevel(cfg.LogLevel)
	return cfg
}

func mustRepository(ctx context.Context, log zerolog.Logger, cfg *config.Config) app.Repository {
	repo, err := app.OpenRepository(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("backend", cfg.StoreBackend).Msg("Failed to open transaction store")
	}
	return repo
}

func printJSON(v interface{}) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "encode output: %v\n", err)
		os.Exit(1)
	}
}

type parseOutput struct {
	Accepted    bool                      `json:"accepted"`
	Reason      parser.Rejection          `json:"reason,omitempty"`
	Transaction *domain.ParsedTransaction `json:"transaction,omitempty"`
}

func runParse(log zerolog.Logger) {
	fs := flag.NewFlagSet("parse", flag.ExitOnError)
	text := fs.String("text", "", "Message text (reads stdin when empty)")
	source := fs.String("source", string(domain.SourceSMS), "Message source: SMS or NOTIFICATION")
	sender := fs.String("sender", "", "Notification package name")
	fs.Parse(os.Args[2:])

	body := *text
	if body == "" {
		raw, err := io.ReadAll(os.Stdin)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to read stdin")
		}
		body = string(raw)
	}

	cfg := mustConfig(log)
	p := app.NewParser(cfg)

	origin := domain.Origin{Source: domain.Source(strings.ToUpper(*source)), Sender: *sender}
	tx, reason := p.ParseWithReason(body, origin)

	printJSON(parseOutput{Accepted: tx != nil, Reason: reason, Transaction: tx})
}

func runIngest(log zerolog.Logger) {
	fs := flag.NewFlagSet("ingest", flag.ExitOnError)
	gcsURI := fs.String("gcs-uri", "", "GCS URI of a JSONL message export")
	filePath := fs.String("file", "", "Path to a local JSONL message export")
	fs.Parse(os.Args[2:])

	if (*gcsURI == "") == (*filePath == "") {
		log.Fatal().Msg("Usage: cli ingest (-gcs-uri URI | -file PATH)")
	}

	cfg := mustConfig(log)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	repo := mustRepository(ctx, log, cfg)
	defer repo.Close()

	var (
		summary pipeline.IngestSummary
		err     error
	)
	if *gcsURI != "" {
		storage, serr := gcsuploader.NewGCSStorageService(ctx)
		if serr != nil {
			log.Fatal().Err(serr).Msg("Failed to create storage client")
		}
		defer storage.Close()

		log.Info().Str("gcs_uri", *gcsURI).Msg("Starting ingestion")
		summary, err = app.NewService(cfg, repo, log, pipeline.WithStorage(storage)).IngestExport(ctx, *gcsURI)
	} else {
		f, ferr := os.Open(*filePath)
		if ferr != nil {
			log.Fatal().Err(ferr).Msg("Failed to open export file")
		}
		defer f.Close()

		log.Info().Str("file", *filePath).Msg("Starting ingestion")
		summary, err = app.NewService(cfg, repo, log).IngestLines(ctx, bufio.NewReader(f))
	}
	if err != nil {
		log.Fatal().Err(err).Msg("Ingestion failed")
	}

	fmt.Printf("Ingestion completed: %d lines, %d accepted, %d rejected, %d failed\n",
		summary.Lines, summary.Accepted, summary.Rejected, summary.Failed)
}

func runUpload(log zerolog.Logger) {
	fs := flag.NewFlagSet("upload", flag.ExitOnError)
	bucketName := fs.String("bucket", os.Getenv("GCS_BUCKET"), "GCS bucket name (or set GCS_BUCKET env)")
	objectName := fs.String("object", "", "GCS object name (defaults to exports/YYYY/MM/<filename>)")
	filePath := fs.String("file", "", "Path to local export file")
	fs.Parse(os.Args[2:])

	if *bucketName == "" || *filePath == "" {
		log.Fatal().Msg("Usage: cli upload -bucket NAME -file PATH")
	}

	if *objectName == "" {
		*objectName = gcsuploader.ExportObjectName(*filePath, time.Now())
	}

	ctx := logger.WithContext(context.Background(), log)

	storage, err := gcsuploader.NewGCSStorageService(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create storage client")
	}
	defer storage.Close()

	log.Info().
		Str("bucket", *bucketName).
		Str("object", *objectName).
		Str("file", *filePath).
		Msg("Uploading file to GCS")

	if err := storage.UploadFile(ctx, *bucketName, *objectName, *filePath); err != nil {
		log.Fatal().Err(err).Msg("Upload failed")
	}

	fmt.Printf("Uploaded %s to gs://%s/%s\n", *filePath, *bucketName, *objectName)
}

func runBill(log zerolog.Logger) {
	fs := flag.NewFlagSet("bill", flag.ExitOnError)
	at := fs.String("at", "", "Evaluate as of this date (YYYY-MM-DD, defaults to now)")
	fs.Parse(os.Args[2:])

	now := parseAt(log, *at)
	cfg := mustConfig(log)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	repo := mustRepository(ctx, log, cfg)
	defer repo.Close()

	summary, err := recurring.NewScheduler(repo, log).Run(ctx, now)
	if err != nil {
		log.Fatal().Err(err).Msg("Recurring billing failed")
	}

	printJSON(summary)
}

func runBudget(log zerolog.Logger) {
	fs := flag.NewFlagSet("budget", flag.ExitOnError)
	at := fs.String("at", "", "Evaluate as of this date (YYYY-MM-DD, defaults to now)")
	fs.Parse(os.Args[2:])

	now := parseAt(log, *at)
	cfg := mustConfig(log)
	if cfg.BudgetCeiling.IsZero() {
		log.Fatal().Msg("BUDGET_CEILING is not configured")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	repo := mustRepository(ctx, log, cfg)
	defer repo.Close()

	alert, err := budget.NewEvaluator(repo, budget.NewLogNotifier(log), cfg.BudgetCeiling, log).Evaluate(ctx, now)
	if err != nil {
		log.Fatal().Err(err).Msg("Budget check failed")
	}

	if alert.Severity == budget.SeverityNone {
		fmt.Printf("Within budget: spent ₹%s of ₹%s\n", alert.Spent.StringFixed(2), alert.Ceiling.StringFixed(2))
		return
	}
	fmt.Println(alert.Message())
}

func runInitSchema(log zerolog.Logger) {
	fs := flag.NewFlagSet("init-schema", flag.ExitOnError)
	fs.Parse(os.Args[2:])

	cfg := mustConfig(log)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	repo := mustRepository(ctx, log, cfg)
	defer repo.Close()

	created, err := repo.EnsureSchema(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Schema initialisation failed")
	}

	if created {
		fmt.Printf("Created transactions table (%s backend).\n", cfg.StoreBackend)
		return
	}
	fmt.Println("Transactions table already exists.")
}

func runFlagRecurring(log zerolog.Logger) {
	fs := flag.NewFlagSet("flag-recurring", flag.ExitOnError)
	transactionID := fs.String("id", "", "Transaction ID")
	unset := fs.Bool("unset", false, "Clear the recurring flag instead of setting it")
	fs.Parse(os.Args[2:])

	if *transactionID == "" {
		log.Fatal().Msg("Error: --id is required")
	}

	cfg := mustConfig(log)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	repo := mustRepository(ctx, log, cfg)
	defer repo.Close()

	if err := repo.SetRecurring(ctx, *transactionID, !*unset); err != nil {
		log.Fatal().Err(err).Str("transaction_id", *transactionID).Msg("Failed to update recurring flag")
	}

	fmt.Printf("Transaction %s recurring=%t\n", *transactionID, !*unset)
}

func runDelete(log zerolog.Logger) {
	fs := flag.NewFlagSet("delete", flag.ExitOnError)
	transactionID := fs.String("id", "", "Transaction ID")
	fs.Parse(os.Args[2:])

	if *transactionID == "" {
		log.Fatal().Msg("Error: --id is required")
	}

	cfg := mustConfig(log)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	repo := mustRepository(ctx, log, cfg)
	defer repo.Close()

	if err := repo.DeleteTransaction(ctx, *transactionID); err != nil {
		log.Fatal().Err(err).Str("transaction_id", *transactionID).Msg("Failed to delete transaction")
	}

	fmt.Printf("Deleted transaction %s\n", *transactionID)
}

func parseAt(log zerolog.Logger, at string) time.Time {
	if at == "" {
		return time.Now()
	}
	t, err := time.ParseInLocation("2006-01-02", at, time.Local)
	if err != nil {
		log.Fatal().Err(err).Str("at", at).Msg("Invalid -at date")
	}
	return t
}
