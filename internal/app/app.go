// Package app wires configuration, storage and services together for the
// commands.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/dvloznov/spendsense/internal/budget"
	"github.com/dvloznov/spendsense/internal/config"
	infraBQ "github.com/dvloznov/spendsense/internal/infra/bigquery"
	infraMySQL "github.com/dvloznov/spendsense/internal/infra/mysql"
	"github.com/dvloznov/spendsense/internal/jobs"
	"github.com/dvloznov/spendsense/internal/parser"
	"github.com/dvloznov/spendsense/internal/pipeline"
	"github.com/dvloznov/spendsense/internal/recurring"
	"github.com/rs/zerolog"
)

// Repository is everything the commands need from a storage backend.
type Repository interface {
	pipeline.TransactionStore
	recurring.Repository
	budget.ExpenseSource

	SetRecurring(ctx context.Context, transactionID string, recurring bool) error
	DeleteTransaction(ctx context.Context, transactionID string) error
	EnsureSchema(ctx context.Context) (bool, error)
	Close() error
}

var (
	_ Repository = (*infraBQ.BigQueryTransactionRepository)(nil)
	_ Repository = (*infraMySQL.MySQLTransactionRepository)(nil)
)

// OpenRepository connects to the backend selected by cfg.StoreBackend.
func OpenRepository(ctx context.Context, cfg *config.Config) (Repository, error) {
	if err := cfg.RequireStore(); err != nil {
		return nil, fmt.Errorf("OpenRepository: %w", err)
	}

	switch cfg.StoreBackend {
	case config.BackendMySQL:
		db, err := infraMySQL.Connect(ctx, cfg.MySQLDSN)
		if err != nil {
			return nil, fmt.Errorf("OpenRepository: %w", err)
		}
		return infraMySQL.NewMySQLTransactionRepository(db), nil
	default:
		repo, err := infraBQ.NewBigQueryTransactionRepository(ctx, cfg.GCPProject, cfg.Dataset)
		if err != nil {
			return nil, fmt.Errorf("OpenRepository: %w", err)
		}
		return repo, nil
	}
}

// NewParser builds the parser with any extra allow-listed packages from cfg.
func NewParser(cfg *config.Config) *parser.Parser {
	return parser.New(parser.WithAllowedPackages(cfg.AllowedPackages...))
}

// NewService builds the ingestion service on top of repo.
func NewService(cfg *config.Config, repo pipeline.TransactionStore, log zerolog.Logger, opts ...pipeline.Option) *pipeline.Service {
	opts = append([]pipeline.Option{
		pipeline.WithParser(NewParser(cfg)),
		pipeline.WithTagOrigin(cfg.TagOrigin),
	}, opts...)
	return pipeline.NewService(repo, log, opts...)
}

// RegisterJobs registers recurring billing and, when a ceiling is configured,
// the budget check. Jobs that are already registered are kept.
func RegisterJobs(runner jobs.Runner, cfg *config.Config, billing *recurring.Scheduler, evaluator *budget.Evaluator) {
	runner.RegisterPeriodic(
		jobs.PeriodicJob{Name: jobs.JobNameRecurringBilling, Type: jobs.JobTypeRecurringBilling, Interval: cfg.RecurringInterval},
		func(ctx context.Context, now time.Time) (interface{}, error) {
			return billing.Run(ctx, now)
		},
	)

	if !evaluator.Enabled() {
		return
	}
	runner.RegisterPeriodic(
		jobs.PeriodicJob{Name: jobs.JobNameBudgetCheck, Type: jobs.JobTypeBudgetCheck, Interval: cfg.BudgetInterval},
		func(ctx context.Context, now time.Time) (interface{}, error) {
			return evaluator.Evaluate(ctx, now)
		},
	)
}
