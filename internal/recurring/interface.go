package recurring

import (
	"context"
	"time"

	"github.com/dvloznov/spendsense/internal/domain"
	"github.com/shopspring/decimal"
)

// Repository is the persistence the scheduler reads templates from and
// writes billed transactions to.
//
//go:generate mockgen -destination=mocks/mock_repository.go -package=mocks -source=interface.go Repository
type Repository interface {
	// ListRecurringTemplates returns every transaction flagged as recurring.
	ListRecurringTemplates(ctx context.Context) ([]domain.RecurringTemplate, error)

	// ExistsSince reports whether a transaction with the same description and
	// amount was recorded at or after since.
	ExistsSince(ctx context.Context, description string, amount decimal.Decimal, since time.Time) (bool, error)

	// InsertTransaction stores a new transaction record.
	InsertTransaction(ctx context.Context, rec *domain.TransactionRecord) error
}
