package budget

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// ExpenseSource totals outbound spending.
//
//go:generate mockgen -destination=mocks/mock_budget.go -package=mocks -source=interface.go ExpenseSource,Notifier
type ExpenseSource interface {
	// SumOutboundSince returns the sum of OUTBOUND amounts dated at or after since.
	SumOutboundSince(ctx context.Context, since time.Time) (decimal.Decimal, error)
}

// Notifier delivers budget alerts to the user.
type Notifier interface {
	Notify(ctx context.Context, alert Alert) error
}
