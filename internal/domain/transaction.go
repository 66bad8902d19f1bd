package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Direction tells whether money entered or left the tracked account.
type Direction string

const (
	// DirectionInbound is money received or credited.
	DirectionInbound Direction = "INBOUND"
	// DirectionOutbound is money spent or debited.
	DirectionOutbound Direction = "OUTBOUND"
)

// Category is the coarse spending bucket of a transaction.
type Category string

const (
	CategoryFood      Category = "Food"
	CategoryTransport Category = "Transport"
	CategoryBills     Category = "Bills"
	CategoryShopping  Category = "Shopping"
	CategoryOther     Category = "Other-Automated"
)

// Source identifies where a transaction record came from.
type Source string

const (
	SourceSMS          Source = "SMS"
	SourceNotification Source = "NOTIFICATION"
	SourceRecurring    Source = "RECURRING"
)

// Counterparty labels used when no merchant rule produced a name.
const (
	FallbackInbound  = "Deposit/Refund"
	FallbackOutbound = "Bank Transfer"
	EMIAutoDebit     = "EMI / Auto-Debit"
)

// MaxCounterpartyLen is the maximum number of runes in a counterparty.
const MaxCounterpartyLen = 30

// Origin describes the text channel a message arrived on.
// Sender is the package identity for notifications; it is ignored for SMS.
type Origin struct {
	Source Source `json:"source"`
	Sender string `json:"sender,omitempty"`
}

// ParsedTransaction is the result of parsing one SMS or notification.
// It is transient: the caller decides whether and how to store it.
type ParsedTransaction struct {
	Amount       decimal.Decimal `json:"amount"`
	Direction    Direction       `json:"direction"`
	Counterparty string          `json:"counterparty"`
	Category     Category        `json:"category"`
	Origin       Origin          `json:"origin"`
}

// TransactionRecord is the shape handed to the persistence layer.
type TransactionRecord struct {
	TransactionID string          `json:"transaction_id"`
	Amount        decimal.Decimal `json:"amount"`
	Direction     Direction       `json:"direction"`
	Category      Category        `json:"category"`
	Description   string          `json:"description"`
	IsRecurring   bool            `json:"is_recurring"`
	Source        Source          `json:"source"`
	Sender        string          `json:"sender,omitempty"`
	Date          time.Time       `json:"date"`
}

// RecurringTemplate is a stored transaction flagged as recurring.
// OriginalDate anchors the day of month future billing happens on.
type RecurringTemplate struct {
	TransactionID string
	Amount        decimal.Decimal
	Category      Category
	Description   string
	Direction     Direction
	OriginalDate  time.Time
}

// FallbackCounterparty returns the default label for a direction.
func FallbackCounterparty(d Direction) string {
	if d == DirectionInbound {
		return FallbackInbound
	}
	return FallbackOutbound
}
