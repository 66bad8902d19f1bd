package bigquery

import (
	"fmt"
	"math/big"
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"
	"github.com/dvloznov/spendsense/internal/domain"
	"github.com/shopspring/decimal"
)

type TransactionRow struct {
	TransactionID string `bigquery:"transaction_id"` // REQUIRED

	TransactionDate civil.Date `bigquery:"transaction_date"` // REQUIRED
	BookedTS        time.Time  `bigquery:"booked_ts"`        // REQUIRED, full instant of Date

	Amount    *big.Rat `bigquery:"amount"`    // REQUIRED NUMERIC
	Direction string   `bigquery:"direction"` // INBOUND | OUTBOUND

	CategoryName string `bigquery:"category_name"`
	Description  string `bigquery:"description"`

	IsRecurring bool                `bigquery:"is_recurring"`
	Source      string              `bigquery:"source"` // SMS | NOTIFICATION | RECURRING
	Sender      bigquery.NullString `bigquery:"sender"` // NULLABLE, notification package id

	CreatedTS time.Time `bigquery:"created_ts"`
}

// RowFromRecord converts a domain record into a row ready for insertion.
func RowFromRecord(rec *domain.TransactionRecord) *TransactionRow {
	row := &TransactionRow{
		TransactionID:   rec.TransactionID,
		TransactionDate: civil.DateOf(rec.Date),
		BookedTS:        rec.Date,
		Amount:          rec.Amount.Rat(),
		Direction:       string(rec.Direction),
		CategoryName:    string(rec.Category),
		Description:     rec.Description,
		IsRecurring:     rec.IsRecurring,
		Source:          string(rec.Source),
		CreatedTS:       time.Now().UTC(),
	}
	if rec.Sender != "" {
		row.Sender = bigquery.NullString{StringVal: rec.Sender, Valid: true}
	}
	return row
}

// amount converts the NUMERIC column back into a decimal. NUMERIC has at most
// nine fractional digits.
func (r *TransactionRow) amount() (decimal.Decimal, error) {
	if r.Amount == nil {
		return decimal.Zero, fmt.Errorf("amount: transaction %s has no amount", r.TransactionID)
	}
	return decimal.NewFromString(r.Amount.FloatString(9))
}

// ToTemplate converts a recurring row into a billing template.
func (r *TransactionRow) ToTemplate() (domain.RecurringTemplate, error) {
	amt, err := r.amount()
	if err != nil {
		return domain.RecurringTemplate{}, fmt.Errorf("ToTemplate: %w", err)
	}
	anchor := r.BookedTS
	if anchor.IsZero() {
		anchor = r.TransactionDate.In(time.UTC)
	}
	return domain.RecurringTemplate{
		TransactionID: r.TransactionID,
		Amount:        amt,
		Category:      domain.Category(r.CategoryName),
		Description:   r.Description,
		Direction:     domain.Direction(r.Direction),
		OriginalDate:  anchor,
	}, nil
}
