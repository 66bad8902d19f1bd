package bigquery

import (
	"testing"
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"
	"github.com/dvloznov/spendsense/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRowFromRecord(t *testing.T) {
	ist := time.FixedZone("IST", 5*3600+1800)
	rec := &domain.TransactionRecord{
		TransactionID: "tx-1",
		Amount:        decimal.RequireFromString("1250.50"),
		Direction:     domain.DirectionOutbound,
		Category:      domain.CategoryShopping,
		Description:   "FRESHMART@UPI",
		Source:        domain.SourceNotification,
		Sender:        "com.phonepe.app",
		Date:          time.Date(2024, time.June, 3, 23, 45, 0, 0, ist),
	}

	row := RowFromRecord(rec)

	assert.Equal(t, "tx-1", row.TransactionID)
	assert.Equal(t, civil.Date{Year: 2024, Month: time.June, Day: 3}, row.TransactionDate)
	assert.Equal(t, "2501/2", row.Amount.String())
	assert.Equal(t, "OUTBOUND", row.Direction)
	assert.Equal(t, "Shopping", row.CategoryName)
	assert.Equal(t, "NOTIFICATION", row.Source)
	assert.Equal(t, bigquery.NullString{StringVal: "com.phonepe.app", Valid: true}, row.Sender)
	assert.False(t, row.CreatedTS.IsZero())
}

func TestRowFromRecord_NoSender(t *testing.T) {
	row := RowFromRecord(&domain.TransactionRecord{Amount: decimal.NewFromInt(1), Source: domain.SourceSMS})
	assert.False(t, row.Sender.Valid)
}

func TestTransactionRow_ToTemplate(t *testing.T) {
	booked := time.Date(2024, time.January, 31, 8, 0, 0, 0, time.UTC)
	row := RowFromRecord(&domain.TransactionRecord{
		TransactionID: "tpl-1",
		Amount:        decimal.RequireFromString("649.00"),
		Direction:     domain.DirectionOutbound,
		Category:      domain.CategoryBills,
		Description:   "NETFLIX",
		IsRecurring:   true,
		Source:        domain.SourceSMS,
		Date:          booked,
	})

	tpl, err := row.ToTemplate()
	require.NoError(t, err)
	assert.Equal(t, "tpl-1", tpl.TransactionID)
	assert.True(t, decimal.NewFromInt(649).Equal(tpl.Amount))
	assert.Equal(t, domain.CategoryBills, tpl.Category)
	assert.Equal(t, domain.DirectionOutbound, tpl.Direction)
	assert.Equal(t, booked, tpl.OriginalDate)

	row.BookedTS = time.Time{}
	tpl, err = row.ToTemplate()
	require.NoError(t, err)
	assert.Equal(t, 31, tpl.OriginalDate.Day())

	row.Amount = nil
	_, err = row.ToTemplate()
	assert.Error(t, err)
}

func TestTransactionRow_SchemaInference(t *testing.T) {
	schema, err := bigquery.InferSchema(TransactionRow{})
	require.NoError(t, err)

	types := map[string]bigquery.FieldType{}
	for _, f := range schema {
		types[f.Name] = f.Type
	}
	assert.Equal(t, bigquery.NumericFieldType, types["amount"])
	assert.Equal(t, bigquery.DateFieldType, types["transaction_date"])
	assert.Equal(t, bigquery.TimestampFieldType, types["booked_ts"])
	assert.Equal(t, bigquery.BooleanFieldType, types["is_recurring"])
	assert.Equal(t, bigquery.StringFieldType, types["sender"])
}
