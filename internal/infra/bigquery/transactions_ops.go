package bigquery

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"
	"github.com/dvloznov/spendsense/internal/domain"
	"github.com/shopspring/decimal"
	"google.golang.org/api/iterator"
)

const transactionsTable = "transactions"

// tableRef returns the fully qualified, backquoted transactions table name.
func tableRef(client *bigquery.Client, datasetID string) string {
	return fmt.Sprintf("`%s.%s.%s`", client.Project(), datasetID, transactionsTable)
}

// InsertTransactionsWithClient streams a batch of rows into the transactions table.
func InsertTransactionsWithClient(ctx context.Context, client *bigquery.Client, datasetID string, rows []*TransactionRow) error {
	if len(rows) == 0 {
		return nil
	}

	inserter := client.Dataset(datasetID).Table(transactionsTable).Inserter()
	if err := inserter.Put(ctx, rows); err != nil {
		return fmt.Errorf("InsertTransactions: inserting rows: %w", err)
	}

	return nil
}

// ListRecurringTemplatesWithClient returns the transactions flagged as
// recurring, excluding the copies the billing scheduler itself created.
func ListRecurringTemplatesWithClient(ctx context.Context, client *bigquery.Client, datasetID string) ([]domain.RecurringTemplate, error) {
	q := client.Query(`
		SELECT
			transaction_id,
			transaction_date,
			booked_ts,
			amount,
			direction,
			category_name,
			description,
			is_recurring,
			source,
			sender,
			created_ts
		FROM ` + tableRef(client, datasetID) + `
		WHERE is_recurring = TRUE
		  AND source != @recurring_source
		ORDER BY booked_ts
	`)
	q.Parameters = []bigquery.QueryParameter{
		{Name: "recurring_source", Value: string(domain.SourceRecurring)},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("ListRecurringTemplates: query read: %w", err)
	}

	var templates []domain.RecurringTemplate
	for {
		var r TransactionRow
		err := it.Next(&r)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ListRecurringTemplates: iter next: %w", err)
		}
		tpl, err := r.ToTemplate()
		if err != nil {
			return nil, fmt.Errorf("ListRecurringTemplates: %w", err)
		}
		templates = append(templates, tpl)
	}

	return templates, nil
}

// ExistsSinceWithClient reports whether a transaction with the given
// description and amount is dated on or after since.
func ExistsSinceWithClient(ctx context.Context, client *bigquery.Client, datasetID, description string, amount decimal.Decimal, since time.Time) (bool, error) {
	q := client.Query(`
		SELECT COUNT(1) AS n
		FROM ` + tableRef(client, datasetID) + `
		WHERE description = @description
		  AND amount = @amount
		  AND transaction_date >= @since
	`)
	q.Parameters = []bigquery.QueryParameter{
		{Name: "description", Value: description},
		{Name: "amount", Value: amount.Rat()},
		{Name: "since", Value: civil.DateOf(since)},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return false, fmt.Errorf("ExistsSince: query read: %w", err)
	}

	var row struct {
		N int64 `bigquery:"n"`
	}
	if err := it.Next(&row); err != nil {
		return false, fmt.Errorf("ExistsSince: iter next: %w", err)
	}

	return row.N > 0, nil
}

// SumOutboundSinceWithClient totals OUTBOUND amounts dated on or after since.
func SumOutboundSinceWithClient(ctx context.Context, client *bigquery.Client, datasetID string, since time.Time) (decimal.Decimal, error) {
	q := client.Query(`
		SELECT COALESCE(SUM(amount), 0) AS total
		FROM ` + tableRef(client, datasetID) + `
		WHERE direction = @direction
		  AND transaction_date >= @since
	`)
	q.Parameters = []bigquery.QueryParameter{
		{Name: "direction", Value: string(domain.DirectionOutbound)},
		{Name: "since", Value: civil.DateOf(since)},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return decimal.Zero, fmt.Errorf("SumOutboundSince: query read: %w", err)
	}

	var row struct {
		Total *big.Rat `bigquery:"total"`
	}
	if err := it.Next(&row); err != nil {
		return decimal.Zero, fmt.Errorf("SumOutboundSince: iter next: %w", err)
	}
	if row.Total == nil {
		return decimal.Zero, nil
	}

	total, err := decimal.NewFromString(row.Total.FloatString(9))
	if err != nil {
		return decimal.Zero, fmt.Errorf("SumOutboundSince: parse total: %w", err)
	}
	return total, nil
}

// SetRecurringWithClient flags or unflags a stored transaction as a recurring
// template. Rows still in the streaming buffer cannot be updated; BigQuery
// reports that as a job error.
func SetRecurringWithClient(ctx context.Context, client *bigquery.Client, datasetID, transactionID string, recurring bool) error {
	q := client.Query(`
		UPDATE ` + tableRef(client, datasetID) + `
		SET is_recurring = @recurring
		WHERE transaction_id = @transaction_id
	`)
	q.Parameters = []bigquery.QueryParameter{
		{Name: "recurring", Value: recurring},
		{Name: "transaction_id", Value: transactionID},
	}

	if err := runDML(ctx, q); err != nil {
		return fmt.Errorf("SetRecurring: %w", err)
	}
	return nil
}

// EnsureTransactionsTableWithClient creates the dataset table with a schema
// inferred from TransactionRow when it does not exist yet.
func EnsureTransactionsTableWithClient(ctx context.Context, client *bigquery.Client, datasetID string) (bool, error) {
	table := client.Dataset(datasetID).Table(transactionsTable)
	if _, err := table.Metadata(ctx); err == nil {
		return false, nil
	}

	schema, err := bigquery.InferSchema(TransactionRow{})
	if err != nil {
		return false, fmt.Errorf("EnsureTransactionsTable: infer schema: %w", err)
	}

	meta := &bigquery.TableMetadata{
		Schema: schema,
		TimePartitioning: &bigquery.TimePartitioning{
			Type:  bigquery.MonthPartitioningType,
			Field: "transaction_date",
		},
	}
	if err := table.Create(ctx, meta); err != nil {
		return false, fmt.Errorf("EnsureTransactionsTable: create table: %w", err)
	}

	return true, nil
}
