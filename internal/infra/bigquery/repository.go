package bigquery

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/bigquery"
	"github.com/dvloznov/spendsense/internal/domain"
	"github.com/shopspring/decimal"
)

// BigQueryTransactionRepository stores transactions in BigQuery. It holds a
// shared client to avoid creating a new connection for each operation.
type BigQueryTransactionRepository struct {
	client    *bigquery.Client
	datasetID string
}

// NewBigQueryTransactionRepository creates a repository backed by a new client
// for projectID.
func NewBigQueryTransactionRepository(ctx context.Context, projectID, datasetID string) (*BigQueryTransactionRepository, error) {
	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("NewBigQueryTransactionRepository: creating client: %w", err)
	}
	return NewBigQueryTransactionRepositoryWithClient(client, datasetID), nil
}

// NewBigQueryTransactionRepositoryWithClient wraps an existing client.
func NewBigQueryTransactionRepositoryWithClient(client *bigquery.Client, datasetID string) *BigQueryTransactionRepository {
	return &BigQueryTransactionRepository{
		client:    client,
		datasetID: datasetID,
	}
}

// Close closes the BigQuery client connection.
func (r *BigQueryTransactionRepository) Close() error {
	if r.client != nil {
		return r.client.Close()
	}
	return nil
}

// InsertTransaction stores a single record.
func (r *BigQueryTransactionRepository) InsertTransaction(ctx context.Context, rec *domain.TransactionRecord) error {
	return InsertTransactionsWithClient(ctx, r.client, r.datasetID, []*TransactionRow{RowFromRecord(rec)})
}

// ListRecurringTemplates delegates to ListRecurringTemplatesWithClient.
func (r *BigQueryTransactionRepository) ListRecurringTemplates(ctx context.Context) ([]domain.RecurringTemplate, error) {
	return ListRecurringTemplatesWithClient(ctx, r.client, r.datasetID)
}

// ExistsSince delegates to ExistsSinceWithClient.
func (r *BigQueryTransactionRepository) ExistsSince(ctx context.Context, description string, amount decimal.Decimal, since time.Time) (bool, error) {
	return ExistsSinceWithClient(ctx, r.client, r.datasetID, description, amount, since)
}

// SumOutboundSince delegates to SumOutboundSinceWithClient.
func (r *BigQueryTransactionRepository) SumOutboundSince(ctx context.Context, since time.Time) (decimal.Decimal, error) {
	return SumOutboundSinceWithClient(ctx, r.client, r.datasetID, since)
}

// SetRecurring delegates to SetRecurringWithClient.
func (r *BigQueryTransactionRepository) SetRecurring(ctx context.Context, transactionID string, recurring bool) error {
	return SetRecurringWithClient(ctx, r.client, r.datasetID, transactionID, recurring)
}

// DeleteTransaction delegates to DeleteTransactionWithClient.
func (r *BigQueryTransactionRepository) DeleteTransaction(ctx context.Context, transactionID string) error {
	return DeleteTransactionWithClient(ctx, r.client, r.datasetID, transactionID)
}

// EnsureSchema creates the transactions table if needed and reports whether it did.
func (r *BigQueryTransactionRepository) EnsureSchema(ctx context.Context) (bool, error) {
	return EnsureTransactionsTableWithClient(ctx, r.client, r.datasetID)
}
