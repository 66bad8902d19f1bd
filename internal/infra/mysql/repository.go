package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dvloznov/spendsense/internal/domain"
	"github.com/shopspring/decimal"
)

// MySQLTransactionRepository stores transactions in a MySQL table.
type MySQLTransactionRepository struct {
	db *sql.DB
}

// NewMySQLTransactionRepository creates a new MySQL transaction repository.
func NewMySQLTransactionRepository(db *sql.DB) *MySQLTransactionRepository {
	return &MySQLTransactionRepository{db: db}
}

// Close closes the underlying connection pool.
func (r *MySQLTransactionRepository) Close() error {
	return r.db.Close()
}

// EnsureSchema creates the transactions table if needed.
func (r *MySQLTransactionRepository) EnsureSchema(ctx context.Context) (bool, error) {
	if err := EnsureSchema(ctx, r.db); err != nil {
		return false, err
	}
	return true, nil
}

// InsertTransaction inserts a new record.
func (r *MySQLTransactionRepository) InsertTransaction(ctx context.Context, rec *domain.TransactionRecord) error {
	query := `INSERT INTO transactions
		(transaction_id, booked_at, amount, direction, category_name, description, is_recurring, source, sender)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	sender := sql.NullString{String: rec.Sender, Valid: rec.Sender != ""}
	_, err := r.db.ExecContext(ctx, query,
		rec.TransactionID,
		rec.Date.UTC(),
		rec.Amount,
		string(rec.Direction),
		string(rec.Category),
		rec.Description,
		rec.IsRecurring,
		string(rec.Source),
		sender,
	)
	if err != nil {
		if isDuplicate(err) {
			return fmt.Errorf("InsertTransaction: %s: %w", rec.TransactionID, ErrDuplicateTransaction)
		}
		return fmt.Errorf("InsertTransaction: %w", err)
	}
	return nil
}

// ListRecurringTemplates returns user-flagged recurring transactions. Copies
// created by the billing scheduler are not templates.
func (r *MySQLTransactionRepository) ListRecurringTemplates(ctx context.Context) ([]domain.RecurringTemplate, error) {
	query := `SELECT transaction_id, booked_at, amount, direction, category_name, description
		FROM transactions
		WHERE is_recurring = TRUE AND source <> ?
		ORDER BY booked_at`

	rows, err := r.db.QueryContext(ctx, query, string(domain.SourceRecurring))
	if err != nil {
		return nil, fmt.Errorf("ListRecurringTemplates: %w", err)
	}
	defer rows.Close()

	var templates []domain.RecurringTemplate
	for rows.Next() {
		var (
			tpl       domain.RecurringTemplate
			direction string
			category  string
		)
		if err := rows.Scan(&tpl.TransactionID, &tpl.OriginalDate, &tpl.Amount, &direction, &category, &tpl.Description); err != nil {
			return nil, fmt.Errorf("ListRecurringTemplates: scan error: %w", err)
		}
		tpl.Direction = domain.Direction(direction)
		tpl.Category = domain.Category(category)
		templates = append(templates, tpl)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListRecurringTemplates: rows iteration error: %w", err)
	}
	return templates, nil
}

// ExistsSince reports whether a matching description and amount was booked at or after since.
func (r *MySQLTransactionRepository) ExistsSince(ctx context.Context, description string, amount decimal.Decimal, since time.Time) (bool, error) {
	query := `SELECT EXISTS(
		SELECT 1 FROM transactions WHERE description = ? AND amount = ? AND booked_at >= ?)`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, description, amount, since.UTC()).Scan(&exists); err != nil {
		return false, fmt.Errorf("ExistsSince: %w", err)
	}
	return exists, nil
}

// SumOutboundSince totals OUTBOUND amounts booked at or after since.
func (r *MySQLTransactionRepository) SumOutboundSince(ctx context.Context, since time.Time) (decimal.Decimal, error) {
	query := "SELECT SUM(amount) FROM transactions WHERE direction = ? AND booked_at >= ?"

	var total decimal.NullDecimal
	if err := r.db.QueryRowContext(ctx, query, string(domain.DirectionOutbound), since.UTC()).Scan(&total); err != nil {
		return decimal.Zero, fmt.Errorf("SumOutboundSince: Scan failed: %w", err)
	}
	if total.Valid {
		return total.Decimal, nil
	}
	return decimal.Zero, nil
}

// SetRecurring flags or unflags a transaction as a recurring template.
func (r *MySQLTransactionRepository) SetRecurring(ctx context.Context, transactionID string, recurring bool) error {
	result, err := r.db.ExecContext(ctx, "UPDATE transactions SET is_recurring = ? WHERE transaction_id = ?", recurring, transactionID)
	if err != nil {
		return fmt.Errorf("SetRecurring: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		// MySQL reports zero rows when the value is unchanged, so confirm existence.
		var found bool
		if err := r.db.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM transactions WHERE transaction_id = ?)", transactionID).Scan(&found); err != nil {
			return fmt.Errorf("SetRecurring: %w", err)
		}
		if !found {
			return fmt.Errorf("SetRecurring: no transaction found with ID %s", transactionID)
		}
	}
	return nil
}

// DeleteTransaction removes a transaction by id.
func (r *MySQLTransactionRepository) DeleteTransaction(ctx context.Context, transactionID string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM transactions WHERE transaction_id = ?", transactionID)
	if err != nil {
		return fmt.Errorf("DeleteTransaction: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("DeleteTransaction: RowsAffected failed: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("DeleteTransaction: no transaction found with ID %s", transactionID)
	}
	return nil
}
