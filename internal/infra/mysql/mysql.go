// Package mysql stores transactions in MySQL through database/sql.
package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
)

// ErrDuplicateTransaction is returned when a transaction id is already stored.
var ErrDuplicateTransaction = errors.New("transaction already exists")

const errDupEntry = 1062

// Schema creates the transactions table.
const Schema = `CREATE TABLE IF NOT EXISTS transactions (
	transaction_id VARCHAR(36)   NOT NULL PRIMARY KEY,
	booked_at      DATETIME(6)   NOT NULL,
	amount         DECIMAL(18,2) NOT NULL,
	direction      VARCHAR(8)    NOT NULL,
	category_name  VARCHAR(32)   NOT NULL,
	description    VARCHAR(128)  NOT NULL,
	is_recurring   BOOLEAN       NOT NULL DEFAULT FALSE,
	source         VARCHAR(16)   NOT NULL,
	sender         VARCHAR(255)  NULL,
	created_at     TIMESTAMP(6)  NOT NULL DEFAULT CURRENT_TIMESTAMP(6),
	INDEX idx_transactions_booked (booked_at),
	INDEX idx_transactions_description (description, amount)
)`

// NormalizeDSN makes sure DATETIME columns scan into time.Time and are read as UTC.
func NormalizeDSN(dsn string) (string, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return "", fmt.Errorf("NormalizeDSN: %w", err)
	}
	cfg.ParseTime = true
	cfg.Loc = time.UTC
	return cfg.FormatDSN(), nil
}

// Connect opens and pings a MySQL connection pool.
func Connect(ctx context.Context, dsn string) (*sql.DB, error) {
	normalized, err := NormalizeDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("Connect: %w", err)
	}

	db, err := sql.Open("mysql", normalized)
	if err != nil {
		return nil, fmt.Errorf("Connect: open database: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("Connect: ping: %w", err)
	}

	return db, nil
}

// EnsureSchema creates the transactions table if it does not exist.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("EnsureSchema: %w", err)
	}
	return nil
}

func isDuplicate(err error) bool {
	var myErr *mysql.MySQLError
	return errors.As(err, &myErr) && myErr.Number == errDupEntry
}
