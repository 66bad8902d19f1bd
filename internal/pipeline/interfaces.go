package pipeline

import (
	"context"

	"github.com/dvloznov/spendsense/internal/domain"
)

// TransactionStore persists accepted transactions.
//
//go:generate mockgen -destination=mocks/mock_store.go -package=mocks -source=interfaces.go TransactionStore
type TransactionStore interface {
	InsertTransaction(ctx context.Context, rec *domain.TransactionRecord) error
}

// StorageService is an interface for storage operations.
type StorageService interface {
	FetchFromGCS(ctx context.Context, gcsURI string) ([]byte, error)
}
