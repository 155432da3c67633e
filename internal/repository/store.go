package repository

import (
	"database/sql"
	"log/slog"

	"github.com/cliff-dev/PayFLow/internal/domain"
)

// Store bundles the repositories over one database handle. The transfer
// path deliberately does not wrap its writes in a database transaction:
// settlement happens outside the database, so the debit and the record are
// separate writes with separate failure reporting.
type Store struct {
	executor SQLExecutor
	logger   *slog.Logger
}

// NewStore creates a new Store instance
func NewStore(db *sql.DB, logger *slog.Logger) *Store {
	return &Store{
		executor: db,
		logger:   logger,
	}
}

// Account returns an AccountRepository using the store's executor
func (s *Store) Account() domain.AccountRepository {
	return NewAccountRepository(s.executor, s.logger)
}

// Transaction returns a TransactionRepository using the store's executor
func (s *Store) Transaction() domain.TransactionRepository {
	return NewTransactionRepository(s.executor, s.logger)
}
