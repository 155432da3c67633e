package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/cliff-dev/PayFLow/internal/domain"
	"github.com/cliff-dev/PayFLow/internal/errors"
)

type transactionRepository struct {
	db     SQLExecutor
	logger *slog.Logger
}

func NewTransactionRepository(db SQLExecutor, logger *slog.Logger) domain.TransactionRepository {
	return &transactionRepository{
		db:     db,
		logger: logger,
	}
}

func (r *transactionRepository) Create(ctx context.Context, tx *domain.Transaction) error {
	query := `
		INSERT INTO transactions
		(id, from_phone_number, to_phone_number, currency, amount, status, settlement_ref, session_key, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	now := time.Now()

	var settlementRef interface{}
	if tx.SettlementRef != nil {
		settlementRef = *tx.SettlementRef
	}
	var sessionKey interface{}
	if tx.SessionKey != nil {
		sessionKey = *tx.SessionKey
	}

	_, err := r.db.ExecContext(
		ctx,
		query,
		tx.ID,
		tx.FromPhone,
		tx.ToPhone,
		tx.Currency,
		tx.Amount.String(),
		tx.Status,
		settlementRef,
		sessionKey,
		now,
	)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Code == "23505" { // unique_violation
				if pqErr.Constraint == "idx_transactions_session_key" {
					r.logger.Warn("Duplicate session key", "session_key", tx.SessionKey)
					return errors.ErrDuplicateTransaction
				}
			}
		}
		r.logger.Error("Failed to create transaction",
			"from", tx.FromPhone,
			"to", tx.ToPhone,
			"amount", tx.Amount,
			"error", err)
		return errors.NewAppError(errors.InternalError, "failed to create transaction").WithDetails(err.Error())
	}

	tx.CreatedAt = now
	r.logger.Info("Transaction recorded", "transaction_id", tx.ID, "status", tx.Status)
	return nil
}

func (r *transactionRepository) FindBySessionKey(ctx context.Context, key uuid.UUID) (*domain.Transaction, error) {
	query := `
		SELECT id, from_phone_number, to_phone_number, currency, amount, status, settlement_ref, session_key, created_at
		FROM transactions WHERE session_key = $1
	`

	var transaction domain.Transaction
	var amountStr string
	var settlementRef sql.NullString
	var sessionKey sql.NullString

	err := r.db.QueryRowContext(ctx, query, key).Scan(
		&transaction.ID,
		&transaction.FromPhone,
		&transaction.ToPhone,
		&transaction.Currency,
		&amountStr,
		&transaction.Status,
		&settlementRef,
		&sessionKey,
		&transaction.CreatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		r.logger.Error("Failed to get transaction", "session_key", key, "error", err)
		return nil, errors.NewAppError(errors.InternalError, "failed to get transaction").WithDetails(err.Error())
	}

	amount, err := decimal.NewFromString(amountStr)
	if err != nil {
		return nil, errors.NewAppError(errors.InternalError, "failed to parse amount").WithDetails(err.Error())
	}
	transaction.Amount = amount

	if settlementRef.Valid {
		transaction.SettlementRef = &settlementRef.String
	}
	if sessionKey.Valid {
		parsed, err := uuid.Parse(sessionKey.String)
		if err != nil {
			return nil, errors.NewAppError(errors.InternalError, "failed to parse session key").WithDetails(err.Error())
		}
		transaction.SessionKey = &parsed
	}

	return &transaction, nil
}
