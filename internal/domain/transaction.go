package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type TransactionStatus string

const (
	TransactionCompleted TransactionStatus = "completed"
	TransactionFailed    TransactionStatus = "failed"
)

// Transaction is an immutable record of one settlement attempt. SessionKey
// is the deterministic idempotency key derived from the session id and the
// full dialed path; SettlementRef is the receipt returned by the settlement
// network, absent for failed attempts.
type Transaction struct {
	ID            uuid.UUID         `json:"id"`
	FromPhone     string            `json:"from_phone_number"`
	ToPhone       string            `json:"to_phone_number"`
	Currency      Currency          `json:"currency"`
	Amount        decimal.Decimal   `json:"amount"`
	Status        TransactionStatus `json:"status"`
	SettlementRef *string           `json:"settlement_ref,omitempty"`
	SessionKey    *uuid.UUID        `json:"session_key,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
}

type TransactionRepository interface {
	Create(ctx context.Context, tx *Transaction) error
	// FindBySessionKey returns (nil, nil) when no attempt is recorded for the key.
	FindBySessionKey(ctx context.Context, key uuid.UUID) (*Transaction, error)
}
