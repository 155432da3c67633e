package domain

import (
	"context"

	"github.com/shopspring/decimal"
)

// SettlementGateway moves value on the underlying asset network. Sequence
// loading, fee computation and signing are internal to the implementation.
type SettlementGateway interface {
	// SourceAddress is the network identity the gateway signs for.
	SourceAddress() string

	// Settle moves amount of currency from source to destination and returns
	// the network's settlement reference. It is attempted at most once per
	// confirmed request; the caller owns that guarantee.
	Settle(ctx context.Context, source, destination string, currency Currency, amount decimal.Decimal) (string, error)

	// NewIdentity generates a fresh network identity for a new account.
	NewIdentity() (address, seed string, err error)

	// FundAccount provisions initial funds for a newly created identity.
	// Best effort; registration proceeds when it fails.
	FundAccount(ctx context.Context, address string) error
}
