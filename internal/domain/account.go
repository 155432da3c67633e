package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Account is a wallet record keyed by normalized phone number. The public
// key is the account's identity on the settlement network. Balances are
// stored as decimal strings, one per supported currency.
type Account struct {
	PhoneNumber       string              `json:"phone_number"`
	PublicKey         string              `json:"public_key"`
	PreferredCurrency Currency            `json:"preferred_currency"`
	Balances          map[Currency]string `json:"wallet_balance"`
	PINHash           string              `json:"-"`
	CreatedAt         time.Time           `json:"created_at"`
	UpdatedAt         time.Time           `json:"updated_at"`
}

// ZeroBalances returns a fresh balance map with every supported currency at "0".
func ZeroBalances() map[Currency]string {
	balances := make(map[Currency]string, len(SupportedCurrencies()))
	for _, c := range SupportedCurrencies() {
		balances[c] = "0"
	}
	return balances
}

// Balance parses the stored balance for a currency. A missing entry counts
// as zero, matching accounts created before a currency was added.
func (a *Account) Balance(currency Currency) (decimal.Decimal, error) {
	raw, ok := a.Balances[currency]
	if !ok || raw == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(raw)
}

type AccountRepository interface {
	FindByPhone(ctx context.Context, phone string) (*Account, error)
	Create(ctx context.Context, account *Account) error
	// UpdateBalance writes newValue for (phone, currency) only if the stored
	// value still equals oldValue; otherwise it returns ErrBalanceConflict.
	UpdateBalance(ctx context.Context, phone string, currency Currency, oldValue, newValue string) error
}
