package service

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/cliff-dev/PayFLow/internal/domain"
	"github.com/cliff-dev/PayFLow/internal/errors"
)

func newAccountFixture() (*AccountService, *stubAccountRepo, *stubGateway) {
	accounts := &stubAccountRepo{accounts: map[string]*domain.Account{}}
	gateway := &stubGateway{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewAccountService(accounts, gateway, logger), accounts, gateway
}

func TestRegisterCreatesAccount(t *testing.T) {
	svc, accounts, _ := newAccountFixture()

	account, funded, err := svc.Register(context.Background(), "+15550001111", "1234")
	require.NoError(t, err)
	assert.True(t, funded)
	assert.Equal(t, "GNEW", account.PublicKey)
	assert.Equal(t, domain.CurrencyXLM, account.PreferredCurrency)

	stored := accounts.accounts["+15550001111"]
	require.NotNil(t, stored)
	for _, currency := range domain.SupportedCurrencies() {
		assert.Equal(t, "0", stored.Balances[currency])
	}
	assert.NotEqual(t, "1234", stored.PINHash, "pin is never stored verbatim")
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PINHash), []byte("1234")))
}

func TestRegisterSurfacesGeneratedSeed(t *testing.T) {
	var buf bytes.Buffer
	accounts := &stubAccountRepo{accounts: map[string]*domain.Account{}}
	svc := NewAccountService(accounts, &stubGateway{}, slog.New(slog.NewJSONHandler(&buf, nil)))

	_, _, err := svc.Register(context.Background(), "+15550001111", "1234")
	require.NoError(t, err)

	// The seed is not stored anywhere, so the log line is the only place
	// the account's signing key ever appears.
	assert.Contains(t, buf.String(), "SNEW")
	stored := accounts.accounts["+15550001111"]
	require.NotNil(t, stored)
	assert.NotContains(t, []string{stored.PublicKey, stored.PINHash}, "SNEW")
}

func TestRegisterDuplicate(t *testing.T) {
	svc, _, _ := newAccountFixture()

	_, _, err := svc.Register(context.Background(), "+15550001111", "1234")
	require.NoError(t, err)

	_, _, err = svc.Register(context.Background(), "+15550001111", "5678")
	assert.Equal(t, errors.DuplicateAccount, errors.CodeOf(err))
}

func TestAuthenticate(t *testing.T) {
	svc, _, _ := newAccountFixture()
	_, _, err := svc.Register(context.Background(), "+15550001111", "1234")
	require.NoError(t, err)

	account, err := svc.Authenticate(context.Background(), "+15550001111", "1234")
	require.NoError(t, err)
	assert.Equal(t, "+15550001111", account.PhoneNumber)

	_, err = svc.Authenticate(context.Background(), "+15550001111", "9999")
	assert.Equal(t, errors.IncorrectPIN, errors.CodeOf(err))

	_, err = svc.Authenticate(context.Background(), "+15559998888", "1234")
	assert.Equal(t, errors.AccountNotFound, errors.CodeOf(err))
}
