package service

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cliff-dev/PayFLow/internal/domain"
	"github.com/cliff-dev/PayFLow/internal/errors"
)

const (
	testSender    = "+15551234567"
	testRecipient = "+15557654321"
	testSenderKey = "GSENDERPUBLICKEY"
	testRecipKey  = "GRECIPIENTPUBLICKEY"
)

type stubAccountRepo struct {
	accounts  map[string]*domain.Account
	updateErr error
	updates   int
}

func (s *stubAccountRepo) FindByPhone(_ context.Context, phone string) (*domain.Account, error) {
	account, ok := s.accounts[phone]
	if !ok {
		return nil, errors.ErrAccountNotFound
	}
	return account, nil
}

func (s *stubAccountRepo) Create(_ context.Context, account *domain.Account) error {
	if _, ok := s.accounts[account.PhoneNumber]; ok {
		return errors.ErrDuplicateAccount
	}
	s.accounts[account.PhoneNumber] = account
	return nil
}

func (s *stubAccountRepo) UpdateBalance(_ context.Context, phone string, currency domain.Currency, oldValue, newValue string) error {
	if s.updateErr != nil {
		return s.updateErr
	}
	account, ok := s.accounts[phone]
	if !ok {
		return errors.ErrAccountNotFound
	}
	if account.Balances[currency] != oldValue {
		return errors.ErrBalanceConflict
	}
	account.Balances[currency] = newValue
	s.updates++
	return nil
}

type stubTransactionRepo struct {
	transactions []*domain.Transaction
	createErr    error
}

func (s *stubTransactionRepo) Create(_ context.Context, tx *domain.Transaction) error {
	if s.createErr != nil {
		return s.createErr
	}
	s.transactions = append(s.transactions, tx)
	return nil
}

func (s *stubTransactionRepo) FindBySessionKey(_ context.Context, key uuid.UUID) (*domain.Transaction, error) {
	for _, tx := range s.transactions {
		if tx.SessionKey != nil && *tx.SessionKey == key {
			return tx, nil
		}
	}
	return nil, nil
}

type stubGateway struct {
	source    string
	settleErr error
	calls     int
}

func (s *stubGateway) SourceAddress() string { return s.source }

func (s *stubGateway) Settle(_ context.Context, _, _ string, _ domain.Currency, _ decimal.Decimal) (string, error) {
	s.calls++
	if s.settleErr != nil {
		return "", s.settleErr
	}
	return "txhash123", nil
}

func (s *stubGateway) NewIdentity() (string, string, error) { return "GNEW", "SNEW", nil }

func (s *stubGateway) FundAccount(_ context.Context, _ string) error { return nil }

func newTransferFixture() (*TransferService, *stubAccountRepo, *stubTransactionRepo, *stubGateway) {
	accounts := &stubAccountRepo{accounts: map[string]*domain.Account{
		testSender: {
			PhoneNumber: testSender,
			PublicKey:   testSenderKey,
			Balances:    map[domain.Currency]string{domain.CurrencyXLM: "100"},
		},
		testRecipient: {
			PhoneNumber: testRecipient,
			PublicKey:   testRecipKey,
			Balances:    domain.ZeroBalances(),
		},
	}}
	transactions := &stubTransactionRepo{}
	gateway := &stubGateway{source: testSenderKey}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewTransferService(accounts, transactions, gateway, logger), accounts, transactions, gateway
}

func transferRequest(amount int64) *TransferRequest {
	return &TransferRequest{
		SessionID: "session-1",
		Path:      "2*+15551234567*1234*2*1*+15557654321*10*1",
		FromPhone: testSender,
		ToPhone:   testRecipient,
		Currency:  domain.CurrencyXLM,
		Amount:    decimal.NewFromInt(amount),
	}
}

func TestSessionKeyDeterministic(t *testing.T) {
	a := SessionKey("session-1", "2*a*b*1")
	b := SessionKey("session-1", "2*a*b*1")
	c := SessionKey("session-2", "2*a*b*1")
	d := SessionKey("session-1", "2*a*b*2")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.NotEqual(t, a, d)
}

func TestTransferSuccess(t *testing.T) {
	svc, accounts, transactions, gateway := newTransferFixture()

	outcome, err := svc.Transfer(context.Background(), transferRequest(10))
	require.NoError(t, err)

	assert.Equal(t, "90.0000000", outcome.NewBalance)
	assert.Equal(t, "txhash123", outcome.Reference)
	assert.True(t, outcome.BalanceRecorded)
	assert.True(t, outcome.RecordWritten)
	assert.False(t, outcome.Replayed)

	assert.Equal(t, 1, gateway.calls)
	assert.Equal(t, "90.0000000", accounts.accounts[testSender].Balances[domain.CurrencyXLM])
	require.Len(t, transactions.transactions, 1)
	assert.Equal(t, domain.TransactionCompleted, transactions.transactions[0].Status)
	require.NotNil(t, transactions.transactions[0].SessionKey)
	assert.Equal(t, SessionKey("session-1", transferRequest(10).Path), *transactions.transactions[0].SessionKey)
}

func TestTransferSenderMissingIdentity(t *testing.T) {
	svc, accounts, _, gateway := newTransferFixture()
	accounts.accounts[testSender].PublicKey = ""

	_, err := svc.Transfer(context.Background(), transferRequest(10))
	assert.ErrorIs(t, err, ErrSenderNotFound)
	assert.Zero(t, gateway.calls)
}

func TestTransferRecipientNotFound(t *testing.T) {
	svc, accounts, _, gateway := newTransferFixture()
	delete(accounts.accounts, testRecipient)

	_, err := svc.Transfer(context.Background(), transferRequest(10))
	assert.ErrorIs(t, err, ErrRecipientNotFound)
	assert.Zero(t, gateway.calls)
}

func TestTransferConfigurationMismatch(t *testing.T) {
	svc, _, _, gateway := newTransferFixture()
	gateway.source = "GWRONGKEY"

	_, err := svc.Transfer(context.Background(), transferRequest(10))
	assert.Equal(t, errors.ConfigurationError, errors.CodeOf(err))
	assert.Zero(t, gateway.calls)
}

func TestTransferInsufficientBalance(t *testing.T) {
	svc, accounts, transactions, gateway := newTransferFixture()

	_, err := svc.Transfer(context.Background(), transferRequest(1000))
	assert.Equal(t, errors.InsufficientBalance, errors.CodeOf(err))
	assert.Zero(t, gateway.calls)
	assert.Empty(t, transactions.transactions)
	assert.Equal(t, "100", accounts.accounts[testSender].Balances[domain.CurrencyXLM])
}

func TestTransferSettlementFailure(t *testing.T) {
	svc, accounts, transactions, gateway := newTransferFixture()
	gateway.settleErr = errors.NewAppError(errors.SettlementFailed, "tx_failed")

	_, err := svc.Transfer(context.Background(), transferRequest(10))
	assert.Equal(t, errors.SettlementFailed, errors.CodeOf(err))

	// No debit; failed attempt recorded.
	assert.Equal(t, "100", accounts.accounts[testSender].Balances[domain.CurrencyXLM])
	require.Len(t, transactions.transactions, 1)
	assert.Equal(t, domain.TransactionFailed, transactions.transactions[0].Status)
	assert.Nil(t, transactions.transactions[0].SettlementRef)
}

func TestTransferSettlementTimeoutSurfacedDistinctly(t *testing.T) {
	svc, accounts, transactions, gateway := newTransferFixture()
	gateway.settleErr = errors.NewAppError(errors.SettlementTimeout, "deadline exceeded")

	_, err := svc.Transfer(context.Background(), transferRequest(10))
	assert.Equal(t, errors.SettlementTimeout, errors.CodeOf(err))

	// Bookkeeping treats the timeout as failure: no debit, attempt recorded.
	assert.Equal(t, "100", accounts.accounts[testSender].Balances[domain.CurrencyXLM])
	require.Len(t, transactions.transactions, 1)
	assert.Equal(t, domain.TransactionFailed, transactions.transactions[0].Status)
}

func TestTransferDebitConflictReportsReconciliation(t *testing.T) {
	svc, accounts, transactions, gateway := newTransferFixture()
	accounts.updateErr = errors.ErrBalanceConflict

	outcome, err := svc.Transfer(context.Background(), transferRequest(10))
	require.NoError(t, err, "funds moved, the user must not see a failure")

	assert.Equal(t, 1, gateway.calls)
	assert.False(t, outcome.BalanceRecorded)
	assert.True(t, outcome.RecordWritten)
	assert.Equal(t, "txhash123", outcome.Reference)

	// The completed row is still written; it carries the idempotency marker.
	require.Len(t, transactions.transactions, 1)
	assert.Equal(t, domain.TransactionCompleted, transactions.transactions[0].Status)
	require.NotNil(t, transactions.transactions[0].SettlementRef)
	assert.Equal(t, "txhash123", *transactions.transactions[0].SettlementRef)
	require.NotNil(t, transactions.transactions[0].SessionKey)
	assert.Equal(t, SessionKey("session-1", transferRequest(10).Path), *transactions.transactions[0].SessionKey)
}

func TestTransferReplayAfterDebitConflictDoesNotResettle(t *testing.T) {
	svc, accounts, transactions, gateway := newTransferFixture()
	accounts.updateErr = errors.ErrBalanceConflict

	first, err := svc.Transfer(context.Background(), transferRequest(10))
	require.NoError(t, err)
	assert.False(t, first.Replayed)
	assert.False(t, first.BalanceRecorded)

	second, err := svc.Transfer(context.Background(), transferRequest(10))
	require.NoError(t, err)
	assert.True(t, second.Replayed)
	assert.Equal(t, "txhash123", second.Reference)

	assert.Equal(t, 1, gateway.calls, "a resent confirmation must not settle again")
	assert.Len(t, transactions.transactions, 1)
}

func TestTransferDebitConflictAndRecordFailure(t *testing.T) {
	svc, accounts, transactions, gateway := newTransferFixture()
	accounts.updateErr = errors.ErrBalanceConflict
	transactions.createErr = errors.NewAppError(errors.InternalError, "insert failed")

	outcome, err := svc.Transfer(context.Background(), transferRequest(10))
	require.NoError(t, err, "funds moved, the user must not see a failure")

	assert.Equal(t, 1, gateway.calls)
	assert.False(t, outcome.BalanceRecorded)
	assert.False(t, outcome.RecordWritten)
	assert.Equal(t, "txhash123", outcome.Reference)
	assert.Empty(t, transactions.transactions)
}

func TestTransferRecordFailureStillReportsSuccess(t *testing.T) {
	svc, accounts, transactions, gateway := newTransferFixture()
	transactions.createErr = errors.NewAppError(errors.InternalError, "insert failed")

	outcome, err := svc.Transfer(context.Background(), transferRequest(10))
	require.NoError(t, err)

	assert.Equal(t, 1, gateway.calls)
	assert.True(t, outcome.BalanceRecorded)
	assert.False(t, outcome.RecordWritten)
	assert.Equal(t, "90.0000000", accounts.accounts[testSender].Balances[domain.CurrencyXLM])
}

func TestTransferReplayShortCircuits(t *testing.T) {
	svc, accounts, transactions, gateway := newTransferFixture()

	first, err := svc.Transfer(context.Background(), transferRequest(10))
	require.NoError(t, err)
	assert.False(t, first.Replayed)

	second, err := svc.Transfer(context.Background(), transferRequest(10))
	require.NoError(t, err)
	assert.True(t, second.Replayed)
	assert.Equal(t, "90.0000000", second.NewBalance)
	assert.Equal(t, "txhash123", second.Reference)

	assert.Equal(t, 1, gateway.calls, "settlement must not run twice for one key")
	assert.Equal(t, 1, accounts.updates)
	assert.Len(t, transactions.transactions, 1)
}

func TestTransferReplayOfFailedAttempt(t *testing.T) {
	svc, _, _, gateway := newTransferFixture()
	gateway.settleErr = errors.NewAppError(errors.SettlementFailed, "tx_failed")

	_, err := svc.Transfer(context.Background(), transferRequest(10))
	require.Error(t, err)

	gateway.settleErr = nil
	_, err = svc.Transfer(context.Background(), transferRequest(10))
	assert.Equal(t, errors.SettlementFailed, errors.CodeOf(err), "replay repeats the terminal result")
	assert.Equal(t, 1, gateway.calls, "a recorded attempt is never re-settled")
}
