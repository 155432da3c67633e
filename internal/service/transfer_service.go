package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/cliff-dev/PayFLow/internal/domain"
	"github.com/cliff-dev/PayFLow/internal/errors"
)

// balancePrecision matches the stored balance format on the settlement
// network: seven decimal places.
const balancePrecision = 7

// Sender and recipient lookups fail with distinct classifications so the
// menu can phrase them apart.
var (
	ErrSenderNotFound    = errors.NewAppError(errors.AccountNotFound, "sender account not found")
	ErrRecipientNotFound = errors.NewAppError(errors.AccountNotFound, "recipient account not found")
)

// sessionKeyNamespace scopes the deterministic idempotency keys derived
// from (session id, full dialed path).
var sessionKeyNamespace = uuid.MustParse("0d1f7b86-3c92-4a4e-9e5d-6f40b1d2a9c3")

// SessionKey derives the idempotency key for one confirmed transfer. The
// same session replaying the same path always yields the same key.
func SessionKey(sessionID, path string) uuid.UUID {
	return uuid.NewSHA1(sessionKeyNamespace, []byte(sessionID+"\n"+path))
}

type TransferService struct {
	accounts     domain.AccountRepository
	transactions domain.TransactionRepository
	gateway      domain.SettlementGateway
	logger       *slog.Logger
}

func NewTransferService(
	accounts domain.AccountRepository,
	transactions domain.TransactionRepository,
	gateway domain.SettlementGateway,
	logger *slog.Logger,
) *TransferService {
	return &TransferService{
		accounts:     accounts,
		transactions: transactions,
		gateway:      gateway,
		logger:       logger,
	}
}

type TransferRequest struct {
	SessionID string
	Path      string
	FromPhone string
	ToPhone   string
	Currency  domain.Currency
	Amount    decimal.Decimal
}

// TransferOutcome reports what happened after settlement succeeded. Value
// moved in every outcome; the flags record how much of the local
// bookkeeping followed.
type TransferOutcome struct {
	NewBalance      string
	Reference       string
	BalanceRecorded bool
	RecordWritten   bool
	Replayed        bool
}

// Transfer executes a confirmed transfer: idempotency check, preconditions,
// settlement, conditional debit, transaction record, in that order.
// Settlement is irreversible and attempted at most once per idempotency
// key; everything after it is best effort and reported, never retried with
// a second settlement.
func (s *TransferService) Transfer(ctx context.Context, req *TransferRequest) (*TransferOutcome, error) {
	key := SessionKey(req.SessionID, req.Path)

	s.logger.Info("Processing transfer",
		"from", req.FromPhone,
		"to", req.ToPhone,
		"currency", req.Currency,
		"amount", req.Amount,
		"session_key", key)

	prior, err := s.transactions.FindBySessionKey(ctx, key)
	if err != nil {
		return nil, err
	}
	if prior != nil {
		return s.replay(ctx, req, prior)
	}

	sender, err := s.accounts.FindByPhone(ctx, req.FromPhone)
	if err != nil {
		if errors.CodeOf(err) == errors.AccountNotFound {
			return nil, ErrSenderNotFound
		}
		return nil, err
	}
	if sender.PublicKey == "" {
		return nil, ErrSenderNotFound
	}

	recipient, err := s.accounts.FindByPhone(ctx, req.ToPhone)
	if err != nil {
		if errors.CodeOf(err) == errors.AccountNotFound {
			return nil, ErrRecipientNotFound
		}
		return nil, err
	}
	if recipient.PublicKey == "" {
		return nil, ErrRecipientNotFound
	}

	if s.gateway.SourceAddress() != sender.PublicKey {
		s.logger.Error("Signing identity does not match sender's settlement identity",
			"sender_identity", sender.PublicKey,
			"signing_identity", s.gateway.SourceAddress())
		return nil, errors.ErrConfiguration
	}

	balance, err := sender.Balance(req.Currency)
	if err != nil {
		s.logger.Error("Failed to parse stored balance", "phone", req.FromPhone, "currency", req.Currency, "error", err)
		return nil, errors.NewAppError(errors.InternalError, "failed to parse stored balance").WithDetails(err.Error())
	}
	if balance.LessThan(req.Amount) {
		return nil, errors.ErrInsufficientBalance
	}

	// The single authoritative value movement. Nothing below may cause it
	// to run again for this key.
	reference, err := s.gateway.Settle(ctx, sender.PublicKey, recipient.PublicKey, req.Currency, req.Amount)
	if err != nil {
		code := errors.CodeOf(err)
		if code == errors.SettlementTimeout {
			// The network may still have accepted the operation; the attempt
			// row keeps the ambiguity visible for reconciliation.
			s.logger.Error("Settlement timed out, outcome unknown", "session_key", key, "error", err)
		} else {
			s.logger.Warn("Settlement failed", "session_key", key, "error", err)
		}
		s.recordAttempt(ctx, req, key, domain.TransactionFailed, nil)
		if code == errors.SettlementTimeout {
			return nil, errors.ErrSettlementTimeout
		}
		return nil, errors.ErrSettlementFailed
	}

	outcome := &TransferOutcome{
		Reference:  reference,
		NewBalance: balance.Sub(req.Amount).StringFixed(balancePrecision),
	}

	oldValue := sender.Balances[req.Currency]
	if err := s.accounts.UpdateBalance(ctx, req.FromPhone, req.Currency, oldValue, outcome.NewBalance); err != nil {
		s.logger.Error("Reconciliation needed: settlement succeeded but debit was not recorded",
			"classification", errors.ReconciliationNeeded,
			"session_key", key,
			"reference", reference,
			"phone", req.FromPhone,
			"currency", req.Currency,
			"error", err)
		// The completed row must still be written: it is the idempotency
		// marker that stops a resent confirmation from settling again.
		if recErr := s.recordAttempt(ctx, req, key, domain.TransactionCompleted, &reference); recErr != nil {
			s.logger.Error("Settlement succeeded but neither debit nor transaction row was recorded",
				"classification", errors.ReconciliationNeeded,
				"session_key", key,
				"reference", reference,
				"error", recErr)
		} else {
			outcome.RecordWritten = true
		}
		return outcome, nil
	}
	outcome.BalanceRecorded = true

	if err := s.recordAttempt(ctx, req, key, domain.TransactionCompleted, &reference); err != nil {
		s.logger.Error("Settlement and debit recorded but transaction row was not",
			"classification", errors.ReconciliationNeeded,
			"session_key", key,
			"reference", reference,
			"error", err)
		return outcome, nil
	}
	outcome.RecordWritten = true

	s.logger.Info("Transfer completed", "session_key", key, "reference", reference, "new_balance", outcome.NewBalance)
	return outcome, nil
}

// replay resolves a confirmation that already reached the settlement call.
func (s *TransferService) replay(ctx context.Context, req *TransferRequest, prior *domain.Transaction) (*TransferOutcome, error) {
	s.logger.Info("Replayed confirmation, returning recorded outcome",
		"session_key", prior.SessionKey,
		"transaction_id", prior.ID,
		"status", prior.Status)

	if prior.Status != domain.TransactionCompleted {
		return nil, errors.ErrSettlementFailed
	}

	outcome := &TransferOutcome{
		Replayed:        true,
		BalanceRecorded: true,
		RecordWritten:   true,
	}
	if prior.SettlementRef != nil {
		outcome.Reference = *prior.SettlementRef
	}

	sender, err := s.accounts.FindByPhone(ctx, req.FromPhone)
	if err != nil {
		return nil, err
	}
	balance, err := sender.Balance(req.Currency)
	if err != nil {
		return nil, errors.NewAppError(errors.InternalError, "failed to parse stored balance").WithDetails(err.Error())
	}
	outcome.NewBalance = balance.StringFixed(balancePrecision)
	return outcome, nil
}

func (s *TransferService) recordAttempt(ctx context.Context, req *TransferRequest, key uuid.UUID, status domain.TransactionStatus, reference *string) error {
	tx := &domain.Transaction{
		ID:            uuid.New(),
		FromPhone:     req.FromPhone,
		ToPhone:       req.ToPhone,
		Currency:      req.Currency,
		Amount:        req.Amount,
		Status:        status,
		SettlementRef: reference,
		SessionKey:    &key,
	}

	if err := s.transactions.Create(ctx, tx); err != nil {
		if status == domain.TransactionFailed {
			// Attempt rows are informational; the failure classification
			// already carries the user-facing result.
			s.logger.Error("Failed to record settlement attempt", "session_key", key, "error", err)
			return nil
		}
		return err
	}
	return nil
}
