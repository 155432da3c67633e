package service

import (
	"context"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"github.com/cliff-dev/PayFLow/internal/domain"
	"github.com/cliff-dev/PayFLow/internal/errors"
)

type AccountService struct {
	accounts domain.AccountRepository
	gateway  domain.SettlementGateway
	logger   *slog.Logger
}

func NewAccountService(accounts domain.AccountRepository, gateway domain.SettlementGateway, logger *slog.Logger) *AccountService {
	return &AccountService{
		accounts: accounts,
		gateway:  gateway,
		logger:   logger,
	}
}

// Find looks up an account by normalized phone number.
func (s *AccountService) Find(ctx context.Context, phone string) (*domain.Account, error) {
	return s.accounts.FindByPhone(ctx, phone)
}

// Register creates an account for phone with a fresh settlement identity,
// zeroed balances and a hashed PIN, then attempts initial funding. The
// returned flag reports whether funding succeeded; registration itself
// stands either way.
func (s *AccountService) Register(ctx context.Context, phone, pin string) (*domain.Account, bool, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("Failed to hash pin", "error", err)
		return nil, false, errors.NewAppError(errors.InternalError, "failed to hash pin").WithDetails(err.Error())
	}

	address, seed, err := s.gateway.NewIdentity()
	if err != nil {
		s.logger.Error("Failed to generate settlement identity", "error", err)
		return nil, false, errors.NewAppError(errors.InternalError, "failed to generate settlement identity").WithDetails(err.Error())
	}
	// Testnet only: the seed is not persisted, so log it once or the
	// signing key for this account is gone.
	s.logger.Info("Generated settlement identity", "public_key", address, "seed", seed)

	account := &domain.Account{
		PhoneNumber:       phone,
		PublicKey:         address,
		PreferredCurrency: domain.CurrencyXLM,
		Balances:          domain.ZeroBalances(),
		PINHash:           string(hash),
	}

	if err := s.accounts.Create(ctx, account); err != nil {
		return nil, false, err
	}

	s.logger.Info("Account registered", "phone", phone, "public_key", address)

	funded := true
	if err := s.gateway.FundAccount(ctx, address); err != nil {
		s.logger.Warn("Initial funding failed", "public_key", address, "error", err)
		funded = false
	}

	return account, funded, nil
}

// Authenticate verifies the PIN for an existing account.
func (s *AccountService) Authenticate(ctx context.Context, phone, pin string) (*domain.Account, error) {
	account, err := s.accounts.FindByPhone(ctx, phone)
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PINHash), []byte(pin)); err != nil {
		if err == bcrypt.ErrMismatchedHashAndPassword {
			s.logger.Info("PIN mismatch", "phone", phone)
			return nil, errors.ErrIncorrectPIN
		}
		s.logger.Error("PIN comparison failed", "phone", phone, "error", err)
		return nil, errors.NewAppError(errors.InternalError, "failed to verify pin").WithDetails(err.Error())
	}

	return account, nil
}
