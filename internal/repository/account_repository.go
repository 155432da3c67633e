package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/lib/pq"

	"github.com/cliff-dev/PayFLow/internal/domain"
	"github.com/cliff-dev/PayFLow/internal/errors"
)

type accountRepository struct {
	db     SQLExecutor
	logger *slog.Logger
}

func NewAccountRepository(db SQLExecutor, logger *slog.Logger) domain.AccountRepository {
	return &accountRepository{
		db:     db,
		logger: logger,
	}
}

func (r *accountRepository) Create(ctx context.Context, account *domain.Account) error {
	query := `
		INSERT INTO accounts (phone_number, public_key, preferred_currency, wallet_balance, pin_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	balances, err := json.Marshal(account.Balances)
	if err != nil {
		return errors.NewAppError(errors.InternalError, "failed to encode balances").WithDetails(err.Error())
	}

	now := time.Now()
	_, err = r.db.ExecContext(
		ctx,
		query,
		account.PhoneNumber,
		account.PublicKey,
		account.PreferredCurrency,
		balances,
		account.PINHash,
		now,
		now,
	)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Code == "23505" { // unique_violation
				r.logger.Warn("Duplicate registration attempt", "phone", account.PhoneNumber)
				return errors.ErrDuplicateAccount
			}
		}
		r.logger.Error("Failed to create account", "phone", account.PhoneNumber, "error", err)
		return errors.NewAppError(errors.InternalError, "failed to create account").WithDetails(err.Error())
	}

	account.CreatedAt = now
	account.UpdatedAt = now
	r.logger.Info("Account created successfully", "phone", account.PhoneNumber)
	return nil
}

func (r *accountRepository) FindByPhone(ctx context.Context, phone string) (*domain.Account, error) {
	query := `
		SELECT phone_number, public_key, preferred_currency, wallet_balance, pin_hash, created_at, updated_at
		FROM accounts WHERE phone_number = $1
	`

	var account domain.Account
	var balancesRaw []byte

	err := r.db.QueryRowContext(ctx, query, phone).Scan(
		&account.PhoneNumber,
		&account.PublicKey,
		&account.PreferredCurrency,
		&balancesRaw,
		&account.PINHash,
		&account.CreatedAt,
		&account.UpdatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.ErrAccountNotFound
		}
		r.logger.Error("Failed to get account", "phone", phone, "error", err)
		return nil, errors.NewAppError(errors.InternalError, "failed to get account").WithDetails(err.Error())
	}

	if err := json.Unmarshal(balancesRaw, &account.Balances); err != nil {
		r.logger.Error("Failed to decode balances", "phone", phone, "error", err)
		return nil, errors.NewAppError(errors.InternalError, "failed to decode balances").WithDetails(err.Error())
	}

	return &account, nil
}

// UpdateBalance is a compare-and-set: the write lands only if the stored
// value for the currency still equals oldValue. A concurrent debit between
// read and write surfaces as ErrBalanceConflict instead of an overwrite.
func (r *accountRepository) UpdateBalance(ctx context.Context, phone string, currency domain.Currency, oldValue, newValue string) error {
	query := `
		UPDATE accounts
		SET wallet_balance = jsonb_set(wallet_balance, ARRAY[$2], to_jsonb($3::text)), updated_at = $4
		WHERE phone_number = $1 AND wallet_balance->>$2 = $5
	`

	result, err := r.db.ExecContext(ctx, query, phone, string(currency), newValue, time.Now(), oldValue)
	if err != nil {
		r.logger.Error("Failed to update balance", "phone", phone, "currency", currency, "error", err)
		return errors.NewAppError(errors.InternalError, "failed to update balance").WithDetails(err.Error())
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errors.NewAppError(errors.InternalError, "failed to get rows affected").WithDetails(err.Error())
	}

	if rowsAffected == 0 {
		if _, findErr := r.FindByPhone(ctx, phone); findErr != nil {
			return findErr
		}
		r.logger.Warn("Balance changed since read, conditional update skipped",
			"phone", phone, "currency", currency, "expected", oldValue)
		return errors.ErrBalanceConflict
	}

	r.logger.Info("Balance updated", "phone", phone, "currency", currency, "new_balance", newValue)
	return nil
}
