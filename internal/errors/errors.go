package errors

import (
	stderrors "errors"
	"fmt"
)

type ErrorCode string

const (
	FormatError          ErrorCode = "format_error"
	AccountNotFound      ErrorCode = "account_not_found"
	DuplicateAccount     ErrorCode = "duplicate_account"
	IncorrectPIN         ErrorCode = "incorrect_pin"
	InsufficientBalance  ErrorCode = "insufficient_balance"
	ConfigurationError   ErrorCode = "configuration_error"
	SettlementFailed     ErrorCode = "settlement_failed"
	SettlementTimeout    ErrorCode = "settlement_timeout"
	ReconciliationNeeded ErrorCode = "reconciliation_needed"
	BalanceConflict      ErrorCode = "balance_conflict"
	DuplicateTransaction ErrorCode = "duplicate_transaction"
	InternalError        ErrorCode = "internal_error"
)

type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Details string    `json:"details,omitempty"`
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NewAppError(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

func (e *AppError) WithDetails(details string) *AppError {
	return &AppError{
		Code:    e.Code,
		Message: e.Message,
		Details: details,
	}
}

// CodeOf extracts the classification of err, defaulting to InternalError for
// anything that is not an AppError.
func CodeOf(err error) ErrorCode {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	return InternalError
}

// Predefined errors for common cases
var (
	ErrAccountNotFound      = NewAppError(AccountNotFound, "account not found")
	ErrDuplicateAccount     = NewAppError(DuplicateAccount, "account already registered")
	ErrIncorrectPIN         = NewAppError(IncorrectPIN, "pin does not match")
	ErrInsufficientBalance  = NewAppError(InsufficientBalance, "balance is lower than the requested amount")
	ErrConfiguration        = NewAppError(ConfigurationError, "signing identity does not match the account's settlement identity")
	ErrSettlementFailed     = NewAppError(SettlementFailed, "settlement network rejected the transfer")
	ErrSettlementTimeout    = NewAppError(SettlementTimeout, "settlement call timed out before a result was seen")
	ErrBalanceConflict      = NewAppError(BalanceConflict, "stored balance changed since it was read")
	ErrDuplicateTransaction = NewAppError(DuplicateTransaction, "transaction already processed")
)
