package ussd

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"

	"github.com/cliff-dev/PayFLow/internal/domain"
	"github.com/cliff-dev/PayFLow/internal/errors"
	"github.com/cliff-dev/PayFLow/internal/service"
	"github.com/cliff-dev/PayFLow/internal/validate"
)

const confirmYes = "1"
const confirmNo = "2"

// Request carries the four fields the session gateway sends per keystroke
// cycle.
type Request struct {
	SessionID   string
	ServiceCode string
	PhoneNumber string
	Text        string
}

// Machine maps a decoded path to the next prompt or final text. It holds no
// session state; every Handle call re-derives the conversation position
// from the path.
type Machine struct {
	accounts  *service.AccountService
	transfers *service.TransferService
	logger    *slog.Logger
}

func NewMachine(accounts *service.AccountService, transfers *service.TransferService, logger *slog.Logger) *Machine {
	return &Machine{
		accounts:  accounts,
		transfers: transfers,
		logger:    logger,
	}
}

// Handle runs one request through the ladder. An invalid answer terminates
// the session; the gateway model has no re-entry of a step.
func (m *Machine) Handle(ctx context.Context, req Request) Reply {
	tokens := SplitPath(req.Text)

	switch DeriveStep(tokens) {
	case StepEntryMenu:
		return Continue(msgWelcome)

	case StepRegisterPhonePrompt:
		return Continue(msgRegisterPhonePrompt)

	case StepRegisterPhone:
		return m.registerPhone(ctx, tokens)

	case StepRegisterPIN:
		return m.registerPIN(ctx, tokens)

	case StepLoginPhonePrompt:
		return Continue(msgLoginPhonePrompt)

	case StepLoginPhone:
		return m.loginPhone(ctx, tokens)

	case StepLoginPIN:
		return m.loginPIN(ctx, tokens)

	case StepBalanceCurrencyPrompt:
		return Continue(msgBalanceMenu)

	case StepBalanceResult:
		return m.balanceResult(ctx, tokens)

	case StepSendCurrencyPrompt:
		return Continue(msgSendCurrencyMenu)

	case StepSendCurrency:
		if _, ok := domain.CurrencyFromOption(tokens[4]); !ok {
			return m.formatReject("currency", msgInvalidCurrency)
		}
		return Continue(msgRecipientPrompt)

	case StepSendRecipient:
		recipient := validate.NormalizePhone(tokens[5])
		if !validate.ValidPhone(recipient) {
			return m.formatReject("recipient", msgInvalidPhone)
		}
		return Continue(msgAmountPrompt)

	case StepSendAmount:
		amount, ok := validate.ParseAmount(tokens[6])
		if !ok {
			return m.formatReject("amount", msgInvalidAmount)
		}
		return Continue(fmt.Sprintf("Confirm sending %s to %s?\n1. Yes\n2. No", amount.String(), tokens[5]))

	case StepSendConfirm:
		switch tokens[7] {
		case confirmYes:
			return m.executeTransfer(ctx, req, tokens)
		case confirmNo:
			return End(msgTransferCanceled)
		default:
			return m.formatReject("confirmation", msgInvalidInput)
		}

	case StepExit:
		return End(msgGoodbye)

	case StepInvalid:
		if tokens[0] != flowRegister && tokens[0] != flowExisting {
			return End(msgInvalidFlow)
		}
		return End(msgInvalidOption)
	}

	return End(msgInvalidOption)
}

// formatReject terminates the session on malformed input. These are user
// mistakes, not faults; they are tagged for observability and end the
// session without an error value.
func (m *Machine) formatReject(field, text string) Reply {
	m.logger.Info("Session terminated on malformed input",
		"classification", errors.FormatError,
		"field", field)
	return End(text)
}

func (m *Machine) registerPhone(ctx context.Context, tokens []string) Reply {
	phone := validate.NormalizePhone(tokens[1])
	if !validate.ValidPhone(phone) {
		return m.formatReject("phone", msgInvalidPhone)
	}

	_, err := m.accounts.Find(ctx, phone)
	switch {
	case err == nil:
		return End(msgAlreadyRegistered)
	case errors.CodeOf(err) == errors.AccountNotFound:
		return Continue(msgSetPINPrompt)
	default:
		m.logger.Error("Failed to check existing account", "phone", phone, "error", err)
		return End(msgGenericError)
	}
}

func (m *Machine) registerPIN(ctx context.Context, tokens []string) Reply {
	phone := validate.NormalizePhone(tokens[1])
	if !validate.ValidPhone(phone) {
		return m.formatReject("phone", msgInvalidPhone)
	}
	pin := tokens[2]
	if !validate.ValidPIN(pin) {
		return m.formatReject("pin", msgInvalidPIN)
	}

	account, funded, err := m.accounts.Register(ctx, phone, pin)
	if err != nil {
		if errors.CodeOf(err) == errors.DuplicateAccount {
			return End(msgAlreadyRegistered)
		}
		m.logger.Error("Registration failed", "phone", phone, "error", err)
		return End(msgRegistrationError)
	}

	if funded {
		return End(fmt.Sprintf("Registration successful!\nYour Stellar Public Key: %s\nYour account has been funded with XLM on Testnet. You can now use the service.", account.PublicKey))
	}
	return End(fmt.Sprintf("Registration successful!\nYour Stellar Public Key: %s\nHowever, we couldn't fund your account automatically. Please fund it manually using the Stellar Laboratory.", account.PublicKey))
}

func (m *Machine) loginPhone(ctx context.Context, tokens []string) Reply {
	phone := validate.NormalizePhone(tokens[1])
	if !validate.ValidPhone(phone) {
		return m.formatReject("phone", msgInvalidPhone)
	}

	_, err := m.accounts.Find(ctx, phone)
	switch {
	case err == nil:
		return Continue(msgEnterPINPrompt)
	case errors.CodeOf(err) == errors.AccountNotFound:
		return End(msgNoAccountLogin)
	default:
		m.logger.Error("Failed to fetch account", "phone", phone, "error", err)
		return End(msgGenericError)
	}
}

func (m *Machine) loginPIN(ctx context.Context, tokens []string) Reply {
	phone := validate.NormalizePhone(tokens[1])

	_, err := m.accounts.Authenticate(ctx, phone, tokens[2])
	switch {
	case err == nil:
		return Continue(msgMainMenu)
	case errors.CodeOf(err) == errors.AccountNotFound:
		return End(msgNoAccountPIN)
	case errors.CodeOf(err) == errors.IncorrectPIN:
		return End(msgIncorrectPIN)
	default:
		m.logger.Error("Authentication failed", "phone", phone, "error", err)
		return End(msgGenericError)
	}
}

func (m *Machine) balanceResult(ctx context.Context, tokens []string) Reply {
	currency, ok := domain.CurrencyFromOption(tokens[4])
	if !ok {
		return m.formatReject("currency", msgInvalidSelection)
	}

	phone := validate.NormalizePhone(tokens[1])
	account, err := m.accounts.Find(ctx, phone)
	if err != nil {
		if errors.CodeOf(err) == errors.AccountNotFound {
			return End(msgNoBalanceInfo)
		}
		m.logger.Error("Failed to fetch balance", "phone", phone, "error", err)
		return End(msgBalanceFetchError)
	}
	if account.Balances == nil {
		return End(msgNoBalanceInfo)
	}

	amount := account.Balances[currency]
	if amount == "" {
		amount = "0"
	}
	return End(fmt.Sprintf("Your %s balance is %s", currency, amount))
}

func (m *Machine) executeTransfer(ctx context.Context, req Request, tokens []string) Reply {
	currency, ok := domain.CurrencyFromOption(tokens[4])
	if !ok {
		return m.formatReject("currency", msgUnsupportedCurrency)
	}
	amount, ok := validate.ParseAmount(tokens[6])
	if !ok {
		return m.formatReject("amount", msgInvalidAmount)
	}
	from := validate.NormalizePhone(tokens[1])
	to := validate.NormalizePhone(tokens[5])
	if !validate.ValidPhone(from) || !validate.ValidPhone(to) {
		return m.formatReject("phone", msgInvalidPhone)
	}

	outcome, err := m.transfers.Transfer(ctx, &service.TransferRequest{
		SessionID: req.SessionID,
		Path:      req.Text,
		FromPhone: from,
		ToPhone:   to,
		Currency:  currency,
		Amount:    amount,
	})
	if err != nil {
		switch {
		case stderrors.Is(err, service.ErrSenderNotFound):
			return End(msgSenderNotFound)
		case stderrors.Is(err, service.ErrRecipientNotFound):
			return End(msgRecipientNotFound)
		}
		switch errors.CodeOf(err) {
		case errors.ConfigurationError:
			return End(msgConfigurationError)
		case errors.InsufficientBalance:
			return End(fmt.Sprintf("Insufficient %s balance.", currency))
		case errors.SettlementFailed, errors.SettlementTimeout:
			return End(msgTransferFailed)
		default:
			m.logger.Error("Transfer failed", "error", err)
			return End(msgGenericError)
		}
	}

	switch {
	case !outcome.BalanceRecorded:
		return End(msgBalanceUpdateMissed)
	case !outcome.RecordWritten:
		return End(msgTransferRecordMissed)
	default:
		return End(fmt.Sprintf("Transaction successful! Your new %s balance is %s", currency, outcome.NewBalance))
	}
}
