package ussd

// Step identifies one position in the menu ladder. It is derived on every
// request from the flow selector, the main-menu selector and the token
// count, never stored.
type Step int

const (
	StepEntryMenu Step = iota
	StepRegisterPhonePrompt
	StepRegisterPhone
	StepRegisterPIN
	StepLoginPhonePrompt
	StepLoginPhone
	StepLoginPIN
	StepBalanceCurrencyPrompt
	StepBalanceResult
	StepSendCurrencyPrompt
	StepSendCurrency
	StepSendRecipient
	StepSendAmount
	StepSendConfirm
	StepExit
	StepInvalid
)

const (
	flowRegister = "1"
	flowExisting = "2"

	menuBalance = "1"
	menuSend    = "2"
	menuExit    = "3"
)

// DeriveStep maps a decoded token sequence to its ladder position. Total:
// every sequence maps to exactly one step, with StepInvalid covering
// unknown selectors and counts beyond any defined ladder.
func DeriveStep(tokens []string) Step {
	if len(tokens) == 0 {
		return StepEntryMenu
	}

	switch tokens[0] {
	case flowRegister:
		switch len(tokens) {
		case 1:
			return StepRegisterPhonePrompt
		case 2:
			return StepRegisterPhone
		case 3:
			return StepRegisterPIN
		}
		return StepInvalid

	case flowExisting:
		switch len(tokens) {
		case 1:
			return StepLoginPhonePrompt
		case 2:
			return StepLoginPhone
		case 3:
			return StepLoginPIN
		}
		// Authenticated main menu: tokens[3] selects the feature.
		switch tokens[3] {
		case menuBalance:
			switch len(tokens) {
			case 4:
				return StepBalanceCurrencyPrompt
			case 5:
				return StepBalanceResult
			}
		case menuSend:
			switch len(tokens) {
			case 4:
				return StepSendCurrencyPrompt
			case 5:
				return StepSendCurrency
			case 6:
				return StepSendRecipient
			case 7:
				return StepSendAmount
			case 8:
				return StepSendConfirm
			}
		case menuExit:
			if len(tokens) == 4 {
				return StepExit
			}
		}
		return StepInvalid
	}

	return StepInvalid
}
