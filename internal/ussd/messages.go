package ussd

// Prompt and termination texts. Exact strings are part of the gateway
// contract; menu numbering here must agree with the selectors in step.go
// and domain.CurrencyFromOption.
const (
	msgWelcome = "Welcome to Stellar USSD Service\n1. Register\n2. Existing User"

	msgRegisterPhonePrompt = "Enter your phone number (in format +1234567890):"
	msgSetPINPrompt        = "Set a 4 to 6-digit PIN for your account:"
	msgLoginPhonePrompt    = "Enter your registered phone number (in format +1234567890):"
	msgEnterPINPrompt      = "Enter your PIN:"
	msgMainMenu            = "Welcome back!\n1. Check Balance\n2. Send Money\n3. Exit"
	msgBalanceMenu         = "Select balance to view:\n1. XLM\n2. USDC\n3. EURC"
	msgSendCurrencyMenu    = "Select currency to send:\n1. XLM\n2. USDC\n3. EURC"
	msgRecipientPrompt     = "Enter recipient's phone number (in format +1234567890):"
	msgAmountPrompt        = "Enter amount to send:"

	msgInvalidPhone      = "Invalid phone number format. Please try again."
	msgInvalidPIN        = "Invalid PIN format. Please enter a 4 to 6-digit PIN."
	msgInvalidSelection  = "Invalid selection. Please try again."
	msgInvalidCurrency   = "Invalid currency selection. Please try again."
	msgInvalidAmount     = "Invalid amount entered. Please try again."
	msgInvalidInput      = "Invalid input."
	msgInvalidOption     = "Invalid option. Please try again."
	msgInvalidFlow       = "Invalid option."
	msgGenericError      = "An error occurred. Please try again later."
	msgRegistrationError = "An error occurred during registration. Please try again later."
	msgAlreadyRegistered = "User already registered. Please use the existing user option."
	msgNoAccountLogin    = "No account found for this phone number. Please register first."
	msgNoAccountPIN      = "No account found. Please register first."
	msgIncorrectPIN      = "Incorrect PIN. Please try again."
	msgBalanceFetchError = "An error occurred while fetching your balance."
	msgNoBalanceInfo     = "No balance information found."

	msgSenderNotFound       = "Sender account not found."
	msgRecipientNotFound    = "Recipient account not found."
	msgConfigurationError   = "Configuration error. Please contact support."
	msgUnsupportedCurrency  = "Unsupported currency."
	msgTransferFailed       = "Transaction failed. Please try again."
	msgTransferCanceled     = "Transaction canceled."
	msgBalanceUpdateMissed  = "Transaction successful, but failed to update your balance."
	msgTransferRecordMissed = "Transaction successful, but failed to record it."

	msgGoodbye = "Thank you for using Stellar USSD Service. Goodbye!"
)
