package domain

// Currency is a supported wallet currency code.
type Currency string

const (
	CurrencyXLM  Currency = "XLM"
	CurrencyUSDC Currency = "USDC"
	CurrencyEURC Currency = "EURC"
)

// SupportedCurrencies returns the fixed currency set in menu order.
func SupportedCurrencies() []Currency {
	return []Currency{CurrencyXLM, CurrencyUSDC, CurrencyEURC}
}

// CurrencyFromOption maps a single menu digit to a currency.
// The digit positions are a wire contract with the menu text.
func CurrencyFromOption(option string) (Currency, bool) {
	switch option {
	case "1":
		return CurrencyXLM, true
	case "2":
		return CurrencyUSDC, true
	case "3":
		return CurrencyEURC, true
	default:
		return "", false
	}
}
