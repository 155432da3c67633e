// Package validate holds the pure format checks for user-entered values.
// Every function is total: malformed input yields a false flag or an error
// value, never a panic.
package validate

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	phonePattern = regexp.MustCompile(`^\+\d{10,15}$`)
	pinPattern   = regexp.MustCompile(`^\d{4,6}$`)
)

// NormalizePhone strips every non-digit character and prepends '+'.
// Idempotent: normalizing an already normalized number is a no-op.
func NormalizePhone(phone string) string {
	var b strings.Builder
	b.Grow(len(phone) + 1)
	b.WriteByte('+')
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ValidPhone reports whether phone is '+' followed by 10 to 15 digits.
// Callers normalize first.
func ValidPhone(phone string) bool {
	return phonePattern.MatchString(phone)
}

// ParseAmount parses a transfer amount, accepting only finite decimals
// strictly greater than zero.
func ParseAmount(s string) (decimal.Decimal, bool) {
	amount, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, false
	}
	if !amount.IsPositive() {
		return decimal.Zero, false
	}
	return amount, true
}

// ValidPIN reports whether pin is 4 to 6 ASCII digits.
func ValidPIN(pin string) bool {
	return pinPattern.MatchString(pin)
}
