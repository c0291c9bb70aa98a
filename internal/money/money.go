package money

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidAmount = errors.New("invalid amount")
	ErrInvalidRate   = errors.New("invalid rate")
)

// Parse reads a signed decimal amount, tolerating surrounding whitespace.
func Parse(input string) (decimal.Decimal, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	amount, err := decimal.NewFromString(trimmed)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	return amount, nil
}

// ParseRate reads a strictly positive decimal exchange rate.
func ParseRate(input string) (decimal.Decimal, error) {
	rate, err := Parse(input)
	if err != nil || rate.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, ErrInvalidRate
	}
	return rate, nil
}

// Round2 rounds half-to-even to two decimal places, the precision every
// stored amount and reported sum is kept at.
func Round2(value decimal.Decimal) decimal.Decimal {
	return value.RoundBank(2)
}
