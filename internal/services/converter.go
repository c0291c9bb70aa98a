package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"wallit/internal/money"
	"wallit/internal/rates"

	"github.com/shopspring/decimal"
)

var (
	// ErrNoRate means the provider answered for the day but the rate map
	// has no entry for the transaction's currency. Not retried.
	ErrNoRate = errors.New("no exchange rate for currency")
	// ErrRateLookup wraps upstream fetch failures.
	ErrRateLookup = errors.New("exchange rate lookup failed")
)

// RateSource yields the complete rate map for a (target, day) pair;
// *rates.Service satisfies it.
type RateSource interface {
	RatesFor(ctx context.Context, target string, day time.Time) (rates.RateMap, error)
}

// Converter turns base amounts into a target currency using dated rates.
// It is pure with respect to its inputs and the rate source.
type Converter struct {
	rates RateSource
}

func NewConverter(rates RateSource) *Converter {
	return &Converter{rates: rates}
}

// Convert returns amount expressed in the target currency on the
// transaction's calendar day, rounded half-to-even to two decimals.
func (c *Converter) Convert(ctx context.Context, amount decimal.Decimal, from, target string, date time.Time) (decimal.Decimal, error) {
	if from == target {
		return amount, nil
	}
	rateMap, err := c.rates.RatesFor(ctx, target, date)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %v", ErrRateLookup, err)
	}
	rate, ok := rateMap[from]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %s on %s", ErrNoRate, from, date.Format("2006-01-02"))
	}
	return money.Round2(amount.Div(rate)), nil
}
