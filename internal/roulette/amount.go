package roulette

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	// MaxAmountScale is the most decimal places accepted for a bet or balance.
	MaxAmountScale = 8

	// MaxAmountIntegerDigits caps the whole part of a typed amount.
	MaxAmountIntegerDigits = 15

	maxAmountTextLen = 64
)

var errAmountOutOfRange = errors.New("amount out of range")

// parseAmount reads typed money and refuses values whose size would make
// decimal arithmetic or formatting unbounded, e.g. "1e50000000".
func parseAmount(text string) (decimal.Decimal, error) {
	text = strings.TrimSpace(text)
	if len(text) > maxAmountTextLen {
		return decimal.Zero, errAmountOutOfRange
	}

	d, err := decimal.NewFromString(text)
	if err != nil {
		return decimal.Zero, err
	}

	exp := int(d.Exponent())
	if exp < -MaxAmountScale || d.NumDigits()+exp > MaxAmountIntegerDigits {
		return decimal.Zero, errAmountOutOfRange
	}
	return d, nil
}
