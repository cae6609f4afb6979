package roulette

import (
	"errors"

	"github.com/shopspring/decimal"
)

var ErrInvalidInitialBalance = errors.New(InvalidBalanceMessage)

// ParseInitialBalance validates the starting balance typed on the welcome screen.
func ParseInitialBalance(text string) (decimal.Decimal, error) {
	balance, err := parseAmount(text)
	if err != nil || !balance.IsPositive() {
		return decimal.Zero, ErrInvalidInitialBalance
	}
	return balance, nil
}
