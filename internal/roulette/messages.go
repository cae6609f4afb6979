package roulette

import (
	"fmt"

	"github.com/shopspring/decimal"
)

const (
	RejectedMessage       = "Insufficient balance, invalid bet or incorrect number."
	InvalidBalanceMessage = "Please enter a valid initial balance."
)

// FormatAmount renders money the way the table displays it.
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func message(o Outcome) string {
	switch o.Kind {
	case OutcomeWon:
		return fmt.Sprintf("You won! Your number: %d, Result: %d. You won %s€",
			o.ChosenNumber, o.DrawnNumber, FormatAmount(o.Payout))
	case OutcomeLostDepleted:
		return fmt.Sprintf("You lost. Your number: %d, Result: %d. You are out of funds!",
			o.ChosenNumber, o.DrawnNumber)
	case OutcomeLost:
		return fmt.Sprintf("You lost. Your number: %d, Result: %d.",
			o.ChosenNumber, o.DrawnNumber)
	default:
		return RejectedMessage
	}
}
