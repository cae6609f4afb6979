package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// RoundRecord is the history entry kept for every resolved (non-rejected) spin.
type RoundRecord struct {
	ID            string          `json:"id"`
	SessionID     string          `json:"session_id"`
	Amount        decimal.Decimal `json:"amount"`
	ChosenNumber  int             `json:"chosen_number"`
	DrawnNumber   int             `json:"drawn_number"`
	Won           bool            `json:"won"`
	Payout        decimal.Decimal `json:"payout"`
	BalanceBefore decimal.Decimal `json:"balance_before"`
	BalanceAfter  decimal.Decimal `json:"balance_after"`
	Nonce         int64           `json:"nonce"`
	Hash          string          `json:"hash"`
	Message       string          `json:"message"`
	CreatedAt     time.Time       `json:"created_at"`
}
