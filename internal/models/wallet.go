package models

import "github.com/shopspring/decimal"

type BalanceResponse struct {
	SessionID string          `json:"session_id"`
	Balance   decimal.Decimal `json:"balance"`
	Display   string          `json:"display"`
	Rounds    int64           `json:"rounds"`
	IsActive  bool            `json:"is_active"`
}

func NewBalanceResponse(state *GameState) BalanceResponse {
	return BalanceResponse{
		SessionID: state.SessionID,
		Balance:   state.Balance,
		Display:   FormatCurrency(state.Balance),
		Rounds:    state.Rounds,
		IsActive:  state.IsActive,
	}
}
