package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// GameState is the single active table session. It is created from a
// validated initial balance and only changed by round resolution.
type GameState struct {
	SessionID string          `json:"session_id"`
	Balance   decimal.Decimal `json:"balance"`
	IsActive  bool            `json:"is_active"`
	RangeMax  int             `json:"range_max"`

	// Provably fair seeds
	ServerSeed string `json:"server_seed"`
	ClientSeed string `json:"client_seed"`
	Nonce      int64  `json:"nonce"`

	Rounds    int64     `json:"rounds"`
	StartedAt time.Time `json:"started_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewGameState(balance decimal.Decimal, rangeMax int) (*GameState, error) {
	clientSeed, err := GenerateClientSeed()
	if err != nil {
		return nil, err
	}
	serverSeed, err := GenerateServerSeed()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	return &GameState{
		SessionID:  GenerateSessionID(),
		Balance:    balance,
		IsActive:   true,
		RangeMax:   rangeMax,
		ServerSeed: serverSeed,
		ClientSeed: clientSeed,
		Nonce:      0,
		StartedAt:  now,
		UpdatedAt:  now,
	}, nil
}
