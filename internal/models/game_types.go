package models

// Inputs arrive as the raw text the player typed; parsing belongs to the resolver.

type StartSessionRequest struct {
	InitialBalance string `json:"initial_balance"`
}

type BetRequest struct {
	Amount string `json:"amount"`
	Number string `json:"number"`
}

type VerificationData struct {
	ClientSeed   string `json:"client_seed"`
	ServerHash   string `json:"server_hash"`
	CurrentNonce int64  `json:"current_nonce"`
	RangeMax     int    `json:"range_max"`
}

type VerifyRequest struct {
	ServerSeed string `json:"server_seed" binding:"required"`
	ClientSeed string `json:"client_seed" binding:"required"`
	Nonce      int64  `json:"nonce" binding:"min=0"`

	// RangeMax must be the value the session reported; pockets differ per range.
	RangeMax *int `json:"range_max" binding:"required,min=0"`
}
