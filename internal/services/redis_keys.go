package services

import "time"

const (
	KeySessionState  = "session:%s:state"
	KeySessionRounds = "session:%s:rounds"
	KeyRateLimit     = "ratelimit:%s:%s"

	RateLimitActionSpin = "spin"

	TTLSession = 24 * time.Hour

	MaxRoundHistory = 50

	DefaultRateLimitSpins = 30 // Max 30 spins per minute
)
