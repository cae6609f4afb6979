package services

import "ruleta-backend/internal/roulette"

type Broadcaster interface {
	BroadcastRoundResult(sessionID string, outcome roulette.Outcome)
	BroadcastSessionEnded(sessionID string, reason string)
}

type noopBroadcaster struct{}

func (noopBroadcaster) BroadcastRoundResult(string, roulette.Outcome) {}
func (noopBroadcaster) BroadcastSessionEnded(string, string)          {}
