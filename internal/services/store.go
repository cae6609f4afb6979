package services

import (
	"context"
	"errors"
	"time"

	"ruleta-backend/internal/models"
)

var (
	ErrSessionNotFound  = errors.New("session not found")
	ErrRangeMaxRequired = errors.New("range_max is required")
)

// SessionStore keeps the state of live sessions only. Nothing outlives the
// session: ending it drops its state and history.
type SessionStore interface {
	SaveGameState(ctx context.Context, state *models.GameState) error
	GetGameState(ctx context.Context, sessionID string) (*models.GameState, error)
	DeleteSession(ctx context.Context, sessionID string) error

	SaveRound(ctx context.Context, round *models.RoundRecord) error
	GetRoundHistory(ctx context.Context, sessionID string, limit int64) ([]*models.RoundRecord, error)

	CheckRateLimit(ctx context.Context, sessionID, action string, limit int, window time.Duration) (bool, error)
	Close() error
}

// ExpiringStore is implemented by stores that cannot expire entries on their
// own and need a periodic sweep.
type ExpiringStore interface {
	PurgeExpired(ctx context.Context) (int, error)
}

func clampHistoryLimit(limit int64) int64 {
	if limit <= 0 || limit > MaxRoundHistory {
		return MaxRoundHistory
	}
	return limit
}
