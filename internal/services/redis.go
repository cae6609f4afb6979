package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"ruleta-backend/internal/config"
	"ruleta-backend/internal/models"
)

type RedisService struct {
	client *redis.Client
	ttl    time.Duration
}

var _ SessionStore = (*RedisService)(nil)

func NewRedisService(ctx context.Context, cfg *config.Config) (*RedisService, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisURL,
		Password: cfg.RedisPass,
		DB:       cfg.RedisDB,
	})

	if _, err := client.Ping(ctx).Result(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	ttl := cfg.SessionTTL
	if ttl <= 0 {
		ttl = TTLSession
	}

	return &RedisService{
		client: client,
		ttl:    ttl,
	}, nil
}

func (s *RedisService) Close() error {
	return s.client.Close()
}

func (s *RedisService) SaveGameState(ctx context.Context, state *models.GameState) error {
	key := fmt.Sprintf(KeySessionState, state.SessionID)

	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal game state: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, key, data, s.ttl)
	// history lives exactly as long as the session
	pipe.Expire(ctx, fmt.Sprintf(KeySessionRounds, state.SessionID), s.ttl)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save game state: %w", err)
	}
	return nil
}

func (s *RedisService) GetGameState(ctx context.Context, sessionID string) (*models.GameState, error) {
	key := fmt.Sprintf(KeySessionState, sessionID)

	data, err := s.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
		}
		return nil, fmt.Errorf("failed to get game state: %w", err)
	}

	var state models.GameState
	if err := json.Unmarshal([]byte(data), &state); err != nil {
		return nil, fmt.Errorf("failed to unmarshal game state: %w", err)
	}

	return &state, nil
}

func (s *RedisService) DeleteSession(ctx context.Context, sessionID string) error {
	keys := []string{
		fmt.Sprintf(KeySessionState, sessionID),
		fmt.Sprintf(KeySessionRounds, sessionID),
		fmt.Sprintf(KeyRateLimit, sessionID, RateLimitActionSpin),
	}

	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

func (s *RedisService) SaveRound(ctx context.Context, round *models.RoundRecord) error {
	key := fmt.Sprintf(KeySessionRounds, round.SessionID)

	data, err := json.Marshal(round)
	if err != nil {
		return fmt.Errorf("failed to marshal round: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.LPush(ctx, key, data)
	pipe.LTrim(ctx, key, 0, MaxRoundHistory-1)
	pipe.Expire(ctx, key, s.ttl)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save round: %w", err)
	}
	return nil
}

func (s *RedisService) GetRoundHistory(ctx context.Context, sessionID string, limit int64) ([]*models.RoundRecord, error) {
	limit = clampHistoryLimit(limit)
	key := fmt.Sprintf(KeySessionRounds, sessionID)

	items, err := s.client.LRange(ctx, key, 0, limit-1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get round history: %w", err)
	}

	rounds := make([]*models.RoundRecord, 0, len(items))
	for _, item := range items {
		var round models.RoundRecord
		if err := json.Unmarshal([]byte(item), &round); err != nil {
			continue
		}
		rounds = append(rounds, &round)
	}

	return rounds, nil
}

func (s *RedisService) CheckRateLimit(ctx context.Context, sessionID, action string, limit int, window time.Duration) (bool, error) {
	key := fmt.Sprintf(KeyRateLimit, sessionID, action)

	pipe := s.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	ttl := pipe.TTL(ctx, key)

	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("failed to check rate limit: %w", err)
	}

	// a fresh counter, or one whose expiry was lost, starts a new window
	if ttl.Val() < 0 {
		if err := s.client.Expire(ctx, key, window).Err(); err != nil {
			return false, fmt.Errorf("failed to set rate limit window: %w", err)
		}
	}

	return incr.Val() <= int64(limit), nil
}
