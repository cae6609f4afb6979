package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"ruleta-backend/internal/models"
)

type rateWindow struct {
	count   int
	resetAt time.Time
}

// MemoryStore is the in-process SessionStore used when no Redis is configured.
type MemoryStore struct {
	mu     sync.RWMutex
	ttl    time.Duration
	states map[string]memoryEntry
	rounds map[string][]*models.RoundRecord
	limits map[string]*rateWindow
	now    func() time.Time
}

var _ SessionStore = (*MemoryStore)(nil)

type memoryEntry struct {
	state     models.GameState
	expiresAt time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = TTLSession
	}
	return &MemoryStore{
		ttl:    ttl,
		states: make(map[string]memoryEntry),
		rounds: make(map[string][]*models.RoundRecord),
		limits: make(map[string]*rateWindow),
		now:    time.Now,
	}
}

func (s *MemoryStore) SaveGameState(_ context.Context, state *models.GameState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.states[state.SessionID] = memoryEntry{
		state:     *state,
		expiresAt: s.now().Add(s.ttl),
	}
	return nil
}

func (s *MemoryStore) GetGameState(_ context.Context, sessionID string) (*models.GameState, error) {
	s.mu.RLock()
	entry, ok := s.states[sessionID]
	s.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}

	if now := s.now(); now.After(entry.expiresAt) {
		s.mu.Lock()
		// a concurrent save may have refreshed it
		if current, ok := s.states[sessionID]; ok && now.After(current.expiresAt) {
			s.deleteLocked(sessionID)
		}
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}

	state := entry.state
	return &state, nil
}

func (s *MemoryStore) DeleteSession(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.deleteLocked(sessionID)
	return nil
}

// PurgeExpired drops every session whose TTL has lapsed, along with its
// history and rate-limit windows. It returns the number of sessions removed.
func (s *MemoryStore) PurgeExpired(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for id, entry := range s.states {
		if now.After(entry.expiresAt) {
			s.deleteLocked(id)
			removed++
		}
	}

	for id := range s.rounds {
		if _, ok := s.states[id]; !ok {
			delete(s.rounds, id)
		}
	}
	for key, w := range s.limits {
		if now.After(w.resetAt) {
			delete(s.limits, key)
		}
	}

	return removed, nil
}

func (s *MemoryStore) deleteLocked(sessionID string) {
	delete(s.states, sessionID)
	delete(s.rounds, sessionID)
	for key := range s.limits {
		if strings.HasPrefix(key, sessionID+":") {
			delete(s.limits, key)
		}
	}
}

func (s *MemoryStore) SaveRound(_ context.Context, round *models.RoundRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// newest first, like LPUSH
	history := append([]*models.RoundRecord{round}, s.rounds[round.SessionID]...)
	if len(history) > MaxRoundHistory {
		history = history[:MaxRoundHistory]
	}
	s.rounds[round.SessionID] = history
	return nil
}

func (s *MemoryStore) GetRoundHistory(_ context.Context, sessionID string, limit int64) ([]*models.RoundRecord, error) {
	limit = clampHistoryLimit(limit)

	s.mu.RLock()
	defer s.mu.RUnlock()

	history := s.rounds[sessionID]
	if int64(len(history)) > limit {
		history = history[:limit]
	}

	out := make([]*models.RoundRecord, len(history))
	copy(out, history)
	return out, nil
}

func (s *MemoryStore) CheckRateLimit(_ context.Context, sessionID, action string, limit int, window time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := sessionID + ":" + action
	now := s.now()

	w, ok := s.limits[key]
	if !ok || now.After(w.resetAt) {
		w = &rateWindow{resetAt: now.Add(window)}
		s.limits[key] = w
	}
	w.count++

	return w.count <= limit, nil
}

func (s *MemoryStore) Close() error {
	return nil
}
