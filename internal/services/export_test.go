package services

import "time"

func (s *MemoryStore) SetClock(now func() time.Time) {
	s.mu.Lock()
	s.now = now
	s.mu.Unlock()
}

func (s *MemoryStore) Sizes() (states, rounds, limits int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.states), len(s.rounds), len(s.limits)
}
