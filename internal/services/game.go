package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"ruleta-backend/internal/models"
	"ruleta-backend/internal/roulette"
)

type SpinResult struct {
	RoundID      string           `json:"round_id,omitempty"`
	Outcome      roulette.Outcome `json:"outcome"`
	Balance      string           `json:"balance"`
	SessionEnded bool             `json:"session_ended"`
}

type EndedSession struct {
	SessionID    string `json:"session_id"`
	FinalBalance string `json:"final_balance"`
	Rounds       int64  `json:"rounds"`
	ServerSeed   string `json:"server_seed"`
	ClientSeed   string `json:"client_seed"`
}

type GameEngine struct {
	store       SessionStore
	resolver    *roulette.Resolver
	source      roulette.Source
	broadcaster Broadcaster
	log         *zap.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

type Option func(*GameEngine)

// WithSource replaces the per-session fair draw with a fixed source.
func WithSource(src roulette.Source) Option {
	return func(ge *GameEngine) {
		ge.source = src
	}
}

func WithBroadcaster(b Broadcaster) Option {
	return func(ge *GameEngine) {
		ge.broadcaster = b
	}
}

func NewGameEngine(store SessionStore, rangeMax int, log *zap.Logger, opts ...Option) (*GameEngine, error) {
	resolver, err := roulette.NewResolver(rangeMax, roulette.NewRandSource(time.Now().UnixNano()))
	if err != nil {
		return nil, err
	}

	ge := &GameEngine{
		store:       store,
		resolver:    resolver,
		broadcaster: noopBroadcaster{},
		log:         log,
		locks:       make(map[string]*sync.Mutex),
	}
	for _, opt := range opts {
		opt(ge)
	}

	return ge, nil
}

// SetBroadcaster attaches the push channel once the transport is built.
func (ge *GameEngine) SetBroadcaster(b Broadcaster) {
	ge.broadcaster = b
}

func (ge *GameEngine) RangeMax() int {
	return ge.resolver.RangeMax()
}

// StartSession runs the welcome flow: the session only exists if the initial
// balance is valid.
func (ge *GameEngine) StartSession(ctx context.Context, initialBalance string) (*models.GameState, error) {
	balance, err := roulette.ParseInitialBalance(initialBalance)
	if err != nil {
		return nil, err
	}

	state, err := models.NewGameState(balance, ge.resolver.RangeMax())
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	if err := ge.store.SaveGameState(ctx, state); err != nil {
		return nil, err
	}

	ge.log.Info("session started",
		zap.String("session_id", state.SessionID),
		zap.String("balance", state.Balance.StringFixed(2)),
		zap.Int("range_max", state.RangeMax))

	return state, nil
}

// GetSession returns a live session. Ended sessions are deleted from the
// store, so anything it returns is active.
func (ge *GameEngine) GetSession(ctx context.Context, sessionID string) (*models.GameState, error) {
	return ge.store.GetGameState(ctx, sessionID)
}

// Spin resolves one round. Invalid input comes back as a rejected outcome
// with no state change; an error means the session is gone or storage failed.
func (ge *GameEngine) Spin(ctx context.Context, sessionID string, req *models.BetRequest) (*SpinResult, error) {
	lock := ge.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	state, err := ge.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	src, hash := ge.sourceFor(state)
	outcome := ge.resolver.ResolveWith(src, state.Balance, req.Amount, req.Number)

	if outcome.Rejected() {
		ge.log.Debug("bet rejected",
			zap.String("session_id", sessionID),
			zap.String("amount", req.Amount),
			zap.String("number", req.Number))

		return &SpinResult{
			Outcome: outcome,
			Balance: models.FormatCurrency(state.Balance),
		}, nil
	}

	round := &models.RoundRecord{
		ID:            models.GenerateRoundID(),
		SessionID:     sessionID,
		Amount:        outcome.Amount,
		ChosenNumber:  outcome.ChosenNumber,
		DrawnNumber:   outcome.DrawnNumber,
		Won:           outcome.Won,
		Payout:        outcome.Payout,
		BalanceBefore: outcome.PreviousBalance,
		BalanceAfter:  outcome.NewBalance,
		Nonce:         state.Nonce,
		Hash:          hash,
		Message:       outcome.Message,
		CreatedAt:     time.Now(),
	}

	state.Balance = outcome.NewBalance
	state.Nonce++
	state.Rounds++
	state.UpdatedAt = round.CreatedAt

	result := &SpinResult{
		RoundID: round.ID,
		Outcome: outcome,
		Balance: models.FormatCurrency(state.Balance),
	}

	if outcome.BalanceDepleted {
		if err := ge.store.DeleteSession(ctx, sessionID); err != nil {
			return nil, err
		}
		ge.dropLock(sessionID)
		result.SessionEnded = true
	} else {
		if err := ge.store.SaveGameState(ctx, state); err != nil {
			return nil, err
		}
		if err := ge.store.SaveRound(ctx, round); err != nil {
			ge.log.Warn("failed to record round",
				zap.String("session_id", sessionID),
				zap.String("round_id", round.ID),
				zap.Error(err))
		}
	}

	ge.log.Info("round resolved",
		zap.String("session_id", sessionID),
		zap.String("round_id", round.ID),
		zap.String("kind", string(outcome.Kind)),
		zap.Int("chosen", outcome.ChosenNumber),
		zap.Int("drawn", outcome.DrawnNumber),
		zap.String("balance", state.Balance.StringFixed(2)))

	ge.broadcaster.BroadcastRoundResult(sessionID, outcome)
	if result.SessionEnded {
		ge.broadcaster.BroadcastSessionEnded(sessionID, "balance_depleted")
	}

	return result, nil
}

// EndSession discards the session and reveals its server seed.
func (ge *GameEngine) EndSession(ctx context.Context, sessionID string) (*EndedSession, error) {
	lock := ge.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	state, err := ge.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if err := ge.store.DeleteSession(ctx, sessionID); err != nil {
		return nil, err
	}
	ge.dropLock(sessionID)

	ge.log.Info("session ended",
		zap.String("session_id", sessionID),
		zap.String("balance", state.Balance.StringFixed(2)),
		zap.Int64("rounds", state.Rounds))

	ge.broadcaster.BroadcastSessionEnded(sessionID, "ended")

	return &EndedSession{
		SessionID:    sessionID,
		FinalBalance: models.FormatCurrency(state.Balance),
		Rounds:       state.Rounds,
		ServerSeed:   state.ServerSeed,
		ClientSeed:   state.ClientSeed,
	}, nil
}

func (ge *GameEngine) RoundHistory(ctx context.Context, sessionID string, limit int64) ([]*models.RoundRecord, error) {
	if _, err := ge.GetSession(ctx, sessionID); err != nil {
		return nil, err
	}
	return ge.store.GetRoundHistory(ctx, sessionID, limit)
}

// GetVerificationData returns data needed for client verification
func (ge *GameEngine) GetVerificationData(ctx context.Context, sessionID string) (*models.VerificationData, error) {
	state, err := ge.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	return &models.VerificationData{
		ClientSeed:   state.ClientSeed,
		ServerHash:   roulette.ServerSeedHash(state.ServerSeed),
		CurrentNonce: state.Nonce,
		RangeMax:     state.RangeMax,
	}, nil
}

// VerifyRound allows players to recompute a draw once the server seed is
// revealed. The range is taken from the request, never from the server's
// current configuration, so rounds played under another range still verify.
func (ge *GameEngine) VerifyRound(req *models.VerifyRequest) (int, string, error) {
	if req.RangeMax == nil || *req.RangeMax < 0 {
		return 0, "", ErrRangeMaxRequired
	}
	drawn, hash := roulette.VerifyDraw(req.ServerSeed, req.ClientSeed, req.Nonce, *req.RangeMax)
	return drawn, hash, nil
}

// CleanupStaleSessions sweeps expired sessions out of stores without native
// TTLs and forgets locks for sessions whose state is gone.
func (ge *GameEngine) CleanupStaleSessions(ctx context.Context) int {
	if es, ok := ge.store.(ExpiringStore); ok {
		purged, err := es.PurgeExpired(ctx)
		if err != nil {
			ge.log.Warn("failed to purge expired sessions", zap.Error(err))
		} else if purged > 0 {
			ge.log.Debug("purged expired sessions", zap.Int("count", purged))
		}
	}

	ge.mu.Lock()
	ids := make([]string, 0, len(ge.locks))
	for id := range ge.locks {
		ids = append(ids, id)
	}
	ge.mu.Unlock()

	removed := 0
	for _, id := range ids {
		_, err := ge.store.GetGameState(ctx, id)
		if errors.Is(err, ErrSessionNotFound) {
			ge.dropLock(id)
			removed++
		}
	}

	if removed > 0 {
		ge.log.Debug("cleaned up stale sessions", zap.Int("count", removed))
	}
	return removed
}

func (ge *GameEngine) sourceFor(state *models.GameState) (roulette.Source, string) {
	if ge.source != nil {
		return ge.source, ""
	}
	src := roulette.FairSource{
		ServerSeed: state.ServerSeed,
		ClientSeed: state.ClientSeed,
		Nonce:      state.Nonce,
	}
	return src, src.Hash()
}

func (ge *GameEngine) sessionLock(sessionID string) *sync.Mutex {
	ge.mu.Lock()
	defer ge.mu.Unlock()

	lock, ok := ge.locks[sessionID]
	if !ok {
		lock = &sync.Mutex{}
		ge.locks[sessionID] = lock
	}
	return lock
}

func (ge *GameEngine) dropLock(sessionID string) {
	ge.mu.Lock()
	delete(ge.locks, sessionID)
	ge.mu.Unlock()
}
