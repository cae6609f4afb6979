package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"ruleta-backend/internal/middleware"
	"ruleta-backend/internal/models"
	"ruleta-backend/internal/roulette"
	"ruleta-backend/internal/services"
)

type SessionHandler struct {
	gameEngine *services.GameEngine
	jwtService *services.JWTService
	log        *zap.Logger
}

func NewSessionHandler(gameEngine *services.GameEngine, jwtService *services.JWTService, log *zap.Logger) *SessionHandler {
	return &SessionHandler{
		gameEngine: gameEngine,
		jwtService: jwtService,
		log:        log,
	}
}

// StartSession is the welcome screen: a valid initial balance opens a table.
func (h *SessionHandler) StartSession(c *gin.Context) {
	var req models.StartSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"details": err.Error(),
		})
		return
	}

	state, err := h.gameEngine.StartSession(c.Request.Context(), req.InitialBalance)
	if err != nil {
		if errors.Is(err, roulette.ErrInvalidInitialBalance) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.log.Error("failed to start session", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start session"})
		return
	}

	token, err := h.jwtService.GenerateToken(state.SessionID)
	if err != nil {
		h.log.Error("failed to issue token", zap.String("session_id", state.SessionID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start session"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":     true,
		"session_id":  state.SessionID,
		"token":       token,
		"balance":     models.NewBalanceResponse(state),
		"range_max":   state.RangeMax,
		"client_seed": state.ClientSeed,
		"server_hash": roulette.ServerSeedHash(state.ServerSeed),
	})
}

func (h *SessionHandler) GetCurrentSession(c *gin.Context) {
	sessionID := c.GetString(middleware.SessionIDKey)

	state, err := h.gameEngine.GetSession(c.Request.Context(), sessionID)
	if err != nil {
		respondSessionError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"session": gin.H{
			"session_id": state.SessionID,
			"started_at": state.StartedAt,
			"updated_at": state.UpdatedAt,
			"range_max":  state.RangeMax,
		},
		"balance": models.NewBalanceResponse(state),
	})
}

// EndSession returns the player to the welcome screen.
func (h *SessionHandler) EndSession(c *gin.Context) {
	sessionID := c.GetString(middleware.SessionIDKey)

	ended, err := h.gameEngine.EndSession(c.Request.Context(), sessionID)
	if err != nil {
		respondSessionError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"session": ended,
	})
}

func respondSessionError(c *gin.Context, log *zap.Logger, err error) {
	if errors.Is(err, services.ErrSessionNotFound) {
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "Session not found",
			"details": err.Error(),
		})
		return
	}

	log.Error("session request failed", zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{
		"error":   "Internal error",
		"details": err.Error(),
	})
}
