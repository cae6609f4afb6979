package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"ruleta-backend/internal/middleware"
	"ruleta-backend/internal/models"
	"ruleta-backend/internal/services"
)

type GameHandler struct {
	gameEngine *services.GameEngine
	log        *zap.Logger
}

func NewGameHandler(gameEngine *services.GameEngine, log *zap.Logger) *GameHandler {
	return &GameHandler{
		gameEngine: gameEngine,
		log:        log,
	}
}

// Spin always answers 200 for a live session: a rejected bet is a message
// for the player, not a transport error.
func (h *GameHandler) Spin(c *gin.Context) {
	sessionID := c.GetString(middleware.SessionIDKey)

	var req models.BetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"details": err.Error(),
		})
		return
	}

	result, err := h.gameEngine.Spin(c.Request.Context(), sessionID, &req)
	if err != nil {
		respondSessionError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": !result.Outcome.Rejected(),
		"result":  result,
	})
}

func (h *GameHandler) GetBalance(c *gin.Context) {
	sessionID := c.GetString(middleware.SessionIDKey)

	state, err := h.gameEngine.GetSession(c.Request.Context(), sessionID)
	if err != nil {
		respondSessionError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"balance": models.NewBalanceResponse(state),
	})
}

func (h *GameHandler) GetRoundHistory(c *gin.Context) {
	sessionID := c.GetString(middleware.SessionIDKey)

	limitStr := c.DefaultQuery("limit", "50")
	limit, err := strconv.ParseInt(limitStr, 10, 64)
	if err != nil || limit <= 0 || limit > services.MaxRoundHistory {
		limit = services.MaxRoundHistory
	}

	rounds, err := h.gameEngine.RoundHistory(c.Request.Context(), sessionID, limit)
	if err != nil {
		respondSessionError(c, h.log, err)
		return
	}

	response := make([]gin.H, 0, len(rounds))
	for _, round := range rounds {
		result := "lose"
		if round.Won {
			result = "win"
		}

		response = append(response, gin.H{
			"id":            round.ID,
			"amount":        round.Amount.StringFixed(2),
			"chosen_number": round.ChosenNumber,
			"drawn_number":  round.DrawnNumber,
			"payout":        round.Payout.StringFixed(2),
			"balance_after": round.BalanceAfter.StringFixed(2),
			"result":        result,
			"nonce":         round.Nonce,
			"hash":          round.Hash,
			"created_at":    round.CreatedAt,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"rounds":  response,
		"count":   len(response),
	})
}

func (h *GameHandler) GetVerificationData(c *gin.Context) {
	sessionID := c.GetString(middleware.SessionIDKey)

	data, err := h.gameEngine.GetVerificationData(c.Request.Context(), sessionID)
	if err != nil {
		respondSessionError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    data,
	})
}

func (h *GameHandler) VerifyRound(c *gin.Context) {
	var req models.VerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"details": err.Error(),
		})
		return
	}

	drawn, hash, err := h.gameEngine.VerifyRound(&req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"verification": gin.H{
			"drawn_number":    drawn,
			"calculated_hash": hash,
			"client_seed":     req.ClientSeed,
			"server_seed":     req.ServerSeed,
			"nonce":           req.Nonce,
			"range_max":       *req.RangeMax,
		},
	})
}

func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
