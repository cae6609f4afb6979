package handlers

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"ruleta-backend/internal/middleware"
	"ruleta-backend/internal/services"
)

type RouterDeps struct {
	GameEngine     *services.GameEngine
	Store          services.SessionStore
	JWTService     *services.JWTService
	RateLimitSpins int
	Log            *zap.Logger
}

// NewRouter wires every route and attaches the websocket hub to the engine.
func NewRouter(ctx context.Context, deps RouterDeps) *gin.Engine {
	wsHandler := NewWebSocketHandler(ctx, deps.GameEngine, deps.Log)
	deps.GameEngine.SetBroadcaster(wsHandler)

	sessionHandler := NewSessionHandler(deps.GameEngine, deps.JWTService, deps.Log)
	gameHandler := NewGameHandler(deps.GameEngine, deps.Log)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(deps.Log))
	router.Use(middleware.CORS())

	router.GET("/health", Health)
	router.POST("/session", sessionHandler.StartSession)
	router.POST("/verify", gameHandler.VerifyRound)

	protected := router.Group("/api")
	protected.Use(middleware.AuthMiddleware(deps.JWTService))
	{
		protected.GET("/session", sessionHandler.GetCurrentSession)
		protected.DELETE("/session", sessionHandler.EndSession)

		protected.GET("/ws", wsHandler.HandleWebSocket)

		protected.POST("/spin",
			middleware.RateLimitMiddleware(deps.Store, deps.RateLimitSpins, time.Minute, deps.Log),
			gameHandler.Spin)
		protected.GET("/balance", gameHandler.GetBalance)
		protected.GET("/history", gameHandler.GetRoundHistory)
		protected.GET("/verification", gameHandler.GetVerificationData)
	}

	return router
}
