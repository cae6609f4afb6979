package handlers

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"ruleta-backend/internal/middleware"
	"ruleta-backend/internal/models"
	"ruleta-backend/internal/roulette"
	"ruleta-backend/internal/services"
)

const writeWait = 10 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type WebSocketHandler struct {
	gameEngine *services.GameEngine
	hub        *WebSocketHub
	log        *zap.Logger
}

var _ services.Broadcaster = (*WebSocketHandler)(nil)

type WebSocketHub struct {
	clients    map[string]*Client
	register   chan *Client
	unregister chan *Client
	broadcast  chan *Message
	done       <-chan struct{}
	log        *zap.Logger
}

type Client struct {
	SessionID string
	Conn      *websocket.Conn
	mu        sync.Mutex
}

func (c *Client) WriteJSON(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.Conn.WriteJSON(v)
}

type Message struct {
	Type      string      `json:"type"`
	SessionID string      `json:"session_id,omitempty"`
	Data      interface{} `json:"data"`
}

// NewWebSocketHandler starts the hub; it stops when ctx is cancelled.
func NewWebSocketHandler(ctx context.Context, gameEngine *services.GameEngine, log *zap.Logger) *WebSocketHandler {
	hub := &WebSocketHub{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *Message, 100),
		done:       ctx.Done(),
		log:        log,
	}

	go hub.run(ctx)

	return &WebSocketHandler{
		gameEngine: gameEngine,
		hub:        hub,
		log:        log,
	}
}

func (h *WebSocketHandler) HandleWebSocket(c *gin.Context) {
	sessionID := c.GetString(middleware.SessionIDKey)

	state, err := h.gameEngine.GetSession(c.Request.Context(), sessionID)
	if err != nil {
		respondSessionError(c, h.log, err)
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("failed to upgrade to websocket", zap.Error(err))
		return
	}

	client := &Client{
		SessionID: sessionID,
		Conn:      conn,
	}

	if !h.hub.add(client) {
		conn.Close()
		return
	}

	defer func() {
		h.hub.remove(client)
		conn.Close()
	}()

	h.send(client, &Message{
		Type:      "BALANCE_UPDATE",
		SessionID: sessionID,
		Data:      models.NewBalanceResponse(state),
	})

	for {
		var msg Message
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.log.Warn("websocket error", zap.String("session_id", sessionID), zap.Error(err))
			}
			break
		}

		h.handleMessage(c.Request.Context(), client, &msg)
	}
}

func (h *WebSocketHandler) handleMessage(ctx context.Context, client *Client, msg *Message) {
	switch msg.Type {
	case "PING":
		h.send(client, &Message{
			Type: "PONG",
			Data: gin.H{"timestamp": time.Now().Unix()},
		})
	case "BALANCE":
		state, err := h.gameEngine.GetSession(ctx, client.SessionID)
		if err != nil {
			h.send(client, &Message{Type: "ERROR", Data: gin.H{"error": err.Error()}})
			return
		}
		h.send(client, &Message{
			Type:      "BALANCE_UPDATE",
			SessionID: client.SessionID,
			Data:      models.NewBalanceResponse(state),
		})
	}
}

func (h *WebSocketHandler) send(client *Client, msg *Message) {
	if err := client.WriteJSON(msg); err != nil {
		h.log.Debug("websocket write failed", zap.String("session_id", client.SessionID), zap.Error(err))
	}
}

func (h *WebSocketHandler) BroadcastRoundResult(sessionID string, outcome roulette.Outcome) {
	h.hub.publish(&Message{
		Type:      "ROUND_RESULT",
		SessionID: sessionID,
		Data: gin.H{
			"outcome":   outcome,
			"balance":   models.FormatCurrency(outcome.NewBalance),
			"timestamp": time.Now().Unix(),
		},
	})
}

func (h *WebSocketHandler) BroadcastSessionEnded(sessionID string, reason string) {
	h.hub.publish(&Message{
		Type:      "SESSION_ENDED",
		SessionID: sessionID,
		Data: gin.H{
			"reason":    reason,
			"timestamp": time.Now().Unix(),
		},
	})
}

// add hands client to the hub; false means the hub has shut down.
func (hub *WebSocketHub) add(client *Client) bool {
	select {
	case hub.register <- client:
		return true
	case <-hub.done:
		return false
	}
}

func (hub *WebSocketHub) remove(client *Client) {
	select {
	case hub.unregister <- client:
	case <-hub.done:
	}
}

func (hub *WebSocketHub) publish(msg *Message) {
	select {
	case hub.broadcast <- msg:
	default:
		hub.log.Warn("websocket broadcast buffer full, dropping message",
			zap.String("session_id", msg.SessionID),
			zap.String("type", msg.Type))
	}
}

func (hub *WebSocketHub) run(ctx context.Context) {
	for {
		select {
		case client := <-hub.register:
			if old, ok := hub.clients[client.SessionID]; ok && old != client {
				old.Conn.Close()
			}
			hub.clients[client.SessionID] = client
			hub.log.Debug("client registered", zap.String("session_id", client.SessionID))

		case client := <-hub.unregister:
			if current, ok := hub.clients[client.SessionID]; ok && current == client {
				delete(hub.clients, client.SessionID)
				hub.log.Debug("client unregistered", zap.String("session_id", client.SessionID))
			}

		case message := <-hub.broadcast:
			if client, ok := hub.clients[message.SessionID]; ok {
				if err := client.WriteJSON(message); err != nil {
					hub.log.Debug("websocket write failed", zap.String("session_id", client.SessionID), zap.Error(err))
				}
			}

		case <-ctx.Done():
			for _, client := range hub.clients {
				client.Conn.Close()
			}
			return
		}
	}
}
