package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"ruleta-backend/internal/config"
	"ruleta-backend/internal/handlers"
	"ruleta-backend/internal/roulette"
	"ruleta-backend/internal/services"
)

type fixedSource struct {
	value int
}

func (s *fixedSource) Intn(int) int {
	return s.value
}

type testServer struct {
	router *gin.Engine
	source *fixedSource
}

func setupServer(t *testing.T, rateLimit int) *testServer {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	return setupServerWithContext(t, ctx, rateLimit)
}

func setupServerWithContext(t *testing.T, ctx context.Context, rateLimit int) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	src := &fixedSource{}
	store := services.NewMemoryStore(time.Hour)
	engine, err := services.NewGameEngine(store, roulette.DefaultRangeMax, zap.NewNop(), services.WithSource(src))
	if err != nil {
		t.Fatalf("Failed to create game engine: %v", err)
	}

	router := handlers.NewRouter(ctx, handlers.RouterDeps{
		GameEngine:     engine,
		Store:          store,
		JWTService:     services.NewJWTService(&config.Config{JWTSecret: "test", SessionTTL: time.Hour}),
		RateLimitSpins: rateLimit,
		Log:            zap.NewNop(),
	})

	return &testServer{router: router, source: src}
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("Failed to encode body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var resp map[string]interface{}
	if w.Body.Len() > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("Failed to decode response %q: %v", w.Body.String(), err)
		}
	}
	return w, resp
}

func (s *testServer) startSession(t *testing.T, balance string) string {
	t.Helper()

	w, resp := s.do(t, http.MethodPost, "/session", "", gin.H{"initial_balance": balance})
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}

	token, _ := resp["token"].(string)
	if token == "" {
		t.Fatal("Session response should carry a token")
	}
	return token
}

func spinResult(t *testing.T, resp map[string]interface{}) (map[string]interface{}, map[string]interface{}) {
	t.Helper()
	result, ok := resp["result"].(map[string]interface{})
	if !ok {
		t.Fatalf("Response has no result: %v", resp)
	}
	outcome, ok := result["outcome"].(map[string]interface{})
	if !ok {
		t.Fatalf("Result has no outcome: %v", result)
	}
	return result, outcome
}

func TestStartSessionRejectsInvalidBalance(t *testing.T) {
	s := setupServer(t, 0)

	w, resp := s.do(t, http.MethodPost, "/session", "", gin.H{"initial_balance": "-5"})

	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d", w.Code)
	}
	if resp["error"] != roulette.InvalidBalanceMessage {
		t.Errorf("Unexpected error message: %v", resp["error"])
	}
}

func TestSpinWinAndLoss(t *testing.T) {
	s := setupServer(t, 0)
	token := s.startSession(t, "100")

	s.source.value = 7
	w, resp := s.do(t, http.MethodPost, "/api/spin", token, gin.H{"amount": "10", "number": "7"})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	result, outcome := spinResult(t, resp)
	if outcome["kind"] != string(roulette.OutcomeWon) {
		t.Errorf("Expected win, got %v", outcome["kind"])
	}
	if result["balance"] != "450.00€" {
		t.Errorf("Expected balance 450.00€, got %v", result["balance"])
	}
	if msg, _ := outcome["message"].(string); !strings.Contains(msg, "360.00") {
		t.Errorf("Win message should contain payout: %q", msg)
	}

	s.source.value = 3
	_, resp = s.do(t, http.MethodPost, "/api/spin", token, gin.H{"amount": "10", "number": "7"})
	result, outcome = spinResult(t, resp)
	if outcome["kind"] != string(roulette.OutcomeLost) {
		t.Errorf("Expected loss, got %v", outcome["kind"])
	}
	if result["balance"] != "440.00€" {
		t.Errorf("Expected balance 440.00€, got %v", result["balance"])
	}

	w, resp = s.do(t, http.MethodGet, "/api/history", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	if resp["count"] != float64(2) {
		t.Errorf("Expected 2 rounds, got %v", resp["count"])
	}
}

func TestSpinRejectedIsNotAnError(t *testing.T) {
	s := setupServer(t, 0)
	token := s.startSession(t, "50")

	w, resp := s.do(t, http.MethodPost, "/api/spin", token, gin.H{"amount": "60", "number": "5"})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}

	result, outcome := spinResult(t, resp)
	if resp["success"] != false {
		t.Error("Rejected spin should not report success")
	}
	if outcome["message"] != roulette.RejectedMessage {
		t.Errorf("Unexpected message: %v", outcome["message"])
	}
	if result["balance"] != "50.00€" {
		t.Errorf("Balance should be unchanged, got %v", result["balance"])
	}
}

func TestSpinDepletionEndsSession(t *testing.T) {
	s := setupServer(t, 0)
	token := s.startSession(t, "10")

	s.source.value = 2
	_, resp := s.do(t, http.MethodPost, "/api/spin", token, gin.H{"amount": "10", "number": "5"})

	result, outcome := spinResult(t, resp)
	if outcome["kind"] != string(roulette.OutcomeLostDepleted) || result["session_ended"] != true {
		t.Fatalf("Expected depleted loss ending the session, got %v", result)
	}

	w, _ := s.do(t, http.MethodGet, "/api/balance", token, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 after depletion, got %d", w.Code)
	}
}

func TestSpinRateLimit(t *testing.T) {
	s := setupServer(t, 2)
	token := s.startSession(t, "100")

	for i := 0; i < 2; i++ {
		if w, _ := s.do(t, http.MethodPost, "/api/spin", token, gin.H{"amount": "1", "number": "5"}); w.Code != http.StatusOK {
			t.Fatalf("Spin %d: expected 200, got %d", i+1, w.Code)
		}
	}

	if w, _ := s.do(t, http.MethodPost, "/api/spin", token, gin.H{"amount": "1", "number": "5"}); w.Code != http.StatusTooManyRequests {
		t.Errorf("Expected 429, got %d", w.Code)
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	s := setupServer(t, 0)

	tests := []struct {
		name  string
		token string
	}{
		{"missing", ""},
		{"garbage", "not-a-token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, _ := s.do(t, http.MethodGet, "/api/balance", tt.token, nil)
			if w.Code != http.StatusUnauthorized {
				t.Errorf("Expected 401, got %d", w.Code)
			}
		})
	}
}

func TestEndSessionAndVerify(t *testing.T) {
	s := setupServer(t, 0)
	token := s.startSession(t, "30")

	w, resp := s.do(t, http.MethodGet, "/api/verification", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	data := resp["data"].(map[string]interface{})
	serverHash := data["server_hash"].(string)
	clientSeed := data["client_seed"].(string)

	w, resp = s.do(t, http.MethodDelete, "/api/session", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	session := resp["session"].(map[string]interface{})
	serverSeed := session["server_seed"].(string)
	if roulette.ServerSeedHash(serverSeed) != serverHash {
		t.Error("Revealed server seed does not match the published hash")
	}
	if session["final_balance"] != "30.00€" {
		t.Errorf("Expected final balance 30.00€, got %v", session["final_balance"])
	}

	want, _ := roulette.VerifyDraw(serverSeed, clientSeed, 0, roulette.DefaultRangeMax)
	w, resp = s.do(t, http.MethodPost, "/verify", "", gin.H{
		"server_seed": serverSeed,
		"client_seed": clientSeed,
		"nonce":       0,
		"range_max":   data["range_max"],
	})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	verification := resp["verification"].(map[string]interface{})
	if verification["drawn_number"] != float64(want) {
		t.Errorf("Expected drawn number %d, got %v", want, verification["drawn_number"])
	}

	if w, _ := s.do(t, http.MethodGet, "/api/session", token, nil); w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 after ending the session, got %d", w.Code)
	}
}

func TestHealth(t *testing.T) {
	s := setupServer(t, 0)

	w, resp := s.do(t, http.MethodGet, "/health", "", nil)
	if w.Code != http.StatusOK || resp["status"] != "ok" {
		t.Errorf("Unexpected health response: %d %v", w.Code, resp)
	}
}

func TestVerifyRequiresRangeMax(t *testing.T) {
	s := setupServer(t, 0)

	w, _ := s.do(t, http.MethodPost, "/verify", "", gin.H{
		"server_seed": "server",
		"client_seed": "client",
		"nonce":       0,
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 without range_max, got %d", w.Code)
	}

	want, _ := roulette.VerifyDraw("server", "client", 0, roulette.CoinFlipRangeMax)
	w, resp := s.do(t, http.MethodPost, "/verify", "", gin.H{
		"server_seed": "server",
		"client_seed": "client",
		"nonce":       0,
		"range_max":   roulette.CoinFlipRangeMax,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	verification := resp["verification"].(map[string]interface{})
	if verification["drawn_number"] != float64(want) {
		t.Errorf("Expected drawn number %d, got %v", want, verification["drawn_number"])
	}
	if verification["range_max"] != float64(roulette.CoinFlipRangeMax) {
		t.Errorf("Expected range max %d echoed, got %v", roulette.CoinFlipRangeMax, verification["range_max"])
	}
}

func TestWebSocketClosesAfterShutdown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := setupServerWithContext(t, ctx, 0)
	token := s.startSession(t, "100")

	srv := httptest.NewServer(s.router)
	defer srv.Close()

	cancel()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/ws?token=" + token
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Failed to dial websocket: %v", err)
	}
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	for {
		if _, _, err = conn.ReadMessage(); err != nil {
			break
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		t.Fatal("Connection stayed open after the hub shut down")
	}
}
