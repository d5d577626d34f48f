package api

import (
	"bytes"
	"context"
	"encoding/json"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"smash-master/internal/game"
	"smash-master/internal/render"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"golang.org/x/time/rate"
)

// mockEngine implements EngineInterface for testing
type mockEngine struct {
	mu        sync.Mutex
	snap      game.GameSnapshot
	pointer   game.Vec2
	presses   int
	pressFull bool
	width     float64
	height    float64
}

func newMockEngine() *mockEngine {
	return &mockEngine{
		snap: game.GameSnapshot{
			Width:   320,
			Height:  240,
			Session: game.SessionPlaying,
			Score:   120,
			Health:  80,
			Level:   1,
			Player:  game.Vec2{X: 160, Y: 140},
			Camera:  game.CameraSnapshot{Zoom: 1},
			Enemies: []game.EnemySnapshot{{ID: 3, X: 100, Y: 50, Size: 40, Kind: game.EnemyHex, Color: game.ColorHex}},
		},
	}
}

func (m *mockEngine) GetSnapshot() game.GameSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snap
}

func (m *mockEngine) Stats() game.EngineStats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return game.EngineStats{Session: m.snap.Session, Score: m.snap.Score, Level: m.snap.Level, Health: m.snap.Health}
}

func (m *mockEngine) GetEventLogStats() map[string]interface{} {
	return map[string]interface{}{"total": uint64(4), "dropped": uint64(0), "running": true}
}

func (m *mockEngine) PointerMove(x, y float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pointer = game.Vec2{X: x, Y: y}
}

func (m *mockEngine) Press() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.pressFull {
		return false
	}
	m.presses++
	return true
}

func (m *mockEngine) Resize(width, height float64) error {
	if width <= 0 || height <= 0 {
		return game.ErrInvalidViewport
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.width, m.height = width, height
	return nil
}

func (m *mockEngine) state() (game.Vec2, int, float64, float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pointer, m.presses, m.width, m.height
}

func newTestServer(t *testing.T, engine EngineInterface, renderer FrameRenderer) *httptest.Server {
	ts, _ := newTestServerWithLimiter(t, engine, renderer)
	return ts
}

func newTestServerWithLimiter(t *testing.T, engine EngineInterface, renderer FrameRenderer) (*httptest.Server, *WebSocketRateLimiter) {
	t.Helper()
	rl := NewIPRateLimiter(RateLimitConfig{RequestsPerSecond: 1000, Burst: 1000, CleanupInterval: time.Hour})
	t.Cleanup(rl.Stop)
	conns := NewWebSocketRateLimiter(2)

	router := NewRouter(RouterConfig{
		Engine:         engine,
		Renderer:       renderer,
		RateLimiter:    rl,
		ConnLimiter:    conns,
		DisableLogging: true, // Quiet logs in tests
	})
	ts := httptest.NewServer(router)
	t.Cleanup(ts.Close)
	return ts, conns
}

func TestAPIGetState(t *testing.T) {
	ts := newTestServer(t, newMockEngine(), nil)

	resp, err := http.Get(ts.URL + "/api/state")
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected 200, got %d", resp.StatusCode)
	}

	var result map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if result["session"] != "playing" {
		t.Errorf("Expected session 'playing', got %v", result["session"])
	}
	if result["score"].(float64) != 120 {
		t.Errorf("Expected score 120, got %v", result["score"])
	}
	enemies, ok := result["enemies"].([]interface{})
	if !ok || len(enemies) != 1 {
		t.Fatalf("Expected one enemy, got %v", result["enemies"])
	}
	if kind := enemies[0].(map[string]interface{})["kind"]; kind != "hex" {
		t.Errorf("Expected enemy kind 'hex', got %v", kind)
	}
}

func TestAPIGetStats(t *testing.T) {
	ts, conns := newTestServerWithLimiter(t, newMockEngine(), nil)

	for i := 0; i < 3; i++ {
		conns.Allow("10.0.0.1")
	}
	warmup, err := http.Get(ts.URL + "/api/state")
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	warmup.Body.Close()

	resp, err := http.Get(ts.URL + "/api/stats")
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()

	var result map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if result["score"].(float64) != 120 || result["health"].(float64) != 80 {
		t.Errorf("Expected flattened engine stats, got %v", result)
	}
	eventLog, ok := result["eventLog"].(map[string]interface{})
	if !ok || eventLog["total"].(float64) != 4 {
		t.Errorf("Expected event log stats, got %v", result["eventLog"])
	}

	var limiter struct {
		HTTP      LimiterStats  `json:"http"`
		WebSocket *LimiterStats `json:"websocket"`
	}
	raw, _ := json.Marshal(result["limiter"])
	if err := json.Unmarshal(raw, &limiter); err != nil {
		t.Fatalf("Failed to decode limiter stats: %v", err)
	}
	// The stats request itself is admitted before the handler runs
	if limiter.HTTP.Allowed != 2 || limiter.HTTP.Rejected != 0 {
		t.Errorf("Expected http 2 allowed / 0 rejected, got %+v", limiter.HTTP)
	}
	if limiter.WebSocket == nil {
		t.Fatal("Expected websocket limiter stats")
	}
	if limiter.WebSocket.Allowed != 2 || limiter.WebSocket.Rejected != 1 {
		t.Errorf("Expected websocket 2 allowed / 1 rejected, got %+v", *limiter.WebSocket)
	}
}

func TestAPIPointer(t *testing.T) {
	engine := newMockEngine()
	ts := newTestServer(t, engine, nil)

	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{"valid", `{"x": 300, "y": 250}`, http.StatusOK},
		{"missing y", `{"x": 300}`, http.StatusBadRequest},
		{"invalid json", `{invalid}`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Post(ts.URL+"/api/input/pointer", "application/json", strings.NewReader(tt.body))
			if err != nil {
				t.Fatalf("Request failed: %v", err)
			}
			defer resp.Body.Close()

			if resp.StatusCode != tt.wantStatus {
				t.Errorf("Expected %d, got %d", tt.wantStatus, resp.StatusCode)
			}
		})
	}

	if pointer, _, _, _ := engine.state(); pointer != (game.Vec2{X: 300, Y: 250}) {
		t.Errorf("Expected pointer (300, 250), got %+v", pointer)
	}
}

func TestAPIPress(t *testing.T) {
	engine := newMockEngine()
	ts := newTestServer(t, engine, nil)

	resp, err := http.Post(ts.URL+"/api/input/press", "application/json", nil)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected 200, got %d", resp.StatusCode)
	}

	engine.mu.Lock()
	engine.pressFull = true
	engine.mu.Unlock()

	resp, err = http.Post(ts.URL+"/api/input/press", "application/json", nil)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("Expected 503 when the input queue is full, got %d", resp.StatusCode)
	}

	if _, presses, _, _ := engine.state(); presses != 1 {
		t.Errorf("Expected 1 press, got %d", presses)
	}
}

func TestAPIViewport(t *testing.T) {
	engine := newMockEngine()
	ts := newTestServer(t, engine, nil)

	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{"valid", `{"width": 800, "height": 600}`, http.StatusOK},
		{"zero width", `{"width": 0, "height": 600}`, http.StatusBadRequest},
		{"negative height", `{"width": 800, "height": -1}`, http.StatusBadRequest},
		{"missing fields", `{}`, http.StatusBadRequest},
		{"invalid json", `[`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Post(ts.URL+"/api/viewport", "application/json", strings.NewReader(tt.body))
			if err != nil {
				t.Fatalf("Request failed: %v", err)
			}
			defer resp.Body.Close()

			if resp.StatusCode != tt.wantStatus {
				t.Errorf("Expected %d, got %d", tt.wantStatus, resp.StatusCode)
			}
		})
	}

	if _, _, w, h := engine.state(); w != 800 || h != 600 {
		t.Errorf("Expected only the valid viewport applied, got %.0fx%.0f", w, h)
	}
}

func TestAPIFrame(t *testing.T) {
	engine := newMockEngine()

	t.Run("no renderer", func(t *testing.T) {
		ts := newTestServer(t, engine, nil)
		resp, err := http.Get(ts.URL + "/api/frame.png")
		if err != nil {
			t.Fatalf("Request failed: %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("Expected 404, got %d", resp.StatusCode)
		}
	})

	t.Run("png", func(t *testing.T) {
		ts := newTestServer(t, engine, render.NewRenderer(320, 240, 1))
		resp, err := http.Get(ts.URL + "/api/frame.png")
		if err != nil {
			t.Fatalf("Request failed: %v", err)
		}
		defer resp.Body.Close()

		if ct := resp.Header.Get("Content-Type"); ct != "image/png" {
			t.Errorf("Expected image/png, got %s", ct)
		}
		img, err := png.Decode(resp.Body)
		if err != nil {
			t.Fatalf("Invalid PNG: %v", err)
		}
		if b := img.Bounds(); b.Dx() != 320 || b.Dy() != 240 {
			t.Errorf("Expected 320x240 frame, got %dx%d", b.Dx(), b.Dy())
		}
	})
}

func TestRateLimiterRejects(t *testing.T) {
	rl := NewIPRateLimiter(RateLimitConfig{RequestsPerSecond: 0.001, Burst: 1, CleanupInterval: time.Hour})
	defer rl.Stop()

	router := NewRouter(RouterConfig{Engine: newMockEngine(), RateLimiter: rl, DisableLogging: true})
	ts := httptest.NewServer(router)
	defer ts.Close()

	codes := make([]int, 0, 2)
	for i := 0; i < 2; i++ {
		resp, err := http.Get(ts.URL + "/api/stats")
		if err != nil {
			t.Fatalf("Request failed: %v", err)
		}
		resp.Body.Close()
		codes = append(codes, resp.StatusCode)
	}

	if codes[0] != http.StatusOK || codes[1] != http.StatusTooManyRequests {
		t.Errorf("Expected [200 429], got %v", codes)
	}
	if stats := rl.Stats(); stats.Allowed != 1 || stats.Rejected != 1 {
		t.Errorf("Expected 1 allowed / 1 rejected, got %+v", stats)
	}
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name     string
		headers  map[string]string
		remote   string
		expected string
	}{
		{"remote addr", nil, "10.0.0.5:4321", "10.0.0.5"},
		{"forwarded chain", map[string]string{"X-Forwarded-For": "1.2.3.4, 10.0.0.1"}, "10.0.0.1:80", "1.2.3.4"},
		{"real ip", map[string]string{"X-Real-IP": " 5.6.7.8 "}, "10.0.0.1:80", "5.6.7.8"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			if got := GetClientIP(req); got != tt.expected {
				t.Errorf("Expected %s, got %s", tt.expected, got)
			}
		})
	}
}

func TestIsAllowedOrigin(t *testing.T) {
	tests := []struct {
		origin   string
		expected bool
	}{
		{"http://localhost", true},
		{"http://localhost:3000", true},
		{"http://127.0.0.1:8080", true},
		{"http://localhost.evil.com", false},
		{"https://example.com", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := IsAllowedOrigin(tt.origin); got != tt.expected {
			t.Errorf("%q: expected %v, got %v", tt.origin, tt.expected, got)
		}
	}
}

func TestObserveTickCountsEvents(t *testing.T) {
	before := testutil.ToFloat64(gameEventsTotal.WithLabelValues("kill"))

	snap := newMockEngine().GetSnapshot()
	ObserveTick(time.Millisecond, &snap, []game.Event{
		game.NewEvent(game.EventTypeKill, 10, nil),
		game.NewEvent(game.EventTypeKill, 10, nil),
		game.NewEvent(game.EventTypeImpact, 10, nil),
	})

	if got := testutil.ToFloat64(gameEventsTotal.WithLabelValues("kill")) - before; got != 2 {
		t.Errorf("Expected 2 kills counted, got %f", got)
	}
	if got := testutil.ToFloat64(scoreGauge); got != 120 {
		t.Errorf("Expected score gauge 120, got %f", got)
	}
	if got := testutil.ToFloat64(enemyCount); got != 1 {
		t.Errorf("Expected enemy gauge 1, got %f", got)
	}
}

func TestUpdateEventLogStatsIsMonotonic(t *testing.T) {
	base := testutil.ToFloat64(eventLogTotal)
	UpdateEventLogStats(eventLogCounters.total+5, eventLogCounters.dropped)
	UpdateEventLogStats(eventLogCounters.total-2, eventLogCounters.dropped)

	if got := testutil.ToFloat64(eventLogTotal) - base; got != 5 {
		t.Errorf("Expected counter to advance by 5, got %f", got)
	}
}

func TestDebugMuxHealth(t *testing.T) {
	ts := httptest.NewServer(DebugMux())
	defer ts.Close()

	for _, path := range []string{"/health", "/metrics"} {
		resp, err := http.Get(ts.URL + path)
		if err != nil {
			t.Fatalf("Request failed: %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Errorf("%s: expected 200, got %d", path, resp.StatusCode)
		}
	}
}

func TestIsLoopbackAddr(t *testing.T) {
	tests := []struct {
		addr     string
		expected bool
	}{
		{"127.0.0.1:6060", true},
		{"localhost:6060", true},
		{"[::1]:6060", true},
		{"0.0.0.0:6060", false},
		{":6060", false},
		{"bogus", false},
	}

	for _, tt := range tests {
		if got := isLoopbackAddr(tt.addr); got != tt.expected {
			t.Errorf("%s: expected %v, got %v", tt.addr, tt.expected, got)
		}
	}
}

// waitFor polls cond until it holds or the deadline passes
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("Condition not met before deadline")
}

func dialHub(t *testing.T, ts *httptest.Server, origin string) (*websocket.Conn, *http.Response, error) {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	header := http.Header{}
	if origin != "" {
		header.Set("Origin", origin)
	}
	return websocket.DefaultDialer.Dial(url, header)
}

func TestReadLoopReleasesSlotAfterStop(t *testing.T) {
	hub := NewWebSocketHub(newMockEngine())

	accepted := make(chan *websocket.Conn, 1)
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		accepted <- conn
	}))
	defer ts.Close()

	client, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http"),
		http.Header{"Origin": {"http://localhost"}})
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	serverConn := <-accepted

	// Registered as Run would, then stopped while Run is not draining
	const ip = "10.0.0.9"
	hub.wsLimiter.Allow(ip)
	hub.mu.Lock()
	hub.clients[serverConn] = &wsClient{conn: serverConn, ip: ip}
	hub.mu.Unlock()
	hub.Stop()

	finished := make(chan struct{})
	go func() {
		hub.readLoop(serverConn, ip)
		close(finished)
	}()
	client.Close()

	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatal("readLoop did not return after the client closed")
	}

	if hub.ClientCount() != 0 {
		t.Errorf("Expected no clients, got %d", hub.ClientCount())
	}
	if n := hub.wsLimiter.GetConnectionCount(ip); n != 0 {
		t.Errorf("Expected the IP slot released, got %d open", n)
	}
}

func TestWebSocketLimiterSlots(t *testing.T) {
	wrl := NewWebSocketRateLimiter(2)

	if !wrl.Allow("a") || !wrl.Allow("a") {
		t.Fatal("Expected two slots for one IP")
	}
	if wrl.Allow("a") {
		t.Error("Expected third connection rejected")
	}
	if !wrl.Allow("b") {
		t.Error("Expected other IPs unaffected")
	}

	wrl.Release("a")
	wrl.Release("a")
	wrl.Release("a") // extra release must not go negative
	if n := wrl.GetConnectionCount("a"); n != 0 {
		t.Errorf("Expected 0 open, got %d", n)
	}
	if !wrl.Allow("a") {
		t.Error("Expected a slot after release")
	}

	if stats := wrl.Stats(); stats.Allowed != 4 || stats.Rejected != 1 {
		t.Errorf("Expected 4 allowed / 1 rejected, got %+v", stats)
	}
}

func TestEvictIdleBuckets(t *testing.T) {
	rl := NewIPRateLimiter(RateLimitConfig{RequestsPerSecond: 1, Burst: 1, CleanupInterval: time.Hour})
	defer rl.Stop()

	rl.Allow("1.1.1.1")
	if rl.Allow("1.1.1.1") {
		t.Fatal("Expected the bucket to be empty")
	}

	rl.evictBefore(time.Now().Add(time.Minute))

	if !rl.Allow("1.1.1.1") {
		t.Error("Expected a fresh bucket after eviction")
	}
}

func TestWebSocketInputAndBroadcast(t *testing.T) {
	engine := newMockEngine()
	server := NewServer(engine, nil)
	go server.Hub().Run()
	defer server.Shutdown(context.Background())

	ts := httptest.NewServer(server.Router())
	defer ts.Close()

	conn, _, err := dialHub(t, ts, "http://localhost:3000")
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	defer conn.Close()

	waitFor(t, func() bool { return server.Hub().ClientCount() == 1 })

	messages := []string{
		`{"type":"pointer","x":410,"y":220}`,
		`{"type":"press"}`,
		`{"type":"resize","width":1280,"height":720}`,
		`{"type":"resize","width":0,"height":720}`,
		`not json`,
	}
	for _, m := range messages {
		if err := conn.WriteMessage(websocket.TextMessage, []byte(m)); err != nil {
			t.Fatalf("Write failed: %v", err)
		}
	}

	waitFor(t, func() bool {
		pointer, presses, w, _ := engine.state()
		return pointer == (game.Vec2{X: 410, Y: 220}) && presses == 1 && w == 1280
	})

	server.Hub().Broadcast("game:state", engine.GetSnapshot())

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}

	var msg struct {
		Event string                 `json:"event"`
		Data  map[string]interface{} `json:"data"`
	}
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("Invalid broadcast: %v", err)
	}
	if msg.Event != "game:state" || msg.Data["score"].(float64) != 120 {
		t.Errorf("Unexpected broadcast: %s", data)
	}
}

func TestWebSocketRejectsForeignOrigin(t *testing.T) {
	server := NewServer(newMockEngine(), nil)
	go server.Hub().Run()
	defer server.Shutdown(context.Background())

	ts := httptest.NewServer(server.Router())
	defer ts.Close()

	conn, resp, err := dialHub(t, ts, "https://example.com")
	if err == nil {
		conn.Close()
		t.Fatal("Expected foreign origin to be rejected")
	}
	if resp == nil || resp.StatusCode != http.StatusForbidden {
		t.Errorf("Expected 403, got %v", resp)
	}
	if server.Hub().wsLimiter.GetConnectionCount("127.0.0.1") != 0 {
		t.Error("Rejected upgrade must release its IP slot")
	}
}

func TestHandleMessageRateLimited(t *testing.T) {
	engine := newMockEngine()
	hub := NewWebSocketHub(engine)
	limiter := rate.NewLimiter(0, 1)

	press := []byte(`{"type":"press"}`)
	hub.handleMessage(limiter, "127.0.0.1", press)
	hub.handleMessage(limiter, "127.0.0.1", press)

	if _, presses, _, _ := engine.state(); presses != 1 {
		t.Errorf("Expected the second message dropped, got %d presses", presses)
	}
}

func TestStatsResponseJSON(t *testing.T) {
	var buf bytes.Buffer
	json.NewEncoder(&buf).Encode(statsResponse{
		EngineStats: game.EngineStats{Session: game.SessionGameOver, Score: 55},
		EventLog:    map[string]interface{}{"running": false},
	})

	var out map[string]interface{}
	json.Unmarshal(buf.Bytes(), &out)
	if out["session"] != "game_over" || out["score"].(float64) != 55 {
		t.Errorf("Unexpected stats JSON: %s", buf.String())
	}
}
