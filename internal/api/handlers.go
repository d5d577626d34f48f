package api

import (
	"bytes"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"smash-master/internal/game"
)

// statsResponse flattens the engine stats next to the event log and
// limiter counters.
type statsResponse struct {
	game.EngineStats
	EventLog map[string]interface{} `json:"eventLog"`
	Limiter  limiterReport          `json:"limiter"`
}

type limiterReport struct {
	HTTP      LimiterStats  `json:"http"`
	WebSocket *LimiterStats `json:"websocket,omitempty"`
}

func (h *routerHandlers) handleGetState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.engine.GetSnapshot())
}

func (h *routerHandlers) handleGetStats(w http.ResponseWriter, r *http.Request) {
	resp := statsResponse{
		EngineStats: h.engine.Stats(),
		EventLog:    h.engine.GetEventLogStats(),
		Limiter:     limiterReport{HTTP: h.httpLimiter.Stats()},
	}
	if h.connLimiter != nil {
		ws := h.connLimiter.Stats()
		resp.Limiter.WebSocket = &ws
	}
	writeJSON(w, resp)
}

func (h *routerHandlers) handleGetFrame(w http.ResponseWriter, r *http.Request) {
	if h.renderer == nil {
		writeError(w, "Renderer not configured", http.StatusNotFound)
		return
	}

	snap := h.engine.GetSnapshot()

	var buf bytes.Buffer
	start := time.Now()
	h.renderMu.Lock()
	err := h.renderer.EncodePNG(&buf, &snap)
	h.renderMu.Unlock()
	RecordRender(time.Since(start))
	if err != nil {
		log.Printf("❌ Frame render failed: %v", err)
		writeError(w, "Render failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.Write(buf.Bytes())
}

func (h *routerHandlers) handlePointer(w http.ResponseWriter, r *http.Request) {
	var req struct {
		X *float64 `json:"x"`
		Y *float64 `json:"y"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request", http.StatusBadRequest)
		return
	}
	if req.X == nil || req.Y == nil {
		writeError(w, "x and y are required", http.StatusBadRequest)
		return
	}

	h.engine.PointerMove(*req.X, *req.Y)
	writeJSON(w, map[string]bool{"success": true})
}

func (h *routerHandlers) handlePress(w http.ResponseWriter, r *http.Request) {
	if !h.engine.Press() {
		writeError(w, "Input queue full", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, map[string]bool{"success": true})
}

func (h *routerHandlers) handleViewport(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Width  float64 `json:"width"`
		Height float64 `json:"height"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request", http.StatusBadRequest)
		return
	}

	if err := h.engine.Resize(req.Width, req.Height); err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, map[string]bool{"success": true})
}

// Helper functions (package-level for reuse)

func writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, message string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
