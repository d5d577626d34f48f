package api

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

// LimiterStats counts admission decisions since startup.
type LimiterStats struct {
	Allowed  uint64 `json:"allowed"`
	Rejected uint64 `json:"rejected"`
}

type admissionCounter struct {
	allowed  atomic.Uint64
	rejected atomic.Uint64
}

// record counts one decision and passes it through.
func (c *admissionCounter) record(ok bool) bool {
	if ok {
		c.allowed.Add(1)
	} else {
		c.rejected.Add(1)
	}
	return ok
}

func (c *admissionCounter) stats() LimiterStats {
	return LimiterStats{Allowed: c.allowed.Load(), Rejected: c.rejected.Load()}
}

// RateLimitConfig configures the per-client HTTP limiter
type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
	CleanupInterval   time.Duration // buckets idle for two intervals are evicted
}

// DefaultRateLimitConfig lets one client post a pointer update every frame
var DefaultRateLimitConfig = RateLimitConfig{
	RequestsPerSecond: 60,
	Burst:             120,
	CleanupInterval:   5 * time.Minute,
}

type clientBucket struct {
	limiter  *rate.Limiter
	lastSeen atomic.Int64 // unix nanos
}

// IPRateLimiter gives every client IP its own token bucket.
type IPRateLimiter struct {
	buckets sync.Map // client IP -> *clientBucket
	cfg     RateLimitConfig
	counts  admissionCounter

	stop     chan struct{}
	stopOnce sync.Once
}

// NewIPRateLimiter starts a limiter and its idle-bucket eviction loop.
func NewIPRateLimiter(cfg RateLimitConfig) *IPRateLimiter {
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = DefaultRateLimitConfig.CleanupInterval
	}
	rl := &IPRateLimiter{cfg: cfg, stop: make(chan struct{})}
	go rl.evictIdle()
	return rl
}

// Stop ends the eviction loop
func (rl *IPRateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stop) })
}

func (rl *IPRateLimiter) bucket(ip string) *rate.Limiter {
	now := time.Now().UnixNano()
	if v, ok := rl.buckets.Load(ip); ok {
		b := v.(*clientBucket)
		b.lastSeen.Store(now)
		return b.limiter
	}

	b := &clientBucket{limiter: rate.NewLimiter(rate.Limit(rl.cfg.RequestsPerSecond), rl.cfg.Burst)}
	b.lastSeen.Store(now)
	v, _ := rl.buckets.LoadOrStore(ip, b)
	return v.(*clientBucket).limiter
}

func (rl *IPRateLimiter) evictIdle() {
	ticker := time.NewTicker(rl.cfg.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stop:
			return
		case now := <-ticker.C:
			rl.evictBefore(now.Add(-2 * rl.cfg.CleanupInterval))
		}
	}
}

// evictBefore drops buckets not used since cutoff.
func (rl *IPRateLimiter) evictBefore(cutoff time.Time) {
	limit := cutoff.UnixNano()
	rl.buckets.Range(func(key, v interface{}) bool {
		if v.(*clientBucket).lastSeen.Load() < limit {
			rl.buckets.Delete(key)
		}
		return true
	})
}

// Allow spends one token from the client's bucket.
func (rl *IPRateLimiter) Allow(ip string) bool {
	return rl.counts.record(rl.bucket(ip).Allow())
}

// Middleware answers 429 once a client runs out of tokens.
func (rl *IPRateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.Allow(GetClientIP(r)) {
			RecordConnectionRejected("rate_limit")
			w.Header().Set("Retry-After", "1")
			http.Error(w, "Too Many Requests", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Stats returns the request admission counters
func (rl *IPRateLimiter) Stats() LimiterStats {
	return rl.counts.stats()
}

// GetClientIP returns the client address of a request. Forwarding headers
// win over RemoteAddr, so they are only trustworthy behind a proxy that
// overwrites them.
func GetClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		// Proxies append hops, the first one is the client
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// WebSocketRateLimiter caps concurrently open WebSocket connections per IP.
type WebSocketRateLimiter struct {
	mu       sync.Mutex
	open     map[string]int
	maxPerIP int
	counts   admissionCounter
}

// NewWebSocketRateLimiter creates a connection limiter
func NewWebSocketRateLimiter(maxPerIP int) *WebSocketRateLimiter {
	return &WebSocketRateLimiter{open: make(map[string]int), maxPerIP: maxPerIP}
}

// Allow reserves a connection slot for ip. Every true result must be paired
// with one Release.
func (wrl *WebSocketRateLimiter) Allow(ip string) bool {
	wrl.mu.Lock()
	defer wrl.mu.Unlock()

	if wrl.open[ip] >= wrl.maxPerIP {
		return wrl.counts.record(false)
	}
	wrl.open[ip]++
	return wrl.counts.record(true)
}

// Release frees a slot reserved by Allow.
func (wrl *WebSocketRateLimiter) Release(ip string) {
	wrl.mu.Lock()
	defer wrl.mu.Unlock()

	if n := wrl.open[ip]; n > 1 {
		wrl.open[ip] = n - 1
	} else {
		delete(wrl.open, ip)
	}
}

// GetConnectionCount returns the open connections for ip
func (wrl *WebSocketRateLimiter) GetConnectionCount(ip string) int {
	wrl.mu.Lock()
	defer wrl.mu.Unlock()
	return wrl.open[ip]
}

// Stats returns the connection admission counters
func (wrl *WebSocketRateLimiter) Stats() LimiterStats {
	return wrl.counts.stats()
}

// InputRateConfig bounds remote input messages on one WebSocket connection.
// Pointer moves arrive at display rate, so the burst covers a few frames.
type InputRateConfig struct {
	MessagesPerSecond float64
	Burst             int
}

// DefaultInputRateConfig allows pointer updates at up to 120 Hz
var DefaultInputRateConfig = InputRateConfig{
	MessagesPerSecond: 120,
	Burst:             30,
}

// NewInputLimiter creates the limiter for one connection
func NewInputLimiter(cfg InputRateConfig) *rate.Limiter {
	return rate.NewLimiter(rate.Limit(cfg.MessagesPerSecond), cfg.Burst)
}

// AllowedOrigins are the page origins that may open a WebSocket or call the
// API cross-origin. Any port on these hosts is accepted.
var AllowedOrigins = []string{
	"http://localhost",
	"http://127.0.0.1",
}

// IsAllowedOrigin reports whether origin is one of AllowedOrigins.
func IsAllowedOrigin(origin string) bool {
	if origin == "" {
		return false
	}
	for _, allowed := range AllowedOrigins {
		if origin == allowed || strings.HasPrefix(origin, allowed+":") {
			return true
		}
	}
	return false
}
