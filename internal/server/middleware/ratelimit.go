package middleware

import (
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/fieldscript/fieldscript/internal/apperr"
)

const (
	// DefaultRateLimit is the request budget per client per window.
	DefaultRateLimit = 60
	// DefaultRateWindow is the fixed window length.
	DefaultRateWindow = 60 * time.Second
)

// RateLimiter is a fixed-window per-client request counter. The window
// resets when now - window_start >= window; bursts straddling a window
// boundary are accepted by design (this is not a sliding window). Counters
// are mutex-guarded so concurrent bursts never undercount.
type RateLimiter struct {
	limit  int
	window time.Duration
	now    func() time.Time

	mu      sync.Mutex
	clients map[string]*clientWindow
}

type clientWindow struct {
	start time.Time
	count int
}

// NewRateLimiter creates a limiter allowing limit requests per window per
// client identifier.
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		limit:   limit,
		window:  window,
		now:     time.Now,
		clients: make(map[string]*clientWindow),
	}
}

// Allow counts one request for the client and reports whether it is within
// the current window's budget.
func (l *RateLimiter) Allow(client string) bool {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	cw, ok := l.clients[client]
	if !ok || now.Sub(cw.start) >= l.window {
		cw = &clientWindow{start: now}
		l.clients[client] = cw
	}
	cw.count++
	return cw.count <= l.limit
}

// Middleware rejects over-quota clients, keyed by source address, with a 429
// carrying the structured error body and the correlation id.
func (l *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.Allow(clientAddr(r)) {
			writeError(w, r, apperr.RateLimited())
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientAddr is the client identifier: the source IP without the port.
// chi's RealIP middleware has already rewritten RemoteAddr when the request
// came through a trusted proxy.
func clientAddr(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
