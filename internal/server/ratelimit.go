package server

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"qaforge/internal/errors"

	"golang.org/x/time/rate"
)

// limiterEntry pairs a token bucket with the last time its key was seen,
// so idle buckets can be evicted.
type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// LimiterManager keeps one token bucket per client key (API key or IP)
// and evicts buckets that have been idle for a while.
type LimiterManager struct {
	mu      sync.Mutex
	entries map[string]*limiterEntry
	rate    rate.Limit
	burst   int
	done    chan struct{}
	logger  *errors.Logger
}

// NewRateLimiter builds a manager allowing requestsPerMin requests over the
// given window (time.Minute unless overridden) with the given bucket size.
func NewRateLimiter(requestsPerMin int, window time.Duration, burstCapacity int, logger *errors.Logger) *LimiterManager {
	if window <= 0 {
		window = time.Minute
	}

	m := &LimiterManager{
		entries: make(map[string]*limiterEntry),
		rate:    rate.Limit(float64(requestsPerMin) / window.Seconds()),
		burst:   burstCapacity,
		done:    make(chan struct{}),
		logger:  logger,
	}

	go m.evictLoop(10 * time.Minute)
	return m
}

// Allow reports whether a request for the given key fits its bucket.
// Non-blocking; a missing bucket is created on first use.
func (m *LimiterManager) Allow(key string) bool {
	m.mu.Lock()
	entry, ok := m.entries[key]
	if !ok {
		entry = &limiterEntry{limiter: rate.NewLimiter(m.rate, m.burst)}
		m.entries[key] = entry
	}
	entry.lastSeen = time.Now()
	m.mu.Unlock()

	return entry.limiter.Allow()
}

// GetStats returns a snapshot of the manager for the stats endpoint.
func (m *LimiterManager) GetStats() map[string]any {
	m.mu.Lock()
	defer m.mu.Unlock()

	return map[string]any{
		"active_limiters": len(m.entries),
		"rate_per_second": float64(m.rate),
		"rate_per_minute": float64(m.rate) * 60.0,
		"burst_capacity":  m.burst,
	}
}

func (m *LimiterManager) evictLoop(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.evictIdle(every)
		case <-m.done:
			return
		}
	}
}

// evictIdle drops buckets whose key has not been seen within maxIdle.
func (m *LimiterManager) evictIdle(maxIdle time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := time.Now().Add(-maxIdle)
	for key, entry := range m.entries {
		if entry.lastSeen.Before(cutoff) {
			delete(m.entries, key)
		}
	}

	if m.logger != nil {
		m.logger.Debug("Rate limiter eviction completed",
			"remaining_limiters", len(m.entries))
	}
}

// Close stops the eviction goroutine. Call during server shutdown.
func (m *LimiterManager) Close() {
	close(m.done)
}

// rateLimitMiddleware rejects requests whose key has exhausted its bucket.
// A no-op passthrough is returned when rate limiting is disabled.
func (s *Server) rateLimitMiddleware() func(http.HandlerFunc) http.HandlerFunc {
	if s.RateLimit == nil || !s.RateLimit.Enabled {
		return func(next http.HandlerFunc) http.HandlerFunc { return next }
	}

	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			key := getRateLimitKey(r, s.RateLimit.ByAPIKey, s.RateLimit.ByIP)
			if key == "" {
				next(w, r)
				return
			}

			if !s.RateLimiter.Allow(key) {
				s.Logger.Info("Rate limit exceeded",
					"key", key,
					"endpoint", r.URL.Path,
					"client_ip", getClientIP(r))
				writeErrorResponse(w, "Rate limit exceeded", "Too many requests", http.StatusTooManyRequests)
				return
			}

			next(w, r)
		}
	}
}

// getRateLimitKey picks the bucket key for a request: the API key when
// key-based limiting is on and the client sent one, otherwise the client IP.
// An empty key means the request is not subject to limiting.
func getRateLimitKey(r *http.Request, byAPIKey, byIP bool) string {
	if byAPIKey {
		if apiKey := apiKeyFromRequest(r); apiKey != "" {
			return "api:" + apiKey
		}
	}

	if byIP {
		return "ip:" + getClientIP(r)
	}

	return ""
}

// getClientIP resolves the client address, preferring proxy headers.
func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if ip := parseFirstIP(xff); ip != "" {
			return ip
		}
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		if net.ParseIP(xri) != nil {
			return xri
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// parseFirstIP returns the first valid address in a comma-separated list.
func parseFirstIP(ips string) string {
	for ip := range strings.SplitSeq(ips, ",") {
		ip = strings.TrimSpace(ip)
		if net.ParseIP(ip) != nil {
			return ip
		}
	}
	return ""
}
