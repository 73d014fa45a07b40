package rest

import (
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Credential endpoints get a per-IP token bucket so a single client cannot
// brute-force passwords or mass-register accounts.
const (
	authAttemptsPerSecond = 1
	authBurstLimit        = 5
	limiterIdleTTL        = 10 * time.Minute
)

type ipRateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*limiterEntry
	rate     rate.Limit
	burst    int
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newIPRateLimiter(r rate.Limit, burst int) *ipRateLimiter {
	return &ipRateLimiter{
		limiters: make(map[string]*limiterEntry),
		rate:     r,
		burst:    burst,
	}
}

func (l *ipRateLimiter) allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, ok := l.limiters[ip]
	if !ok {
		l.prune()
		entry = &limiterEntry{limiter: rate.NewLimiter(l.rate, l.burst)}
		l.limiters[ip] = entry
	}
	entry.lastSeen = time.Now()
	return entry.limiter.Allow()
}

// prune drops buckets idle past the TTL. Called with the lock held, only
// when a new IP shows up, so steady traffic costs nothing.
func (l *ipRateLimiter) prune() {
	cutoff := time.Now().Add(-limiterIdleTTL)
	for ip, entry := range l.limiters {
		if entry.lastSeen.Before(cutoff) {
			delete(l.limiters, ip)
		}
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// checkAuthRate enforces the credential-endpoint limit, answering 429 when
// the client's bucket is empty.
func (h *Handler) checkAuthRate(w http.ResponseWriter, r *http.Request) bool {
	if !h.authLimiter.allow(clientIP(r)) {
		http.Error(w, "too many attempts", http.StatusTooManyRequests)
		return false
	}
	return true
}
