package middleware

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/julienschmidt/httprouter"

	"roomly/pkg/auth"
	apperrors "roomly/pkg/errors"
	httputil "roomly/pkg/http"
	"roomly/pkg/logger"
)

// RateLimiter is an in-memory sliding-window limiter shared by every
// route of a service. Each route supplies its own limit and window, so
// one limiter instance carries all the per-route buckets. Not suitable
// for multi-process deployments without external storage.
type RateLimiter struct {
	mu       sync.Mutex
	requests map[string][]time.Time
	enabled  bool
	log      *logger.Logger
	stopCh   chan struct{}
}

func NewRateLimiter(enabled bool, log *logger.Logger) *RateLimiter {
	limiter := &RateLimiter{
		requests: make(map[string][]time.Time),
		enabled:  enabled,
		log:      log,
		stopCh:   make(chan struct{}),
	}

	go limiter.cleanup()

	return limiter
}

func (rl *RateLimiter) cleanup() {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.mu.Lock()
			for key, timestamps := range rl.requests {
				if len(timestamps) == 0 || time.Since(timestamps[len(timestamps)-1]) > time.Hour {
					delete(rl.requests, key)
				}
			}
			rl.mu.Unlock()
		case <-rl.stopCh:
			return
		}
	}
}

func (rl *RateLimiter) Stop() {
	close(rl.stopCh)
}

// Allow records a hit for key and reports whether it stays within limit
// hits per window.
func (rl *RateLimiter) Allow(key string, limit int, window time.Duration) bool {
	now := time.Now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	valid := make([]time.Time, 0, limit)
	for _, ts := range rl.requests[key] {
		if now.Sub(ts) < window {
			valid = append(valid, ts)
		}
	}

	if len(valid) >= limit {
		rl.requests[key] = valid
		return false
	}

	rl.requests[key] = append(valid, now)
	return true
}

// PerUser limits a route by authenticated user id, falling back to the
// client IP when no principal is in the context.
func (rl *RateLimiter) PerUser(name string, limit int, window time.Duration, next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		var key string
		if p, ok := auth.PrincipalFrom(r.Context()); ok {
			key = name + ":user:" + strconv.FormatInt(p.ID, 10)
		} else {
			key = name + ":ip:" + ClientIP(r)
		}

		if !rl.permit(w, r, key, limit, window) {
			return
		}
		next(w, r, ps)
	}
}

// PerIP limits a route by client IP.
func (rl *RateLimiter) PerIP(name string, limit int, window time.Duration, next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		if !rl.permit(w, r, name+":ip:"+ClientIP(r), limit, window) {
			return
		}
		next(w, r, ps)
	}
}

func (rl *RateLimiter) permit(w http.ResponseWriter, r *http.Request, key string, limit int, window time.Duration) bool {
	if !rl.enabled {
		return true
	}

	if rl.Allow(key, limit, window) {
		return true
	}

	rl.log.Warn("Rate limit exceeded",
		"request_id", RequestIDFrom(r.Context()),
		"key", key,
		"path", r.URL.Path,
	)
	httputil.WriteError(w, apperrors.RateLimited())
	return false
}

// ClientIP prefers the first hop of X-Forwarded-For, then the remote
// address without its port.
func ClientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return strings.TrimSpace(strings.Split(fwd, ",")[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
