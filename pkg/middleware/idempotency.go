package middleware

import (
	"bytes"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/julienschmidt/httprouter"

	"roomly/pkg/auth"
	"roomly/pkg/logger"
)

// IdempotencyHeader carries the client-chosen key for replay-safe
// retries of booking mutations.
const IdempotencyHeader = "Idempotency-Key"

type cachedResponse struct {
	statusCode int
	headers    http.Header
	body       []byte
	createdAt  time.Time
}

// IdempotencyCache replays the stored response for a repeated key, so a
// client retrying a create after a lost response does not double-book.
// Keys are scoped per principal; entries expire after ttl. In-memory, so
// replay protection does not survive a restart or span processes.
type IdempotencyCache struct {
	mu     sync.RWMutex
	store  map[string]*cachedResponse
	ttl    time.Duration
	log    *logger.Logger
	stopCh chan struct{}
}

func NewIdempotencyCache(ttl time.Duration, log *logger.Logger) *IdempotencyCache {
	cache := &IdempotencyCache{
		store:  make(map[string]*cachedResponse),
		ttl:    ttl,
		log:    log,
		stopCh: make(chan struct{}),
	}

	go cache.cleanup()

	return cache
}

func (c *IdempotencyCache) cleanup() {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.mu.Lock()
			for key, cached := range c.store {
				if time.Since(cached.createdAt) > c.ttl {
					delete(c.store, key)
				}
			}
			c.mu.Unlock()
		case <-c.stopCh:
			return
		}
	}
}

func (c *IdempotencyCache) Stop() {
	close(c.stopCh)
}

func (c *IdempotencyCache) get(key string) (*cachedResponse, bool) {
	c.mu.RLock()
	cached, ok := c.store[key]
	c.mu.RUnlock()

	if !ok || time.Since(cached.createdAt) > c.ttl {
		return nil, false
	}
	return cached, true
}

func (c *IdempotencyCache) set(key string, cached *cachedResponse) {
	cached.createdAt = time.Now()
	c.mu.Lock()
	c.store[key] = cached
	c.mu.Unlock()
}

type responseCapture struct {
	http.ResponseWriter
	statusCode int
	body       *bytes.Buffer
}

func (rc *responseCapture) WriteHeader(statusCode int) {
	rc.statusCode = statusCode
	rc.ResponseWriter.WriteHeader(statusCode)
}

func (rc *responseCapture) Write(b []byte) (int, error) {
	rc.body.Write(b)
	return rc.ResponseWriter.Write(b)
}

// Wrap guards a mutating route. Requests without the header pass
// through untouched; only 2xx responses are cached, so a failed attempt
// may be retried with the same key.
func (c *IdempotencyCache) Wrap(name string, next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		rawKey := r.Header.Get(IdempotencyHeader)
		if rawKey == "" {
			next(w, r, ps)
			return
		}

		key := name + ":" + rawKey
		if p, ok := auth.PrincipalFrom(r.Context()); ok {
			key += ":user:" + strconv.FormatInt(p.ID, 10)
		}

		if cached, ok := c.get(key); ok {
			c.log.Info("Replaying idempotent response",
				"request_id", RequestIDFrom(r.Context()),
				"key", rawKey,
				"path", r.URL.Path,
			)
			for header, values := range cached.headers {
				for _, value := range values {
					w.Header().Add(header, value)
				}
			}
			w.WriteHeader(cached.statusCode)
			_, _ = w.Write(cached.body)
			return
		}

		capture := &responseCapture{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
			body:           &bytes.Buffer{},
		}
		next(capture, r, ps)

		if capture.statusCode >= 200 && capture.statusCode < 300 {
			c.set(key, &cachedResponse{
				statusCode: capture.statusCode,
				headers:    w.Header().Clone(),
				body:       capture.body.Bytes(),
			})
		}
	}
}
