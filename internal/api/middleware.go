package api

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

type contextKey string

// requestIDKey holds the per-request id in the request context.
const requestIDKey contextKey = "requestID"

// RequestID returns the request id from ctx, or "" outside a request.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// requestID assigns every request a fresh id, exposed in the context and
// echoed back in the X-Request-Id header.
func (h *Handler) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()
		w.Header().Set("X-Request-Id", id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey, id)))
	})
}

// statusRecorder captures the status code written by the downstream handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (sr *statusRecorder) WriteHeader(status int) {
	sr.status = status
	sr.ResponseWriter.WriteHeader(status)
}

// logRequests emits one structured line per request.
func (h *Handler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		h.logger.InfoContext(r.Context(), "request handled",
			slog.String("requestID", RequestID(r.Context())),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", rec.status),
			slog.Duration("duration", time.Since(start)),
		)
	})
}

// recoverPanic converts a downstream panic into a clean 500 response
// instead of a silently dropped connection.
func (h *Handler) recoverPanic(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if v := recover(); v != nil {
				w.Header().Set("Connection", "close")
				h.logger.ErrorContext(r.Context(), "panic recovered",
					slog.String("panic", fmt.Sprintf("%v", v)), slog.String("path", r.URL.Path))
				h.respondError(w, r, http.StatusInternalServerError, "an unexpected error occurred")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// perIPClient pairs a token-bucket limiter with the time it was last seen
// so stale entries can be evicted.
type perIPClient struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// rateLimit applies per-IP token-bucket rate limiting. Rate and burst come
// from the server configuration; a non-positive rate disables the limiter.
func (h *Handler) rateLimit(next http.Handler) http.Handler {
	if h.rateRPS <= 0 {
		return next
	}

	var (
		mu        sync.Mutex
		clients   = make(map[string]*perIPClient)
		lastSweep = time.Now()
	)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			ip = r.RemoteAddr
		}

		mu.Lock()
		// Evict stale entries opportunistically instead of from a background
		// goroutine, so a router never outlives its cleanup.
		if time.Since(lastSweep) > time.Minute {
			for addr, c := range clients {
				if time.Since(c.lastSeen) > 3*time.Minute {
					delete(clients, addr)
				}
			}
			lastSweep = time.Now()
		}
		c, found := clients[ip]
		if !found {
			c = &perIPClient{limiter: rate.NewLimiter(rate.Limit(h.rateRPS), h.rateBurst)}
			clients[ip] = c
		}
		c.lastSeen = time.Now()
		allowed := c.limiter.Allow()
		mu.Unlock()

		if !allowed {
			h.respondError(w, r, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}
