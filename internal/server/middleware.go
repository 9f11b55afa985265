package server

import (
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/juju/ratelimit"
	"go.uber.org/zap"
)

const sweepTokenCost = 10

// requestLogger logs one line per request once the response is written.
func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			fields := []zap.Field{
				zap.String("op", "server.requestLogger"),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", status),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
				zap.String("remote", r.RemoteAddr),
				zap.String("requestID", middleware.GetReqID(r.Context())),
			}
			if status >= http.StatusInternalServerError {
				logger.Error("request failed", fields...)
				return
			}
			logger.Debug("request served", fields...)
		})
	}
}

// rateLimiter keeps one token bucket per client address.
type rateLimiter struct {
	clients  map[string]*ratelimit.Bucket
	mu       sync.RWMutex
	rate     float64
	capacity int64
}

func newRateLimiter(cfg RateLimitConfig) *rateLimiter {
	return &rateLimiter{
		clients:  make(map[string]*ratelimit.Bucket),
		rate:     cfg.PerSecond,
		capacity: cfg.Capacity,
	}
}

func (rl *rateLimiter) getBucket(clientIP string) *ratelimit.Bucket {
	rl.mu.RLock()
	bucket, exists := rl.clients[clientIP]
	rl.mu.RUnlock()

	if !exists {
		rl.mu.Lock()
		if bucket, exists = rl.clients[clientIP]; !exists {
			bucket = ratelimit.NewBucketWithRate(rl.rate, rl.capacity)
			rl.clients[clientIP] = bucket
		}
		rl.mu.Unlock()
	}

	return bucket
}

// prune drops buckets that have refilled completely.
func (rl *rateLimiter) prune() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	for ip, bucket := range rl.clients {
		if bucket.Available() == bucket.Capacity() {
			delete(rl.clients, ip)
		}
	}
	return len(rl.clients)
}

func tokenCost(r *http.Request) int64 {
	switch r.URL.Path {
	case "/health", "/metrics":
		return 0
	}
	if strings.HasSuffix(r.URL.Path, "/sweep") {
		return sweepTokenCost
	}
	return 1
}

// middleware rejects requests with 429 when the client's bucket cannot cover
// their cost.
func (rl *rateLimiter) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cost := tokenCost(r)
		if cost == 0 {
			next.ServeHTTP(w, r)
			return
		}

		bucket := rl.getBucket(r.RemoteAddr)
		w.Header().Set("X-RateLimit-Limit", strconv.FormatInt(rl.capacity, 10))

		// All or nothing: a request that cannot pay its full cost must not
		// drain what is left.
		if _, ok := bucket.TakeMaxDuration(cost, 0); !ok {
			w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(bucket.Available(), 10))
			w.Header().Set("Retry-After", "1")
			_ = writeJSON(w, http.StatusTooManyRequests, errorResponse{Error: "rate limit exceeded, please try again later"})
			return
		}

		w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(bucket.Available(), 10))
		next.ServeHTTP(w, r)
	})
}
