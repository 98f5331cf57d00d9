package middleware

import (
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	apperrors "github.com/kbukum/voxnote/errors"
)

// RateLimitConfig configures the rate limiting middleware. Uploads are
// expensive, so the limit applies only to the paths listed in Paths; an
// empty list limits every request.
type RateLimitConfig struct {
	// RequestsPerMinute is the maximum number of requests allowed per minute
	// per client. Zero disables the limiter.
	RequestsPerMinute int `yaml:"requests_per_minute" mapstructure:"requests_per_minute" validate:"gte=0"`
	// Paths restricts limiting to these exact request paths.
	Paths []string `yaml:"paths" mapstructure:"paths"`
	// KeyFunc extracts the rate limit key from a request. Defaults to client IP.
	KeyFunc func(*http.Request) string `yaml:"-" mapstructure:"-"`
}

// RateLimit returns middleware that applies per-key sliding-window rate
// limiting. It returns nil when the limiter is disabled; Chain skips nil.
func RateLimit(cfg RateLimitConfig) Middleware {
	if cfg.RequestsPerMinute <= 0 {
		return nil
	}
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = ClientIP
	}
	paths := make(map[string]bool, len(cfg.Paths))
	for _, p := range cfg.Paths {
		paths[p] = true
	}

	rl := newRateLimiter(cfg.RequestsPerMinute, time.Minute, time.Now)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(paths) > 0 && !paths[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}
			if !rl.allow(cfg.KeyFunc(r)) {
				w.Header().Set("Retry-After", strconv.Itoa(int(rl.window/time.Second)))
				appErr := apperrors.RateLimited(rl.window)
				writeError(w, appErr.HTTPStatus, appErr.ToResponse())
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ClientIP returns the first X-Forwarded-For hop, or the remote address host.
func ClientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		for i := 0; i < len(fwd); i++ {
			if fwd[i] == ',' {
				return fwd[:i]
			}
		}
		return fwd
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

type rateLimiter struct {
	mu          sync.Mutex
	requests    map[string][]time.Time
	limit       int
	window      time.Duration
	now         func() time.Time
	lastCleanup time.Time
}

func newRateLimiter(limit int, window time.Duration, now func() time.Time) *rateLimiter {
	return &rateLimiter{
		requests:    make(map[string][]time.Time),
		limit:       limit,
		window:      window,
		now:         now,
		lastCleanup: now(),
	}
}

func (rl *rateLimiter) allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	cutoff := now.Add(-rl.window)
	if now.Sub(rl.lastCleanup) > 5*rl.window {
		rl.cleanup(cutoff)
		rl.lastCleanup = now
	}

	valid := filterByTime(rl.requests[key], cutoff)
	if len(valid) >= rl.limit {
		rl.requests[key] = valid
		return false
	}
	rl.requests[key] = append(valid, now)
	return true
}

// cleanup drops keys with no request inside the window. Callers hold mu.
func (rl *rateLimiter) cleanup(cutoff time.Time) {
	for key, times := range rl.requests {
		valid := filterByTime(times, cutoff)
		if len(valid) == 0 {
			delete(rl.requests, key)
		} else {
			rl.requests[key] = valid
		}
	}
}

func filterByTime(times []time.Time, cutoff time.Time) []time.Time {
	var result []time.Time
	for _, t := range times {
		if t.After(cutoff) {
			result = append(result, t)
		}
	}
	return result
}
