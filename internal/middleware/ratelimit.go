package middleware

import (
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/gofiber/fiber/v3"
)

// RateLimitConfig is Max requests per Window for each key.
type RateLimitConfig struct {
	Max    int
	Window time.Duration
	KeyFn  func(c fiber.Ctx) string
}

type window struct {
	count int
	end   time.Time
}

// RateLimiter is an in-memory fixed-window rate limiter keyed by
// RateLimitConfig.KeyFn.
type RateLimiter struct {
	mu      sync.Mutex
	windows map[string]*window
	config  RateLimitConfig
	now     func() time.Time
}

func NewRateLimiter(cfg RateLimitConfig) *RateLimiter {
	rl := &RateLimiter{
		windows: make(map[string]*window),
		config:  cfg,
		now:     time.Now,
	}
	go rl.sweep(5 * time.Minute)
	return rl
}

// hit counts one request for key and returns the count within the current
// window and when that window ends.
func (rl *RateLimiter) hit(key string) (int, time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	w, ok := rl.windows[key]
	if !ok || !now.Before(w.end) {
		w = &window{end: now.Add(rl.config.Window)}
		rl.windows[key] = w
	}
	w.count++
	return w.count, w.end
}

// Handler enforces the limit, answering 429 RATE_LIMITED once exceeded.
func (rl *RateLimiter) Handler() fiber.Handler {
	return func(c fiber.Ctx) error {
		count, end := rl.hit(rl.config.KeyFn(c))
		remaining := rl.config.Max - count

		c.Set("X-RateLimit-Limit", strconv.Itoa(rl.config.Max))
		c.Set("X-RateLimit-Remaining", strconv.Itoa(max(remaining, 0)))
		c.Set("X-RateLimit-Reset", strconv.FormatInt(end.Unix(), 10))

		if remaining < 0 {
			retryAfter := int(end.Sub(rl.now()).Seconds()) + 1
			c.Set(fiber.HeaderRetryAfter, strconv.Itoa(retryAfter))
			return ErrorResponse(c, fiber.StatusTooManyRequests, "RATE_LIMITED",
				fmt.Sprintf("Too many requests. Try again in %d seconds.", retryAfter))
		}
		return c.Next()
	}
}

// Allow counts a request for key and reports whether it is within the limit.
func (rl *RateLimiter) Allow(key string) bool {
	count, _ := rl.hit(key)
	return count <= rl.config.Max
}

func (rl *RateLimiter) sweep(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for range ticker.C {
		rl.mu.Lock()
		now := rl.now()
		for key, w := range rl.windows {
			if !now.Before(w.end) {
				delete(rl.windows, key)
			}
		}
		rl.mu.Unlock()
	}
}

// KeyByIP returns the client IP as the rate limit key.
func KeyByIP(c fiber.Ctx) string {
	return "ip:" + c.IP()
}

// KeyByUserID keys on the authenticated user. Falls back to IP for
// anonymous requests, so it must run after RequireAuth or OptionalAuth.
func KeyByUserID(c fiber.Ctx) string {
	if uid := UserID(c); uid != "" {
		return "user:" + uid
	}
	return "ip:" + c.IP()
}

// --- Pre-configured rate limiters matching the API contract ---

// NewAuthRateLimiter: 10 req/min per IP (signup, login)
func NewAuthRateLimiter() *RateLimiter {
	return NewRateLimiter(RateLimitConfig{
		Max:    10,
		Window: time.Minute,
		KeyFn:  KeyByIP,
	})
}

// NewReadRateLimiter: 300 req/min per IP
func NewReadRateLimiter() *RateLimiter {
	return NewRateLimiter(RateLimitConfig{
		Max:    300,
		Window: time.Minute,
		KeyFn:  KeyByIP,
	})
}

// NewWriteRateLimiter: 60 req/min per user (reactions, comments, subscriptions, edits)
func NewWriteRateLimiter() *RateLimiter {
	return NewRateLimiter(RateLimitConfig{
		Max:    60,
		Window: time.Minute,
		KeyFn:  KeyByUserID,
	})
}

// NewUploadRateLimiter: 20 req/hour per user
func NewUploadRateLimiter() *RateLimiter {
	return NewRateLimiter(RateLimitConfig{
		Max:    20,
		Window: time.Hour,
		KeyFn:  KeyByUserID,
	})
}

// NewStatsRateLimiter: 10 req/min per IP
func NewStatsRateLimiter() *RateLimiter {
	return NewRateLimiter(RateLimitConfig{
		Max:    10,
		Window: time.Minute,
		KeyFn:  KeyByIP,
	})
}
