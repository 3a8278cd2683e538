package middleware

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"

	"github.com/rajbhoyar729/LokDarpan/internal/auth"
	"github.com/rajbhoyar729/LokDarpan/internal/model"
)

func TestRateLimiter_Allow(t *testing.T) {
	tests := []struct {
		name    string
		max     int
		keys    []string
		allowed []bool
	}{
		{"within limit", 3, []string{"a", "a", "a"}, []bool{true, true, true}},
		{"over limit", 2, []string{"a", "a", "a"}, []bool{true, true, false}},
		{"keys counted separately", 1, []string{"a", "b", "a", "b"}, []bool{true, true, false, false}},
		{"zero max blocks everything", 0, []string{"a"}, []bool{false}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rl := NewRateLimiter(RateLimitConfig{Max: tt.max, Window: time.Minute, KeyFn: KeyByIP})
			for i, key := range tt.keys {
				assert.Equal(t, tt.allowed[i], rl.Allow(key), "request %d (key %s)", i+1, key)
			}
		})
	}
}

func TestRateLimiter_WriteConfig(t *testing.T) {
	rl := NewWriteRateLimiter()
	for i := 0; i < 60; i++ {
		if !rl.Allow("user:abc123") {
			t.Fatalf("write request %d should be allowed (max 60)", i+1)
		}
	}
	if rl.Allow("user:abc123") {
		t.Fatal("61st write should be blocked")
	}
}

func TestRateLimiter_AuthConfig(t *testing.T) {
	rl := NewAuthRateLimiter()
	for i := 0; i < 10; i++ {
		if !rl.Allow("ip:127.0.0.1") {
			t.Fatalf("auth request %d should be allowed (max 10)", i+1)
		}
	}
	if rl.Allow("ip:127.0.0.1") {
		t.Fatal("11th auth request should be blocked")
	}
}

func TestRateLimiter_UploadConfig(t *testing.T) {
	rl := NewUploadRateLimiter()
	for i := 0; i < 20; i++ {
		if !rl.Allow("user:abc123") {
			t.Fatalf("upload request %d should be allowed (max 20)", i+1)
		}
	}
	if rl.Allow("user:abc123") {
		t.Fatal("21st upload should be blocked (max 20/hour)")
	}
}

func TestRateLimiter_StatsConfig(t *testing.T) {
	rl := NewStatsRateLimiter()
	for i := 0; i < 10; i++ {
		if !rl.Allow("ip:127.0.0.1") {
			t.Fatalf("stats request %d should be allowed (max 10)", i+1)
		}
	}
	if rl.Allow("ip:127.0.0.1") {
		t.Fatal("11th stats request should be blocked")
	}
}

func TestRateLimiter_HandlerRejectsWith429(t *testing.T) {
	rl := NewRateLimiter(RateLimitConfig{Max: 1, Window: time.Minute, KeyFn: KeyByIP})
	app := fiber.New()
	app.Get("/", rl.Handler(), func(c fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/", nil))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("first request status = %d", resp.StatusCode)
	}
	if resp.Header.Get("X-RateLimit-Remaining") != "0" {
		t.Errorf("X-RateLimit-Remaining = %q, want 0", resp.Header.Get("X-RateLimit-Remaining"))
	}

	resp, err = app.Test(httptest.NewRequest(fiber.MethodGet, "/", nil))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != fiber.StatusTooManyRequests {
		t.Fatalf("second request status = %d, want 429", resp.StatusCode)
	}
	if resp.Header.Get(fiber.HeaderRetryAfter) == "" {
		t.Error("Retry-After header missing on 429")
	}
}

func TestRateLimiter_WindowResets(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(RateLimitConfig{Max: 1, Window: time.Minute, KeyFn: KeyByIP})
	rl.now = func() time.Time { return now }

	if !rl.Allow("ip") {
		t.Fatal("first request should be allowed")
	}
	if rl.Allow("ip") {
		t.Fatal("second request in the same window should be blocked")
	}

	now = now.Add(time.Minute)
	if !rl.Allow("ip") {
		t.Fatal("request in the next window should be allowed")
	}
}

func TestKeyByUserID_UsesAuthenticatedUser(t *testing.T) {
	tokens := auth.NewTokenIssuer("secret", time.Hour)
	token, err := tokens.Issue(&model.User{ID: "u-42"})
	if err != nil {
		t.Fatal(err)
	}

	app := fiber.New()
	app.Get("/", OptionalAuth(tokens), func(c fiber.Ctx) error { return c.SendString(KeyByUserID(c)) })

	_, body := doGet(t, app, "/", "Bearer "+token)
	if body != "user:u-42" {
		t.Errorf("key = %q, want user:u-42", body)
	}
	_, body = doGet(t, app, "/", "")
	if body[:3] != "ip:" {
		t.Errorf("anonymous key = %q, want ip: prefix", body)
	}
}
