package handler

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/redis/go-redis/v9"
)

const Version = "1.0.0"

// Pinger is a dependency the readiness check pings.
type Pinger interface {
	Ping(ctx context.Context) error
}

type redisPinger struct{ rdb *redis.Client }

func (p redisPinger) Ping(ctx context.Context) error { return p.rdb.Ping(ctx).Err() }

// RedisPinger adapts a redis client. A nil client yields a nil Pinger,
// reported as disabled.
func RedisPinger(rdb *redis.Client) Pinger {
	if rdb == nil {
		return nil
	}
	return redisPinger{rdb: rdb}
}

type HealthHandler struct {
	db      Pinger
	cache   Pinger
	startAt time.Time
}

func NewHealthHandler(db, cache Pinger) *HealthHandler {
	return &HealthHandler{
		db:      db,
		cache:   cache,
		startAt: time.Now(),
	}
}

// Live handles GET /health/live and only reports that the process is up.
func (h *HealthHandler) Live(c fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// Ready handles GET /health/ready and GET /health. The database must be up;
// the cache only degrades the report.
func (h *HealthHandler) Ready(c fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 3*time.Second)
	defer cancel()

	dbCheck := check(ctx, h.db)
	cacheCheck := check(ctx, h.cache)

	overallStatus := "healthy"
	status := fiber.StatusOK
	if dbCheck["status"] != "up" {
		overallStatus = "unhealthy"
		status = fiber.StatusServiceUnavailable
	} else if cacheCheck["status"] == "down" {
		overallStatus = "degraded"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overallStatus,
		"checks": fiber.Map{
			"database": dbCheck,
			"redis":    cacheCheck,
		},
		"uptime_seconds": int(time.Since(h.startAt).Seconds()),
		"version":        Version,
	})
}

func check(ctx context.Context, p Pinger) fiber.Map {
	if p == nil {
		return fiber.Map{"status": "disabled"}
	}

	start := time.Now()
	err := p.Ping(ctx)
	latency := time.Since(start).Milliseconds()

	if err != nil {
		return fiber.Map{
			"status":     "down",
			"latency_ms": latency,
			"error":      "connection failed",
		}
	}
	return fiber.Map{
		"status":     "up",
		"latency_ms": latency,
	}
}
