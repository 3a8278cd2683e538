package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
)

var (
	corsMethods = []string{
		fiber.MethodGet, fiber.MethodPost, fiber.MethodPut,
		fiber.MethodPatch, fiber.MethodDelete, fiber.MethodOptions,
	}
	corsAllowHeaders = []string{
		fiber.HeaderOrigin, fiber.HeaderContentType, fiber.HeaderAccept,
		fiber.HeaderAuthorization, fiber.HeaderXRequestID,
	}
	corsExposeHeaders = []string{
		"X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset",
		fiber.HeaderRetryAfter, fiber.HeaderXRequestID,
	}
)

// parseOrigins splits a comma separated CORS_ORIGINS value. Empty input and
// any "*" entry mean every origin.
func parseOrigins(raw string) []string {
	var origins []string
	for _, o := range strings.Split(raw, ",") {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		switch o {
		case "":
			continue
		case "*":
			return []string{"*"}
		}
		origins = append(origins, o)
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

// NewCORS builds the CORS middleware. Credentials are only allowed for an
// explicit origin list; browsers reject them with a wildcard.
func NewCORS(corsOrigins string) fiber.Handler {
	origins := parseOrigins(corsOrigins)
	return cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowCredentials: origins[0] != "*",
		AllowMethods:     corsMethods,
		AllowHeaders:     corsAllowHeaders,
		ExposeHeaders:    corsExposeHeaders,
		MaxAge:           86400,
	})
}
