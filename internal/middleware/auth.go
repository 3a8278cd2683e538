package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v3"

	"github.com/rajbhoyar729/LokDarpan/internal/auth"
)

type claimsKey struct{}

// TokenVerifier verifies a bearer token. *auth.TokenIssuer satisfies it.
type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

// RequireAuth rejects the request with 401 unless it carries a valid
// "Authorization: Bearer <token>" header. The verified claims are stored
// for Claims and UserID.
func RequireAuth(v TokenVerifier) fiber.Handler {
	return func(c fiber.Ctx) error {
		token, ok := bearerToken(c)
		if !ok {
			return ErrorResponse(c, fiber.StatusUnauthorized, "UNAUTHENTICATED", "Authentication required")
		}
		claims, err := v.Verify(token)
		if err != nil {
			return ErrorResponse(c, fiber.StatusUnauthorized, "UNAUTHENTICATED", "Invalid or expired token")
		}
		c.Locals(claimsKey{}, claims)
		return c.Next()
	}
}

// OptionalAuth attaches the caller's identity when a valid token is present.
// A missing or invalid token leaves the request anonymous.
func OptionalAuth(v TokenVerifier) fiber.Handler {
	return func(c fiber.Ctx) error {
		if token, ok := bearerToken(c); ok {
			if claims, err := v.Verify(token); err == nil {
				c.Locals(claimsKey{}, claims)
			}
		}
		return c.Next()
	}
}

// Claims returns the verified claims of the request, or nil.
func Claims(c fiber.Ctx) *auth.Claims {
	claims, _ := c.Locals(claimsKey{}).(*auth.Claims)
	return claims
}

// UserID returns the authenticated user's id, or "" for anonymous requests.
func UserID(c fiber.Ctx) string {
	if claims := Claims(c); claims != nil {
		return claims.UserID
	}
	return ""
}

func bearerToken(c fiber.Ctx) (string, bool) {
	h := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
	scheme, token, found := strings.Cut(h, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
