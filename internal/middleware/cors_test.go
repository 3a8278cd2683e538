package middleware

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOrigins(t *testing.T) {
	tests := []struct {
		raw  string
		want []string
	}{
		{"", []string{"*"}},
		{"*", []string{"*"}},
		{"https://a.example, http://localhost:5173/", []string{"https://a.example", "http://localhost:5173"}},
		{"https://a.example,*", []string{"*"}},
		{" , ", []string{"*"}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, parseOrigins(tt.raw), "raw=%q", tt.raw)
	}
}

func TestNewCORS_ExplicitOrigin(t *testing.T) {
	app := fiber.New()
	app.Use(NewCORS("https://lokdarpan.app"))
	app.Get("/", func(c fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	req := httptest.NewRequest(fiber.MethodGet, "/", nil)
	req.Header.Set(fiber.HeaderOrigin, "https://lokdarpan.app")
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "https://lokdarpan.app", resp.Header.Get(fiber.HeaderAccessControlAllowOrigin))
	assert.Equal(t, "true", resp.Header.Get(fiber.HeaderAccessControlAllowCredentials))
}
