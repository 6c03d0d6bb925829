package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"socialvim/internal/config"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupMiddleware_RequestIDAndSecurityHeaders(t *testing.T) {
	srv := &Server{config: &config.Config{AllowedOrigins: "*"}}

	app := fiber.New()
	srv.SetupMiddleware(app)
	app.Get("/ping", func(c *fiber.Ctx) error {
		return c.SendString("pong")
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/ping", nil), -1)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	_, parseErr := uuid.Parse(resp.Header.Get(fiber.HeaderXRequestID))
	assert.NoError(t, parseErr, "request id should be a uuid")
	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
}

func TestSetupMiddleware_RecoversPanics(t *testing.T) {
	srv := &Server{config: &config.Config{}}

	app := fiber.New()
	srv.SetupMiddleware(app)
	app.Get("/boom", func(c *fiber.Ctx) error {
		panic("boom")
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/boom", nil), -1)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
}

func TestSetupMiddleware_WildcardOriginDisablesCredentials(t *testing.T) {
	srv := &Server{config: &config.Config{AllowedOrigins: "*"}}

	app := fiber.New()
	srv.SetupMiddleware(app)
	app.Get("/ping", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Origin", "http://example.com")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.Empty(t, resp.Header.Get("Access-Control-Allow-Credentials"))
}
