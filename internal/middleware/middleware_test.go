package middleware_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"heroes/internal/middleware"
	"heroes/internal/repositories"
	"heroes/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func echoApp(mw ...fiber.Handler) *fiber.App {
	app := fiber.New()
	handlers := append(mw, func(c *fiber.Ctx) error {
		return c.Send(c.Body())
	})
	app.Post("/echo", handlers...)
	return app
}

func TestAuthRequired(t *testing.T) {
	ctx := context.Background()
	authService := services.NewAuthService(repositories.NewMemoryAdminRepository(), "secret")
	_, err := authService.EnsureBootstrapAdmin(ctx, "admin", "password")
	require.NoError(t, err)
	token, err := authService.Login(ctx, "admin", "password")
	require.NoError(t, err)

	app := echoApp(middleware.AuthRequired(authService))

	cases := []struct {
		name   string
		header string
		status int
	}{
		{"missing header", "", fiber.StatusUnauthorized},
		{"wrong scheme", "Basic abc", fiber.StatusUnauthorized},
		{"bad token", "Bearer nope", fiber.StatusUnauthorized},
		{"valid token", "Bearer " + token, fiber.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/echo", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tc.status, resp.StatusCode)
		})
	}
}

func TestAuthRequired_DisabledPassesThrough(t *testing.T) {
	app := echoApp(middleware.AuthRequired(nil))

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/echo", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestSanitizeJSON(t *testing.T) {
	app := echoApp(middleware.SanitizeJSON())

	req := httptest.NewRequest(http.MethodPost, "/echo",
		strings.NewReader(`{"name":"<script>alert(1)</script>Bat<b>man</b>","affiliation":"Tom & Jerry's","count":3}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)

	assert.JSONEq(t, `{"name":"Batman","affiliation":"Tom & Jerry's","count":3}`, string(body))
}

func TestSanitizeJSON_LeavesPlainTextUntouched(t *testing.T) {
	app := echoApp(middleware.SanitizeJSON())

	raw := `{"affiliation":"Tom &amp; Jerry","note":"x &lt; y"}`
	req := httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, raw, string(body))
}

func TestSanitizeJSON_RejectsMalformedBody(t *testing.T) {
	app := echoApp(middleware.SanitizeJSON())

	req := httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(`{"name":`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestSanitizeJSON_IgnoresOtherContentTypes(t *testing.T) {
	app := echoApp(middleware.SanitizeJSON())

	req := httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader("<b>raw</b>"))
	req.Header.Set("Content-Type", "text/plain")
	resp, err := app.Test(req)
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "<b>raw</b>", string(body))
}

func TestRequestLogger_PreservesErrorStatus(t *testing.T) {
	app := fiber.New()
	app.Use(middleware.RequestLogger())
	app.Get("/missing", func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusNotFound, "nope")
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/missing", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
