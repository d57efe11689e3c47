package server_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"inventory/internal/repositories"
	"inventory/internal/server"
	"inventory/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newApp(t *testing.T, checks map[string]server.HealthCheck) (*fiber.App, *services.AuthService) {
	t.Helper()
	zerolog.SetGlobalLevel(zerolog.Disabled)

	store := repositories.NewMemoryStore()
	auth := services.NewAuthService(store.Users(), "server-secret", time.Hour)
	require.NoError(t, auth.EnsureUser(context.Background(), "admin", "admin", "Administrator"))

	app := server.New(server.Services{
		Auth:      auth,
		Products:  services.NewProductService(store, store.Repos().Products, nil),
		Customers: services.NewCustomerService(store),
		Orders:    services.NewOrderService(store, nil, nil),
	}, server.Options{Checks: checks})
	return app, auth
}

func TestHealth(t *testing.T) {
	app, _ := newApp(t, map[string]server.HealthCheck{
		"database": func(ctx context.Context) error { return nil },
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, map[string]interface{}{"database": "ok"}, body["checks"])
}

func TestHealthReportsFailingDependency(t *testing.T) {
	app, _ := newApp(t, map[string]server.HealthCheck{
		"database": func(ctx context.Context) error { return nil },
		"redis":    func(ctx context.Context) error { return errors.New("connection refused") },
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "degraded", body["status"])
}

func TestRoutesAreProtected(t *testing.T) {
	app, auth := newApp(t, nil)

	for _, path := range []string{"/api/v1/products", "/api/v1/customers", "/api/v1/orders"} {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil), -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, path)
	}

	token, err := auth.LoginUser(context.Background(), "admin", "admin")
	require.NoError(t, err)
	for _, path := range []string{"/api/v1/products", "/api/v1/customers", "/api/v1/orders"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.Header.Set("Authorization", "Bearer "+token)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode, path)
	}
}

func TestLoginIsPublic(t *testing.T) {
	app, _ := newApp(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{"username":"admin","password":"admin"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestUnknownRouteIsJSON(t *testing.T) {
	app, _ := newApp(t, nil)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/nope", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "Not Found", body["message"])
}

func TestRecoveredPanicIsJSON(t *testing.T) {
	app, _ := newApp(t, nil)
	app.Get("/boom", func(c *fiber.Ctx) error {
		panic("boom")
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/boom", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "Internal Server Error", body["message"])
	assert.Equal(t, "boom", body["error"])
}
