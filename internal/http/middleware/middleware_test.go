package middleware

import (
	"errors"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	authmocks "voicedoc/internal/auth/mocks"
	"voicedoc/internal/model"
)

func TestRequestID_GeneratesWhenMissing(t *testing.T) {
	app := fiber.New()
	app.Use(RequestID())
	app.Get("/", func(c *fiber.Ctx) error {
		assert.NotEmpty(t, RequestIDFromCtx(c))
		return c.SendStatus(fiber.StatusOK)
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.NotEmpty(t, resp.Header.Get(RequestIDHeader))
}

func TestRequestID_PropagatesIncoming(t *testing.T) {
	app := fiber.New()
	app.Use(RequestID())
	app.Get("/", func(c *fiber.Ctx) error {
		assert.Equal(t, "req-abc", RequestIDFromCtx(c))
		return c.SendStatus(fiber.StatusOK)
	})

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set(RequestIDHeader, "req-abc")
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "req-abc", resp.Header.Get(RequestIDHeader))
}

func TestLogger_DoesNotSwallowHandlerError(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))

	app := fiber.New()
	app.Use(Logger(logger))
	app.Get("/boom", func(c *fiber.Ctx) error {
		return errors.New("boom")
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/boom", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
}

func TestAuth(t *testing.T) {
	user := &model.User{ID: "user-1", Username: "alice"}

	newApp := func(svc *authmocks.MockAuthService) *fiber.App {
		app := fiber.New()
		app.Use(Auth(svc))
		app.Get("/", func(c *fiber.Ctx) error {
			got := UserFromCtx(c)
			require.NotNil(t, got)
			return c.SendString(got.ID)
		})
		return app
	}

	t.Run("missing credentials", func(t *testing.T) {
		app := newApp(new(authmocks.MockAuthService))

		resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("invalid token", func(t *testing.T) {
		svc := new(authmocks.MockAuthService)
		svc.On("VerifyToken", mock.Anything, "bad").Return(nil, errors.New("invalid"))
		app := newApp(svc)

		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set("Authorization", "Bearer bad")
		resp, err := app.Test(req)
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("valid bearer header", func(t *testing.T) {
		svc := new(authmocks.MockAuthService)
		svc.On("VerifyToken", mock.Anything, "good").Return(user, nil)
		app := newApp(svc)

		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set("Authorization", "Bearer good")
		resp, err := app.Test(req)
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		body, _ := io.ReadAll(resp.Body)
		assert.Equal(t, "user-1", string(body))
	})

	t.Run("token query parameter", func(t *testing.T) {
		svc := new(authmocks.MockAuthService)
		svc.On("VerifyToken", mock.Anything, "good").Return(user, nil)
		app := newApp(svc)

		resp, err := app.Test(httptest.NewRequest("GET", "/?token=good", nil))
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	})
}

func TestPrometheus_CountsByRoutePattern(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewPrometheusMiddleware(reg)
	require.NoError(t, err)

	app := fiber.New()
	app.Use(m.Handler())
	app.Get("/records/:id", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	for _, id := range []string{"a", "b"} {
		resp, err := app.Test(httptest.NewRequest("GET", "/records/"+id, nil))
		require.NoError(t, err)
		resp.Body.Close()
	}

	count := testutil.ToFloat64(m.requestCount.WithLabelValues("GET", "/records/:id", "200"))
	assert.Equal(t, float64(2), count)
	assert.Equal(t, 2, testutil.CollectAndCount(m.requestDuration))
}

func TestPrometheus_SkipsMetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewPrometheusMiddleware(reg)
	require.NoError(t, err)

	app := fiber.New()
	app.Use(m.Handler())
	app.Get("/metrics", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/metrics", nil))
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, 0, testutil.CollectAndCount(m.requestCount))
}
