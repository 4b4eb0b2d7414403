package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wealthdesk/wealthdesk/internal/infrastructure/monitoring/logging"
	"github.com/wealthdesk/wealthdesk/internal/infrastructure/monitoring/prometheus"
	"github.com/wealthdesk/wealthdesk/internal/interfaces/http/handlers"
	"github.com/wealthdesk/wealthdesk/internal/interfaces/http/middleware"
	"github.com/wealthdesk/wealthdesk/pkg/errors"
)

type staticChecker struct{ err error }

func (c staticChecker) HealthCheck(context.Context) error { return c.err }

func newTestRouter(checkers map[string]handlers.HealthChecker) http.Handler {
	return NewRouter(RouterConfig{
		ClientHandler:    handlers.NewClientHandler(nil),
		PortfolioHandler: handlers.NewPortfolioHandler(nil),
		ScheduleHandler:  handlers.NewScheduleHandler(nil),
		InsightsHandler:  handlers.NewInsightsHandler(nil),
		HealthHandler:    handlers.NewHealthHandler(checkers),
		CORS:             middleware.DefaultCORSConfig(),
		Logger:           logging.NewNopLogger(),
		Metrics:          prometheus.NewMetrics(),
	})
}

func TestRouterLiveness(t *testing.T) {
	r := newTestRouter(nil)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest("GET", "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestRouterReadinessReportsFailures(t *testing.T) {
	r := newTestRouter(map[string]handlers.HealthChecker{
		"postgres": staticChecker{},
		"redis":    staticChecker{err: errors.New(errors.ErrCodeCacheError, "redis unreachable")},
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest("GET", "/readyz", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "redis")
}

func TestRouterMetricsEndpoint(t *testing.T) {
	r := newTestRouter(nil)

	// Drive one request through the logging middleware so the request
	// counter has a sample to expose.
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/api/v1/nope", nil))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "wealthdesk_http_requests_total")
}

func TestRouterUnknownRoute(t *testing.T) {
	r := newTestRouter(nil)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest("GET", "/api/v1/nope", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouterCORSPreflight(t *testing.T) {
	r := newTestRouter(nil)

	req := httptest.NewRequest("OPTIONS", "/api/v1/clients", nil)
	req.Header.Set("Origin", "https://desk.example.com")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
