package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"blogforge/internal/metrics"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runThrough(t *testing.T, path string) {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath(path)

	handler := PrometheusMetrics(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	require.NoError(t, handler(c))
}

func TestPrometheusMetrics(t *testing.T) {
	t.Run("counts api routes", func(t *testing.T) {
		counter := metrics.HTTPRequestsTotal.WithLabelValues("GET", "/api/v1/posts", "200")
		before := testutil.ToFloat64(counter)

		runThrough(t, "/api/v1/posts")

		assert.Equal(t, before+1, testutil.ToFloat64(counter))
	})

	t.Run("skips observability routes", func(t *testing.T) {
		for _, path := range []string{"/metrics", "/debug/statsviz/", "/swag/swagger/index.html"} {
			counter := metrics.HTTPRequestsTotal.WithLabelValues("GET", path, "200")
			before := testutil.ToFloat64(counter)

			runThrough(t, path)

			assert.Equal(t, before, testutil.ToFloat64(counter))
		}
	})
}
