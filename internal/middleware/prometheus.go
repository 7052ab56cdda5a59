package middleware

import (
	"strconv"
	"strings"
	"time"

	"blogforge/internal/metrics"

	"github.com/labstack/echo/v4"
)

// PrometheusMetrics records per-route counters and latency for the content
// API. Observability routes are excluded to keep the label set on the
// domain surface.
func PrometheusMetrics(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		err := next(c)

		path := c.Path()
		if isObservabilityRoute(path) {
			return err
		}

		duration := time.Since(start).Seconds()

		metrics.HTTPRequestsTotal.WithLabelValues(
			c.Request().Method,
			path,
			strconv.Itoa(c.Response().Status),
		).Inc()

		metrics.HTTPRequestDuration.WithLabelValues(
			c.Request().Method,
			path,
		).Observe(duration)

		return err
	}
}

func isObservabilityRoute(path string) bool {
	return path == "/metrics" ||
		strings.HasPrefix(path, "/debug/") ||
		strings.HasPrefix(path, "/swag/")
}
