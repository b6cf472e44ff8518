package middleware

import (
	"time"

	"github.com/labstack/echo/v4"
)

// RequestRecorder receives one observation per finished request.
type RequestRecorder interface {
	RecordHTTPRequest(method, path string, statusCode int, duration float64)
}

// NewRequestMetrics records method, route pattern, status and latency of every request.
// Handler errors are rendered here through the echo error handler. Long-lived streams are
// recorded when they end.
func NewRequestMetrics(rec RequestRecorder) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			if err := next(c); err != nil {
				// Render now so the recorded status matches the response.
				c.Error(err)
			}

			status := c.Response().Status
			path := c.Path()
			if path == "" {
				path = "unmatched"
			}
			rec.RecordHTTPRequest(c.Request().Method, path, status, time.Since(start).Seconds())
			return nil
		}
	}
}
