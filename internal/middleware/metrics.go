package middleware

import (
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Mahanoorfarooq/Madrassa-Management-System-sub002/prometheus"
)

// MetricsMiddleware records request count and duration for every endpoint
func MetricsMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()

		err := next(c)

		// Use the route pattern, not the raw path, to bound cardinality.
		endpoint := c.Path()
		if endpoint == "" {
			endpoint = "unmatched"
		}
		prometheus.RecordHTTPRequest(endpoint, c.Request().Method, c.Response().Status, time.Since(start))

		return err
	}
}
