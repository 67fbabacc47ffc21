package middleware

import (
	"strconv"
	"time"

	"skill-hire/internal/infrastructure/metrics"

	"github.com/gofiber/fiber/v3"
)

type MetricsMiddleware struct{}

func NewMetricsMiddleware() *MetricsMiddleware {
	return &MetricsMiddleware{}
}

// Middleware labels requests by route pattern, not raw path, to keep the
// series count bounded.
func (m *MetricsMiddleware) Middleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		route := "unmatched"
		if r := c.Route(); r != nil && r.Path != "" {
			route = r.Path
		}
		method := c.Method()
		status := strconv.Itoa(c.Response().StatusCode())

		metrics.HTTPRequests.WithLabelValues(method, route, status).Inc()
		metrics.HTTPDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
		return err
	}
}
