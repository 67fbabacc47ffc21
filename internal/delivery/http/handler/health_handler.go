package handler

import (
	"context"
	"sort"
	"time"

	"skill-hire/internal/infrastructure/metrics"
	"skill-hire/internal/pkg/response"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
)

// HealthCheck reports whether one dependency answers.
type HealthCheck func(ctx context.Context) error

type HealthHandler struct {
	checks  map[string]HealthCheck
	timeout time.Duration
}

func NewHealthHandler(checks map[string]HealthCheck) *HealthHandler {
	if checks == nil {
		checks = map[string]HealthCheck{}
	}
	return &HealthHandler{checks: checks, timeout: 2 * time.Second}
}

func (h *HealthHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	r.Get("/health", h.Health)
	r.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))
}

func (h *HealthHandler) Health(c fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), h.timeout)
	defer cancel()

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	status := fiber.StatusOK
	result := make(map[string]string, len(names))
	for _, name := range names {
		if err := h.checks[name](ctx); err != nil {
			result[name] = "down"
			status = fiber.StatusServiceUnavailable
			continue
		}
		result[name] = "up"
	}

	msg := response.MessageOK
	if status != fiber.StatusOK {
		msg = "degraded"
	}
	return response.Success(c, status, msg, result)
}
