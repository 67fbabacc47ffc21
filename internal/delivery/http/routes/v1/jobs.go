package v1

import (
	"skill-hire/internal/delivery/http/handler"

	"github.com/gofiber/fiber/v3"
)

// RegisterEmployer mounts /employer routes; r is already role-gated.
func RegisterEmployer(r fiber.Router, jobHandler *handler.JobHandler, applicationHandler *handler.ApplicationHandler) {
	if r == nil {
		return
	}

	if jobHandler != nil {
		jobHandler.RegisterEmployerRoutes(r)
	}
	if applicationHandler != nil {
		applicationHandler.RegisterEmployerRoutes(r)
	}
}
