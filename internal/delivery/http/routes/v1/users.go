package v1

import (
	"skill-hire/internal/delivery/http/handler"
	"skill-hire/internal/delivery/http/middleware"
	"skill-hire/internal/domain/user"

	"github.com/gofiber/fiber/v3"
)

// RegisterEmployee mounts candidate-only routes. The guard is attached per
// path prefix because a group middleware on "" would cover all of api/v1.
func RegisterEmployee(r fiber.Router, employeeSkillHandler *handler.EmployeeSkillHandler, applicationHandler *handler.ApplicationHandler) {
	if r == nil {
		return
	}

	guard := middleware.RequireRole(user.RoleEmployee)
	if employeeSkillHandler != nil {
		employeeSkillHandler.RegisterRoutes(r, guard)
	}
	if applicationHandler != nil {
		applicationHandler.RegisterEmployeeRoutes(r, guard)
	}
}
