package v1

import (
	"skill-hire/internal/delivery/http/handler"
	"skill-hire/internal/delivery/http/middleware"
	"skill-hire/internal/domain/user"
	"skill-hire/internal/ws"

	"github.com/gofiber/fiber/v3"
)

type Handlers struct {
	Auth          *handler.AuthHandler
	User          *handler.UserHandler
	Skill         *handler.SkillHandler
	EmployeeSkill *handler.EmployeeSkillHandler
	Job           *handler.JobHandler
	Application   *handler.ApplicationHandler
	Quiz          *handler.QuizHandler
	WS            *ws.Handler

	AuthMiddleware *middleware.AuthMiddleware
}

// Register mounts api/v1. Everything outside /auth and /ws needs a bearer
// token; /ws authenticates during the upgrade itself.
func Register(r fiber.Router, h Handlers) {
	if r == nil || h.AuthMiddleware == nil {
		return
	}

	if h.Auth != nil {
		h.Auth.RegisterRoutes(r.Group("/auth"))
	}
	if h.WS != nil {
		wsGroup := r.Group("/ws")
		wsGroup.Get("/quizzes/:id", h.WS.HandleQuiz)
		wsGroup.Get("/me", h.WS.HandleUser)
	}

	protected := r.Group("", h.AuthMiddleware.Middleware())

	if h.User != nil {
		h.User.RegisterRoutes(protected)
	}
	if h.Skill != nil {
		h.Skill.RegisterRoutes(protected)
	}
	if h.Job != nil {
		h.Job.RegisterRoutes(protected)
	}
	if h.Application != nil {
		h.Application.RegisterRoutes(protected)
	}
	if h.Quiz != nil {
		h.Quiz.RegisterRoutes(protected)
	}

	RegisterEmployee(protected, h.EmployeeSkill, h.Application)
	RegisterEmployer(protected.Group("/employer", middleware.RequireRole(user.RoleEmployer)), h.Job, h.Application)
}
