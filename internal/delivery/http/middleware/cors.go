package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
)

// NewCORSMiddleware allows the configured origins. A wildcard origin turns
// credentials off since browsers reject that combination.
func NewCORSMiddleware(origins []string) fiber.Handler {
	allowed := make([]string, 0, len(origins))
	wildcard := false
	for _, o := range origins {
		o = strings.TrimSpace(o)
		if o == "" {
			continue
		}
		if o == "*" {
			wildcard = true
		}
		allowed = append(allowed, o)
	}
	if len(allowed) == 0 {
		allowed = []string{"*"}
		wildcard = true
	}

	return cors.New(cors.Config{
		AllowOrigins:     allowed,
		AllowMethods:     []string{fiber.MethodGet, fiber.MethodPost, fiber.MethodPut, fiber.MethodPatch, fiber.MethodDelete, fiber.MethodOptions},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", HeaderRequestID},
		ExposeHeaders:    []string{HeaderRequestID},
		AllowCredentials: !wildcard,
		MaxAge:           600,
	})
}
