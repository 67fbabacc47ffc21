package middleware

import (
	"errors"
	"strings"

	"skill-hire/internal/domain/user"
	"skill-hire/internal/pkg/jwt"

	"github.com/gofiber/fiber/v3"
)

const (
	CtxUserIDKey = "user_id"
	CtxEmailKey  = "email"
	CtxRoleKey   = "role"
)

type AuthMiddleware struct {
	jwt jwt.Service
}

func NewAuthMiddleware(jwtSvc jwt.Service) *AuthMiddleware {
	return &AuthMiddleware{jwt: jwtSvc}
}

func (m *AuthMiddleware) Middleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		token, ok := BearerToken(c.Get("Authorization"))
		if !ok {
			return NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
		}

		claims, err := m.jwt.ValidateAccess(token)
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				return NewAppError(fiber.StatusUnauthorized, "Token expired", nil, err)
			}
			return NewAppError(fiber.StatusUnauthorized, "Invalid token", nil, err)
		}

		c.Locals(CtxUserIDKey, claims.UserID)
		c.Locals(CtxEmailKey, claims.Email)
		c.Locals(CtxRoleKey, user.Role(claims.Role))

		return c.Next()
	}
}

// RequireRole must run after Middleware. Tokens minted before roles existed
// carry none and are rejected.
func RequireRole(roles ...user.Role) fiber.Handler {
	return func(c fiber.Ctx) error {
		role, _ := c.Locals(CtxRoleKey).(user.Role)
		for _, r := range roles {
			if role == r {
				return c.Next()
			}
		}
		return NewAppError(fiber.StatusForbidden, "Forbidden", nil, nil)
	}
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(authHeader string) (string, bool) {
	authHeader = strings.TrimSpace(authHeader)
	if authHeader == "" {
		return "", false
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 {
		return "", false
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}

	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", false
	}

	return token, true
}
