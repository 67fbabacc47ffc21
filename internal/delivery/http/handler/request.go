package handler

import (
	"strconv"
	"strings"

	"skill-hire/internal/delivery/http/middleware"
	"skill-hire/internal/pkg/validation"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

func currentUserID(c fiber.Ctx) (uuid.UUID, error) {
	userID, ok := c.Locals(middleware.CtxUserIDKey).(uuid.UUID)
	if !ok || userID == uuid.Nil {
		return uuid.Nil, middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
	}
	return userID, nil
}

// bindBody decodes and validates the body. Validation failures come back as
// a 400 carrying field -> rule.
func bindBody(c fiber.Ctx, out any) error {
	if err := c.Bind().Body(out); err != nil {
		if fields, ok := validation.Fields(err); ok {
			return middleware.NewAppError(fiber.StatusBadRequest, "Validation failed", fields, err)
		}
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}
	return nil
}

func uuidParam(c fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, middleware.NewAppError(fiber.StatusBadRequest, "Invalid "+name, nil, err)
	}
	return id, nil
}

func optionalUUIDQuery(c fiber.Ctx, key string) (*uuid.UUID, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, middleware.NewAppError(fiber.StatusBadRequest, "Invalid "+key, nil, err)
	}
	return &id, nil
}

func optionalBoolQuery(c fiber.Ctx, key string) (*bool, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, middleware.NewAppError(fiber.StatusBadRequest, "Invalid "+key, nil, err)
	}
	return &v, nil
}

func parseQueryIntStrict(c fiber.Ctx, key string, defaultVal int) (int, error) {
	s := strings.TrimSpace(c.Query(key))
	if s == "" {
		return defaultVal, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 0 {
		return 0, middleware.NewAppError(fiber.StatusBadRequest, "Invalid "+key, nil, err)
	}
	return v, nil
}
