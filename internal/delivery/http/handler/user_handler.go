package handler

import (
	"errors"

	"skill-hire/internal/delivery/http/dto"
	"skill-hire/internal/delivery/http/middleware"
	"skill-hire/internal/pkg/response"
	"skill-hire/internal/usecase"
	"skill-hire/internal/usecase/account"

	"github.com/gofiber/fiber/v3"
)

type UserHandler struct {
	uc usecase.UserUsecase
}

type updateMeRequest struct {
	Email    *string `json:"email" validate:"omitnil,email"`
	Password *string `json:"password" validate:"omitnil,min=8"`
}

func NewUserHandler(uc usecase.UserUsecase) *UserHandler {
	return &UserHandler{uc: uc}
}

func (h *UserHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	r.Get("/me", h.GetMe)
	r.Put("/me", h.UpdateMe)
}

func (h *UserHandler) GetMe(c fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	usr, err := h.uc.GetMe(c.Context(), userID)
	if err != nil {
		return mapUserUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewUserResponse(usr))
}

func (h *UserHandler) UpdateMe(c fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	var req updateMeRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}
	if req.Email == nil && req.Password == nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid request payload", nil, nil)
	}

	usr, err := h.uc.UpdateMe(c.Context(), userID, account.ProfileUpdate{Email: req.Email, Password: req.Password})
	if err != nil {
		return mapUserUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewUserResponse(usr))
}

func mapUserUsecaseError(err error) error {
	switch {
	case errors.Is(err, account.ErrInvalidInput):
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid request payload", nil, err)
	case errors.Is(err, account.ErrNotFound):
		return middleware.NewAppError(fiber.StatusNotFound, "User not found", nil, err)
	case errors.Is(err, account.ErrEmailTaken):
		return middleware.NewAppError(fiber.StatusConflict, "Email already registered", nil, err)
	default:
		return middleware.NewAppError(fiber.StatusInternalServerError, response.MessageInternalServerError, nil, err)
	}
}
