package handler

import (
	"errors"

	"skill-hire/internal/delivery/http/dto"
	"skill-hire/internal/delivery/http/middleware"
	"skill-hire/internal/domain/user"
	"skill-hire/internal/pkg/response"
	"skill-hire/internal/usecase"
	"skill-hire/internal/usecase/account"

	"github.com/gofiber/fiber/v3"
)

type AuthHandler struct {
	uc usecase.AuthUsecase
}

type registerRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Role     string `json:"role" validate:"required,oneof=employer employee"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func NewAuthHandler(uc usecase.AuthUsecase) *AuthHandler {
	return &AuthHandler{uc: uc}
}

func (h *AuthHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	r.Post("/register", h.Register)
	r.Post("/login", h.Login)
	r.Post("/refresh", h.Refresh)
}

func (h *AuthHandler) Register(c fiber.Ctx) error {
	var req registerRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}

	usr, tokens, err := h.uc.Register(c.Context(), account.SignUp{
		Email:    req.Email,
		Password: req.Password,
		Role:     user.Role(req.Role),
	})
	if err != nil {
		return mapAuthUsecaseError(err)
	}

	return response.Success(c, fiber.StatusCreated, "Registered", dto.AuthResponse{
		User:         dto.NewUserResponse(usr),
		AccessToken:  tokens.Access,
		RefreshToken: tokens.Refresh,
	})
}

func (h *AuthHandler) Login(c fiber.Ctx) error {
	var req loginRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}

	usr, tokens, err := h.uc.Login(c.Context(), req.Email, req.Password)
	if err != nil {
		return mapAuthUsecaseError(err)
	}

	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.AuthResponse{
		User:         dto.NewUserResponse(usr),
		AccessToken:  tokens.Access,
		RefreshToken: tokens.Refresh,
	})
}

func (h *AuthHandler) Refresh(c fiber.Ctx) error {
	tok, ok := middleware.BearerToken(c.Get("Authorization"))
	if !ok {
		return middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
	}

	tokens, err := h.uc.Refresh(c.Context(), tok)
	if err != nil {
		if errors.Is(err, usecase.ErrRefreshTokenExpired) {
			return middleware.NewAppError(fiber.StatusUnauthorized, "Refresh token expired", nil, err)
		}
		if errors.Is(err, usecase.ErrInvalidRefreshToken) {
			return middleware.NewAppError(fiber.StatusUnauthorized, "Invalid refresh token", nil, err)
		}
		if errors.Is(err, usecase.ErrUnauthorized) {
			return middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, err)
		}
		return middleware.NewAppError(fiber.StatusInternalServerError, response.MessageInternalServerError, nil, err)
	}

	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.AuthResponse{
		AccessToken:  tokens.Access,
		RefreshToken: tokens.Refresh,
	})
}

func mapAuthUsecaseError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, account.ErrEmailTaken):
		return middleware.NewAppError(fiber.StatusConflict, "Email already registered", nil, err)
	case errors.Is(err, account.ErrInvalidCredentials):
		return middleware.NewAppError(fiber.StatusUnauthorized, "Invalid email or password", nil, err)
	case errors.Is(err, account.ErrInvalidInput):
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	default:
		return middleware.NewAppError(fiber.StatusInternalServerError, response.MessageInternalServerError, nil, err)
	}
}
