package handler

import (
	"errors"

	"skill-hire/internal/delivery/http/dto"
	"skill-hire/internal/delivery/http/middleware"
	"skill-hire/internal/pkg/response"
	"skill-hire/internal/usecase"

	"github.com/gofiber/fiber/v3"
)

type SkillHandler struct {
	uc usecase.SkillUsecase
}

type createSkillRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

func NewSkillHandler(uc usecase.SkillUsecase) *SkillHandler {
	return &SkillHandler{uc: uc}
}

func (h *SkillHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	grp := r.Group("/skills")
	grp.Get("/", h.List)
	grp.Post("/", h.Create)
}

func (h *SkillHandler) List(c fiber.Ctx) error {
	items, err := h.uc.ListSkills(c.Context())
	if err != nil {
		return mapSkillUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewSkillResponses(items))
}

func (h *SkillHandler) Create(c fiber.Ctx) error {
	var req createSkillRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}

	created, err := h.uc.AddSkill(c.Context(), req.Name)
	if err != nil {
		return mapSkillUsecaseError(err)
	}

	return response.Success(c, fiber.StatusCreated, "Skill created successfully", dto.SkillResponse{ID: created.ID, Name: created.Name})
}

func mapSkillUsecaseError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, usecase.ErrInvalidProficiencyLevel):
		return middleware.NewAppError(fiber.StatusBadRequest, "Proficiency must be between 1 and 5", nil, err)
	case errors.Is(err, usecase.ErrSkillAlreadyExists):
		return middleware.NewAppError(fiber.StatusConflict, "Skill already exists", nil, err)
	case errors.Is(err, usecase.ErrSkillNotFound):
		return middleware.NewAppError(fiber.StatusNotFound, "Skill not found", nil, err)
	case errors.Is(err, usecase.ErrForbidden):
		return middleware.NewAppError(fiber.StatusForbidden, "Forbidden", nil, err)
	case errors.Is(err, usecase.ErrInvalidInput):
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	default:
		return middleware.NewAppError(fiber.StatusInternalServerError, response.MessageInternalServerError, nil, err)
	}
}
