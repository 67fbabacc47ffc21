package handler

import (
	"skill-hire/internal/delivery/http/dto"
	"skill-hire/internal/pkg/response"
	"skill-hire/internal/usecase"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

type EmployeeSkillHandler struct {
	uc usecase.EmployeeSkillUsecase
}

type addEmployeeSkillRequest struct {
	SkillID     uuid.UUID `json:"skill_id" validate:"required"`
	Proficiency int       `json:"proficiency" validate:"min=1,max=5"`
}

type updateEmployeeSkillRequest struct {
	Proficiency int `json:"proficiency" validate:"min=1,max=5"`
}

func NewEmployeeSkillHandler(uc usecase.EmployeeSkillUsecase) *EmployeeSkillHandler {
	return &EmployeeSkillHandler{uc: uc}
}

func (h *EmployeeSkillHandler) RegisterRoutes(r fiber.Router, mw ...fiber.Handler) {
	if r == nil {
		return
	}

	grpMW := make([]any, 0, len(mw))
	for _, m := range mw {
		grpMW = append(grpMW, m)
	}
	grp := r.Group("/me/skills", grpMW...)
	grp.Get("/", h.List)
	grp.Post("/", h.Add)
	grp.Put("/:id", h.Update)
	grp.Delete("/:id", h.Delete)
}

func (h *EmployeeSkillHandler) List(c fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	items, err := h.uc.ListEmployeeSkills(c.Context(), userID)
	if err != nil {
		return mapSkillUsecaseError(err)
	}

	res := make([]dto.EmployeeSkillResponse, 0, len(items))
	for _, it := range items {
		res = append(res, dto.NewEmployeeSkillResponse(it))
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, res)
}

func (h *EmployeeSkillHandler) Add(c fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	var req addEmployeeSkillRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}

	created, err := h.uc.AddEmployeeSkill(c.Context(), userID, usecase.AddEmployeeSkillInput{
		SkillID:     req.SkillID,
		Proficiency: req.Proficiency,
	})
	if err != nil {
		return mapSkillUsecaseError(err)
	}
	return response.Success(c, fiber.StatusCreated, response.MessageOK, dto.NewEmployeeSkillResponse(created))
}

func (h *EmployeeSkillHandler) Update(c fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}

	var req updateEmployeeSkillRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}

	updated, err := h.uc.UpdateEmployeeSkill(c.Context(), userID, id, req.Proficiency)
	if err != nil {
		return mapSkillUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewEmployeeSkillResponse(updated))
}

func (h *EmployeeSkillHandler) Delete(c fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}

	if err := h.uc.DeleteEmployeeSkill(c.Context(), userID, id); err != nil {
		return mapSkillUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, nil)
}
