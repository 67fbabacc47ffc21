package handler

import (
	"errors"
	"strings"

	"skill-hire/internal/delivery/http/dto"
	"skill-hire/internal/delivery/http/middleware"
	"skill-hire/internal/domain/job"
	"skill-hire/internal/pkg/response"
	"skill-hire/internal/usecase"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

type JobHandler struct {
	uc usecase.JobUsecase
}

type jobSkillRequest struct {
	SkillID    uuid.UUID `json:"skill_id" validate:"required"`
	Importance int       `json:"importance" validate:"min=1,max=5"`
}

type jobRequest struct {
	Title       string            `json:"title" validate:"required,max=200"`
	Description string            `json:"description" validate:"required"`
	Location    string            `json:"location" validate:"max=200"`
	IsRemote    bool              `json:"is_remote"`
	IsActive    *bool             `json:"is_active"`
	Skills      []jobSkillRequest `json:"skills" validate:"required,min=1,dive"`
}

func (r jobRequest) input() usecase.JobInput {
	skills := make([]usecase.JobSkillInput, 0, len(r.Skills))
	for _, s := range r.Skills {
		skills = append(skills, usecase.JobSkillInput{SkillID: s.SkillID, Importance: s.Importance})
	}
	return usecase.JobInput{
		Title:       r.Title,
		Description: r.Description,
		Location:    r.Location,
		IsRemote:    r.IsRemote,
		IsActive:    r.IsActive,
		Skills:      skills,
	}
}

func NewJobHandler(uc usecase.JobUsecase) *JobHandler {
	return &JobHandler{uc: uc}
}

// RegisterRoutes mounts the job board readable by any signed-in user.
func (h *JobHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	grp := r.Group("/jobs")
	grp.Get("/", h.List)
	grp.Get("/:id", h.Get)
}

// RegisterEmployerRoutes expects r to be restricted to employers already.
func (h *JobHandler) RegisterEmployerRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	grp := r.Group("/jobs")
	grp.Get("/", h.ListMine)
	grp.Post("/", h.Create)
	grp.Put("/:id", h.Update)
	grp.Delete("/:id", h.Deactivate)
}

func (h *JobHandler) List(c fiber.Ctx) error {
	page, err := parseQueryIntStrict(c, "page", 1)
	if err != nil {
		return err
	}
	limit, err := parseQueryIntStrict(c, "limit", 20)
	if err != nil {
		return err
	}
	remote, err := optionalBoolQuery(c, "remote")
	if err != nil {
		return err
	}

	f := job.ListFilter{
		Query:    strings.TrimSpace(c.Query("q")),
		Location: strings.TrimSpace(c.Query("location")),
		Remote:   remote,
		Page:     page,
		Limit:    limit,
	}.Normalize()

	items, total, err := h.uc.ListActiveJobs(c.Context(), f)
	if err != nil {
		return mapJobUsecaseError(err)
	}

	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.JobPageResponse{
		Items: dto.NewJobResponses(items),
		Total: total,
		Page:  f.Page,
		Limit: f.Limit,
	})
}

func (h *JobHandler) Get(c fiber.Ctx) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}

	j, err := h.uc.GetJob(c.Context(), id)
	if err != nil {
		return mapJobUsecaseError(err)
	}

	// Closed postings stay visible to their owner only.
	if !j.IsActive {
		userID, _ := c.Locals(middleware.CtxUserIDKey).(uuid.UUID)
		if userID != j.EmployerID {
			return middleware.NewAppError(fiber.StatusNotFound, "Job not found", nil, usecase.ErrJobNotFound)
		}
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewJobResponse(j))
}

func (h *JobHandler) ListMine(c fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	items, err := h.uc.ListEmployerJobs(c.Context(), userID)
	if err != nil {
		return mapJobUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewJobResponses(items))
}

func (h *JobHandler) Create(c fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	var req jobRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}

	created, err := h.uc.CreateJob(c.Context(), userID, req.input())
	if err != nil {
		return mapJobUsecaseError(err)
	}
	return response.Success(c, fiber.StatusCreated, "Job created", dto.NewJobResponse(created))
}

func (h *JobHandler) Update(c fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}

	var req jobRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}

	updated, err := h.uc.UpdateJob(c.Context(), userID, id, req.input())
	if err != nil {
		return mapJobUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, "Job updated", dto.NewJobResponse(updated))
}

func (h *JobHandler) Deactivate(c fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}

	if err := h.uc.DeactivateJob(c.Context(), userID, id); err != nil {
		return mapJobUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, "Job deactivated", nil)
}

func mapJobUsecaseError(err error) error {
	switch {
	case errors.Is(err, usecase.ErrJobNotFound):
		return middleware.NewAppError(fiber.StatusNotFound, "Job not found", nil, err)
	case errors.Is(err, usecase.ErrSkillNotFound):
		return middleware.NewAppError(fiber.StatusBadRequest, "Unknown skill", nil, err)
	case errors.Is(err, usecase.ErrForbidden):
		return middleware.NewAppError(fiber.StatusForbidden, "Forbidden", nil, err)
	case errors.Is(err, usecase.ErrInvalidInput):
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	default:
		return middleware.NewAppError(fiber.StatusInternalServerError, response.MessageInternalServerError, nil, err)
	}
}
