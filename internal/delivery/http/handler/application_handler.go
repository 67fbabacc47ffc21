package handler

import (
	"errors"
	"time"

	"skill-hire/internal/delivery/http/dto"
	"skill-hire/internal/delivery/http/middleware"
	"skill-hire/internal/domain/application"
	"skill-hire/internal/pkg/response"
	"skill-hire/internal/usecase"

	"github.com/gofiber/fiber/v3"
)

const resumeFormField = "resume"

type ApplicationHandler struct {
	uc        usecase.ApplicationUsecase
	urlExpiry time.Duration
}

type setStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

func NewApplicationHandler(uc usecase.ApplicationUsecase, urlExpiry time.Duration) *ApplicationHandler {
	if urlExpiry <= 0 {
		urlExpiry = 60 * time.Second
	}
	return &ApplicationHandler{uc: uc, urlExpiry: urlExpiry}
}

// RegisterRoutes mounts routes open to either role; the usecase decides
// whether the caller is a party to the application.
func (h *ApplicationHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	r.Get("/applications/:id/resume-url", h.ResumeURL)
}

// RegisterEmployeeRoutes scopes mw to the candidate paths only.
func (h *ApplicationHandler) RegisterEmployeeRoutes(r fiber.Router, mw ...fiber.Handler) {
	if r == nil {
		return
	}

	apply := make([]any, 0, len(mw)+1)
	for _, m := range mw {
		apply = append(apply, m)
	}
	apply = append(apply, h.Apply)
	r.Post("/jobs/:id/apply", apply[0], apply[1:]...)

	mineMW := make([]any, 0, len(mw))
	for _, m := range mw {
		mineMW = append(mineMW, m)
	}
	mine := r.Group("/me/applications", mineMW...)
	mine.Get("/", h.ListMine)
	mine.Post("/:id/resume", h.UploadResume)
}

func (h *ApplicationHandler) RegisterEmployerRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	r.Get("/applications", h.ListForEmployer)
	r.Patch("/applications/:id/status", h.SetStatus)
}

func (h *ApplicationHandler) Apply(c fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	jobID, err := uuidParam(c, "id")
	if err != nil {
		return err
	}

	created, err := h.uc.Apply(c.Context(), userID, jobID)
	if err != nil {
		return mapApplicationUsecaseError(err)
	}
	return response.Success(c, fiber.StatusCreated, "Application submitted", dto.NewApplicationResponse(created))
}

func (h *ApplicationHandler) ListMine(c fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	items, err := h.uc.ListMyApplications(c.Context(), userID)
	if err != nil {
		return mapApplicationUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewEmployeeApplicationResponses(items))
}

func (h *ApplicationHandler) ListForEmployer(c fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	jobID, err := optionalUUIDQuery(c, "job_id")
	if err != nil {
		return err
	}

	items, err := h.uc.ListEmployerApplications(c.Context(), userID, jobID)
	if err != nil {
		return mapApplicationUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewEmployerApplicationResponses(items))
}

func (h *ApplicationHandler) SetStatus(c fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}

	var req setStatusRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}

	updated, err := h.uc.SetStatus(c.Context(), userID, id, req.Status)
	if err != nil {
		return mapApplicationUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, "Status updated", dto.NewApplicationResponse(updated))
}

func (h *ApplicationHandler) UploadResume(c fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}

	fh, err := c.FormFile(resumeFormField)
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Resume file is required", nil, err)
	}
	f, err := fh.Open()
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Unreadable resume file", nil, err)
	}
	defer f.Close()

	updated, err := h.uc.UploadResume(c.Context(), userID, id, usecase.ResumeUpload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get(fiber.HeaderContentType),
		Size:        fh.Size,
		Body:        f,
	})
	if err != nil {
		return mapApplicationUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, "Resume uploaded", dto.NewApplicationResponse(updated))
}

func (h *ApplicationHandler) ResumeURL(c fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}

	url, err := h.uc.ResumeURL(c.Context(), userID, id)
	if err != nil {
		return mapApplicationUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.ResumeURLResponse{
		URL:              url,
		ExpiresInSeconds: int(h.urlExpiry / time.Second),
	})
}

// employerStatuses lists the statuses an employer may set.
func employerStatuses() []string {
	out := make([]string, 0, 6)
	for _, s := range application.Statuses() {
		if s != application.StatusPending {
			out = append(out, string(s))
		}
	}
	return out
}

func mapApplicationUsecaseError(err error) error {
	switch {
	case errors.Is(err, usecase.ErrApplicationNotFound):
		return middleware.NewAppError(fiber.StatusNotFound, "Application not found", nil, err)
	case errors.Is(err, usecase.ErrJobNotFound):
		return middleware.NewAppError(fiber.StatusNotFound, "Job not found", nil, err)
	case errors.Is(err, usecase.ErrJobInactive):
		return middleware.NewAppError(fiber.StatusConflict, "Job is no longer accepting applications", nil, err)
	case errors.Is(err, usecase.ErrAlreadyApplied):
		return middleware.NewAppError(fiber.StatusConflict, "Already applied to this job", nil, err)
	case errors.Is(err, usecase.ErrInvalidStatus):
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid status", fiber.Map{"allowed": employerStatuses()}, err)
	case errors.Is(err, usecase.ErrInvalidResume):
		return middleware.NewAppError(fiber.StatusBadRequest, "Resume must be a .pdf, .doc or .docx file", nil, err)
	case errors.Is(err, usecase.ErrResumeTooLarge):
		return middleware.NewAppError(fiber.StatusRequestEntityTooLarge, "Resume file too large", nil, err)
	case errors.Is(err, usecase.ErrResumeNotFound):
		return middleware.NewAppError(fiber.StatusNotFound, "No resume uploaded", nil, err)
	case errors.Is(err, usecase.ErrForbidden):
		return middleware.NewAppError(fiber.StatusForbidden, "Forbidden", nil, err)
	case errors.Is(err, usecase.ErrInvalidInput):
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	case errors.Is(err, usecase.ErrUnavailable):
		return middleware.NewAppError(fiber.StatusServiceUnavailable, "Resume storage unavailable", nil, err)
	default:
		return middleware.NewAppError(fiber.StatusInternalServerError, response.MessageInternalServerError, nil, err)
	}
}
