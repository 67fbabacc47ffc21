package usecase

import (
	"context"
	"errors"
	"io"
	"log"
	"strings"
	"time"

	"skill-hire/internal/domain/application"
	"skill-hire/internal/repository"

	"github.com/google/uuid"
)

// ObjectStore is where resumes live. Objects are private; reads go through
// short-lived signed URLs.
type ObjectStore interface {
	Put(ctx context.Context, objectName string, r io.Reader, size int64, contentType string) error
	PresignedGet(ctx context.Context, objectName string, expiry time.Duration) (string, error)
	Remove(ctx context.Context, objectName string) error
}

type ResumeUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

type ApplicationOptions struct {
	MaxResumeBytes  int64
	SignedURLExpiry time.Duration
}

type ApplicationUsecase interface {
	Apply(ctx context.Context, employeeID, jobID uuid.UUID) (application.Application, error)
	ListMyApplications(ctx context.Context, employeeID uuid.UUID) ([]application.EmployeeView, error)
	ListEmployerApplications(ctx context.Context, employerID uuid.UUID, jobID *uuid.UUID) ([]application.EmployerView, error)
	SetStatus(ctx context.Context, employerID, applicationID uuid.UUID, status string) (application.Application, error)
	UploadResume(ctx context.Context, employeeID, applicationID uuid.UUID, in ResumeUpload) (application.Application, error)
	ResumeURL(ctx context.Context, userID, applicationID uuid.UUID) (string, error)
}

type Application struct {
	apps    repository.ApplicationRepository
	jobs    repository.JobRepository
	tracker *StatusTracker
	store   ObjectStore
	opts    ApplicationOptions
	logger  *log.Logger
	now     func() time.Time
}

func NewApplicationUsecase(apps repository.ApplicationRepository, jobs repository.JobRepository, tracker *StatusTracker, store ObjectStore, opts ApplicationOptions, logger *log.Logger) *Application {
	if logger == nil {
		logger = log.Default()
	}
	if opts.MaxResumeBytes <= 0 {
		opts.MaxResumeBytes = 10 << 20
	}
	if opts.SignedURLExpiry <= 0 {
		opts.SignedURLExpiry = 60 * time.Second
	}
	return &Application{apps: apps, jobs: jobs, tracker: tracker, store: store, opts: opts, logger: logger, now: time.Now}
}

func (u *Application) Apply(ctx context.Context, employeeID, jobID uuid.UUID) (application.Application, error) {
	if jobID == uuid.Nil {
		return application.Application{}, ErrInvalidInput
	}

	j, err := u.jobs.GetByID(ctx, jobID)
	if err != nil {
		return application.Application{}, mapJobErr(err)
	}
	if !j.IsActive {
		return application.Application{}, ErrJobInactive
	}

	created, err := u.apps.Create(ctx, application.Application{
		ID:         uuid.New(),
		JobID:      jobID,
		EmployeeID: employeeID,
		Status:     application.StatusPending,
	})
	if err != nil {
		if errors.Is(err, repository.ErrAlreadyApplied) {
			return application.Application{}, ErrAlreadyApplied
		}
		return application.Application{}, ErrInternal
	}
	return created, nil
}

func (u *Application) ListMyApplications(ctx context.Context, employeeID uuid.UUID) ([]application.EmployeeView, error) {
	items, err := u.apps.ListByEmployee(ctx, employeeID)
	if err != nil {
		return nil, ErrInternal
	}
	return items, nil
}

func (u *Application) ListEmployerApplications(ctx context.Context, employerID uuid.UUID, jobID *uuid.UUID) ([]application.EmployerView, error) {
	items, err := u.apps.ListByEmployer(ctx, employerID, jobID)
	if err != nil {
		return nil, ErrInternal
	}
	return items, nil
}

// SetStatus is the employer's manual override. Any status but pending is
// accepted regardless of where the application currently is.
func (u *Application) SetStatus(ctx context.Context, employerID, applicationID uuid.UUID, status string) (application.Application, error) {
	target, err := application.ParseStatus(status)
	if err != nil || target == application.StatusPending {
		return application.Application{}, ErrInvalidStatus
	}

	access, err := u.access(ctx, applicationID)
	if err != nil {
		return application.Application{}, err
	}
	if access.EmployerID != employerID {
		return application.Application{}, ErrForbidden
	}

	updated, _, err := u.tracker.Advance(ctx, access.Application, application.TriggerEmployer, target)
	if err != nil {
		return application.Application{}, err
	}
	return updated, nil
}

// UploadResume stores the file and records its path. The status only moves
// to resume_submitted when the employer had asked for a resume.
func (u *Application) UploadResume(ctx context.Context, employeeID, applicationID uuid.UUID, in ResumeUpload) (application.Application, error) {
	if u.store == nil {
		return application.Application{}, ErrUnavailable
	}
	if in.Body == nil || in.Size <= 0 {
		return application.Application{}, ErrInvalidResume
	}
	if err := application.ValidateResumeFilename(in.Filename); err != nil {
		return application.Application{}, ErrInvalidResume
	}
	if in.Size > u.opts.MaxResumeBytes {
		return application.Application{}, ErrResumeTooLarge
	}

	access, err := u.access(ctx, applicationID)
	if err != nil {
		return application.Application{}, err
	}
	if access.EmployeeID != employeeID {
		return application.Application{}, ErrForbidden
	}

	path := application.ResumeObjectPath(employeeID, u.now(), in.Filename)
	contentType := strings.TrimSpace(in.ContentType)
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	if err := u.store.Put(ctx, path, in.Body, in.Size, contentType); err != nil {
		u.logger.Printf("resume application=%s step=put status=error err=%v", applicationID, err)
		return application.Application{}, ErrInternal
	}

	app := access.Application
	next, _, _ := application.Transition(app.Status, application.TriggerResume, "")
	stored, err := u.apps.UpdateResume(ctx, app.ID, path, app.Status, next)
	if err != nil {
		u.removeObject(ctx, applicationID, path)
		if errors.Is(err, repository.ErrApplicationNotFound) {
			return application.Application{}, ErrApplicationNotFound
		}
		u.logger.Printf("resume application=%s step=record status=error err=%v", applicationID, err)
		return application.Application{}, ErrInternal
	}

	// The employer may have moved the application since it was read; only a
	// row that really moved to resume_submitted is announced.
	from := app.Status
	app.ResumeURL = &path
	app.Status = stored
	app.UpdatedAt = u.now().UTC()
	if stored != from && stored == application.StatusResumeSubmitted {
		u.tracker.announce(ctx, app, from, application.TriggerResume)
	}
	return app, nil
}

// removeObject deletes an upload whose application row was never updated.
func (u *Application) removeObject(ctx context.Context, applicationID uuid.UUID, path string) {
	if err := u.store.Remove(context.WithoutCancel(ctx), path); err != nil {
		u.logger.Printf("resume application=%s object=%s step=cleanup status=error err=%v", applicationID, path, err)
	}
}

// ResumeURL signs a read URL for the candidate or the job's owner.
func (u *Application) ResumeURL(ctx context.Context, userID, applicationID uuid.UUID) (string, error) {
	if u.store == nil {
		return "", ErrUnavailable
	}

	access, err := u.access(ctx, applicationID)
	if err != nil {
		return "", err
	}
	if access.EmployeeID != userID && access.EmployerID != userID {
		return "", ErrForbidden
	}
	if access.ResumeURL == nil || strings.TrimSpace(*access.ResumeURL) == "" {
		return "", ErrResumeNotFound
	}

	url, err := u.store.PresignedGet(ctx, *access.ResumeURL, u.opts.SignedURLExpiry)
	if err != nil {
		u.logger.Printf("resume application=%s step=presign status=error err=%v", applicationID, err)
		return "", ErrInternal
	}
	return url, nil
}

func (u *Application) access(ctx context.Context, applicationID uuid.UUID) (repository.ApplicationAccess, error) {
	if applicationID == uuid.Nil {
		return repository.ApplicationAccess{}, ErrInvalidInput
	}
	access, err := u.apps.GetAccess(ctx, applicationID)
	if err != nil {
		if errors.Is(err, repository.ErrApplicationNotFound) {
			return repository.ApplicationAccess{}, ErrApplicationNotFound
		}
		return repository.ApplicationAccess{}, ErrInternal
	}
	return access, nil
}
