package usecase

import (
	"context"
	"errors"
	"log"
	"strings"

	"skill-hire/internal/domain/job"
	"skill-hire/internal/domain/skill"
	"skill-hire/internal/repository"

	"github.com/google/uuid"
)

type JobSkillInput struct {
	SkillID    uuid.UUID
	Importance int
}

type JobInput struct {
	Title       string
	Description string
	Location    string
	IsRemote    bool
	IsActive    *bool
	Skills      []JobSkillInput
}

type JobUsecase interface {
	CreateJob(ctx context.Context, employerID uuid.UUID, in JobInput) (job.Job, error)
	UpdateJob(ctx context.Context, employerID, jobID uuid.UUID, in JobInput) (job.Job, error)
	DeactivateJob(ctx context.Context, employerID, jobID uuid.UUID) error
	ListEmployerJobs(ctx context.Context, employerID uuid.UUID) ([]job.Job, error)
	ListActiveJobs(ctx context.Context, f job.ListFilter) ([]job.Job, int, error)
	GetJob(ctx context.Context, jobID uuid.UUID) (job.Job, error)
}

type Job struct {
	jobs   repository.JobRepository
	cache  JSONCache
	logger *log.Logger
}

func NewJobUsecase(jobs repository.JobRepository, cache JSONCache, logger *log.Logger) *Job {
	if logger == nil {
		logger = log.Default()
	}
	return &Job{jobs: jobs, cache: cache, logger: logger}
}

func (u *Job) CreateJob(ctx context.Context, employerID uuid.UUID, in JobInput) (job.Job, error) {
	j, err := buildJob(in)
	if err != nil {
		return job.Job{}, err
	}
	j.ID = uuid.New()
	j.EmployerID = employerID

	created, err := u.jobs.Create(ctx, j)
	if err != nil {
		return job.Job{}, mapJobErr(err)
	}
	u.invalidateBoard(ctx)
	return created, nil
}

// UpdateJob replaces the posting's fields and its whole skill set.
func (u *Job) UpdateJob(ctx context.Context, employerID, jobID uuid.UUID, in JobInput) (job.Job, error) {
	if jobID == uuid.Nil {
		return job.Job{}, ErrInvalidInput
	}
	j, err := buildJob(in)
	if err != nil {
		return job.Job{}, err
	}
	j.ID = jobID
	j.EmployerID = employerID
	if in.IsActive != nil {
		j.IsActive = *in.IsActive
	}

	updated, err := u.jobs.Update(ctx, j)
	if err != nil {
		return job.Job{}, mapJobErr(err)
	}
	u.invalidateBoard(ctx)
	return updated, nil
}

func (u *Job) DeactivateJob(ctx context.Context, employerID, jobID uuid.UUID) error {
	if jobID == uuid.Nil {
		return ErrInvalidInput
	}
	if err := u.jobs.Deactivate(ctx, jobID, employerID); err != nil {
		return mapJobErr(err)
	}
	u.invalidateBoard(ctx)
	return nil
}

func (u *Job) ListEmployerJobs(ctx context.Context, employerID uuid.UUID) ([]job.Job, error) {
	items, err := u.jobs.ListByEmployer(ctx, employerID)
	if err != nil {
		return nil, ErrInternal
	}
	return items, nil
}

// ListActiveJobs serves the public board, caching pages briefly in Redis.
func (u *Job) ListActiveJobs(ctx context.Context, f job.ListFilter) ([]job.Job, int, error) {
	f = f.Normalize()

	key := ""
	if u.cache != nil {
		key = JobBoardCacheKey(u.boardGeneration(ctx), f)
		var page jobBoardPage
		hit, err := u.cache.GetJSON(ctx, key, &page)
		if err != nil {
			u.logger.Printf("jobs cache=get status=error err=%v", err)
		}
		if hit {
			return page.Items, page.Total, nil
		}
	}

	items, total, err := u.jobs.ListActive(ctx, f)
	if err != nil {
		return nil, 0, ErrInternal
	}

	if key != "" {
		if err := u.cache.SetJSON(ctx, key, jobBoardPage{Items: items, Total: total}, jobBoardTTL); err != nil {
			u.logger.Printf("jobs cache=set status=error err=%v", err)
		}
	}
	return items, total, nil
}

func (u *Job) GetJob(ctx context.Context, jobID uuid.UUID) (job.Job, error) {
	if jobID == uuid.Nil {
		return job.Job{}, ErrInvalidInput
	}
	j, err := u.jobs.GetByID(ctx, jobID)
	if err != nil {
		return job.Job{}, mapJobErr(err)
	}
	return j, nil
}

func buildJob(in JobInput) (job.Job, error) {
	title := strings.TrimSpace(in.Title)
	desc := strings.TrimSpace(in.Description)
	if title == "" || desc == "" || len(in.Skills) == 0 {
		return job.Job{}, ErrInvalidInput
	}

	seen := make(map[uuid.UUID]struct{}, len(in.Skills))
	skills := make([]skill.JobSkill, 0, len(in.Skills))
	for _, s := range in.Skills {
		if s.SkillID == uuid.Nil || !skill.ValidLevel(s.Importance) {
			return job.Job{}, ErrInvalidInput
		}
		if _, dup := seen[s.SkillID]; dup {
			return job.Job{}, ErrInvalidInput
		}
		seen[s.SkillID] = struct{}{}
		skills = append(skills, skill.JobSkill{SkillID: s.SkillID, Importance: s.Importance})
	}

	return job.Job{
		Title:       title,
		Description: desc,
		Location:    strings.TrimSpace(in.Location),
		IsRemote:    in.IsRemote,
		IsActive:    true,
		Skills:      skills,
	}, nil
}

func mapJobErr(err error) error {
	switch {
	case errors.Is(err, repository.ErrJobNotFound):
		return ErrJobNotFound
	case errors.Is(err, repository.ErrJobUnknownSkill):
		return ErrSkillNotFound
	default:
		return ErrInternal
	}
}
