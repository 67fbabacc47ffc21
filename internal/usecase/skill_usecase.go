package usecase

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"skill-hire/internal/domain/skill"
	"skill-hire/internal/repository"
)

const skillsCacheKey = "skills:all"

// JSONCache is the slice of the Redis wrapper the usecases need.
type JSONCache interface {
	GetJSON(ctx context.Context, key string, out any) (bool, error)
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

type SkillUsecase interface {
	ListSkills(ctx context.Context) ([]skill.Skill, error)
	AddSkill(ctx context.Context, name string) (skill.Skill, error)
}

type Skill struct {
	repo   repository.SkillRepository
	cache  JSONCache
	logger *log.Logger
}

func NewSkillUsecase(repo repository.SkillRepository, cache JSONCache, logger *log.Logger) *Skill {
	if logger == nil {
		logger = log.Default()
	}
	return &Skill{repo: repo, cache: cache, logger: logger}
}

// ListSkills serves the catalog from cache when possible. Cache failures
// fall through to the database.
func (u *Skill) ListSkills(ctx context.Context) ([]skill.Skill, error) {
	if u.cache != nil {
		var cached []skill.Skill
		hit, err := u.cache.GetJSON(ctx, skillsCacheKey, &cached)
		if err != nil {
			u.logger.Printf("skills cache=get status=error err=%v", err)
		}
		if hit {
			return cached, nil
		}
	}

	items, err := u.repo.GetAllSkills(ctx)
	if err != nil {
		return nil, ErrInternal
	}

	if u.cache != nil {
		if err := u.cache.SetJSON(ctx, skillsCacheKey, items, 0); err != nil {
			u.logger.Printf("skills cache=set status=error err=%v", err)
		}
	}
	return items, nil
}

func (u *Skill) AddSkill(ctx context.Context, name string) (skill.Skill, error) {
	name = strings.TrimSpace(name)
	if name == "" || len(name) > 100 {
		return skill.Skill{}, ErrInvalidInput
	}

	created, err := u.repo.CreateSkill(ctx, name)
	if err != nil {
		if errors.Is(err, repository.ErrSkillExists) {
			return skill.Skill{}, ErrSkillAlreadyExists
		}
		return skill.Skill{}, ErrInternal
	}

	if u.cache != nil {
		if err := u.cache.Delete(ctx, skillsCacheKey); err != nil {
			u.logger.Printf("skills cache=invalidate status=error err=%v", err)
		}
	}
	return created, nil
}
