package usecase

import (
	"context"
	"errors"

	"skill-hire/internal/domain/skill"
	"skill-hire/internal/repository"

	"github.com/google/uuid"
)

type AddEmployeeSkillInput struct {
	SkillID     uuid.UUID
	Proficiency int
}

type EmployeeSkillUsecase interface {
	ListEmployeeSkills(ctx context.Context, employeeID uuid.UUID) ([]skill.EmployeeSkill, error)
	AddEmployeeSkill(ctx context.Context, employeeID uuid.UUID, in AddEmployeeSkillInput) (skill.EmployeeSkill, error)
	UpdateEmployeeSkill(ctx context.Context, employeeID, id uuid.UUID, proficiency int) (skill.EmployeeSkill, error)
	DeleteEmployeeSkill(ctx context.Context, employeeID, id uuid.UUID) error
}

type EmployeeSkill struct {
	repo repository.EmployeeSkillRepository
}

func NewEmployeeSkillUsecase(repo repository.EmployeeSkillRepository) *EmployeeSkill {
	return &EmployeeSkill{repo: repo}
}

func (u *EmployeeSkill) ListEmployeeSkills(ctx context.Context, employeeID uuid.UUID) ([]skill.EmployeeSkill, error) {
	items, err := u.repo.FindByEmployeeID(ctx, employeeID)
	if err != nil {
		return nil, ErrInternal
	}
	return items, nil
}

func (u *EmployeeSkill) AddEmployeeSkill(ctx context.Context, employeeID uuid.UUID, in AddEmployeeSkillInput) (skill.EmployeeSkill, error) {
	if in.SkillID == uuid.Nil {
		return skill.EmployeeSkill{}, ErrInvalidInput
	}
	if !skill.ValidLevel(in.Proficiency) {
		return skill.EmployeeSkill{}, ErrInvalidProficiencyLevel
	}

	exists, err := u.repo.SkillExistsByID(ctx, in.SkillID)
	if err != nil {
		return skill.EmployeeSkill{}, ErrInternal
	}
	if !exists {
		return skill.EmployeeSkill{}, ErrSkillNotFound
	}

	created, err := u.repo.Create(ctx, skill.EmployeeSkill{
		ID:          uuid.New(),
		EmployeeID:  employeeID,
		SkillID:     in.SkillID,
		Proficiency: in.Proficiency,
	})
	if err != nil {
		if errors.Is(err, repository.ErrEmployeeSkillExists) {
			return skill.EmployeeSkill{}, ErrSkillAlreadyExists
		}
		return skill.EmployeeSkill{}, ErrInternal
	}
	return created, nil
}

func (u *EmployeeSkill) UpdateEmployeeSkill(ctx context.Context, employeeID, id uuid.UUID, proficiency int) (skill.EmployeeSkill, error) {
	if id == uuid.Nil {
		return skill.EmployeeSkill{}, ErrInvalidInput
	}
	if !skill.ValidLevel(proficiency) {
		return skill.EmployeeSkill{}, ErrInvalidProficiencyLevel
	}

	updated, err := u.repo.Update(ctx, skill.EmployeeSkill{ID: id, EmployeeID: employeeID, Proficiency: proficiency})
	if err != nil {
		if errors.Is(err, repository.ErrEmployeeSkillNotFound) {
			return skill.EmployeeSkill{}, ErrSkillNotFound
		}
		return skill.EmployeeSkill{}, ErrInternal
	}
	return updated, nil
}

func (u *EmployeeSkill) DeleteEmployeeSkill(ctx context.Context, employeeID, id uuid.UUID) error {
	if id == uuid.Nil {
		return ErrInvalidInput
	}
	if err := u.repo.Delete(ctx, id, employeeID); err != nil {
		switch {
		case errors.Is(err, repository.ErrEmployeeSkillNotFound):
			return ErrSkillNotFound
		case errors.Is(err, repository.ErrEmployeeSkillForbidden):
			return ErrForbidden
		default:
			return ErrInternal
		}
	}
	return nil
}
