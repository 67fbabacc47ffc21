package usecase

import (
	"context"
	"errors"
	"testing"

	"skill-hire/internal/domain/skill"
	"skill-hire/internal/repository"

	"github.com/google/uuid"
)

func TestSkillUsecase_ListIsCachedUntilCreate(t *testing.T) {
	repo := &fakeSkillRepo{skills: []skill.Skill{{ID: uuid.New(), Name: "Go"}}}
	cache := newMemCache()
	uc := NewSkillUsecase(repo, cache, quietLogger())

	first, err := uc.ListSkills(context.Background())
	if err != nil || len(first) != 1 {
		t.Fatalf("unexpected list: %v err=%v", first, err)
	}
	repo.skills = append(repo.skills, skill.Skill{ID: uuid.New(), Name: "Rust"})

	cached, _ := uc.ListSkills(context.Background())
	if len(cached) != 1 {
		t.Fatalf("expected cached list of 1, got %d", len(cached))
	}

	if _, err := uc.AddSkill(context.Background(), " SQL "); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	fresh, _ := uc.ListSkills(context.Background())
	if len(fresh) != 3 {
		t.Fatalf("expected 3 skills after invalidation, got %d", len(fresh))
	}
}

func TestSkillUsecase_AddSkillErrors(t *testing.T) {
	repo := &fakeSkillRepo{skills: []skill.Skill{{ID: uuid.New(), Name: "Go"}}}
	uc := NewSkillUsecase(repo, nil, quietLogger())

	if _, err := uc.AddSkill(context.Background(), "   "); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if _, err := uc.AddSkill(context.Background(), "Go"); !errors.Is(err, ErrSkillAlreadyExists) {
		t.Fatalf("expected ErrSkillAlreadyExists, got %v", err)
	}
}

type fakeEmployeeSkillRepo struct {
	known map[uuid.UUID]bool
	rows  map[uuid.UUID]skill.EmployeeSkill
}

func (f *fakeEmployeeSkillRepo) FindByEmployeeID(_ context.Context, employeeID uuid.UUID) ([]skill.EmployeeSkill, error) {
	out := make([]skill.EmployeeSkill, 0)
	for _, r := range f.rows {
		if r.EmployeeID == employeeID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeEmployeeSkillRepo) SkillExistsByID(_ context.Context, id uuid.UUID) (bool, error) {
	return f.known[id], nil
}

func (f *fakeEmployeeSkillRepo) Create(_ context.Context, es skill.EmployeeSkill) (skill.EmployeeSkill, error) {
	for _, r := range f.rows {
		if r.EmployeeID == es.EmployeeID && r.SkillID == es.SkillID {
			return skill.EmployeeSkill{}, repository.ErrEmployeeSkillExists
		}
	}
	f.rows[es.ID] = es
	return es, nil
}

func (f *fakeEmployeeSkillRepo) Update(_ context.Context, es skill.EmployeeSkill) (skill.EmployeeSkill, error) {
	r, ok := f.rows[es.ID]
	if !ok || r.EmployeeID != es.EmployeeID {
		return skill.EmployeeSkill{}, repository.ErrEmployeeSkillNotFound
	}
	r.Proficiency = es.Proficiency
	f.rows[es.ID] = r
	return r, nil
}

func (f *fakeEmployeeSkillRepo) Delete(_ context.Context, id, employeeID uuid.UUID) error {
	r, ok := f.rows[id]
	if !ok {
		return repository.ErrEmployeeSkillNotFound
	}
	if r.EmployeeID != employeeID {
		return repository.ErrEmployeeSkillForbidden
	}
	delete(f.rows, id)
	return nil
}

func TestEmployeeSkillUsecase_Lifecycle(t *testing.T) {
	goID := uuid.New()
	repo := &fakeEmployeeSkillRepo{known: map[uuid.UUID]bool{goID: true}, rows: map[uuid.UUID]skill.EmployeeSkill{}}
	uc := NewEmployeeSkillUsecase(repo)
	me := uuid.New()

	if _, err := uc.AddEmployeeSkill(context.Background(), me, AddEmployeeSkillInput{SkillID: goID, Proficiency: 0}); !errors.Is(err, ErrInvalidProficiencyLevel) {
		t.Fatalf("expected ErrInvalidProficiencyLevel, got %v", err)
	}
	if _, err := uc.AddEmployeeSkill(context.Background(), me, AddEmployeeSkillInput{SkillID: uuid.New(), Proficiency: 3}); !errors.Is(err, ErrSkillNotFound) {
		t.Fatalf("expected ErrSkillNotFound, got %v", err)
	}

	added, err := uc.AddEmployeeSkill(context.Background(), me, AddEmployeeSkillInput{SkillID: goID, Proficiency: 3})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if _, err := uc.AddEmployeeSkill(context.Background(), me, AddEmployeeSkillInput{SkillID: goID, Proficiency: 4}); !errors.Is(err, ErrSkillAlreadyExists) {
		t.Fatalf("expected ErrSkillAlreadyExists, got %v", err)
	}

	updated, err := uc.UpdateEmployeeSkill(context.Background(), me, added.ID, 5)
	if err != nil || updated.Proficiency != 5 {
		t.Fatalf("unexpected update: %+v err=%v", updated, err)
	}

	if err := uc.DeleteEmployeeSkill(context.Background(), uuid.New(), added.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if err := uc.DeleteEmployeeSkill(context.Background(), me, added.ID); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if err := uc.DeleteEmployeeSkill(context.Background(), me, added.ID); !errors.Is(err, ErrSkillNotFound) {
		t.Fatalf("expected ErrSkillNotFound, got %v", err)
	}
}
