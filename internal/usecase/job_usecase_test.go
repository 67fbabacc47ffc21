package usecase

import (
	"context"
	"errors"
	"testing"

	"skill-hire/internal/domain/job"

	"github.com/google/uuid"
)

func validJobInput() JobInput {
	return JobInput{
		Title:       " Backend Engineer ",
		Description: "Build APIs",
		Location:    "Jakarta",
		Skills: []JobSkillInput{
			{SkillID: uuid.New(), Importance: 5},
			{SkillID: uuid.New(), Importance: 3},
		},
	}
}

func TestJobUsecase_CreateValidation(t *testing.T) {
	uc := NewJobUsecase(newFakeJobRepo(), nil, quietLogger())
	employer := uuid.New()

	cases := map[string]func(in *JobInput){
		"missing title":       func(in *JobInput) { in.Title = "  " },
		"missing description": func(in *JobInput) { in.Description = "" },
		"no skills":           func(in *JobInput) { in.Skills = nil },
		"importance too high": func(in *JobInput) { in.Skills[0].Importance = 6 },
		"importance zero":     func(in *JobInput) { in.Skills[1].Importance = 0 },
		"duplicate skill":     func(in *JobInput) { in.Skills[1].SkillID = in.Skills[0].SkillID },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			in := validJobInput()
			mutate(&in)
			if _, err := uc.CreateJob(context.Background(), employer, in); !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
		})
	}

	created, err := uc.CreateJob(context.Background(), employer, validJobInput())
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if created.Title != "Backend Engineer" || !created.IsActive || created.EmployerID != employer {
		t.Fatalf("unexpected job: %+v", created)
	}
}

func TestJobUsecase_UpdateOnlyByOwner(t *testing.T) {
	repo := newFakeJobRepo()
	uc := NewJobUsecase(repo, nil, quietLogger())
	owner := uuid.New()

	created, err := uc.CreateJob(context.Background(), owner, validJobInput())
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	if _, err := uc.UpdateJob(context.Background(), uuid.New(), created.ID, validJobInput()); !errors.Is(err, ErrJobNotFound) {
		t.Fatalf("expected ErrJobNotFound for other employer, got %v", err)
	}
	if err := uc.DeactivateJob(context.Background(), owner, created.ID); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if repo.jobs[created.ID].IsActive {
		t.Fatalf("expected job deactivated")
	}
}

func TestJobUsecase_BoardCacheInvalidatedOnWrite(t *testing.T) {
	repo := newFakeJobRepo()
	cache := newMemCache()
	uc := NewJobUsecase(repo, cache, quietLogger())
	owner := uuid.New()

	if _, err := uc.CreateJob(context.Background(), owner, validJobInput()); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	f := job.ListFilter{Query: "backend"}
	items, total, err := uc.ListActiveJobs(context.Background(), f)
	if err != nil || total != 1 || len(items) != 1 {
		t.Fatalf("unexpected first page: total=%d err=%v", total, err)
	}
	if _, _, err := uc.ListActiveJobs(context.Background(), job.ListFilter{Query: "  BACKEND "}); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if repo.listCalls != 1 {
		t.Fatalf("expected normalized filter to hit cache, repo calls=%d", repo.listCalls)
	}

	if _, err := uc.CreateJob(context.Background(), owner, validJobInput()); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	_, total, _ = uc.ListActiveJobs(context.Background(), f)
	if repo.listCalls != 2 || total != 2 {
		t.Fatalf("expected fresh read after write, calls=%d total=%d", repo.listCalls, total)
	}
}

func TestJobBoardCacheKey(t *testing.T) {
	remote := true
	a := JobBoardCacheKey(1, job.ListFilter{Query: "Go  Dev", Remote: &remote})
	b := JobBoardCacheKey(1, job.ListFilter{Query: "go dev", Remote: &remote, Page: 1, Limit: 20})
	if a != b {
		t.Fatalf("expected equal keys, got %s vs %s", a, b)
	}
	if a == JobBoardCacheKey(2, job.ListFilter{Query: "go dev", Remote: &remote}) {
		t.Fatalf("generation must change the key")
	}
	if a == JobBoardCacheKey(1, job.ListFilter{Query: "go dev"}) {
		t.Fatalf("remote filter must change the key")
	}
}
