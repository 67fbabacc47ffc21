package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
	"testing"

	"skill-hire/internal/domain/application"
	"skill-hire/internal/domain/quiz"
	"skill-hire/internal/domain/skill"
	"skill-hire/internal/quizgen"

	"github.com/google/uuid"
)

type assemblyFixture struct {
	skills    *fakeSkillRepo
	quizzes   *fakeQuizRepo
	questions *fakeQuestionRepo
	apps      *fakeAppRepo
	locker    *memLocker
	queue     *fakeQueue
	notifier  *fakeNotifier
	uc        *QuizAssembly
	sql       skill.Skill
}

func newAssemblyFixture(gen QuestionGenerator) *assemblyFixture {
	f := &assemblyFixture{
		sql:       skill.Skill{ID: uuid.New(), Name: "SQL"},
		quizzes:   newFakeQuizRepo(),
		questions: newFakeQuestionRepo(),
		apps:      newFakeAppRepo(),
		locker:    newMemLocker(),
		queue:     &fakeQueue{},
		notifier:  newFakeNotifier(),
	}
	f.skills = &fakeSkillRepo{skills: []skill.Skill{f.sql, {ID: uuid.New(), Name: "Go"}}}
	if gen == nil {
		gen = quizgen.NewGenerator(nil, quietLogger())
	}
	f.uc = NewQuizAssemblyUsecase(f.skills, f.quizzes, f.questions, f.apps, gen, f.locker, f.queue, f.notifier, AssemblyOptions{}, quietLogger())
	return f
}

func TestQuizAssembly_SingleSkillPersistsRequestedCount(t *testing.T) {
	f := newAssemblyFixture(nil)
	requester := uuid.New()

	res, err := f.uc.Assemble(context.Background(), AssembleInput{
		Skills:            []SkillRequest{{SkillID: f.sql.ID, Name: "SQL", Proficiency: 3}},
		QuestionsPerSkill: 5,
		RequesterID:       requester,
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if res.QuizID == uuid.Nil {
		t.Fatalf("expected quiz id")
	}

	stored := f.questions.byQuiz[res.QuizID]
	if len(stored) != 5 {
		t.Fatalf("expected 5 persisted questions, got %d", len(stored))
	}
	for _, q := range stored {
		if q.SkillID != f.sql.ID {
			t.Fatalf("question for wrong skill: %s", q.SkillID)
		}
		if len(q.Options) != 4 {
			t.Fatalf("expected 4 options, got %d", len(q.Options))
		}
	}
	if len(res.PerSkill) != 1 || res.PerSkill[0].Count != 5 {
		t.Fatalf("unexpected per-skill result: %+v", res.PerSkill)
	}

	created := f.quizzes.quizzes[res.QuizID]
	if created.Status != quiz.StatusPending || created.EmployeeID != requester || created.ApplicationID != nil {
		t.Fatalf("unexpected quiz row: %+v", created)
	}
	if f.notifier.ready[res.QuizID] != 5 {
		t.Fatalf("expected quiz_ready with 5 questions")
	}
}

func TestQuizAssembly_PositionsFollowSkillOrder(t *testing.T) {
	f := newAssemblyFixture(nil)
	goSkill := f.skills.skills[1]

	res, err := f.uc.Assemble(context.Background(), AssembleInput{
		Skills: []SkillRequest{
			{SkillID: f.sql.ID, Proficiency: 2},
			{SkillID: goSkill.ID, Proficiency: 4},
		},
		QuestionsPerSkill: 3,
		RequesterID:       uuid.New(),
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	stored := f.questions.byQuiz[res.QuizID]
	if len(stored) != 6 {
		t.Fatalf("expected 6 questions, got %d", len(stored))
	}
	for i, q := range stored {
		if q.Position != i {
			t.Fatalf("position %d at index %d", q.Position, i)
		}
		want := f.sql.ID
		if i >= 3 {
			want = goSkill.ID
		}
		if q.SkillID != want {
			t.Fatalf("index %d: unexpected skill", i)
		}
	}
	if res.PerSkill[1].SkillName != "Go" {
		t.Fatalf("expected catalog name, got %q", res.PerSkill[1].SkillName)
	}
}

func TestQuizAssembly_ValidationHasNoSideEffects(t *testing.T) {
	cases := []struct {
		name string
		in   func(f *assemblyFixture) AssembleInput
		want error
	}{
		{
			name: "empty skills",
			in: func(f *assemblyFixture) AssembleInput {
				return AssembleInput{RequesterID: uuid.New(), QuestionsPerSkill: 5}
			},
			want: ErrInvalidInput,
		},
		{
			name: "proficiency out of range",
			in: func(f *assemblyFixture) AssembleInput {
				return AssembleInput{RequesterID: uuid.New(), Skills: []SkillRequest{{SkillID: f.sql.ID, Proficiency: 6}}}
			},
			want: ErrInvalidProficiencyLevel,
		},
		{
			name: "unknown skill",
			in: func(f *assemblyFixture) AssembleInput {
				return AssembleInput{RequesterID: uuid.New(), Skills: []SkillRequest{{SkillID: uuid.New(), Proficiency: 3}}}
			},
			want: ErrSkillNotFound,
		},
		{
			name: "negative count",
			in: func(f *assemblyFixture) AssembleInput {
				return AssembleInput{RequesterID: uuid.New(), QuestionsPerSkill: -1, Skills: []SkillRequest{{SkillID: f.sql.ID, Proficiency: 3}}}
			},
			want: ErrInvalidInput,
		},
		{
			name: "unknown application",
			in: func(f *assemblyFixture) AssembleInput {
				appID := uuid.New()
				return AssembleInput{RequesterID: uuid.New(), ApplicationID: &appID, Skills: []SkillRequest{{SkillID: f.sql.ID, Proficiency: 3}}}
			},
			want: ErrApplicationNotFound,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newAssemblyFixture(nil)
			_, err := f.uc.Assemble(context.Background(), tc.in(f))
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
			if f.quizzes.creates != 0 || f.questions.replaces != 0 {
				t.Fatalf("expected no writes, got creates=%d replaces=%d", f.quizzes.creates, f.questions.replaces)
			}
		})
	}
}

func TestQuizAssembly_CapsQuestionsPerSkill(t *testing.T) {
	f := newAssemblyFixture(nil)
	res, err := f.uc.Assemble(context.Background(), AssembleInput{
		Skills:            []SkillRequest{{SkillID: f.sql.ID, Proficiency: 1}},
		QuestionsPerSkill: 500,
		RequesterID:       uuid.New(),
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if got := len(f.questions.byQuiz[res.QuizID]); got != 20 {
		t.Fatalf("expected cap of 20, got %d", got)
	}
}

func TestQuizAssembly_JobLinkedQuizBelongsToCandidate(t *testing.T) {
	f := newAssemblyFixture(nil)
	employee, employer := uuid.New(), uuid.New()
	app := f.apps.add(employee, employer, application.StatusPending)

	res, err := f.uc.Assemble(context.Background(), AssembleInput{
		Skills:            []SkillRequest{{SkillID: f.sql.ID, Proficiency: 3}},
		QuestionsPerSkill: 2,
		ApplicationID:     &app.ID,
		RequesterID:       employer,
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	q := f.quizzes.quizzes[res.QuizID]
	if q.EmployeeID != employee {
		t.Fatalf("expected quiz owned by candidate")
	}
	if q.ApplicationID == nil || *q.ApplicationID != app.ID {
		t.Fatalf("expected quiz linked to application")
	}

	_, err = f.uc.Assemble(context.Background(), AssembleInput{
		Skills:        []SkillRequest{{SkillID: f.sql.ID, Proficiency: 3}},
		ApplicationID: &app.ID,
		RequesterID:   uuid.New(),
	})
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for stranger, got %v", err)
	}
}

func TestQuizAssembly_RegenerateReplacesQuestions(t *testing.T) {
	f := newAssemblyFixture(nil)
	owner := uuid.New()
	quizID := uuid.New()
	f.quizzes.put(quiz.Quiz{ID: quizID, EmployeeID: owner, Status: quiz.StatusPending})
	f.questions.byQuiz[quizID] = []quiz.Question{{ID: uuid.New(), Question: "old"}}

	_, err := f.uc.Assemble(context.Background(), AssembleInput{
		Skills:            []SkillRequest{{SkillID: f.sql.ID, Proficiency: 3}},
		QuestionsPerSkill: 3,
		QuizID:            &quizID,
		RequesterID:       owner,
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if f.quizzes.creates != 0 {
		t.Fatalf("existing quiz must not be recreated")
	}
	got := f.questions.byQuiz[quizID]
	if len(got) != 3 {
		t.Fatalf("expected replaced set of 3, got %d", len(got))
	}
	for _, q := range got {
		if q.Question == "old" {
			t.Fatalf("old question survived replace")
		}
	}
}

func TestQuizAssembly_ExistingQuizChecks(t *testing.T) {
	f := newAssemblyFixture(nil)
	owner := uuid.New()
	done := uuid.New()
	f.quizzes.put(quiz.Quiz{ID: done, EmployeeID: owner, Status: quiz.StatusCompleted})

	in := AssembleInput{Skills: []SkillRequest{{SkillID: f.sql.ID, Proficiency: 3}}, QuizID: &done, RequesterID: owner}
	if _, err := f.uc.Assemble(context.Background(), in); !errors.Is(err, ErrQuizCompleted) {
		t.Fatalf("expected ErrQuizCompleted, got %v", err)
	}

	in.RequesterID = uuid.New()
	if _, err := f.uc.Assemble(context.Background(), in); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}

	missing := uuid.New()
	in.QuizID = &missing
	if _, err := f.uc.Assemble(context.Background(), in); !errors.Is(err, ErrQuizNotFound) {
		t.Fatalf("expected ErrQuizNotFound, got %v", err)
	}
}

func TestQuizAssembly_ConcurrentAssemblyRejected(t *testing.T) {
	f := newAssemblyFixture(nil)
	owner := uuid.New()
	quizID := uuid.New()
	f.quizzes.put(quiz.Quiz{ID: quizID, EmployeeID: owner, Status: quiz.StatusPending})

	unlock, ok, _ := f.locker.TryLock(context.Background(), quizLockKey(quizID), 0)
	if !ok {
		t.Fatalf("expected to take lock")
	}
	defer unlock()

	_, err := f.uc.Assemble(context.Background(), AssembleInput{
		Skills:      []SkillRequest{{SkillID: f.sql.ID, Proficiency: 3}},
		QuizID:      &quizID,
		RequesterID: owner,
	})
	if !errors.Is(err, ErrQuizBusy) {
		t.Fatalf("expected ErrQuizBusy, got %v", err)
	}
	if f.questions.replaces != 0 {
		t.Fatalf("expected no write while locked")
	}
}

type countingGenerator struct {
	calls atomic.Int32
	err   error
}

func (g *countingGenerator) Generate(_ context.Context, s quizgen.Skill, _ int, count int) ([]quizgen.Question, error) {
	g.calls.Add(1)
	if g.err != nil {
		return nil, g.err
	}
	out := make([]quizgen.Question, 0, count)
	for i := 0; i < count; i++ {
		out = append(out, quizgen.Question{
			Question:      s.Name + " question " + string(rune('A'+i)),
			Options:       []string{"a", "b", "c", "d"},
			CorrectAnswer: "a",
		})
	}
	return out, nil
}

func TestQuizAssembly_GeneratorFailureLeavesNoQuiz(t *testing.T) {
	gen := &countingGenerator{err: errBoom}
	f := newAssemblyFixture(gen)

	_, err := f.uc.Assemble(context.Background(), AssembleInput{
		Skills:      []SkillRequest{{SkillID: f.sql.ID, Proficiency: 3}},
		RequesterID: uuid.New(),
	})
	if !errors.Is(err, ErrInternal) {
		t.Fatalf("expected ErrInternal, got %v", err)
	}
	if f.questions.replaces != 0 {
		t.Fatalf("expected no question write")
	}
	if len(f.quizzes.quizzes) != 0 || f.quizzes.discards != 1 {
		t.Fatalf("expected the new quiz to be discarded, left=%d discards=%d", len(f.quizzes.quizzes), f.quizzes.discards)
	}
}

func TestQuizAssembly_ReplaceFailureLeavesNoQuiz(t *testing.T) {
	f := newAssemblyFixture(&countingGenerator{})
	f.questions.err = errors.New("db down")

	_, err := f.uc.Assemble(context.Background(), AssembleInput{
		Skills:      []SkillRequest{{SkillID: f.sql.ID, Proficiency: 3}},
		RequesterID: uuid.New(),
	})
	if !errors.Is(err, ErrInternal) {
		t.Fatalf("expected ErrInternal, got %v", err)
	}
	if f.quizzes.creates != 1 || len(f.quizzes.quizzes) != 0 {
		t.Fatalf("expected created then discarded, creates=%d left=%d", f.quizzes.creates, len(f.quizzes.quizzes))
	}
}

func TestQuizAssembly_FailedDiscardLeavesRetryableQuiz(t *testing.T) {
	f := newAssemblyFixture(&countingGenerator{})
	f.questions.err = errors.New("db down")
	f.quizzes.discardErr = errBoom
	requester := uuid.New()

	_, err := f.uc.Assemble(context.Background(), AssembleInput{
		Skills:            []SkillRequest{{SkillID: f.sql.ID, Proficiency: 3}},
		QuestionsPerSkill: 4,
		RequesterID:       requester,
	})
	if !errors.Is(err, ErrInternal) {
		t.Fatalf("expected ErrInternal, got %v", err)
	}
	if len(f.quizzes.requests) != 1 {
		t.Fatalf("expected the leftover quiz to keep its generation request")
	}
	for id, body := range f.quizzes.requests {
		var job GenerationJob
		if err := json.Unmarshal(body, &job); err != nil {
			t.Fatalf("stored request not json: %v", err)
		}
		if job.QuizID != id || job.RequesterID != requester || job.QuestionsPerSkill != 4 || len(job.Skills) != 1 {
			t.Fatalf("unexpected stored request: %+v", job)
		}
	}
}

func TestQuizAssembly_EnqueuePublishesJob(t *testing.T) {
	gen := &countingGenerator{}
	f := newAssemblyFixture(gen)
	f.queue.enabled = true

	id, err := f.uc.Enqueue(context.Background(), AssembleInput{
		Skills:            []SkillRequest{{SkillID: f.sql.ID, Proficiency: 3}},
		QuestionsPerSkill: 4,
		RequesterID:       uuid.New(),
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(f.queue.jobs) != 1 {
		t.Fatalf("expected one published job, got %d", len(f.queue.jobs))
	}
	job := f.queue.jobs[0].(GenerationJob)
	if job.QuizID != id || job.QuestionsPerSkill != 4 {
		t.Fatalf("unexpected job: %+v", job)
	}

	var stored GenerationJob
	if err := json.Unmarshal(f.quizzes.requests[id], &stored); err != nil {
		t.Fatalf("stored request not json: %v", err)
	}
	if stored.QuizID != id {
		t.Fatalf("stored request for wrong quiz")
	}
	if gen.calls.Load() != 0 {
		t.Fatalf("enqueue must not generate inline")
	}
}

func TestQuizAssembly_EnqueueWithoutQueueRunsInBackground(t *testing.T) {
	gen := &countingGenerator{}
	f := newAssemblyFixture(gen)

	id, err := f.uc.Enqueue(context.Background(), AssembleInput{
		Skills:            []SkillRequest{{SkillID: f.sql.ID, Proficiency: 3}},
		QuestionsPerSkill: 2,
		RequesterID:       uuid.New(),
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	f.uc.Wait()

	if got := len(f.questions.byQuiz[id]); got != 2 {
		t.Fatalf("expected 2 questions after background run, got %d", got)
	}
}

func TestQuizAssembly_HandleJob(t *testing.T) {
	gen := &countingGenerator{}
	f := newAssemblyFixture(gen)
	owner := uuid.New()
	quizID := uuid.New()
	f.quizzes.put(quiz.Quiz{ID: quizID, EmployeeID: owner, Status: quiz.StatusPending})

	body, _ := json.Marshal(GenerationJob{
		QuizID:            quizID,
		RequesterID:       owner,
		Skills:            []SkillRequest{{SkillID: f.sql.ID, Proficiency: 2}},
		QuestionsPerSkill: 3,
	})
	if err := f.uc.HandleJob(context.Background(), body); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if got := len(f.questions.byQuiz[quizID]); got != 3 {
		t.Fatalf("expected 3 questions, got %d", got)
	}

	if err := f.uc.HandleJob(context.Background(), []byte("{not json")); err != nil {
		t.Fatalf("malformed job should be dropped, got %v", err)
	}

	missing, _ := json.Marshal(GenerationJob{QuizID: uuid.New(), RequesterID: owner, Skills: []SkillRequest{{SkillID: f.sql.ID, Proficiency: 2}}})
	if err := f.uc.HandleJob(context.Background(), missing); err != nil {
		t.Fatalf("job for missing quiz should be dropped, got %v", err)
	}
}

func TestQuizAssembly_HandleJobRetriesInternalErrors(t *testing.T) {
	f := newAssemblyFixture(&countingGenerator{})
	f.questions.err = errBoom
	owner := uuid.New()
	quizID := uuid.New()
	f.quizzes.put(quiz.Quiz{ID: quizID, EmployeeID: owner, Status: quiz.StatusPending})

	body, _ := json.Marshal(GenerationJob{QuizID: quizID, RequesterID: owner, Skills: []SkillRequest{{SkillID: f.sql.ID, Proficiency: 2}}})
	if err := f.uc.HandleJob(context.Background(), body); !errors.Is(err, ErrInternal) {
		t.Fatalf("expected ErrInternal so the message is retried, got %v", err)
	}
	if _, ok := f.quizzes.quizzes[quizID]; !ok || f.quizzes.discards != 0 {
		t.Fatalf("a queued quiz must survive a failed run")
	}
}

type sloppyGenerator struct{}

func (sloppyGenerator) Generate(context.Context, quizgen.Skill, int, int) ([]quizgen.Question, error) {
	return []quizgen.Question{
		{Question: " Which join keeps unmatched left rows? ", Options: []string{"LEFT", "INNER", "CROSS", "SELF"}, CorrectAnswer: "LEFT"},
		{Question: "Three options", Options: []string{"a", "b", "c"}, CorrectAnswer: "a"},
		{Question: "Answer not offered", Options: []string{"a", "b", "c", "d"}, CorrectAnswer: "e"},
		{Question: "", Options: []string{"a", "b", "c", "d"}, CorrectAnswer: "a"},
	}, nil
}

func TestQuizAssembly_SkipsMalformedQuestions(t *testing.T) {
	f := newAssemblyFixture(sloppyGenerator{})

	res, err := f.uc.Assemble(context.Background(), AssembleInput{
		Skills:            []SkillRequest{{SkillID: f.sql.ID, Proficiency: 3}},
		QuestionsPerSkill: 4,
		RequesterID:       uuid.New(),
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	stored := f.questions.byQuiz[res.QuizID]
	if len(stored) != 1 || res.PerSkill[0].Count != 1 {
		t.Fatalf("expected only the well-formed question, got %d", len(stored))
	}
	if stored[0].Question != "Which join keeps unmatched left rows?" {
		t.Fatalf("expected trimmed question, got %q", stored[0].Question)
	}
}
