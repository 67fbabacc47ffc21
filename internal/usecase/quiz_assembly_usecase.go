package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"strings"
	"sync"
	"time"

	"skill-hire/internal/domain/quiz"
	"skill-hire/internal/domain/skill"
	"skill-hire/internal/infrastructure/metrics"
	"skill-hire/internal/quizgen"
	"skill-hire/internal/repository"

	"github.com/google/uuid"
)

type QuestionGenerator interface {
	Generate(ctx context.Context, s quizgen.Skill, proficiency, count int) ([]quizgen.Question, error)
}

// Locker hands out named, expiring locks. ok=false means someone else holds
// the name.
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (unlock func(), ok bool, err error)
}

type JobQueue interface {
	Enabled() bool
	PublishJob(ctx context.Context, v any) error
}

type QuizReadyNotifier interface {
	QuizReady(quizID uuid.UUID, questionCount int)
}

type SkillRequest struct {
	SkillID     uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Proficiency int       `json:"proficiency"`
}

type AssembleInput struct {
	Skills            []SkillRequest
	QuestionsPerSkill int
	QuizID            *uuid.UUID
	ApplicationID     *uuid.UUID
	RequesterID       uuid.UUID
}

type SkillQuestions struct {
	SkillID   uuid.UUID
	SkillName string
	Questions []quiz.Question
	Count     int
}

type AssembleResult struct {
	QuizID   uuid.UUID
	PerSkill []SkillQuestions
}

// GenerationJob is a queued assembly. It is also what a pending quiz stores
// so the sweeper can retry it.
type GenerationJob struct {
	QuizID            uuid.UUID      `json:"quiz_id"`
	RequesterID       uuid.UUID      `json:"requester_id"`
	ApplicationID     *uuid.UUID     `json:"application_id,omitempty"`
	Skills            []SkillRequest `json:"skills"`
	QuestionsPerSkill int            `json:"questions_per_skill"`
}

type AssemblyOptions struct {
	DefaultQuestionsPerSkill int
	MaxQuestionsPerSkill     int
	GenerationTimeout        time.Duration
}

type QuizAssemblyUsecase interface {
	Assemble(ctx context.Context, in AssembleInput) (AssembleResult, error)
	Enqueue(ctx context.Context, in AssembleInput) (uuid.UUID, error)
	HandleJob(ctx context.Context, body []byte) error
}

type QuizAssembly struct {
	skills    repository.SkillRepository
	quizzes   repository.QuizRepository
	questions repository.QuizQuestionRepository
	apps      repository.ApplicationRepository
	generator QuestionGenerator
	locker    Locker
	queue     JobQueue
	notifier  QuizReadyNotifier
	opts      AssemblyOptions
	logger    *log.Logger

	background sync.WaitGroup
}

func NewQuizAssemblyUsecase(
	skills repository.SkillRepository,
	quizzes repository.QuizRepository,
	questions repository.QuizQuestionRepository,
	apps repository.ApplicationRepository,
	generator QuestionGenerator,
	locker Locker,
	queue JobQueue,
	notifier QuizReadyNotifier,
	opts AssemblyOptions,
	logger *log.Logger,
) *QuizAssembly {
	if logger == nil {
		logger = log.Default()
	}
	if opts.DefaultQuestionsPerSkill <= 0 {
		opts.DefaultQuestionsPerSkill = 10
	}
	if opts.MaxQuestionsPerSkill <= 0 {
		opts.MaxQuestionsPerSkill = 20
	}
	if opts.GenerationTimeout <= 0 {
		opts.GenerationTimeout = 2 * time.Minute
	}
	return &QuizAssembly{
		skills:    skills,
		quizzes:   quizzes,
		questions: questions,
		apps:      apps,
		generator: generator,
		locker:    locker,
		queue:     queue,
		notifier:  notifier,
		opts:      opts,
		logger:    logger,
	}
}

type assemblyPlan struct {
	skills   []SkillRequest
	perSkill int
	quiz     quiz.Quiz
	existing bool
}

func (p assemblyPlan) job(requester uuid.UUID) GenerationJob {
	return GenerationJob{
		QuizID:            p.quiz.ID,
		RequesterID:       requester,
		ApplicationID:     p.quiz.ApplicationID,
		Skills:            p.skills,
		QuestionsPerSkill: p.perSkill,
	}
}

func quizLockKey(quizID uuid.UUID) string {
	return "quiz:lock:" + quizID.String()
}

// Assemble generates questions for every skill and replaces the quiz's
// question set in one write. Nothing is written until the input is valid.
func (u *QuizAssembly) Assemble(ctx context.Context, in AssembleInput) (AssembleResult, error) {
	start := time.Now()
	res, err := u.assemble(ctx, in)
	switch {
	case err == nil:
		metrics.QuizAssemblies.WithLabelValues("ok").Inc()
		metrics.AssemblyDuration.Observe(time.Since(start).Seconds())
	case errors.Is(err, ErrQuizBusy):
		metrics.QuizAssemblies.WithLabelValues("busy").Inc()
	case errors.Is(err, ErrInternal):
		metrics.QuizAssemblies.WithLabelValues("error").Inc()
	default:
		metrics.QuizAssemblies.WithLabelValues("rejected").Inc()
	}
	return res, err
}

func (u *QuizAssembly) assemble(ctx context.Context, in AssembleInput) (AssembleResult, error) {
	plan, err := u.plan(ctx, in)
	if err != nil {
		return AssembleResult{}, err
	}

	unlock, ok, err := u.locker.TryLock(ctx, quizLockKey(plan.quiz.ID), u.opts.GenerationTimeout+30*time.Second)
	if err != nil {
		return AssembleResult{}, ErrInternal
	}
	if !ok {
		return AssembleResult{}, ErrQuizBusy
	}
	defer unlock()

	if !plan.existing {
		if err := u.create(ctx, plan, in.RequesterID); err != nil {
			return AssembleResult{}, err
		}
	}

	perSkill, err := u.generate(ctx, plan)
	if err != nil {
		u.discard(ctx, plan)
		return AssembleResult{}, err
	}

	all := make([]quiz.Question, 0, len(plan.skills)*plan.perSkill)
	for i := range perSkill {
		for j := range perSkill[i].Questions {
			perSkill[i].Questions[j].Position = len(all)
			all = append(all, perSkill[i].Questions[j])
		}
	}

	if err := u.questions.ReplaceQuestions(ctx, plan.quiz.ID, all); err != nil {
		u.logger.Printf("quiz_assembly quiz=%s step=replace_questions status=error err=%v", plan.quiz.ID, err)
		u.discard(ctx, plan)
		return AssembleResult{}, ErrInternal
	}

	u.logger.Printf("quiz_assembly quiz=%s skills=%d questions=%d status=ready", plan.quiz.ID, len(plan.skills), len(all))
	if u.notifier != nil {
		u.notifier.QuizReady(plan.quiz.ID, len(all))
	}

	return AssembleResult{QuizID: plan.quiz.ID, PerSkill: perSkill}, nil
}

// create stores a new pending quiz together with its generation request, so
// a quiz that outlives a failed discard is still retried by the sweeper.
func (u *QuizAssembly) create(ctx context.Context, plan assemblyPlan, requester uuid.UUID) error {
	body, err := json.Marshal(plan.job(requester))
	if err != nil {
		return ErrInternal
	}
	if err := u.quizzes.Create(ctx, plan.quiz, body); err != nil {
		u.logger.Printf("quiz_assembly quiz=%s step=create status=error err=%v", plan.quiz.ID, err)
		return ErrInternal
	}
	return nil
}

// discard removes a quiz this call created once its assembly has failed.
// Quizzes that existed before the call are left for a retry.
func (u *QuizAssembly) discard(ctx context.Context, plan assemblyPlan) {
	if plan.existing {
		return
	}
	if err := u.quizzes.DiscardEmpty(context.WithoutCancel(ctx), plan.quiz.ID); err != nil {
		u.logger.Printf("quiz_assembly quiz=%s step=discard status=error err=%v", plan.quiz.ID, err)
		return
	}
	u.logger.Printf("quiz_assembly quiz=%s status=discarded", plan.quiz.ID)
}

// generate runs one generator call per skill concurrently. Each call is
// independent; results keep the request's skill order.
func (u *QuizAssembly) generate(ctx context.Context, plan assemblyPlan) ([]SkillQuestions, error) {
	ctx, cancel := context.WithTimeout(ctx, u.opts.GenerationTimeout)
	defer cancel()

	out := make([]SkillQuestions, len(plan.skills))
	errs := make([]error, len(plan.skills))

	var wg sync.WaitGroup
	for i, s := range plan.skills {
		wg.Add(1)
		go func(i int, s SkillRequest) {
			defer wg.Done()
			gen, err := u.generator.Generate(ctx, quizgen.Skill{ID: s.SkillID, Name: s.Name}, s.Proficiency, plan.perSkill)
			if err != nil {
				errs[i] = err
				return
			}
			qs := make([]quiz.Question, 0, len(gen))
			skipped := 0
			for _, g := range gen {
				g, ok := quizgen.Clean(g)
				if !ok {
					skipped++
					continue
				}
				qs = append(qs, quiz.Question{
					ID:            uuid.New(),
					QuizID:        plan.quiz.ID,
					SkillID:       s.SkillID,
					SkillName:     s.Name,
					Question:      g.Question,
					Options:       g.Options,
					CorrectAnswer: g.CorrectAnswer,
					Explanation:   g.Explanation,
				})
			}
			if skipped > 0 {
				u.logger.Printf("quiz_assembly quiz=%s skill=%s step=validate skipped=%d kept=%d", plan.quiz.ID, s.Name, skipped, len(qs))
			}
			out[i] = SkillQuestions{SkillID: s.SkillID, SkillName: s.Name, Questions: qs, Count: len(qs)}
		}(i, s)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			u.logger.Printf("quiz_assembly quiz=%s skill=%s step=generate status=error err=%v", plan.quiz.ID, plan.skills[i].Name, err)
			return nil, ErrInternal
		}
	}
	return out, nil
}

// plan validates the request and resolves who the quiz belongs to. It only
// reads.
func (u *QuizAssembly) plan(ctx context.Context, in AssembleInput) (assemblyPlan, error) {
	if in.RequesterID == uuid.Nil || len(in.Skills) == 0 {
		return assemblyPlan{}, ErrInvalidInput
	}

	perSkill := in.QuestionsPerSkill
	switch {
	case perSkill < 0:
		return assemblyPlan{}, ErrInvalidInput
	case perSkill == 0:
		perSkill = u.opts.DefaultQuestionsPerSkill
	case perSkill > u.opts.MaxQuestionsPerSkill:
		perSkill = u.opts.MaxQuestionsPerSkill
	}

	skills, err := u.resolveSkills(ctx, in.Skills)
	if err != nil {
		return assemblyPlan{}, err
	}

	owner := in.RequesterID
	var employerID uuid.UUID
	if in.ApplicationID != nil {
		access, err := u.apps.GetAccess(ctx, *in.ApplicationID)
		if err != nil {
			if errors.Is(err, repository.ErrApplicationNotFound) {
				return assemblyPlan{}, ErrApplicationNotFound
			}
			return assemblyPlan{}, ErrInternal
		}
		if in.RequesterID != access.EmployeeID && in.RequesterID != access.EmployerID {
			return assemblyPlan{}, ErrForbidden
		}
		owner = access.EmployeeID
		employerID = access.EmployerID
	}

	if in.QuizID == nil {
		appID := in.ApplicationID
		return assemblyPlan{
			skills:   skills,
			perSkill: perSkill,
			quiz: quiz.Quiz{
				ID:            uuid.New(),
				ApplicationID: appID,
				EmployeeID:    owner,
				Status:        quiz.StatusPending,
			},
		}, nil
	}

	q, err := u.quizzes.GetByID(ctx, *in.QuizID)
	if err != nil {
		if errors.Is(err, repository.ErrQuizNotFound) {
			return assemblyPlan{}, ErrQuizNotFound
		}
		return assemblyPlan{}, ErrInternal
	}
	quizEmployer := uuid.Nil
	if q.ApplicationID != nil {
		if in.ApplicationID != nil && *q.ApplicationID == *in.ApplicationID {
			quizEmployer = employerID
		} else {
			access, err := u.apps.GetAccess(ctx, *q.ApplicationID)
			if err != nil {
				return assemblyPlan{}, ErrInternal
			}
			quizEmployer = access.EmployerID
		}
	}
	if q.EmployeeID != in.RequesterID && (quizEmployer == uuid.Nil || quizEmployer != in.RequesterID) {
		return assemblyPlan{}, ErrForbidden
	}
	if q.Status == quiz.StatusCompleted {
		return assemblyPlan{}, ErrQuizCompleted
	}

	return assemblyPlan{skills: skills, perSkill: perSkill, quiz: q, existing: true}, nil
}

// resolveSkills checks every id against the catalog. The catalog name wins
// over whatever the caller sent.
func (u *QuizAssembly) resolveSkills(ctx context.Context, reqs []SkillRequest) ([]SkillRequest, error) {
	ids := make([]uuid.UUID, 0, len(reqs))
	seen := make(map[uuid.UUID]struct{}, len(reqs))
	for _, r := range reqs {
		if r.SkillID == uuid.Nil {
			return nil, ErrInvalidInput
		}
		if !skill.ValidLevel(r.Proficiency) {
			return nil, ErrInvalidProficiencyLevel
		}
		if _, dup := seen[r.SkillID]; dup {
			return nil, ErrInvalidInput
		}
		seen[r.SkillID] = struct{}{}
		ids = append(ids, r.SkillID)
	}

	found, err := u.skills.FindByIDs(ctx, ids)
	if err != nil {
		return nil, ErrInternal
	}
	names := make(map[uuid.UUID]string, len(found))
	for _, s := range found {
		names[s.ID] = s.Name
	}

	out := make([]SkillRequest, 0, len(reqs))
	for _, r := range reqs {
		name, ok := names[r.SkillID]
		if !ok {
			return nil, ErrSkillNotFound
		}
		if strings.TrimSpace(name) == "" {
			name = strings.TrimSpace(r.Name)
		}
		out = append(out, SkillRequest{SkillID: r.SkillID, Name: name, Proficiency: r.Proficiency})
	}
	return out, nil
}

// Enqueue creates the pending quiz with its generation request and hands the
// work to the generation queue. Without a queue the job runs in this process.
func (u *QuizAssembly) Enqueue(ctx context.Context, in AssembleInput) (uuid.UUID, error) {
	plan, err := u.plan(ctx, in)
	if err != nil {
		return uuid.Nil, err
	}

	if !plan.existing {
		if err := u.create(ctx, plan, in.RequesterID); err != nil {
			return uuid.Nil, err
		}
	}

	u.dispatch(ctx, plan.job(in.RequesterID))
	return plan.quiz.ID, nil
}

// dispatch publishes job, or runs it in the background when the queue is
// off or refuses it. A quiz left without questions is retried by the sweeper.
func (u *QuizAssembly) dispatch(ctx context.Context, job GenerationJob) {
	if u.queue != nil && u.queue.Enabled() {
		err := u.queue.PublishJob(ctx, job)
		if err == nil {
			u.logger.Printf("quiz_assembly quiz=%s status=queued", job.QuizID)
			return
		}
		u.logger.Printf("quiz_assembly quiz=%s step=publish status=error err=%v", job.QuizID, err)
	}

	u.background.Add(1)
	go func() {
		defer u.background.Done()
		if err := u.runJob(context.Background(), job); err != nil {
			u.logger.Printf("quiz_assembly quiz=%s step=background status=error err=%v", job.QuizID, err)
		}
	}()
}

// Wait blocks until background assemblies started by this process finish.
func (u *QuizAssembly) Wait() {
	u.background.Wait()
}

// HandleJob runs one queued job. Errors that a retry cannot fix are logged
// and swallowed so the message is acked.
func (u *QuizAssembly) HandleJob(ctx context.Context, body []byte) error {
	var job GenerationJob
	if err := json.Unmarshal(body, &job); err != nil {
		u.logger.Printf("quiz_assembly step=decode_job status=dropped err=%v", err)
		return nil
	}
	return u.runJob(ctx, job)
}

func (u *QuizAssembly) runJob(ctx context.Context, job GenerationJob) error {
	quizID := job.QuizID
	_, err := u.Assemble(ctx, AssembleInput{
		Skills:            job.Skills,
		QuestionsPerSkill: job.QuestionsPerSkill,
		QuizID:            &quizID,
		ApplicationID:     job.ApplicationID,
		RequesterID:       job.RequesterID,
	})
	if err == nil || !errors.Is(err, ErrInternal) {
		if err != nil {
			u.logger.Printf("quiz_assembly quiz=%s step=job status=dropped err=%v", job.QuizID, err)
		}
		return nil
	}
	return err
}
