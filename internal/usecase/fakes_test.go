package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"sync"
	"time"

	"skill-hire/internal/domain/application"
	"skill-hire/internal/domain/job"
	"skill-hire/internal/domain/quiz"
	"skill-hire/internal/domain/skill"
	"skill-hire/internal/repository"

	"github.com/google/uuid"
)

var errBoom = errors.New("boom")

func quietLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

type fakeSkillRepo struct {
	skills  []skill.Skill
	created int
	err     error
}

func (f *fakeSkillRepo) GetAllSkills(context.Context) ([]skill.Skill, error) {
	return f.skills, f.err
}

func (f *fakeSkillRepo) CreateSkill(_ context.Context, name string) (skill.Skill, error) {
	for _, s := range f.skills {
		if s.Name == name {
			return skill.Skill{}, repository.ErrSkillExists
		}
	}
	s := skill.Skill{ID: uuid.New(), Name: name}
	f.skills = append(f.skills, s)
	f.created++
	return s, nil
}

func (f *fakeSkillRepo) FindByIDs(_ context.Context, ids []uuid.UUID) ([]skill.Skill, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]skill.Skill, 0)
	for _, id := range ids {
		for _, s := range f.skills {
			if s.ID == id {
				out = append(out, s)
			}
		}
	}
	return out, nil
}

type fakeQuizRepo struct {
	mu           sync.Mutex
	quizzes      map[uuid.UUID]quiz.Quiz
	requests     map[uuid.UUID][]byte
	creates      int
	startCalls   int
	startChanged int
	completes    int
	requeued     []uuid.UUID
	stale        []repository.PendingGeneration
	completeErr  error
	discards     int
	discardErr   error
}

func newFakeQuizRepo() *fakeQuizRepo {
	return &fakeQuizRepo{quizzes: map[uuid.UUID]quiz.Quiz{}, requests: map[uuid.UUID][]byte{}}
}

func (f *fakeQuizRepo) Create(_ context.Context, q quiz.Quiz, req []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creates++
	f.quizzes[q.ID] = q
	if req != nil {
		f.requests[q.ID] = req
	}
	return nil
}

func (f *fakeQuizRepo) GetByID(_ context.Context, id uuid.UUID) (quiz.Quiz, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	q, ok := f.quizzes[id]
	if !ok {
		return quiz.Quiz{}, repository.ErrQuizNotFound
	}
	return q, nil
}

func (f *fakeQuizRepo) MarkInProgress(_ context.Context, id uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.startCalls++
	q := f.quizzes[id]
	if q.Status != quiz.StatusPending {
		return false, nil
	}
	q.Status = quiz.StatusInProgress
	f.quizzes[id] = q
	f.startChanged++
	return true, nil
}

func (f *fakeQuizRepo) Complete(_ context.Context, id uuid.UUID, score int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.completeErr != nil {
		return f.completeErr
	}
	q := f.quizzes[id]
	if q.Status == quiz.StatusCompleted {
		return repository.ErrQuizAlreadyCompleted
	}
	now := time.Now()
	q.Status = quiz.StatusCompleted
	q.Score = &score
	q.CompletedAt = &now
	f.quizzes[id] = q
	f.completes++
	return nil
}

func (f *fakeQuizRepo) ListByEmployee(_ context.Context, employeeID uuid.UUID, practice *bool) ([]quiz.Summary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]quiz.Summary, 0)
	for _, q := range f.quizzes {
		if q.EmployeeID != employeeID {
			continue
		}
		if practice != nil && q.IsPractice() != *practice {
			continue
		}
		out = append(out, quiz.Summary{Quiz: q})
	}
	return out, nil
}

func (f *fakeQuizRepo) ListStalePending(context.Context, time.Time, int, int) ([]repository.PendingGeneration, error) {
	return f.stale, nil
}

func (f *fakeQuizRepo) MarkRequeued(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requeued = append(f.requeued, id)
	return nil
}

func (f *fakeQuizRepo) DiscardEmpty(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.discardErr != nil {
		return f.discardErr
	}
	if q, ok := f.quizzes[id]; ok && q.Status == quiz.StatusPending {
		delete(f.quizzes, id)
		delete(f.requests, id)
		f.discards++
	}
	return nil
}

func (f *fakeQuizRepo) put(q quiz.Quiz) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.quizzes[q.ID] = q
}

type fakeQuestionRepo struct {
	mu       sync.Mutex
	byQuiz   map[uuid.UUID][]quiz.Question
	replaces int
	err      error
}

func newFakeQuestionRepo() *fakeQuestionRepo {
	return &fakeQuestionRepo{byQuiz: map[uuid.UUID][]quiz.Question{}}
}

func (f *fakeQuestionRepo) ReplaceQuestions(_ context.Context, quizID uuid.UUID, qs []quiz.Question) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.replaces++
	f.byQuiz[quizID] = append([]quiz.Question(nil), qs...)
	return nil
}

func (f *fakeQuestionRepo) ListByQuiz(_ context.Context, quizID uuid.UUID) ([]quiz.Question, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]quiz.Question{}, f.byQuiz[quizID]...), nil
}

type fakeAnswerRepo struct {
	rows    []quiz.Answer
	failAt  int
	listErr error
}

func (f *fakeAnswerRepo) Insert(_ context.Context, a quiz.Answer) error {
	if f.failAt > 0 && len(f.rows)+1 == f.failAt {
		return errBoom
	}
	f.rows = append(f.rows, a)
	return nil
}

// ListByQuiz keeps the last row per question; fixtures hold a single quiz.
func (f *fakeAnswerRepo) ListByQuiz(context.Context, uuid.UUID) ([]quiz.Answer, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	latest := make(map[uuid.UUID]int, len(f.rows))
	out := make([]quiz.Answer, 0, len(f.rows))
	for _, a := range f.rows {
		if i, ok := latest[a.QuestionID]; ok {
			out[i] = a
			continue
		}
		latest[a.QuestionID] = len(out)
		out = append(out, a)
	}
	return out, nil
}

type fakeAppRepo struct {
	mu      sync.Mutex
	apps    map[uuid.UUID]repository.ApplicationAccess
	updates int
	resumes int

	resumeErr error
	// statusBeforeResume stands in for an employer update that lands
	// between the read and the resume write.
	statusBeforeResume application.Status
}

func newFakeAppRepo() *fakeAppRepo {
	return &fakeAppRepo{apps: map[uuid.UUID]repository.ApplicationAccess{}}
}

func (f *fakeAppRepo) add(employeeID, employerID uuid.UUID, status application.Status) repository.ApplicationAccess {
	a := repository.ApplicationAccess{
		Application: application.Application{
			ID:         uuid.New(),
			JobID:      uuid.New(),
			EmployeeID: employeeID,
			Status:     status,
		},
		EmployerID: employerID,
		JobTitle:   "Backend Engineer",
	}
	f.mu.Lock()
	f.apps[a.ID] = a
	f.mu.Unlock()
	return a
}

func (f *fakeAppRepo) status(id uuid.UUID) application.Status {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.apps[id].Status
}

func (f *fakeAppRepo) Create(_ context.Context, a application.Application) (application.Application, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.apps {
		if existing.JobID == a.JobID && existing.EmployeeID == a.EmployeeID {
			return application.Application{}, repository.ErrAlreadyApplied
		}
	}
	f.apps[a.ID] = repository.ApplicationAccess{Application: a}
	return a, nil
}

func (f *fakeAppRepo) GetAccess(_ context.Context, id uuid.UUID) (repository.ApplicationAccess, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.apps[id]
	if !ok {
		return repository.ApplicationAccess{}, repository.ErrApplicationNotFound
	}
	return a, nil
}

func (f *fakeAppRepo) ListByEmployee(context.Context, uuid.UUID) ([]application.EmployeeView, error) {
	return nil, nil
}

func (f *fakeAppRepo) ListByEmployer(context.Context, uuid.UUID, *uuid.UUID) ([]application.EmployerView, error) {
	return nil, nil
}

func (f *fakeAppRepo) UpdateStatus(_ context.Context, id uuid.UUID, from, to application.Status) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.apps[id]
	if !ok || a.Status != from {
		return repository.ErrStatusChanged
	}
	a.Status = to
	f.apps[id] = a
	f.updates++
	return nil
}

func (f *fakeAppRepo) UpdateResume(_ context.Context, id uuid.UUID, url string, from, to application.Status) (application.Status, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.resumeErr != nil {
		return "", f.resumeErr
	}
	a, ok := f.apps[id]
	if !ok {
		return "", repository.ErrApplicationNotFound
	}
	if f.statusBeforeResume != "" {
		a.Status = f.statusBeforeResume
	}
	a.ResumeURL = &url
	if a.Status == from {
		a.Status = to
	}
	f.apps[id] = a
	f.resumes++
	return a.Status, nil
}

type fakeJobRepo struct {
	jobs       map[uuid.UUID]job.Job
	listCalls  int
	lastFilter job.ListFilter
}

func newFakeJobRepo() *fakeJobRepo {
	return &fakeJobRepo{jobs: map[uuid.UUID]job.Job{}}
}

func (f *fakeJobRepo) Create(_ context.Context, j job.Job) (job.Job, error) {
	f.jobs[j.ID] = j
	return j, nil
}

func (f *fakeJobRepo) Update(_ context.Context, j job.Job) (job.Job, error) {
	existing, ok := f.jobs[j.ID]
	if !ok || existing.EmployerID != j.EmployerID {
		return job.Job{}, repository.ErrJobNotFound
	}
	f.jobs[j.ID] = j
	return j, nil
}

func (f *fakeJobRepo) Deactivate(_ context.Context, id, employerID uuid.UUID) error {
	j, ok := f.jobs[id]
	if !ok || j.EmployerID != employerID {
		return repository.ErrJobNotFound
	}
	j.IsActive = false
	f.jobs[id] = j
	return nil
}

func (f *fakeJobRepo) GetByID(_ context.Context, id uuid.UUID) (job.Job, error) {
	j, ok := f.jobs[id]
	if !ok {
		return job.Job{}, repository.ErrJobNotFound
	}
	return j, nil
}

func (f *fakeJobRepo) ListActive(_ context.Context, fl job.ListFilter) ([]job.Job, int, error) {
	f.listCalls++
	f.lastFilter = fl
	out := make([]job.Job, 0)
	for _, j := range f.jobs {
		if j.IsActive {
			out = append(out, j)
		}
	}
	return out, len(out), nil
}

func (f *fakeJobRepo) ListByEmployer(_ context.Context, employerID uuid.UUID) ([]job.Job, error) {
	out := make([]job.Job, 0)
	for _, j := range f.jobs {
		if j.EmployerID == employerID {
			out = append(out, j)
		}
	}
	return out, nil
}

type memLocker struct {
	mu   sync.Mutex
	held map[string]bool
}

func newMemLocker() *memLocker {
	return &memLocker{held: map[string]bool{}}
}

func (l *memLocker) TryLock(_ context.Context, key string, _ time.Duration) (func(), bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[key] {
		return func() {}, false, nil
	}
	l.held[key] = true
	return func() {
		l.mu.Lock()
		delete(l.held, key)
		l.mu.Unlock()
	}, true, nil
}

type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
	gets int
	hits int
}

func newMemCache() *memCache {
	return &memCache{data: map[string][]byte{}}
}

func (c *memCache) GetJSON(_ context.Context, key string, out any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	b, ok := c.data[key]
	if !ok {
		return false, nil
	}
	c.hits++
	return true, json.Unmarshal(b, out)
}

func (c *memCache) SetJSON(_ context.Context, key string, value any, _ time.Duration) error {
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.data[key] = b
	c.mu.Unlock()
	return nil
}

func (c *memCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	delete(c.data, key)
	c.mu.Unlock()
	return nil
}

type recordedEvent struct {
	key string
	v   any
}

type fakeEvents struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (f *fakeEvents) PublishEvent(_ context.Context, key string, v any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, recordedEvent{key: key, v: v})
	return nil
}

func (f *fakeEvents) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.events)
}

type fakeNotifier struct {
	mu       sync.Mutex
	ready    map[uuid.UUID]int
	statuses []string
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{ready: map[uuid.UUID]int{}}
}

func (n *fakeNotifier) QuizReady(quizID uuid.UUID, count int) {
	n.mu.Lock()
	n.ready[quizID] = count
	n.mu.Unlock()
}

func (n *fakeNotifier) ApplicationStatusChanged(_, _, _ uuid.UUID, status string) {
	n.mu.Lock()
	n.statuses = append(n.statuses, status)
	n.mu.Unlock()
}

type fakeStore struct {
	objects map[string][]byte
	removed []string
	putErr  error
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: map[string][]byte{}}
}

func (s *fakeStore) Put(_ context.Context, name string, r io.Reader, _ int64, _ string) error {
	if s.putErr != nil {
		return s.putErr
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	s.objects[name] = b
	return nil
}

func (s *fakeStore) PresignedGet(_ context.Context, name string, expiry time.Duration) (string, error) {
	return "https://storage.test/resumes/" + name + "?expires=" + expiry.String(), nil
}

func (s *fakeStore) Remove(_ context.Context, name string) error {
	delete(s.objects, name)
	s.removed = append(s.removed, name)
	return nil
}

type fakeQueue struct {
	enabled bool
	jobs    []any
	err     error
}

func (q *fakeQueue) Enabled() bool {
	return q.enabled
}

func (q *fakeQueue) PublishJob(_ context.Context, v any) error {
	if q.err != nil {
		return q.err
	}
	q.jobs = append(q.jobs, v)
	return nil
}
