package usecase

import (
	"context"
	"errors"
	"log"
	"time"

	"skill-hire/internal/domain/application"
	"skill-hire/internal/domain/quiz"
	"skill-hire/internal/infrastructure/metrics"
	"skill-hire/internal/repository"

	"github.com/google/uuid"
)

const submitLockTTL = 30 * time.Second

// QuizView is what a participant sees of a quiz. Reveal is set once answers
// may be shown: after completion, or always for the job's employer.
type QuizView struct {
	Quiz      quiz.Quiz
	Questions []quiz.Question
	Reveal    bool
}

type SubmitInput struct {
	QuizID        uuid.UUID
	ApplicationID *uuid.UUID
	UserID        uuid.UUID
	Answers       map[uuid.UUID]string
}

type SubmitResult struct {
	QuizID             uuid.UUID
	Score              int
	Correct            int
	Total              int
	ApplicationUpdated bool
}

// ResultItem is one question with the answer that was graded for it. Answer
// is nil when the question was never answered.
type ResultItem struct {
	Question quiz.Question
	Answer   *quiz.Answer
}

type QuizResults struct {
	Quiz     quiz.Quiz
	Items    []ResultItem
	Correct  int
	Answered int
}

type QuizSessionUsecase interface {
	Questions(ctx context.Context, userID, quizID uuid.UUID) (QuizView, error)
	Results(ctx context.Context, userID, quizID uuid.UUID) (QuizResults, error)
	Submit(ctx context.Context, in SubmitInput) (SubmitResult, error)
	ListQuizzes(ctx context.Context, userID uuid.UUID, practice *bool) ([]quiz.Summary, error)
	CanViewQuiz(ctx context.Context, userID, quizID uuid.UUID) (bool, error)
}

type QuizSession struct {
	quizzes   repository.QuizRepository
	questions repository.QuizQuestionRepository
	answers   repository.QuizAnswerRepository
	apps      repository.ApplicationRepository
	tracker   *StatusTracker
	locker    Locker
	logger    *log.Logger
}

func NewQuizSessionUsecase(
	quizzes repository.QuizRepository,
	questions repository.QuizQuestionRepository,
	answers repository.QuizAnswerRepository,
	apps repository.ApplicationRepository,
	tracker *StatusTracker,
	locker Locker,
	logger *log.Logger,
) *QuizSession {
	if logger == nil {
		logger = log.Default()
	}
	return &QuizSession{
		quizzes:   quizzes,
		questions: questions,
		answers:   answers,
		apps:      apps,
		tracker:   tracker,
		locker:    locker,
		logger:    logger,
	}
}

// Questions returns the quiz's current question set, which may still be
// empty while generation runs. The candidate's first non-empty read starts
// the quiz.
func (u *QuizSession) Questions(ctx context.Context, userID, quizID uuid.UUID) (QuizView, error) {
	q, employerID, err := u.load(ctx, quizID)
	if err != nil {
		return QuizView{}, err
	}
	isOwner := q.EmployeeID == userID
	isEmployer := employerID != uuid.Nil && employerID == userID
	if !isOwner && !isEmployer {
		return QuizView{}, ErrForbidden
	}

	qs, err := u.questions.ListByQuiz(ctx, quizID)
	if err != nil {
		return QuizView{}, ErrInternal
	}

	if isOwner && len(qs) > 0 && q.Status == quiz.StatusPending {
		started, err := u.quizzes.MarkInProgress(ctx, quizID)
		if err != nil {
			u.logger.Printf("quiz_session quiz=%s step=start status=error err=%v", quizID, err)
			return QuizView{}, ErrInternal
		}
		if started {
			u.logger.Printf("quiz_session quiz=%s status=in_progress", quizID)
		}
		q.Status = quiz.StatusInProgress
	}

	return QuizView{
		Quiz:      q,
		Questions: qs,
		Reveal:    q.Status == quiz.StatusCompleted || isEmployer,
	}, nil
}

// Submit grades one attempt. An incomplete answer set is rejected before any
// write. Answer rows are appended, so a retried submission adds a new set.
func (u *QuizSession) Submit(ctx context.Context, in SubmitInput) (SubmitResult, error) {
	res, err := u.submit(ctx, in)
	var partial *PartialWriteError
	switch {
	case err == nil:
		metrics.QuizSubmissions.WithLabelValues("ok").Inc()
	case errors.As(err, &partial):
		metrics.QuizSubmissions.WithLabelValues("partial").Inc()
	case errors.Is(err, ErrIncompleteAnswers):
		metrics.QuizSubmissions.WithLabelValues("incomplete").Inc()
	default:
		metrics.QuizSubmissions.WithLabelValues("rejected").Inc()
	}
	return res, err
}

func (u *QuizSession) submit(ctx context.Context, in SubmitInput) (SubmitResult, error) {
	if in.QuizID == uuid.Nil || in.UserID == uuid.Nil {
		return SubmitResult{}, ErrInvalidInput
	}

	q, err := u.quizzes.GetByID(ctx, in.QuizID)
	if err != nil {
		return SubmitResult{}, mapQuizErr(err)
	}
	if q.EmployeeID != in.UserID {
		return SubmitResult{}, ErrForbidden
	}
	if q.Status == quiz.StatusCompleted {
		return SubmitResult{}, ErrQuizCompleted
	}
	if in.ApplicationID != nil && (q.ApplicationID == nil || *q.ApplicationID != *in.ApplicationID) {
		return SubmitResult{}, ErrInvalidInput
	}

	qs, err := u.questions.ListByQuiz(ctx, in.QuizID)
	if err != nil {
		return SubmitResult{}, ErrInternal
	}
	graded, correct, err := quiz.Evaluate(qs, in.Answers)
	if err != nil {
		if errors.Is(err, quiz.ErrNoQuestions) {
			return SubmitResult{}, ErrNoQuestions
		}
		return SubmitResult{}, ErrIncompleteAnswers
	}

	unlock, ok, err := u.locker.TryLock(ctx, "quiz:submit:"+in.QuizID.String(), submitLockTTL)
	if err != nil {
		return SubmitResult{}, ErrInternal
	}
	if !ok {
		return SubmitResult{}, ErrQuizBusy
	}
	defer unlock()

	// A submission that finished while this one waited for validation.
	current, err := u.quizzes.GetByID(ctx, in.QuizID)
	if err != nil {
		return SubmitResult{}, mapQuizErr(err)
	}
	if current.Status == quiz.StatusCompleted {
		return SubmitResult{}, ErrQuizCompleted
	}

	total := len(graded)
	for i, a := range graded {
		a.ID = uuid.New()
		if err := u.answers.Insert(ctx, a); err != nil {
			u.logger.Printf("quiz_session quiz=%s step=insert_answer recorded=%d total=%d status=error err=%v", in.QuizID, i, total, err)
			return SubmitResult{}, &PartialWriteError{Recorded: i, Total: total, Err: err}
		}
	}

	score := quiz.Score(correct, total)
	if err := u.quizzes.Complete(ctx, in.QuizID, score); err != nil {
		if errors.Is(err, repository.ErrQuizAlreadyCompleted) {
			return SubmitResult{}, ErrQuizCompleted
		}
		u.logger.Printf("quiz_session quiz=%s step=complete status=error err=%v", in.QuizID, err)
		return SubmitResult{}, &PartialWriteError{Recorded: total, Total: total, Err: err}
	}
	u.logger.Printf("quiz_session quiz=%s score=%d correct=%d total=%d status=completed", in.QuizID, score, correct, total)

	res := SubmitResult{QuizID: in.QuizID, Score: score, Correct: correct, Total: total}
	if q.ApplicationID != nil {
		res.ApplicationUpdated = u.advanceApplication(ctx, *q.ApplicationID)
	}
	return res, nil
}

// advanceApplication marks the linked application as having finished its
// quiz. A failure here does not undo the graded quiz.
func (u *QuizSession) advanceApplication(ctx context.Context, applicationID uuid.UUID) bool {
	access, err := u.apps.GetAccess(ctx, applicationID)
	if err != nil {
		u.logger.Printf("quiz_session application=%s step=load status=error err=%v", applicationID, err)
		return false
	}
	_, changed, err := u.tracker.Advance(ctx, access.Application, application.TriggerQuiz, application.StatusQuizCompleted)
	if err != nil {
		u.logger.Printf("quiz_session application=%s step=advance status=error err=%v", applicationID, err)
		return false
	}
	return changed
}

// Results shows how a quiz was answered. The candidate sees it once the quiz
// is completed; the job's employer may look at any time.
func (u *QuizSession) Results(ctx context.Context, userID, quizID uuid.UUID) (QuizResults, error) {
	q, employerID, err := u.load(ctx, quizID)
	if err != nil {
		return QuizResults{}, err
	}
	isEmployer := employerID != uuid.Nil && employerID == userID
	if q.EmployeeID != userID && !isEmployer {
		return QuizResults{}, ErrForbidden
	}
	if !isEmployer && q.Status != quiz.StatusCompleted {
		return QuizResults{}, ErrQuizNotCompleted
	}

	qs, err := u.questions.ListByQuiz(ctx, quizID)
	if err != nil {
		return QuizResults{}, ErrInternal
	}
	answers, err := u.answers.ListByQuiz(ctx, quizID)
	if err != nil {
		u.logger.Printf("quiz_session quiz=%s step=load_answers status=error err=%v", quizID, err)
		return QuizResults{}, ErrInternal
	}
	byQuestion := make(map[uuid.UUID]quiz.Answer, len(answers))
	for _, a := range answers {
		byQuestion[a.QuestionID] = a
	}

	res := QuizResults{Quiz: q, Items: make([]ResultItem, 0, len(qs))}
	for _, question := range qs {
		item := ResultItem{Question: question}
		if a, ok := byQuestion[question.ID]; ok {
			item.Answer = &a
			res.Answered++
			if a.IsCorrect {
				res.Correct++
			}
		}
		res.Items = append(res.Items, item)
	}
	return res, nil
}

func (u *QuizSession) ListQuizzes(ctx context.Context, userID uuid.UUID, practice *bool) ([]quiz.Summary, error) {
	items, err := u.quizzes.ListByEmployee(ctx, userID, practice)
	if err != nil {
		return nil, ErrInternal
	}
	return items, nil
}

func (u *QuizSession) CanViewQuiz(ctx context.Context, userID, quizID uuid.UUID) (bool, error) {
	q, employerID, err := u.load(ctx, quizID)
	if err != nil {
		if errors.Is(err, ErrQuizNotFound) {
			return false, nil
		}
		return false, err
	}
	return q.EmployeeID == userID || (employerID != uuid.Nil && employerID == userID), nil
}

// load fetches the quiz and, for job-linked quizzes, the job owner.
func (u *QuizSession) load(ctx context.Context, quizID uuid.UUID) (quiz.Quiz, uuid.UUID, error) {
	if quizID == uuid.Nil {
		return quiz.Quiz{}, uuid.Nil, ErrInvalidInput
	}
	q, err := u.quizzes.GetByID(ctx, quizID)
	if err != nil {
		return quiz.Quiz{}, uuid.Nil, mapQuizErr(err)
	}
	if q.ApplicationID == nil {
		return q, uuid.Nil, nil
	}
	access, err := u.apps.GetAccess(ctx, *q.ApplicationID)
	if err != nil {
		return quiz.Quiz{}, uuid.Nil, ErrInternal
	}
	return q, access.EmployerID, nil
}

func mapQuizErr(err error) error {
	if errors.Is(err, repository.ErrQuizNotFound) {
		return ErrQuizNotFound
	}
	return ErrInternal
}
