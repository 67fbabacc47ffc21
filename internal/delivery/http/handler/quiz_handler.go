package handler

import (
	"context"
	"errors"
	"strconv"
	"sync"

	"skill-hire/internal/delivery/http/dto"
	"skill-hire/internal/delivery/http/middleware"
	"skill-hire/internal/domain/quiz"
	"skill-hire/internal/infrastructure/metrics"
	"skill-hire/internal/pkg/response"
	"skill-hire/internal/poller"
	"skill-hire/internal/usecase"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

const stateStillGenerating = "still_generating"

type QuizHandler struct {
	assembly usecase.QuizAssemblyUsecase
	session  usecase.QuizSessionUsecase
	poll     poller.Options
}

type generateSkillRequest struct {
	ID          uuid.UUID `json:"id" validate:"required"`
	Name        string    `json:"name" validate:"max=100"`
	Proficiency int       `json:"proficiency" validate:"min=1,max=5"`
}

// generateQuizRequest follows the browser client's camelCase contract.
type generateQuizRequest struct {
	Skills            []generateSkillRequest `json:"skills" validate:"required,min=1,dive"`
	QuestionsPerSkill int                    `json:"questionsPerSkill" validate:"gte=0"`
	ApplicationID     *uuid.UUID             `json:"applicationId"`
	QuizID            *uuid.UUID             `json:"quizId"`
}

func (r generateQuizRequest) input(requester uuid.UUID) usecase.AssembleInput {
	skills := make([]usecase.SkillRequest, 0, len(r.Skills))
	for _, s := range r.Skills {
		skills = append(skills, usecase.SkillRequest{SkillID: s.ID, Name: s.Name, Proficiency: s.Proficiency})
	}
	return usecase.AssembleInput{
		Skills:            skills,
		QuestionsPerSkill: r.QuestionsPerSkill,
		QuizID:            r.QuizID,
		ApplicationID:     r.ApplicationID,
		RequesterID:       requester,
	}
}

type submitAnswerRequest struct {
	QuestionID uuid.UUID `json:"question_id" validate:"required"`
	Answer     string    `json:"answer" validate:"required"`
}

type submitQuizRequest struct {
	ApplicationID *uuid.UUID            `json:"application_id"`
	Answers       []submitAnswerRequest `json:"answers" validate:"required,min=1,dive"`
}

func NewQuizHandler(assembly usecase.QuizAssemblyUsecase, session usecase.QuizSessionUsecase, poll poller.Options) *QuizHandler {
	return &QuizHandler{assembly: assembly, session: session, poll: poll}
}

func (h *QuizHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	grp := r.Group("/quizzes")
	grp.Get("/", h.List)
	grp.Post("/", h.Enqueue)
	grp.Post("/generate", h.Generate)
	grp.Get("/:id/questions", h.Questions)
	grp.Post("/:id/submit", h.Submit)
	grp.Get("/:id/results", h.Results)
}

// Generate assembles synchronously. Failures use the {error} body browser
// callers of this endpoint already handle.
func (h *QuizHandler) Generate(c fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	var req generateQuizRequest
	if err := bindBody(c, &req); err != nil {
		return generateError(c, err)
	}

	res, err := h.assembly.Assemble(c.Context(), req.input(userID))
	if err != nil {
		return generateError(c, mapQuizUsecaseError(err))
	}

	data := make([]dto.SkillQuestionsResponse, 0, len(res.PerSkill))
	for _, s := range res.PerSkill {
		data = append(data, dto.SkillQuestionsResponse{
			SkillID:   s.SkillID,
			SkillName: s.SkillName,
			Questions: dto.NewQuestionResponses(s.Questions, false),
		})
	}
	return c.Status(fiber.StatusOK).JSON(dto.GenerateQuizResponse{Data: data, QuizID: res.QuizID})
}

func (h *QuizHandler) Enqueue(c fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	var req generateQuizRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}

	quizID, err := h.assembly.Enqueue(c.Context(), req.input(userID))
	if err != nil {
		return mapQuizUsecaseError(err)
	}
	return response.Success(c, fiber.StatusAccepted, "Quiz generation started", dto.EnqueueQuizResponse{
		QuizID: quizID,
		Status: string(quiz.StatusPending),
	})
}

func (h *QuizHandler) List(c fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	practice, err := optionalBoolQuery(c, "practice")
	if err != nil {
		return err
	}

	items, err := h.session.ListQuizzes(c.Context(), userID, practice)
	if err != nil {
		return mapQuizUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewQuizSummaryResponses(items))
}

// Questions returns the quiz's questions. With wait=true it polls on the
// server until questions appear or the attempt budget runs out, which is
// answered with 202 rather than an error.
func (h *QuizHandler) Questions(c fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	quizID, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	wait, err := optionalBoolQuery(c, "wait")
	if err != nil {
		return err
	}

	if wait == nil || !*wait {
		view, err := h.session.Questions(c.Context(), userID, quizID)
		if err != nil {
			return mapQuizUsecaseError(err)
		}
		if len(view.Questions) == 0 {
			return stillGenerating(c, quizID, 1)
		}
		return questionsResponse(c, view)
	}

	view, attempts, err := h.waitForQuestions(c.Context(), userID, quizID)
	if err != nil {
		metrics.QuestionPolls.WithLabelValues("error").Inc()
		return mapQuizUsecaseError(err)
	}
	if len(view.Questions) == 0 {
		metrics.QuestionPolls.WithLabelValues(string(poller.StateExhausted)).Inc()
		return stillGenerating(c, quizID, attempts)
	}
	metrics.QuestionPolls.WithLabelValues(string(poller.StateReady)).Inc()
	return questionsResponse(c, view)
}

// waitForQuestions runs the bounded poller. Access and not-found errors stop
// it at once; anything else counts as an empty attempt.
func (h *QuizHandler) waitForQuestions(ctx context.Context, userID, quizID uuid.UUID) (usecase.QuizView, int, error) {
	var (
		mu    sync.Mutex
		last  usecase.QuizView
		fatal error
	)

	var p *poller.Poller[quiz.Question]
	p = poller.New(func(ctx context.Context) ([]quiz.Question, error) {
		view, err := h.session.Questions(ctx, userID, quizID)
		if err != nil {
			if errors.Is(err, usecase.ErrInternal) {
				return nil, err
			}
			mu.Lock()
			fatal = err
			mu.Unlock()
			p.Cancel()
			return nil, err
		}
		mu.Lock()
		last = view
		mu.Unlock()
		return view.Questions, nil
	}, h.poll)
	defer p.Cancel()

	res := p.Run(ctx)

	mu.Lock()
	defer mu.Unlock()
	if fatal != nil {
		return usecase.QuizView{}, res.Attempts, fatal
	}
	switch res.State {
	case poller.StateReady:
		return last, res.Attempts, nil
	case poller.StateCancelled:
		return usecase.QuizView{}, res.Attempts, ctx.Err()
	default:
		if last.Quiz.ID == uuid.Nil && res.Err != nil {
			return usecase.QuizView{}, res.Attempts, res.Err
		}
		return usecase.QuizView{Quiz: last.Quiz}, res.Attempts, nil
	}
}

func (h *QuizHandler) Submit(c fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	quizID, err := uuidParam(c, "id")
	if err != nil {
		return err
	}

	var req submitQuizRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}

	answers := make(map[uuid.UUID]string, len(req.Answers))
	for _, a := range req.Answers {
		if _, dup := answers[a.QuestionID]; dup {
			return middleware.NewAppError(fiber.StatusBadRequest, "Duplicate answer for question "+a.QuestionID.String(), nil, nil)
		}
		answers[a.QuestionID] = a.Answer
	}

	res, err := h.session.Submit(c.Context(), usecase.SubmitInput{
		QuizID:        quizID,
		ApplicationID: req.ApplicationID,
		UserID:        userID,
		Answers:       answers,
	})
	if err != nil {
		return mapQuizUsecaseError(err)
	}

	return response.Success(c, fiber.StatusOK, "Quiz submitted", dto.SubmitQuizResponse{
		QuizID:             res.QuizID,
		Score:              res.Score,
		Correct:            res.Correct,
		Total:              res.Total,
		ApplicationUpdated: res.ApplicationUpdated,
	})
}

func (h *QuizHandler) Results(c fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	quizID, err := uuidParam(c, "id")
	if err != nil {
		return err
	}

	res, err := h.session.Results(c.Context(), userID, quizID)
	if err != nil {
		return mapQuizUsecaseError(err)
	}

	questions := make([]quiz.Question, 0, len(res.Items))
	answers := make([]*quiz.Answer, 0, len(res.Items))
	for _, it := range res.Items {
		questions = append(questions, it.Question)
		answers = append(answers, it.Answer)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK,
		dto.NewQuizResultsResponse(res.Quiz, questions, answers, res.Correct, res.Answered))
}

func questionsResponse(c fiber.Ctx, view usecase.QuizView) error {
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.QuizQuestionsResponse{
		Quiz:      dto.NewQuizResponse(view.Quiz),
		Questions: dto.NewQuestionResponses(view.Questions, view.Reveal),
	})
}

func stillGenerating(c fiber.Ctx, quizID uuid.UUID, attempts int) error {
	c.Set("X-Poll-Attempts", strconv.Itoa(attempts))
	return response.Success(c, fiber.StatusAccepted, "Questions are still being generated, try again shortly", dto.QuizPendingResponse{
		QuizID:   quizID,
		State:    stateStillGenerating,
		Attempts: attempts,
	})
}

func generateError(c fiber.Ctx, err error) error {
	var appErr *middleware.AppError
	if !errors.As(err, &appErr) {
		appErr = middleware.NewAppError(fiber.StatusInternalServerError, response.MessageInternalServerError, nil, err)
	}
	status := appErr.StatusCode
	msg := appErr.Message
	data := appErr.Data
	if status >= 500 {
		msg = response.MessageInternalServerError
		data = nil
	}
	return c.Status(status).JSON(dto.GenerateQuizError{Error: msg, Data: data})
}

func mapQuizUsecaseError(err error) error {
	var partial *usecase.PartialWriteError
	switch {
	case errors.As(err, &partial):
		return middleware.NewAppError(fiber.StatusInternalServerError, "Answers partially recorded", fiber.Map{
			"recorded":   partial.Recorded,
			"total":      partial.Total,
			"retry_safe": true,
		}, err)
	case errors.Is(err, usecase.ErrQuizNotFound):
		return middleware.NewAppError(fiber.StatusNotFound, "Quiz not found", nil, err)
	case errors.Is(err, usecase.ErrApplicationNotFound):
		return middleware.NewAppError(fiber.StatusNotFound, "Application not found", nil, err)
	case errors.Is(err, usecase.ErrSkillNotFound):
		return middleware.NewAppError(fiber.StatusBadRequest, "Unknown skill", nil, err)
	case errors.Is(err, usecase.ErrInvalidProficiencyLevel):
		return middleware.NewAppError(fiber.StatusBadRequest, "Proficiency must be between 1 and 5", nil, err)
	case errors.Is(err, usecase.ErrIncompleteAnswers):
		return middleware.NewAppError(fiber.StatusBadRequest, "Every question needs exactly one answer", nil, err)
	case errors.Is(err, usecase.ErrQuizCompleted):
		return middleware.NewAppError(fiber.StatusConflict, "Quiz already completed", nil, err)
	case errors.Is(err, usecase.ErrQuizNotCompleted):
		return middleware.NewAppError(fiber.StatusConflict, "Quiz not completed yet", nil, err)
	case errors.Is(err, usecase.ErrQuizBusy):
		return middleware.NewAppError(fiber.StatusConflict, "Quiz is being processed, try again shortly", nil, err)
	case errors.Is(err, usecase.ErrNoQuestions):
		return middleware.NewAppError(fiber.StatusConflict, "Quiz has no questions yet", nil, err)
	case errors.Is(err, usecase.ErrForbidden):
		return middleware.NewAppError(fiber.StatusForbidden, "Forbidden", nil, err)
	case errors.Is(err, usecase.ErrInvalidInput):
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return middleware.NewAppError(fiber.StatusServiceUnavailable, "Request cancelled", nil, err)
	default:
		return middleware.NewAppError(fiber.StatusInternalServerError, response.MessageInternalServerError, nil, err)
	}
}
