package dto

import (
	"time"

	"skill-hire/internal/domain/quiz"

	"github.com/google/uuid"
)

// QuestionResponse hides the answer key unless reveal is set.
type QuestionResponse struct {
	ID            uuid.UUID `json:"id"`
	SkillID       uuid.UUID `json:"skill_id"`
	SkillName     string    `json:"skill_name,omitempty"`
	Position      int       `json:"position"`
	Question      string    `json:"question"`
	Options       []string  `json:"options"`
	CorrectAnswer string    `json:"correct_answer,omitempty"`
	Explanation   string    `json:"explanation,omitempty"`
}

func NewQuestionResponses(items []quiz.Question, reveal bool) []QuestionResponse {
	out := make([]QuestionResponse, 0, len(items))
	for _, q := range items {
		r := QuestionResponse{
			ID:        q.ID,
			SkillID:   q.SkillID,
			SkillName: q.SkillName,
			Position:  q.Position,
			Question:  q.Question,
			Options:   q.Options,
		}
		if reveal {
			r.CorrectAnswer = q.CorrectAnswer
			r.Explanation = q.Explanation
		}
		out = append(out, r)
	}
	return out
}

type QuizResponse struct {
	ID            uuid.UUID  `json:"id"`
	ApplicationID *uuid.UUID `json:"application_id"`
	EmployeeID    uuid.UUID  `json:"employee_id"`
	Status        string     `json:"status"`
	Practice      bool       `json:"practice"`
	Score         *int       `json:"score"`
	CreatedAt     time.Time  `json:"created_at"`
	CompletedAt   *time.Time `json:"completed_at"`

	QuestionCount *int   `json:"question_count,omitempty"`
	JobTitle      string `json:"job_title,omitempty"`
}

func NewQuizResponse(q quiz.Quiz) QuizResponse {
	return QuizResponse{
		ID:            q.ID,
		ApplicationID: q.ApplicationID,
		EmployeeID:    q.EmployeeID,
		Status:        string(q.Status),
		Practice:      q.IsPractice(),
		Score:         q.Score,
		CreatedAt:     q.CreatedAt,
		CompletedAt:   q.CompletedAt,
	}
}

func NewQuizSummaryResponses(items []quiz.Summary) []QuizResponse {
	out := make([]QuizResponse, 0, len(items))
	for _, it := range items {
		r := NewQuizResponse(it.Quiz)
		n := it.QuestionCount
		r.QuestionCount = &n
		r.JobTitle = it.JobTitle
		out = append(out, r)
	}
	return out
}

type QuizQuestionsResponse struct {
	Quiz      QuizResponse       `json:"quiz"`
	Questions []QuestionResponse `json:"questions"`
}

// QuizPendingResponse answers a wait that ran out before questions appeared.
type QuizPendingResponse struct {
	QuizID   uuid.UUID `json:"quiz_id"`
	State    string    `json:"state"`
	Attempts int       `json:"attempts"`
}

type SkillQuestionsResponse struct {
	SkillID   uuid.UUID          `json:"skill_id"`
	SkillName string             `json:"skill_name"`
	Questions []QuestionResponse `json:"questions"`
}

// GenerateQuizResponse keeps the camelCase quizId browser clients expect.
type GenerateQuizResponse struct {
	Data   []SkillQuestionsResponse `json:"data"`
	QuizID uuid.UUID                `json:"quizId"`
}

type GenerateQuizError struct {
	Error string `json:"error"`
	Data  any    `json:"details,omitempty"`
}

type EnqueueQuizResponse struct {
	QuizID uuid.UUID `json:"quiz_id"`
	Status string    `json:"status"`
}

type SubmitQuizResponse struct {
	QuizID             uuid.UUID `json:"quiz_id"`
	Score              int       `json:"score"`
	Correct            int       `json:"correct"`
	Total              int       `json:"total"`
	ApplicationUpdated bool      `json:"application_updated"`
}

type QuestionResultResponse struct {
	QuestionResponse
	SubmittedAnswer *string `json:"submitted_answer"`
	IsCorrect       *bool   `json:"is_correct"`
}

// QuizResultsResponse always reveals the answer key; callers only get here
// once answers may be shown.
type QuizResultsResponse struct {
	Quiz      QuizResponse             `json:"quiz"`
	Correct   int                      `json:"correct"`
	Answered  int                      `json:"answered"`
	Total     int                      `json:"total"`
	Questions []QuestionResultResponse `json:"questions"`
}

func NewQuizResultsResponse(q quiz.Quiz, questions []quiz.Question, answers []*quiz.Answer, correct, answered int) QuizResultsResponse {
	revealed := NewQuestionResponses(questions, true)
	items := make([]QuestionResultResponse, 0, len(revealed))
	for i, r := range revealed {
		item := QuestionResultResponse{QuestionResponse: r}
		if i < len(answers) && answers[i] != nil {
			given, ok := answers[i].Answer, answers[i].IsCorrect
			item.SubmittedAnswer = &given
			item.IsCorrect = &ok
		}
		items = append(items, item)
	}
	return QuizResultsResponse{
		Quiz:      NewQuizResponse(q),
		Correct:   correct,
		Answered:  answered,
		Total:     len(questions),
		Questions: items,
	}
}
