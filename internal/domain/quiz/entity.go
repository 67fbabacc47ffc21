package quiz

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	default:
		return false
	}
}

// Quiz is either a practice quiz (no application) or job-linked. Score and
// CompletedAt are only set once Status is completed.
type Quiz struct {
	ID            uuid.UUID
	ApplicationID *uuid.UUID
	EmployeeID    uuid.UUID
	Status        Status
	Score         *int
	CreatedAt     time.Time
	CompletedAt   *time.Time
}

func (q Quiz) IsPractice() bool {
	return q.ApplicationID == nil
}

type Question struct {
	ID            uuid.UUID
	QuizID        uuid.UUID
	SkillID       uuid.UUID
	SkillName     string
	Position      int
	Question      string
	Options       []string
	CorrectAnswer string
	Explanation   string
}

type Answer struct {
	ID         uuid.UUID
	QuestionID uuid.UUID
	Answer     string
	IsCorrect  bool
	CreatedAt  time.Time
}

// Summary is the listing view of a quiz.
type Summary struct {
	Quiz
	QuestionCount int
	JobTitle      string
}
