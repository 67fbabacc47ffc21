package ws

import (
	"time"

	"github.com/google/uuid"
)

func QuizTopic(quizID uuid.UUID) string {
	return "quiz:" + quizID.String()
}

func UserTopic(userID uuid.UUID) string {
	return "user:" + userID.String()
}

type QuizReadyEvent struct {
	Type          string `json:"type"`
	QuizID        string `json:"quiz_id"`
	QuestionCount int    `json:"question_count"`
	Timestamp     string `json:"timestamp"`
}

type ApplicationStatusEvent struct {
	Type          string `json:"type"`
	ApplicationID string `json:"application_id"`
	JobID         string `json:"job_id"`
	Status        string `json:"status"`
	Timestamp     string `json:"timestamp"`
}

// Notifier turns domain happenings into websocket events.
type Notifier struct {
	hub *Hub
}

func NewNotifier(hub *Hub) *Notifier {
	return &Notifier{hub: hub}
}

func (n *Notifier) QuizReady(quizID uuid.UUID, questionCount int) {
	if n == nil {
		return
	}
	n.hub.Publish(QuizTopic(quizID), QuizReadyEvent{
		Type:          "quiz_ready",
		QuizID:        quizID.String(),
		QuestionCount: questionCount,
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
	})
}

func (n *Notifier) ApplicationStatusChanged(employeeID, applicationID, jobID uuid.UUID, status string) {
	if n == nil {
		return
	}
	n.hub.Publish(UserTopic(employeeID), ApplicationStatusEvent{
		Type:          "application_status_changed",
		ApplicationID: applicationID.String(),
		JobID:         jobID.String(),
		Status:        status,
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
	})
}
