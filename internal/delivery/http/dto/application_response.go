package dto

import (
	"time"

	"skill-hire/internal/domain/application"

	"github.com/google/uuid"
)

type ApplicationResponse struct {
	ID         uuid.UUID `json:"id"`
	JobID      uuid.UUID `json:"job_id"`
	EmployeeID uuid.UUID `json:"employee_id"`
	Status     string    `json:"status"`
	Closed     bool      `json:"closed"`
	HasResume  bool      `json:"has_resume"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	JobTitle      string `json:"job_title,omitempty"`
	EmployeeEmail string `json:"employee_email,omitempty"`
	LatestScore   *int   `json:"latest_score,omitempty"`
}

// The stored resume path is never exposed; clients ask for a signed URL.
func NewApplicationResponse(a application.Application) ApplicationResponse {
	return ApplicationResponse{
		ID:         a.ID,
		JobID:      a.JobID,
		EmployeeID: a.EmployeeID,
		Status:     string(a.Status),
		Closed:     a.Status.IsTerminal(),
		HasResume:  a.ResumeURL != nil && *a.ResumeURL != "",
		CreatedAt:  a.CreatedAt,
		UpdatedAt:  a.UpdatedAt,
	}
}

func NewEmployeeApplicationResponses(items []application.EmployeeView) []ApplicationResponse {
	out := make([]ApplicationResponse, 0, len(items))
	for _, it := range items {
		r := NewApplicationResponse(it.Application)
		r.JobTitle = it.JobTitle
		out = append(out, r)
	}
	return out
}

func NewEmployerApplicationResponses(items []application.EmployerView) []ApplicationResponse {
	out := make([]ApplicationResponse, 0, len(items))
	for _, it := range items {
		r := NewApplicationResponse(it.Application)
		r.JobTitle = it.JobTitle
		r.EmployeeEmail = it.EmployeeEmail
		r.LatestScore = it.LatestScore
		out = append(out, r)
	}
	return out
}

type ResumeURLResponse struct {
	URL              string `json:"url"`
	ExpiresInSeconds int    `json:"expires_in_seconds"`
}
