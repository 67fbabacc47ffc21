package dto

import (
	"time"

	"skill-hire/internal/domain/job"

	"github.com/google/uuid"
)

type JobSkillResponse struct {
	SkillID    uuid.UUID `json:"skill_id"`
	SkillName  string    `json:"skill_name"`
	Importance int       `json:"importance"`
}

type JobResponse struct {
	ID          uuid.UUID          `json:"id"`
	EmployerID  uuid.UUID          `json:"employer_id"`
	Title       string             `json:"title"`
	Description string             `json:"description"`
	Location    string             `json:"location"`
	IsRemote    bool               `json:"is_remote"`
	IsActive    bool               `json:"is_active"`
	Skills      []JobSkillResponse `json:"skills"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

type JobPageResponse struct {
	Items []JobResponse `json:"items"`
	Total int           `json:"total"`
	Page  int           `json:"page"`
	Limit int           `json:"limit"`
}

func NewJobResponse(j job.Job) JobResponse {
	skills := make([]JobSkillResponse, 0, len(j.Skills))
	for _, s := range j.Skills {
		skills = append(skills, JobSkillResponse{SkillID: s.SkillID, SkillName: s.SkillName, Importance: s.Importance})
	}
	return JobResponse{
		ID:          j.ID,
		EmployerID:  j.EmployerID,
		Title:       j.Title,
		Description: j.Description,
		Location:    j.Location,
		IsRemote:    j.IsRemote,
		IsActive:    j.IsActive,
		Skills:      skills,
		CreatedAt:   j.CreatedAt,
		UpdatedAt:   j.UpdatedAt,
	}
}

func NewJobResponses(items []job.Job) []JobResponse {
	out := make([]JobResponse, 0, len(items))
	for _, it := range items {
		out = append(out, NewJobResponse(it))
	}
	return out
}
