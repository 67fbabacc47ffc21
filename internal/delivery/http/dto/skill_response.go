package dto

import (
	"skill-hire/internal/domain/skill"

	"github.com/google/uuid"
)

type SkillResponse struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

func NewSkillResponses(items []skill.Skill) []SkillResponse {
	out := make([]SkillResponse, 0, len(items))
	for _, it := range items {
		out = append(out, SkillResponse{ID: it.ID, Name: it.Name})
	}
	return out
}

type EmployeeSkillResponse struct {
	ID          uuid.UUID `json:"id"`
	SkillID     uuid.UUID `json:"skill_id"`
	SkillName   string    `json:"skill_name"`
	Proficiency int       `json:"proficiency"`
}

func NewEmployeeSkillResponse(es skill.EmployeeSkill) EmployeeSkillResponse {
	return EmployeeSkillResponse{
		ID:          es.ID,
		SkillID:     es.SkillID,
		SkillName:   es.SkillName,
		Proficiency: es.Proficiency,
	}
}
