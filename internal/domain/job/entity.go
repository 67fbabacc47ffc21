package job

import (
	"time"

	"skill-hire/internal/domain/skill"

	"github.com/google/uuid"
)

type Job struct {
	ID          uuid.UUID
	EmployerID  uuid.UUID
	Title       string
	Description string
	Location    string
	IsRemote    bool
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Skills []skill.JobSkill
}

// ListFilter narrows the public job board.
type ListFilter struct {
	Query    string
	Location string
	Remote   *bool
	Page     int
	Limit    int
}

func (f ListFilter) Normalize() ListFilter {
	if f.Page <= 0 {
		f.Page = 1
	}
	if f.Limit <= 0 {
		f.Limit = 20
	}
	if f.Limit > 100 {
		f.Limit = 100
	}
	return f
}

func (f ListFilter) Offset() int {
	return (f.Page - 1) * f.Limit
}
