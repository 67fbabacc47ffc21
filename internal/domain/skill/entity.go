package skill

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

const (
	MinLevel = 1
	MaxLevel = 5
)

var ErrLevelOutOfRange = errors.New("level must be between 1 and 5")

type Skill struct {
	ID        uuid.UUID
	Name      string
	CreatedAt time.Time
}

// EmployeeSkill is a self-rated proficiency on the employee's profile.
type EmployeeSkill struct {
	ID          uuid.UUID
	EmployeeID  uuid.UUID
	SkillID     uuid.UUID
	SkillName   string
	Proficiency int
	CreatedAt   time.Time
}

// JobSkill is a required skill on a posting, weighted by importance.
type JobSkill struct {
	JobID      uuid.UUID
	SkillID    uuid.UUID
	SkillName  string
	Importance int
}

// ValidLevel reports whether v is a proficiency or importance rating.
func ValidLevel(v int) bool {
	return v >= MinLevel && v <= MaxLevel
}
