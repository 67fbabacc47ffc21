package user

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleEmployer Role = "employer"
	RoleEmployee Role = "employee"
)

func (r Role) Valid() bool {
	return r == RoleEmployer || r == RoleEmployee
}

type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
