package usecase

import (
	"context"

	"skill-hire/internal/domain/user"
	"skill-hire/internal/usecase/account"

	"github.com/google/uuid"
)

type UserUsecase interface {
	GetMe(ctx context.Context, userID uuid.UUID) (user.User, error)
	UpdateMe(ctx context.Context, userID uuid.UUID, in account.ProfileUpdate) (user.User, error)
}

type User struct {
	accounts *account.Service
}

func NewUserUsecase(accounts *account.Service) *User {
	return &User{accounts: accounts}
}

func (u *User) GetMe(ctx context.Context, userID uuid.UUID) (user.User, error) {
	return u.accounts.Profile(ctx, userID)
}

func (u *User) UpdateMe(ctx context.Context, userID uuid.UUID, in account.ProfileUpdate) (user.User, error) {
	return u.accounts.UpdateProfile(ctx, userID, in)
}
