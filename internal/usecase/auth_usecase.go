package usecase

import (
	"context"
	"errors"

	"skill-hire/internal/domain/user"
	"skill-hire/internal/pkg/jwt"
	"skill-hire/internal/usecase/account"
)

// TokenPair is what a successful sign-up, login or refresh hands back.
type TokenPair struct {
	Access  string
	Refresh string
}

type AuthUsecase interface {
	Register(ctx context.Context, in account.SignUp) (user.User, TokenPair, error)
	Login(ctx context.Context, email, password string) (user.User, TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (TokenPair, error)
}

type Auth struct {
	accounts *account.Service
	jwt      jwt.Service
}

func NewAuthUsecase(accounts *account.Service, jwtSvc jwt.Service) *Auth {
	return &Auth{accounts: accounts, jwt: jwtSvc}
}

func (u *Auth) Register(ctx context.Context, in account.SignUp) (user.User, TokenPair, error) {
	usr, err := u.accounts.SignUp(ctx, in)
	if err != nil {
		return user.User{}, TokenPair{}, err
	}
	tokens, err := u.issue(usr)
	if err != nil {
		return user.User{}, TokenPair{}, err
	}
	return usr, tokens, nil
}

func (u *Auth) Login(ctx context.Context, email, password string) (user.User, TokenPair, error) {
	usr, err := u.accounts.Authenticate(ctx, email, password)
	if err != nil {
		return user.User{}, TokenPair{}, err
	}
	tokens, err := u.issue(usr)
	if err != nil {
		return user.User{}, TokenPair{}, err
	}
	return usr, tokens, nil
}

// Refresh rotates both tokens. The user is re-read so a changed email or a
// deleted account is reflected.
func (u *Auth) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	if refreshToken == "" {
		return TokenPair{}, ErrUnauthorized
	}

	claims, err := u.jwt.ValidateRefresh(refreshToken)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return TokenPair{}, ErrRefreshTokenExpired
		}
		return TokenPair{}, ErrInvalidRefreshToken
	}

	usr, err := u.accounts.Profile(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, account.ErrNotFound) {
			return TokenPair{}, ErrInvalidRefreshToken
		}
		return TokenPair{}, ErrInternal
	}
	return u.issue(usr)
}

func (u *Auth) issue(usr user.User) (TokenPair, error) {
	access, err := u.jwt.GenerateAccessToken(usr.ID, usr.Email, string(usr.Role))
	if err != nil {
		return TokenPair{}, ErrInternal
	}
	refresh, err := u.jwt.GenerateRefreshToken(usr.ID, string(usr.Role))
	if err != nil {
		return TokenPair{}, ErrInternal
	}
	return TokenPair{Access: access, Refresh: refresh}, nil
}
