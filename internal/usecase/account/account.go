// Package account owns credentials: sign-up, password checks and profile
// edits. Returned users never carry a password hash.
package account

import (
	"context"
	"errors"
	"strings"

	"skill-hire/internal/domain/user"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	minPasswordLen = 8
	// bcrypt ignores input past 72 bytes
	maxPasswordLen = 72
)

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailTaken         = errors.New("email already registered")
	ErrNotFound           = errors.New("user not found")
	ErrInternal           = errors.New("internal error")
)

type SignUp struct {
	Email    string
	Password string
	Role     user.Role
}

// ProfileUpdate changes only the fields that are set.
type ProfileUpdate struct {
	Email    *string
	Password *string
}

type Service struct {
	users user.Repository
	cost  int
}

func NewService(users user.Repository) *Service {
	return &Service{users: users, cost: bcrypt.DefaultCost}
}

func (s *Service) SignUp(ctx context.Context, in SignUp) (user.User, error) {
	email, ok := NormalizeEmail(in.Email)
	if !ok || !ValidPassword(in.Password) || !in.Role.Valid() {
		return user.User{}, ErrInvalidInput
	}

	taken, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return user.User{}, ErrInternal
	}
	if taken {
		return user.User{}, ErrEmailTaken
	}

	hash, err := s.hash(in.Password)
	if err != nil {
		return user.User{}, err
	}

	id := uuid.New()
	if err := s.users.CreateUser(ctx, user.User{ID: id, Email: email, PasswordHash: hash, Role: in.Role}); err != nil {
		if errors.Is(err, user.ErrEmailTaken) {
			return user.User{}, ErrEmailTaken
		}
		return user.User{}, ErrInternal
	}
	return s.Profile(ctx, id)
}

// Authenticate checks an email and password pair. Unknown emails and wrong
// passwords are reported the same way.
func (s *Service) Authenticate(ctx context.Context, email, password string) (user.User, error) {
	email, ok := NormalizeEmail(email)
	if !ok || password == "" {
		return user.User{}, ErrInvalidCredentials
	}

	u, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return user.User{}, ErrInvalidCredentials
		}
		return user.User{}, ErrInternal
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return user.User{}, ErrInvalidCredentials
	}
	return withoutHash(u), nil
}

func (s *Service) Profile(ctx context.Context, id uuid.UUID) (user.User, error) {
	u, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return user.User{}, ErrNotFound
		}
		return user.User{}, ErrInternal
	}
	return withoutHash(u), nil
}

func (s *Service) UpdateProfile(ctx context.Context, id uuid.UUID, in ProfileUpdate) (user.User, error) {
	if in.Email == nil && in.Password == nil {
		return user.User{}, ErrInvalidInput
	}

	u, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return user.User{}, ErrNotFound
		}
		return user.User{}, ErrInternal
	}

	if in.Email != nil {
		email, ok := NormalizeEmail(*in.Email)
		if !ok {
			return user.User{}, ErrInvalidInput
		}
		u.Email = email
	}
	if in.Password != nil {
		if !ValidPassword(*in.Password) {
			return user.User{}, ErrInvalidInput
		}
		if u.PasswordHash, err = s.hash(*in.Password); err != nil {
			return user.User{}, err
		}
	}

	if err := s.users.UpdateUser(ctx, u); err != nil {
		switch {
		case errors.Is(err, user.ErrEmailTaken):
			return user.User{}, ErrEmailTaken
		case errors.Is(err, user.ErrNotFound):
			return user.User{}, ErrNotFound
		default:
			return user.User{}, ErrInternal
		}
	}
	return s.Profile(ctx, id)
}

func (s *Service) hash(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", ErrInternal
	}
	return string(b), nil
}

// NormalizeEmail trims and lowercases. Anything without a local part and a
// domain around a single @ is rejected.
func NormalizeEmail(email string) (string, bool) {
	email = strings.ToLower(strings.TrimSpace(email))
	local, domain, ok := strings.Cut(email, "@")
	if !ok || local == "" || domain == "" || strings.Contains(domain, "@") {
		return "", false
	}
	return email, true
}

func ValidPassword(pw string) bool {
	n := len(strings.TrimSpace(pw))
	return n >= minPasswordLen && len(pw) <= maxPasswordLen
}

func withoutHash(u user.User) user.User {
	u.PasswordHash = ""
	return u
}
