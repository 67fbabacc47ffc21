package postgres

import (
	"context"
	"errors"
	"strings"

	"skill-hire/internal/database"
	"skill-hire/internal/domain/user"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

// UserRepository implements user.Repository on the shared pgx pool.
type UserRepository struct {
	db database.DB
}

func NewUserRepository(db database.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) CreateUser(ctx context.Context, u user.User) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO users (id, email, password_hash, role) VALUES ($1, $2, $3, $4)`,
		u.ID, normalizeEmail(u.Email), u.PasswordHash, string(u.Role),
	)
	if isUniqueViolation(err) {
		return user.ErrEmailTaken
	}
	return err
}

func (r *UserRepository) GetUserByID(ctx context.Context, id uuid.UUID) (user.User, error) {
	row := r.db.QueryRow(ctx,
		`SELECT id, email, password_hash, role, created_at, updated_at FROM users WHERE id = $1`,
		id,
	)
	return scanUser(row)
}

func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (user.User, error) {
	row := r.db.QueryRow(ctx,
		`SELECT id, email, password_hash, role, created_at, updated_at FROM users WHERE email = $1`,
		normalizeEmail(email),
	)
	return scanUser(row)
}

func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	row := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`, normalizeEmail(email))
	if err := row.Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// UpdateUser writes email and password hash. Like CreateUser, a duplicate
// email maps to user.ErrEmailTaken.
func (r *UserRepository) UpdateUser(ctx context.Context, u user.User) error {
	n, err := r.db.Exec(ctx,
		`UPDATE users SET email = $2, password_hash = $3, updated_at = now() WHERE id = $1`,
		u.ID, normalizeEmail(u.Email), u.PasswordHash,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return user.ErrEmailTaken
		}
		return err
	}
	if n == 0 {
		return user.ErrNotFound
	}
	return nil
}

func scanUser(row database.Row) (user.User, error) {
	var u user.User
	var role string
	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &role, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if errors.Is(err, database.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, err
	}
	u.Role = user.Role(role)
	return u, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
