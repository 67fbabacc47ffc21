package repository

import (
	"context"
	"errors"

	"skill-hire/internal/database"
	"skill-hire/internal/domain/skill"

	"github.com/google/uuid"
)

var ErrSkillExists = errors.New("skill already exists")

type SkillRepository interface {
	GetAllSkills(ctx context.Context) ([]skill.Skill, error)
	CreateSkill(ctx context.Context, name string) (skill.Skill, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]skill.Skill, error)
}

type PostgresSkillRepository struct {
	db database.DB
}

func NewPostgresSkillRepository(db database.DB) *PostgresSkillRepository {
	return &PostgresSkillRepository{db: db}
}

func (r *PostgresSkillRepository) GetAllSkills(ctx context.Context) ([]skill.Skill, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name, created_at FROM skills ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	return scanSkills(rows)
}

func (r *PostgresSkillRepository) CreateSkill(ctx context.Context, name string) (skill.Skill, error) {
	s := skill.Skill{ID: uuid.New(), Name: name}
	row := r.db.QueryRow(ctx,
		`INSERT INTO skills (id, name) VALUES ($1, $2) RETURNING created_at`,
		s.ID, s.Name,
	)
	if err := row.Scan(&s.CreatedAt); err != nil {
		if isUniqueViolation(err) {
			return skill.Skill{}, ErrSkillExists
		}
		return skill.Skill{}, err
	}
	return s, nil
}

// FindByIDs returns the skills that exist among ids; missing ids are simply
// absent from the result.
func (r *PostgresSkillRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]skill.Skill, error) {
	if len(ids) == 0 {
		return []skill.Skill{}, nil
	}
	rows, err := r.db.Query(ctx, `SELECT id, name, created_at FROM skills WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	return scanSkills(rows)
}

func scanSkills(rows database.Rows) ([]skill.Skill, error) {
	defer rows.Close()

	out := make([]skill.Skill, 0)
	for rows.Next() {
		var s skill.Skill
		if err := rows.Scan(&s.ID, &s.Name, &s.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
