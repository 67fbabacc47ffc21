package repository

import (
	"context"
	"errors"

	"skill-hire/internal/database"
	"skill-hire/internal/domain/skill"

	"github.com/google/uuid"
)

var (
	ErrEmployeeSkillNotFound  = errors.New("employee skill not found")
	ErrEmployeeSkillExists    = errors.New("skill already on profile")
	ErrEmployeeSkillForbidden = errors.New("forbidden")
)

type EmployeeSkillRepository interface {
	FindByEmployeeID(ctx context.Context, employeeID uuid.UUID) ([]skill.EmployeeSkill, error)
	SkillExistsByID(ctx context.Context, skillID uuid.UUID) (bool, error)
	Create(ctx context.Context, es skill.EmployeeSkill) (skill.EmployeeSkill, error)
	Update(ctx context.Context, es skill.EmployeeSkill) (skill.EmployeeSkill, error)
	Delete(ctx context.Context, id uuid.UUID, employeeID uuid.UUID) error
}

type PostgresEmployeeSkillRepository struct {
	db database.DB
}

func NewPostgresEmployeeSkillRepository(db database.DB) *PostgresEmployeeSkillRepository {
	return &PostgresEmployeeSkillRepository{db: db}
}

const employeeSkillSelect = `SELECT es.id, es.employee_id, es.skill_id, s.name, es.proficiency, es.created_at
	 FROM employee_skills es
	 JOIN skills s ON s.id = es.skill_id`

func (r *PostgresEmployeeSkillRepository) FindByEmployeeID(ctx context.Context, employeeID uuid.UUID) ([]skill.EmployeeSkill, error) {
	rows, err := r.db.Query(ctx, employeeSkillSelect+` WHERE es.employee_id = $1 ORDER BY s.name ASC`, employeeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]skill.EmployeeSkill, 0)
	for rows.Next() {
		var es skill.EmployeeSkill
		if err := rows.Scan(&es.ID, &es.EmployeeID, &es.SkillID, &es.SkillName, &es.Proficiency, &es.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, es)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PostgresEmployeeSkillRepository) SkillExistsByID(ctx context.Context, skillID uuid.UUID) (bool, error) {
	var exists bool
	row := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM skills WHERE id = $1)`, skillID)
	if err := row.Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *PostgresEmployeeSkillRepository) Create(ctx context.Context, es skill.EmployeeSkill) (skill.EmployeeSkill, error) {
	_, err := r.db.Exec(ctx,
		`INSERT INTO employee_skills (id, employee_id, skill_id, proficiency) VALUES ($1, $2, $3, $4)`,
		es.ID, es.EmployeeID, es.SkillID, es.Proficiency,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return skill.EmployeeSkill{}, ErrEmployeeSkillExists
		}
		return skill.EmployeeSkill{}, err
	}
	return r.findOne(ctx, es.ID, es.EmployeeID)
}

func (r *PostgresEmployeeSkillRepository) Update(ctx context.Context, es skill.EmployeeSkill) (skill.EmployeeSkill, error) {
	n, err := r.db.Exec(ctx,
		`UPDATE employee_skills SET proficiency = $1 WHERE id = $2 AND employee_id = $3`,
		es.Proficiency, es.ID, es.EmployeeID,
	)
	if err != nil {
		return skill.EmployeeSkill{}, err
	}
	if n == 0 {
		return skill.EmployeeSkill{}, ErrEmployeeSkillNotFound
	}
	return r.findOne(ctx, es.ID, es.EmployeeID)
}

func (r *PostgresEmployeeSkillRepository) Delete(ctx context.Context, id uuid.UUID, employeeID uuid.UUID) error {
	var owner uuid.UUID
	row := r.db.QueryRow(ctx, `SELECT employee_id FROM employee_skills WHERE id = $1`, id)
	if err := row.Scan(&owner); err != nil {
		if errors.Is(err, database.ErrNoRows) {
			return ErrEmployeeSkillNotFound
		}
		return err
	}
	if owner != employeeID {
		return ErrEmployeeSkillForbidden
	}

	_, err := r.db.Exec(ctx, `DELETE FROM employee_skills WHERE id = $1`, id)
	return err
}

func (r *PostgresEmployeeSkillRepository) findOne(ctx context.Context, id, employeeID uuid.UUID) (skill.EmployeeSkill, error) {
	row := r.db.QueryRow(ctx, employeeSkillSelect+` WHERE es.id = $1 AND es.employee_id = $2`, id, employeeID)

	var es skill.EmployeeSkill
	if err := row.Scan(&es.ID, &es.EmployeeID, &es.SkillID, &es.SkillName, &es.Proficiency, &es.CreatedAt); err != nil {
		if errors.Is(err, database.ErrNoRows) {
			return skill.EmployeeSkill{}, ErrEmployeeSkillNotFound
		}
		return skill.EmployeeSkill{}, err
	}
	return es, nil
}
