package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"skill-hire/internal/database"
	"skill-hire/internal/domain/job"
	"skill-hire/internal/domain/skill"
	"skill-hire/internal/search"

	"github.com/google/uuid"
)

var (
	ErrJobNotFound     = errors.New("job not found")
	ErrJobUnknownSkill = errors.New("job references unknown skill")
)

type JobRepository interface {
	Create(ctx context.Context, j job.Job) (job.Job, error)
	Update(ctx context.Context, j job.Job) (job.Job, error)
	Deactivate(ctx context.Context, id, employerID uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (job.Job, error)
	ListActive(ctx context.Context, f job.ListFilter) ([]job.Job, int, error)
	ListByEmployer(ctx context.Context, employerID uuid.UUID) ([]job.Job, error)
}

type PostgresJobRepository struct {
	db     database.DB
	skills *PostgresJobSkillRepository
}

func NewPostgresJobRepository(db database.DB) *PostgresJobRepository {
	return &PostgresJobRepository{db: db, skills: NewPostgresJobSkillRepository(db)}
}

const jobColumns = `j.id, j.employer_id, j.title, j.description, j.location, j.is_remote, j.is_active, j.created_at, j.updated_at`

func scanJob(row database.Row, j *job.Job) error {
	return row.Scan(&j.ID, &j.EmployerID, &j.Title, &j.Description, &j.Location, &j.IsRemote, &j.IsActive, &j.CreatedAt, &j.UpdatedAt)
}

// Create inserts the job and its skill set in one transaction.
func (r *PostgresJobRepository) Create(ctx context.Context, j job.Job) (job.Job, error) {
	err := database.InTx(ctx, r.db, func(tx database.Tx) error {
		row := tx.QueryRow(ctx,
			`INSERT INTO jobs (id, employer_id, title, description, location, is_remote, is_active)
			 VALUES ($1, $2, $3, $4, $5, $6, true)
			 RETURNING created_at, updated_at, is_active`,
			j.ID, j.EmployerID, j.Title, j.Description, j.Location, j.IsRemote,
		)
		if err := row.Scan(&j.CreatedAt, &j.UpdatedAt, &j.IsActive); err != nil {
			return err
		}
		return replaceJobSkills(ctx, tx, j.ID, j.Skills)
	})
	if err != nil {
		if isForeignKeyViolation(err) {
			return job.Job{}, ErrJobUnknownSkill
		}
		return job.Job{}, err
	}
	return r.GetByID(ctx, j.ID)
}

// Update rewrites the posting and replaces its skill set. Only the owning
// employer's row is touched.
func (r *PostgresJobRepository) Update(ctx context.Context, j job.Job) (job.Job, error) {
	err := database.InTx(ctx, r.db, func(tx database.Tx) error {
		n, err := tx.Exec(ctx,
			`UPDATE jobs
			 SET title = $1, description = $2, location = $3, is_remote = $4, is_active = $5, updated_at = now()
			 WHERE id = $6 AND employer_id = $7`,
			j.Title, j.Description, j.Location, j.IsRemote, j.IsActive, j.ID, j.EmployerID,
		)
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrJobNotFound
		}
		return replaceJobSkills(ctx, tx, j.ID, j.Skills)
	})
	if err != nil {
		if isForeignKeyViolation(err) {
			return job.Job{}, ErrJobUnknownSkill
		}
		return job.Job{}, err
	}
	return r.GetByID(ctx, j.ID)
}

func (r *PostgresJobRepository) Deactivate(ctx context.Context, id, employerID uuid.UUID) error {
	n, err := r.db.Exec(ctx,
		`UPDATE jobs SET is_active = false, updated_at = now() WHERE id = $1 AND employer_id = $2`,
		id, employerID,
	)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrJobNotFound
	}
	return nil
}

func (r *PostgresJobRepository) GetByID(ctx context.Context, id uuid.UUID) (job.Job, error) {
	var j job.Job
	row := r.db.QueryRow(ctx, `SELECT `+jobColumns+` FROM jobs j WHERE j.id = $1`, id)
	if err := scanJob(row, &j); err != nil {
		if errors.Is(err, database.ErrNoRows) {
			return job.Job{}, ErrJobNotFound
		}
		return job.Job{}, err
	}

	skills, err := r.skills.FindByJobIDs(ctx, []uuid.UUID{id})
	if err != nil {
		return job.Job{}, err
	}
	j.Skills = skills[id]
	return j, nil
}

func (r *PostgresJobRepository) ListActive(ctx context.Context, f job.ListFilter) ([]job.Job, int, error) {
	f = f.Normalize()

	where := []string{"j.is_active = true"}
	args := []any{}
	if variants := search.Parse(f.Query).Variants; len(variants) > 0 {
		ors := make([]string, 0, len(variants))
		for _, v := range variants {
			args = append(args, "%"+v+"%")
			ors = append(ors, fmt.Sprintf("j.title ILIKE $%d OR j.description ILIKE $%d", len(args), len(args)))
		}
		where = append(where, "("+strings.Join(ors, " OR ")+")")
	}
	if loc := strings.TrimSpace(f.Location); loc != "" {
		args = append(args, "%"+loc+"%")
		where = append(where, fmt.Sprintf("j.location ILIKE $%d", len(args)))
	}
	if f.Remote != nil {
		args = append(args, *f.Remote)
		where = append(where, fmt.Sprintf("j.is_remote = $%d", len(args)))
	}
	cond := strings.Join(where, " AND ")

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(1) FROM jobs j WHERE `+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, f.Limit, f.Offset())
	q := fmt.Sprintf(`SELECT %s FROM jobs j WHERE %s ORDER BY j.created_at DESC LIMIT $%d OFFSET $%d`,
		jobColumns, cond, len(args)-1, len(args))

	jobs, err := r.list(ctx, q, args...)
	if err != nil {
		return nil, 0, err
	}
	return jobs, total, nil
}

func (r *PostgresJobRepository) ListByEmployer(ctx context.Context, employerID uuid.UUID) ([]job.Job, error) {
	return r.list(ctx, `SELECT `+jobColumns+` FROM jobs j WHERE j.employer_id = $1 ORDER BY j.created_at DESC`, employerID)
}

func (r *PostgresJobRepository) list(ctx context.Context, q string, args ...any) ([]job.Job, error) {
	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]job.Job, 0)
	ids := make([]uuid.UUID, 0)
	for rows.Next() {
		var j job.Job
		if err := scanJob(rows, &j); err != nil {
			return nil, err
		}
		out = append(out, j)
		ids = append(ids, j.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	skills, err := r.skills.FindByJobIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range out {
		out[i].Skills = skills[out[i].ID]
	}
	return out, nil
}

func replaceJobSkills(ctx context.Context, q database.Querier, jobID uuid.UUID, skills []skill.JobSkill) error {
	if _, err := q.Exec(ctx, `DELETE FROM job_skills WHERE job_id = $1`, jobID); err != nil {
		return err
	}
	for _, s := range skills {
		if _, err := q.Exec(ctx,
			`INSERT INTO job_skills (job_id, skill_id, importance) VALUES ($1, $2, $3)`,
			jobID, s.SkillID, s.Importance,
		); err != nil {
			return err
		}
	}
	return nil
}
