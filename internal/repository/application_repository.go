package repository

import (
	"context"
	"errors"

	"skill-hire/internal/database"
	"skill-hire/internal/domain/application"

	"github.com/google/uuid"
)

var (
	ErrApplicationNotFound = errors.New("application not found")
	ErrAlreadyApplied      = errors.New("already applied to this job")
	ErrStatusChanged       = errors.New("application status changed concurrently")
)

// ApplicationAccess is an application with the job owner attached, enough to
// decide who may act on it.
type ApplicationAccess struct {
	application.Application
	EmployerID uuid.UUID
	JobTitle   string
}

type ApplicationRepository interface {
	Create(ctx context.Context, a application.Application) (application.Application, error)
	GetAccess(ctx context.Context, id uuid.UUID) (ApplicationAccess, error)
	ListByEmployee(ctx context.Context, employeeID uuid.UUID) ([]application.EmployeeView, error)
	ListByEmployer(ctx context.Context, employerID uuid.UUID, jobID *uuid.UUID) ([]application.EmployerView, error)
	// UpdateStatus moves the row only if it still holds from.
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to application.Status) error
	// UpdateResume always stores the resume path; the status moves from -> to
	// only when the row still holds from. It returns the status the row ends
	// up with.
	UpdateResume(ctx context.Context, id uuid.UUID, resumeURL string, from, to application.Status) (application.Status, error)
}

type PostgresApplicationRepository struct {
	db database.DB
}

func NewPostgresApplicationRepository(db database.DB) *PostgresApplicationRepository {
	return &PostgresApplicationRepository{db: db}
}

func (r *PostgresApplicationRepository) Create(ctx context.Context, a application.Application) (application.Application, error) {
	row := r.db.QueryRow(ctx,
		`INSERT INTO applications (id, job_id, employee_id, status)
		 VALUES ($1, $2, $3, $4)
		 RETURNING created_at, updated_at`,
		a.ID, a.JobID, a.EmployeeID, string(a.Status),
	)
	if err := row.Scan(&a.CreatedAt, &a.UpdatedAt); err != nil {
		if isUniqueViolation(err) {
			return application.Application{}, ErrAlreadyApplied
		}
		return application.Application{}, err
	}
	return a, nil
}

func (r *PostgresApplicationRepository) GetAccess(ctx context.Context, id uuid.UUID) (ApplicationAccess, error) {
	row := r.db.QueryRow(ctx,
		`SELECT a.id, a.job_id, a.employee_id, a.status, a.resume_url, a.created_at, a.updated_at, j.employer_id, j.title
		 FROM applications a
		 JOIN jobs j ON j.id = a.job_id
		 WHERE a.id = $1`,
		id,
	)

	var out ApplicationAccess
	var status string
	if err := row.Scan(&out.ID, &out.JobID, &out.EmployeeID, &status, &out.ResumeURL, &out.CreatedAt, &out.UpdatedAt, &out.EmployerID, &out.JobTitle); err != nil {
		if errors.Is(err, database.ErrNoRows) {
			return ApplicationAccess{}, ErrApplicationNotFound
		}
		return ApplicationAccess{}, err
	}
	out.Status = application.Status(status)
	return out, nil
}

func (r *PostgresApplicationRepository) ListByEmployee(ctx context.Context, employeeID uuid.UUID) ([]application.EmployeeView, error) {
	rows, err := r.db.Query(ctx,
		`SELECT a.id, a.job_id, a.employee_id, a.status, a.resume_url, a.created_at, a.updated_at, j.title
		 FROM applications a
		 JOIN jobs j ON j.id = a.job_id
		 WHERE a.employee_id = $1
		 ORDER BY a.created_at DESC`,
		employeeID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]application.EmployeeView, 0)
	for rows.Next() {
		var v application.EmployeeView
		var status string
		if err := rows.Scan(&v.ID, &v.JobID, &v.EmployeeID, &status, &v.ResumeURL, &v.CreatedAt, &v.UpdatedAt, &v.JobTitle); err != nil {
			return nil, err
		}
		v.Status = application.Status(status)
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PostgresApplicationRepository) ListByEmployer(ctx context.Context, employerID uuid.UUID, jobID *uuid.UUID) ([]application.EmployerView, error) {
	rows, err := r.db.Query(ctx,
		`SELECT a.id, a.job_id, a.employee_id, a.status, a.resume_url, a.created_at, a.updated_at,
		        j.title, u.email,
		        (SELECT q.score FROM quizzes q
		          WHERE q.application_id = a.id AND q.status = 'completed'
		          ORDER BY q.completed_at DESC LIMIT 1)
		 FROM applications a
		 JOIN jobs j ON j.id = a.job_id
		 JOIN users u ON u.id = a.employee_id
		 WHERE j.employer_id = $1 AND ($2::uuid IS NULL OR a.job_id = $2)
		 ORDER BY a.created_at DESC`,
		employerID, jobID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]application.EmployerView, 0)
	for rows.Next() {
		var v application.EmployerView
		var status string
		var score *int16
		if err := rows.Scan(&v.ID, &v.JobID, &v.EmployeeID, &status, &v.ResumeURL, &v.CreatedAt, &v.UpdatedAt, &v.JobTitle, &v.EmployeeEmail, &score); err != nil {
			return nil, err
		}
		v.Status = application.Status(status)
		if score != nil {
			s := int(*score)
			v.LatestScore = &s
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PostgresApplicationRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to application.Status) error {
	n, err := r.db.Exec(ctx,
		`UPDATE applications SET status = $1, updated_at = now() WHERE id = $2 AND status = $3`,
		string(to), id, string(from),
	)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrStatusChanged
	}
	return nil
}

func (r *PostgresApplicationRepository) UpdateResume(ctx context.Context, id uuid.UUID, resumeURL string, from, to application.Status) (application.Status, error) {
	row := r.db.QueryRow(ctx,
		`UPDATE applications
		 SET resume_url = $1,
		     status = CASE WHEN status = $3 THEN $4 ELSE status END,
		     updated_at = now()
		 WHERE id = $2
		 RETURNING status`,
		resumeURL, id, string(from), string(to),
	)
	var status string
	if err := row.Scan(&status); err != nil {
		if errors.Is(err, database.ErrNoRows) {
			return "", ErrApplicationNotFound
		}
		return "", err
	}
	return application.Status(status), nil
}
