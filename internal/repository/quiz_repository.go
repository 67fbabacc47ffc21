package repository

import (
	"context"
	"errors"
	"time"

	"skill-hire/internal/database"
	"skill-hire/internal/domain/quiz"

	"github.com/google/uuid"
)

var (
	ErrQuizNotFound         = errors.New("quiz not found")
	ErrQuizAlreadyCompleted = errors.New("quiz already completed")
)

// PendingGeneration is a quiz still waiting for its questions.
type PendingGeneration struct {
	QuizID   uuid.UUID
	Request  []byte
	Attempts int
}

type QuizRepository interface {
	Create(ctx context.Context, q quiz.Quiz, generationRequest []byte) error
	GetByID(ctx context.Context, id uuid.UUID) (quiz.Quiz, error)
	MarkInProgress(ctx context.Context, id uuid.UUID) (bool, error)
	Complete(ctx context.Context, id uuid.UUID, score int) error
	ListByEmployee(ctx context.Context, employeeID uuid.UUID, practice *bool) ([]quiz.Summary, error)
	ListStalePending(ctx context.Context, requestedBefore time.Time, maxAttempts, limit int) ([]PendingGeneration, error)
	MarkRequeued(ctx context.Context, id uuid.UUID) error
	// DiscardEmpty deletes a pending quiz that has no questions. A quiz that
	// got questions or was started in the meantime is kept.
	DiscardEmpty(ctx context.Context, id uuid.UUID) error
}

type PostgresQuizRepository struct {
	db database.DB
}

func NewPostgresQuizRepository(db database.DB) *PostgresQuizRepository {
	return &PostgresQuizRepository{db: db}
}

func (r *PostgresQuizRepository) Create(ctx context.Context, q quiz.Quiz, generationRequest []byte) error {
	var req any
	if len(generationRequest) > 0 {
		req = generationRequest
	}
	_, err := r.db.Exec(ctx,
		`INSERT INTO quizzes (id, application_id, employee_id, status, generation_request, generation_requested_at)
		 VALUES ($1, $2, $3, $4, $5, CASE WHEN $5::jsonb IS NULL THEN NULL ELSE now() END)`,
		q.ID, q.ApplicationID, q.EmployeeID, string(q.Status), req,
	)
	return err
}

func (r *PostgresQuizRepository) GetByID(ctx context.Context, id uuid.UUID) (quiz.Quiz, error) {
	row := r.db.QueryRow(ctx,
		`SELECT id, application_id, employee_id, status, score, created_at, completed_at FROM quizzes WHERE id = $1`,
		id,
	)
	q, err := scanQuiz(row)
	if err != nil {
		if errors.Is(err, database.ErrNoRows) {
			return quiz.Quiz{}, ErrQuizNotFound
		}
		return quiz.Quiz{}, err
	}
	return q, nil
}

// MarkInProgress moves a pending quiz to in_progress. It reports whether the
// row changed; an already started quiz is not an error.
func (r *PostgresQuizRepository) MarkInProgress(ctx context.Context, id uuid.UUID) (bool, error) {
	n, err := r.db.Exec(ctx,
		`UPDATE quizzes SET status = 'in_progress' WHERE id = $1 AND status = 'pending'`,
		id,
	)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *PostgresQuizRepository) Complete(ctx context.Context, id uuid.UUID, score int) error {
	n, err := r.db.Exec(ctx,
		`UPDATE quizzes SET status = 'completed', score = $1, completed_at = now()
		 WHERE id = $2 AND status <> 'completed'`,
		score, id,
	)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrQuizAlreadyCompleted
	}
	return nil
}

// ListByEmployee lists quizzes newest first. practice=true keeps quizzes with
// no application, false keeps job-linked ones, nil keeps both.
func (r *PostgresQuizRepository) ListByEmployee(ctx context.Context, employeeID uuid.UUID, practice *bool) ([]quiz.Summary, error) {
	rows, err := r.db.Query(ctx,
		`SELECT q.id, q.application_id, q.employee_id, q.status, q.score, q.created_at, q.completed_at,
		        (SELECT COUNT(1) FROM quiz_questions qq WHERE qq.quiz_id = q.id),
		        COALESCE(j.title, '')
		 FROM quizzes q
		 LEFT JOIN applications a ON a.id = q.application_id
		 LEFT JOIN jobs j ON j.id = a.job_id
		 WHERE q.employee_id = $1
		   AND ($2::boolean IS NULL OR (q.application_id IS NULL) = $2)
		 ORDER BY q.created_at DESC`,
		employeeID, practice,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]quiz.Summary, 0)
	for rows.Next() {
		var s quiz.Summary
		var status string
		var score *int16
		if err := rows.Scan(&s.ID, &s.ApplicationID, &s.EmployeeID, &status, &score, &s.CreatedAt, &s.CompletedAt, &s.QuestionCount, &s.JobTitle); err != nil {
			return nil, err
		}
		s.Status = quiz.Status(status)
		s.Score = widen(score)
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ListStalePending finds queued quizzes that still have no questions.
func (r *PostgresQuizRepository) ListStalePending(ctx context.Context, requestedBefore time.Time, maxAttempts, limit int) ([]PendingGeneration, error) {
	rows, err := r.db.Query(ctx,
		`SELECT q.id, q.generation_request, q.generation_attempts
		 FROM quizzes q
		 WHERE q.status = 'pending'
		   AND q.generation_request IS NOT NULL
		   AND q.generation_requested_at < $1
		   AND q.generation_attempts < $2
		   AND NOT EXISTS (SELECT 1 FROM quiz_questions qq WHERE qq.quiz_id = q.id)
		 ORDER BY q.generation_requested_at ASC
		 LIMIT $3`,
		requestedBefore, maxAttempts, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]PendingGeneration, 0)
	for rows.Next() {
		var p PendingGeneration
		if err := rows.Scan(&p.QuizID, &p.Request, &p.Attempts); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PostgresQuizRepository) MarkRequeued(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.Exec(ctx,
		`UPDATE quizzes
		 SET generation_attempts = generation_attempts + 1, generation_requested_at = now()
		 WHERE id = $1`,
		id,
	)
	return err
}

func (r *PostgresQuizRepository) DiscardEmpty(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.Exec(ctx,
		`DELETE FROM quizzes q
		 WHERE q.id = $1 AND q.status = 'pending'
		   AND NOT EXISTS (SELECT 1 FROM quiz_questions qq WHERE qq.quiz_id = q.id)`,
		id,
	)
	return err
}

func scanQuiz(row database.Row) (quiz.Quiz, error) {
	var q quiz.Quiz
	var status string
	var score *int16
	if err := row.Scan(&q.ID, &q.ApplicationID, &q.EmployeeID, &status, &score, &q.CreatedAt, &q.CompletedAt); err != nil {
		return quiz.Quiz{}, err
	}
	q.Status = quiz.Status(status)
	q.Score = widen(score)
	return q, nil
}

func widen(v *int16) *int {
	if v == nil {
		return nil
	}
	n := int(*v)
	return &n
}
