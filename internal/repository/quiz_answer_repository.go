package repository

import (
	"context"

	"skill-hire/internal/database"
	"skill-hire/internal/domain/quiz"

	"github.com/google/uuid"
)

// QuizAnswerRepository appends graded answers; rows are never updated.
type QuizAnswerRepository interface {
	Insert(ctx context.Context, a quiz.Answer) error
	// ListByQuiz returns the most recent answer to each question of a quiz.
	ListByQuiz(ctx context.Context, quizID uuid.UUID) ([]quiz.Answer, error)
}

type PostgresQuizAnswerRepository struct {
	db database.DB
}

func NewPostgresQuizAnswerRepository(db database.DB) *PostgresQuizAnswerRepository {
	return &PostgresQuizAnswerRepository{db: db}
}

func (r *PostgresQuizAnswerRepository) Insert(ctx context.Context, a quiz.Answer) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO quiz_answers (id, question_id, answer, is_correct) VALUES ($1, $2, $3, $4)`,
		a.ID, a.QuestionID, a.Answer, a.IsCorrect,
	)
	return err
}

func (r *PostgresQuizAnswerRepository) ListByQuiz(ctx context.Context, quizID uuid.UUID) ([]quiz.Answer, error) {
	rows, err := r.db.Query(ctx,
		`SELECT DISTINCT ON (a.question_id) a.id, a.question_id, a.answer, a.is_correct, a.created_at
		 FROM quiz_answers a
		 JOIN quiz_questions qq ON qq.id = a.question_id
		 WHERE qq.quiz_id = $1
		 ORDER BY a.question_id, a.created_at DESC, a.id DESC`,
		quizID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]quiz.Answer, 0)
	for rows.Next() {
		var a quiz.Answer
		if err := rows.Scan(&a.ID, &a.QuestionID, &a.Answer, &a.IsCorrect, &a.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
