package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"skill-hire/internal/database"
	"skill-hire/internal/domain/quiz"

	"github.com/google/uuid"
)

type QuizQuestionRepository interface {
	ReplaceQuestions(ctx context.Context, quizID uuid.UUID, qs []quiz.Question) error
	ListByQuiz(ctx context.Context, quizID uuid.UUID) ([]quiz.Question, error)
}

type PostgresQuizQuestionRepository struct {
	db database.DB
}

func NewPostgresQuizQuestionRepository(db database.DB) *PostgresQuizQuestionRepository {
	return &PostgresQuizQuestionRepository{db: db}
}

// ReplaceQuestions swaps the whole question set of a quiz in one transaction,
// so readers see either the old set or the new one.
func (r *PostgresQuizQuestionRepository) ReplaceQuestions(ctx context.Context, quizID uuid.UUID, qs []quiz.Question) error {
	return database.InTx(ctx, r.db, func(tx database.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM quiz_questions WHERE quiz_id = $1`, quizID); err != nil {
			return err
		}
		for i, q := range qs {
			opts, err := json.Marshal(q.Options)
			if err != nil {
				return err
			}
			if _, err := tx.Exec(ctx,
				`INSERT INTO quiz_questions (id, quiz_id, skill_id, position, question, options, correct_answer, explanation)
				 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
				q.ID, quizID, q.SkillID, i, q.Question, opts, q.CorrectAnswer, q.Explanation,
			); err != nil {
				return fmt.Errorf("insert question position=%d: %w", i, err)
			}
		}
		return nil
	})
}

func (r *PostgresQuizQuestionRepository) ListByQuiz(ctx context.Context, quizID uuid.UUID) ([]quiz.Question, error) {
	rows, err := r.db.Query(ctx,
		`SELECT qq.id, qq.quiz_id, qq.skill_id, s.name, qq.position, qq.question, qq.options, qq.correct_answer, qq.explanation
		 FROM quiz_questions qq
		 JOIN skills s ON s.id = qq.skill_id
		 WHERE qq.quiz_id = $1
		 ORDER BY qq.position ASC`,
		quizID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]quiz.Question, 0)
	for rows.Next() {
		var q quiz.Question
		var opts []byte
		if err := rows.Scan(&q.ID, &q.QuizID, &q.SkillID, &q.SkillName, &q.Position, &q.Question, &opts, &q.CorrectAnswer, &q.Explanation); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(opts, &q.Options); err != nil {
			return nil, fmt.Errorf("decode options question=%s: %w", q.ID, err)
		}
		out = append(out, q)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
