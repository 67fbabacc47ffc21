package quiz

import (
	"errors"

	"github.com/google/uuid"
)

var (
	ErrNoQuestions       = errors.New("quiz has no questions")
	ErrIncompleteAnswers = errors.New("incomplete answers")
)

// Evaluate grades one attempt. answers must hold exactly one entry per
// question id; anything else is ErrIncompleteAnswers and nothing is graded.
// The returned answers follow question order and carry no ids.
func Evaluate(questions []Question, answers map[uuid.UUID]string) ([]Answer, int, error) {
	if len(questions) == 0 {
		return nil, 0, ErrNoQuestions
	}
	if len(answers) != len(questions) {
		return nil, 0, ErrIncompleteAnswers
	}

	out := make([]Answer, 0, len(questions))
	correct := 0
	for _, q := range questions {
		selected, ok := answers[q.ID]
		if !ok {
			return nil, 0, ErrIncompleteAnswers
		}
		isCorrect := selected == q.CorrectAnswer
		if isCorrect {
			correct++
		}
		out = append(out, Answer{QuestionID: q.ID, Answer: selected, IsCorrect: isCorrect})
	}
	return out, correct, nil
}

// Score is round(100*correct/total) with halves rounded up, clamped to 0..100.
func Score(correct, total int) int {
	if total <= 0 || correct <= 0 {
		return 0
	}
	if correct >= total {
		return 100
	}
	return (200*correct + total) / (2 * total)
}
