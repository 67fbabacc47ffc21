package quiz

import (
	"errors"
	"testing"

	"github.com/google/uuid"
)

func TestScore(t *testing.T) {
	cases := []struct {
		correct, total, want int
	}{
		{7, 10, 70},
		{1, 3, 33},
		{2, 3, 67},
		{1, 8, 13},
		{0, 4, 0},
		{4, 4, 100},
		{0, 0, 0},
	}
	for _, tc := range cases {
		if got := Score(tc.correct, tc.total); got != tc.want {
			t.Fatalf("Score(%d, %d) = %d, want %d", tc.correct, tc.total, got, tc.want)
		}
	}
}

func TestEvaluate_AllCorrect(t *testing.T) {
	qs := sampleQuestions(4)
	answers := map[uuid.UUID]string{}
	for _, q := range qs {
		answers[q.ID] = q.CorrectAnswer
	}

	graded, correct, err := Evaluate(qs, answers)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if correct != 4 {
		t.Fatalf("expected 4 correct, got %d", correct)
	}
	if len(graded) != 4 {
		t.Fatalf("expected 4 graded answers, got %d", len(graded))
	}
	for i, a := range graded {
		if a.QuestionID != qs[i].ID || !a.IsCorrect {
			t.Fatalf("answer %d not graded in question order", i)
		}
	}
}

func TestEvaluate_MissingQuestion(t *testing.T) {
	qs := sampleQuestions(3)
	answers := map[uuid.UUID]string{
		qs[0].ID:   qs[0].CorrectAnswer,
		qs[1].ID:   qs[1].CorrectAnswer,
		uuid.New(): "A",
	}

	_, _, err := Evaluate(qs, answers)
	if !errors.Is(err, ErrIncompleteAnswers) {
		t.Fatalf("expected ErrIncompleteAnswers, got %v", err)
	}
}

func TestEvaluate_TooFewAnswers(t *testing.T) {
	qs := sampleQuestions(2)
	_, _, err := Evaluate(qs, map[uuid.UUID]string{qs[0].ID: "A"})
	if !errors.Is(err, ErrIncompleteAnswers) {
		t.Fatalf("expected ErrIncompleteAnswers, got %v", err)
	}
}

func TestEvaluate_NoQuestions(t *testing.T) {
	_, _, err := Evaluate(nil, map[uuid.UUID]string{})
	if !errors.Is(err, ErrNoQuestions) {
		t.Fatalf("expected ErrNoQuestions, got %v", err)
	}
}

func sampleQuestions(n int) []Question {
	out := make([]Question, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, Question{
			ID:            uuid.New(),
			Question:      "q",
			Options:       []string{"A", "B", "C", "D"},
			CorrectAnswer: "B",
		})
	}
	return out
}
