package quizgen

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"testing"

	"github.com/google/uuid"
)

type fakeCompleter struct {
	out   string
	err   error
	calls int
}

func (f *fakeCompleter) CompleteJSON(ctx context.Context, system, prompt string) (string, error) {
	f.calls++
	return f.out, f.err
}

func newTestGenerator(c Completer) *Generator {
	g := NewGenerator(c, log.New(io.Discard, "", 0))
	g.intn = func(n int) int { return n - 1 }
	return g
}

var sqlSkill = Skill{ID: uuid.New(), Name: "SQL"}

func assertWellFormed(t *testing.T, qs []Question, want int) {
	t.Helper()
	if len(qs) != want {
		t.Fatalf("expected %d questions, got %d", want, len(qs))
	}
	seen := map[string]bool{}
	for i, q := range qs {
		if q.Question == "" {
			t.Fatalf("question %d has empty text", i)
		}
		if seen[q.Question] {
			t.Fatalf("question %d duplicated: %q", i, q.Question)
		}
		seen[q.Question] = true
		if len(q.Options) != 4 {
			t.Fatalf("question %d has %d options", i, len(q.Options))
		}
		found := false
		for _, o := range q.Options {
			if o == q.CorrectAnswer {
				found = true
			}
		}
		if !found {
			t.Fatalf("question %d correct answer %q not in options", i, q.CorrectAnswer)
		}
	}
}

func llmQuestion(n int) string {
	return fmt.Sprintf(`{"question":"Q%d?","options":["a","b","c","d"],"correct_answer":"b","explanation":"e"}`, n)
}

func TestGenerate_UsesModelOutput(t *testing.T) {
	body := `{"questions":[` + llmQuestion(1) + `,` + llmQuestion(2) + `,` + llmQuestion(3) + `]}`
	g := newTestGenerator(&fakeCompleter{out: body})

	qs, err := g.Generate(context.Background(), sqlSkill, 3, 3)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	assertWellFormed(t, qs, 3)
	if qs[0].Question != "Q1?" || qs[2].Question != "Q3?" {
		t.Fatalf("expected model questions in order, got %+v", qs)
	}
}

func TestGenerate_TruncatesToCount(t *testing.T) {
	body := `[` + llmQuestion(1) + `,` + llmQuestion(2) + `,` + llmQuestion(3) + `]`
	g := newTestGenerator(&fakeCompleter{out: body})

	qs, err := g.Generate(context.Background(), sqlSkill, 2, 2)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	assertWellFormed(t, qs, 2)
}

func TestGenerate_TopsUpInvalidAndDuplicates(t *testing.T) {
	body := `{"questions":[` +
		llmQuestion(1) + `,` +
		llmQuestion(1) + `,` +
		`{"question":"bad","options":["a","b","c"],"correct_answer":"a"},` +
		`{"question":"bad2","options":["a","b","c","d"],"correct_answer":"z"},` +
		`{"question":"","options":["a","b","c","d"],"correct_answer":"a"}` +
		`]}`
	g := newTestGenerator(&fakeCompleter{out: body})

	qs, err := g.Generate(context.Background(), sqlSkill, 4, 5)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	assertWellFormed(t, qs, 5)
	if qs[0].Question != "Q1?" {
		t.Fatalf("expected the valid model question first, got %q", qs[0].Question)
	}
	if !strings.HasPrefix(qs[1].Question, "[ADVANCED]") {
		t.Fatalf("expected fallback top-up, got %q", qs[1].Question)
	}
}

func TestGenerate_FallbackOnAPIError(t *testing.T) {
	g := newTestGenerator(&fakeCompleter{err: errors.New("boom")})

	qs, err := g.Generate(context.Background(), sqlSkill, 1, 10)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	assertWellFormed(t, qs, 10)
	for _, q := range qs {
		if !strings.HasPrefix(q.Question, "[BEGINNER]") || !strings.Contains(q.Question, "SQL") {
			t.Fatalf("unexpected fallback question %q", q.Question)
		}
	}
}

func TestGenerate_FallbackOnGarbage(t *testing.T) {
	for _, body := range []string{"", "not json", `{"answer":42}`, `{"tags":["a","b"]}`, `"str"`} {
		g := newTestGenerator(&fakeCompleter{out: body})
		qs, err := g.Generate(context.Background(), sqlSkill, 3, 4)
		if err != nil {
			t.Fatalf("body %q: unexpected err: %v", body, err)
		}
		assertWellFormed(t, qs, 4)
	}
}

func TestGenerate_NilCompleter(t *testing.T) {
	g := newTestGenerator(nil)
	qs, err := g.Generate(context.Background(), sqlSkill, 9, 3)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	assertWellFormed(t, qs, 3)
	if !strings.HasPrefix(qs[0].Question, "[GENERAL]") {
		t.Fatalf("expected GENERAL label, got %q", qs[0].Question)
	}
}

func TestGenerate_InvalidArguments(t *testing.T) {
	c := &fakeCompleter{}
	g := newTestGenerator(c)

	if _, err := g.Generate(context.Background(), sqlSkill, 3, 0); !errors.Is(err, ErrInvalidCount) {
		t.Fatalf("expected ErrInvalidCount, got %v", err)
	}
	if _, err := g.Generate(context.Background(), Skill{Name: "SQL"}, 3, 1); !errors.Is(err, ErrInvalidSkill) {
		t.Fatalf("expected ErrInvalidSkill, got %v", err)
	}
	if _, err := g.Generate(context.Background(), Skill{ID: uuid.New(), Name: "  "}, 3, 1); !errors.Is(err, ErrInvalidSkill) {
		t.Fatalf("expected ErrInvalidSkill, got %v", err)
	}
	if c.calls != 0 {
		t.Fatalf("model must not be called for invalid input")
	}
}

func TestFallback_CorrectPositionVaries(t *testing.T) {
	g := newTestGenerator(nil)
	positions := map[int]bool{}
	for i := 0; i < 4; i++ {
		pos := i
		g.intn = func(int) int { return pos }
		qs := g.fallback("Go", 2, 1, map[string]struct{}{})
		for j, o := range qs[0].Options {
			if o == qs[0].CorrectAnswer {
				positions[j] = true
			}
		}
	}
	if len(positions) != 4 {
		t.Fatalf("expected correct answer at every position, got %v", positions)
	}
}
