// Package quizgen produces multiple-choice assessment questions for a skill,
// asking a language model first and synthesizing questions when the model is
// unavailable or returns too few usable ones.
package quizgen

import (
	"context"
	"errors"
	"log"
	"math/rand/v2"
	"strings"

	"skill-hire/internal/infrastructure/metrics"

	"github.com/google/uuid"
)

var (
	ErrInvalidCount = errors.New("question count must be positive")
	ErrInvalidSkill = errors.New("skill id and name are required")
)

// Completer returns the raw text of a JSON-mode completion.
type Completer interface {
	CompleteJSON(ctx context.Context, system, prompt string) (string, error)
}

type Skill struct {
	ID   uuid.UUID
	Name string
}

type Question struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correct_answer"`
	Explanation   string   `json:"explanation"`
}

type Generator struct {
	llm    Completer
	logger *log.Logger
	intn   func(n int) int
}

func NewGenerator(llm Completer, logger *log.Logger) *Generator {
	if logger == nil {
		logger = log.Default()
	}
	return &Generator{llm: llm, logger: logger, intn: rand.IntN}
}

// Generate always returns exactly count well-formed questions unless the
// arguments themselves are invalid.
func (g *Generator) Generate(ctx context.Context, s Skill, proficiency, count int) ([]Question, error) {
	if count <= 0 {
		return nil, ErrInvalidCount
	}
	s.Name = strings.TrimSpace(s.Name)
	if s.ID == uuid.Nil || s.Name == "" {
		return nil, ErrInvalidSkill
	}

	seen := make(map[string]struct{}, count)
	out := make([]Question, 0, count)
	reason := ""

	if g.llm == nil {
		reason = "disabled"
	} else {
		raw, err := g.llm.CompleteJSON(ctx, systemPrompt, buildPrompt(s.Name, proficiency, count))
		switch {
		case err != nil:
			reason = "api_error"
			g.logger.Printf("quizgen skill=%s status=fallback reason=%s err=%v", s.Name, reason, err)
		default:
			cands, derr := decodeQuestions(raw)
			if derr != nil {
				reason = "decode_error"
				g.logger.Printf("quizgen skill=%s status=fallback reason=%s err=%v", s.Name, reason, derr)
				break
			}
			out = keepValid(cands, count, seen)
		}
	}

	fromLLM := len(out)
	if fromLLM < count {
		if reason == "" {
			reason = "shortfall"
			g.logger.Printf("quizgen skill=%s status=topup valid=%d want=%d", s.Name, fromLLM, count)
		}
		out = append(out, g.fallback(s.Name, proficiency, count-fromLLM, seen)...)
		metrics.GenerationFallbacks.WithLabelValues(reason).Inc()
	}

	metrics.QuestionsGenerated.WithLabelValues("llm").Add(float64(fromLLM))
	metrics.QuestionsGenerated.WithLabelValues("fallback").Add(float64(len(out) - fromLLM))

	return out, nil
}

// keepValid drops malformed and repeated questions and stops at limit.
func keepValid(cands []Question, limit int, seen map[string]struct{}) []Question {
	out := make([]Question, 0, limit)
	for _, c := range cands {
		if len(out) >= limit {
			break
		}
		q, ok := Clean(c)
		if !ok {
			continue
		}
		if _, dup := seen[q.Question]; dup {
			continue
		}
		seen[q.Question] = struct{}{}
		out = append(out, q)
	}
	return out
}

// Clean trims a question and reports whether it is well formed: text and
// answer present, exactly four non-empty options, the answer among them.
func Clean(c Question) (Question, bool) {
	q := Question{
		Question:      strings.TrimSpace(c.Question),
		CorrectAnswer: strings.TrimSpace(c.CorrectAnswer),
		Explanation:   strings.TrimSpace(c.Explanation),
	}
	if q.Question == "" || q.CorrectAnswer == "" || len(c.Options) != 4 {
		return Question{}, false
	}

	q.Options = make([]string, 0, 4)
	found := false
	for _, o := range c.Options {
		o = strings.TrimSpace(o)
		if o == "" {
			return Question{}, false
		}
		if o == q.CorrectAnswer {
			found = true
		}
		q.Options = append(q.Options, o)
	}
	if !found {
		return Question{}, false
	}
	return q, true
}
