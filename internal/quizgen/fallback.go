package quizgen

import "fmt"

var fallbackTopics = []string{
	"best practices",
	"common pitfalls",
	"testing approaches",
	"performance optimization",
	"core concepts",
	"debugging techniques",
	"security considerations",
	"tooling and ecosystem",
}

func levelLabel(proficiency int) string {
	switch proficiency {
	case 1:
		return "BEGINNER"
	case 2:
		return "BASIC"
	case 3:
		return "INTERMEDIATE"
	case 4:
		return "ADVANCED"
	case 5:
		return "EXPERT"
	default:
		return "GENERAL"
	}
}

// fallback synthesizes n questions whose text is not already in seen.
func (g *Generator) fallback(skill string, proficiency, n int, seen map[string]struct{}) []Question {
	label := levelLabel(proficiency)
	out := make([]Question, 0, n)

	for i := 0; len(out) < n; i++ {
		topic := fallbackTopics[i%len(fallbackTopics)]
		text := fmt.Sprintf("[%s] %s #%d: which approach to %s is most appropriate?", label, skill, i+1, topic)
		if _, dup := seen[text]; dup {
			continue
		}
		seen[text] = struct{}{}

		correct := fmt.Sprintf("Apply established %s %s and verify the outcome", skill, topic)
		options := []string{
			fmt.Sprintf("Ignore %s since it rarely matters in %s", topic, skill),
			fmt.Sprintf("Rely on trial and error for %s", topic),
			fmt.Sprintf("Defer %s until after release", topic),
		}
		pos := g.intn(4)
		options = append(options[:pos], append([]string{correct}, options[pos:]...)...)

		out = append(out, Question{
			Question:      text,
			Options:       options,
			CorrectAnswer: correct,
			Explanation:   fmt.Sprintf("Treating %s deliberately is expected at the %s level.", topic, label),
		})
	}
	return out
}
