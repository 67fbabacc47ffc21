package quizgen

import (
	"fmt"
	"strings"
)

const systemPrompt = "You write multiple-choice technical assessment questions. Respond with JSON only."

func difficultyFor(proficiency int) string {
	switch proficiency {
	case 1:
		return "Very basic concepts and fundamentals"
	case 2:
		return "Basic with some practical applications"
	case 3:
		return "Intermediate level with practical scenarios"
	case 4:
		return "Advanced concepts and problem-solving"
	case 5:
		return "Expert level with complex real-world challenges"
	default:
		return "Mixed difficulty from fundamentals to practical use"
	}
}

func buildPrompt(skill string, proficiency, count int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Create %d multiple-choice questions assessing %s.\n", count, skill)
	fmt.Fprintf(&b, "Candidate proficiency: %d of 5. Difficulty: %s.\n", proficiency, difficultyFor(proficiency))
	b.WriteString(`Return a JSON object shaped as {"questions":[{"question":"...","options":["...","...","...","..."],"correct_answer":"...","explanation":"..."}]}.` + "\n")
	b.WriteString("Each question has exactly 4 distinct options. correct_answer must repeat one option verbatim. Do not repeat questions.")
	return b.String()
}
