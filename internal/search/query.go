// Package search turns a free-text job board query into the set of phrases
// the listing matches against.
package search

import (
	"strings"
	"unicode"
)

const maxVariants = 8

// Synonyms maps a normalized phrase to other ways job titles spell it.
var Synonyms = map[string][]string{
	"frontend":  {"front end", "front-end", "ui developer"},
	"backend":   {"back end", "back-end", "server developer"},
	"fullstack": {"full stack", "full-stack"},
	"devops":    {"site reliability", "platform engineer"},
	"golang":    {"go developer", "go engineer"},
	"qa":        {"quality assurance", "test engineer"},
	"ml":        {"machine learning"},
}

type Query struct {
	Original   string
	Normalized string
	Variants   []string
}

// Normalize lowercases input, keeps letters, digits and single spaces, and
// drops everything else.
func Normalize(input string) string {
	input = strings.ToLower(strings.TrimSpace(input))
	if input == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(input))
	for _, r := range input {
		switch {
		case unicode.IsLetter(r) || unicode.IsNumber(r):
			b.WriteRune(r)
		case unicode.IsSpace(r) || r == '-':
			b.WriteByte(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// Expand returns normalized followed by synonym variants. A synonym key that
// leads the query is swapped for each alternative with the rest kept, and a
// query typed without a space ("front end" as "frontend") matches the spaced
// form too. At most maxVariants phrases come back.
func Expand(normalized string) []string {
	normalized = strings.TrimSpace(normalized)
	if normalized == "" {
		return nil
	}

	out := make([]string, 0, maxVariants)
	seen := make(map[string]struct{}, maxVariants)
	add := func(s string) {
		s = strings.TrimSpace(s)
		if s == "" || len(out) >= maxVariants {
			return
		}
		if _, ok := seen[s]; ok {
			return
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}

	add(normalized)

	words := strings.Fields(normalized)
	rest := strings.Join(words[1:], " ")
	withRest := func(head string) string {
		if rest == "" {
			return head
		}
		return head + " " + rest
	}

	if syns, ok := Synonyms[words[0]]; ok {
		for _, syn := range syns {
			add(withRest(Normalize(syn)))
		}
	}
	if len(words) >= 2 {
		joined := words[0] + words[1]
		if syns, ok := Synonyms[joined]; ok {
			tail := strings.Join(words[2:], " ")
			add(strings.TrimSpace(joined + " " + tail))
			for _, syn := range syns {
				add(strings.TrimSpace(Normalize(syn) + " " + tail))
			}
		}
	}
	return out
}

func Parse(input string) Query {
	n := Normalize(input)
	return Query{Original: input, Normalized: n, Variants: Expand(n)}
}
