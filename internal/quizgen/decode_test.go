package quizgen

import "testing"

func TestDecodeQuestions_Shapes(t *testing.T) {
	q := `{"question":"Q?","options":["a","b","c","d"],"correct_answer":"a"}`

	cases := map[string]string{
		"array":         `[` + q + `]`,
		"wrapped":       `{"questions":[` + q + `]}`,
		"first array":   `{"meta":{"n":1},"items":[` + q + `],"other":[1,2]}`,
		"fenced":        "```json\n{\"questions\":[" + q + "]}\n```",
		"prose wrapped": "Here you go: [" + q + "] hope it helps",
	}
	for name, body := range cases {
		qs, err := decodeQuestions(body)
		if err != nil {
			t.Fatalf("%s: unexpected err: %v", name, err)
		}
		if len(qs) != 1 || qs[0].Question != "Q?" {
			t.Fatalf("%s: unexpected result %+v", name, qs)
		}
	}
}

func TestDecodeQuestions_OnlyFirstArrayConsidered(t *testing.T) {
	q := `{"question":"Q?","options":["a","b","c","d"],"correct_answer":"a"}`
	if _, err := decodeQuestions(`{"tags":["x","y"],"items":[` + q + `]}`); err == nil {
		t.Fatalf("expected rejection when the first array is not question shaped")
	}
}

func TestDecodeQuestions_SkipsMalformedItems(t *testing.T) {
	body := `[{"question":"Q?","options":["a","b","c","d"],"correct_answer":"a"},{"question":5},"x"]`
	qs, err := decodeQuestions(body)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(qs) != 1 {
		t.Fatalf("expected 1 decoded item, got %d", len(qs))
	}
}

func TestDecodeQuestions_Rejects(t *testing.T) {
	for _, body := range []string{"", "   ", "hello", `{"a":1}`, `42`} {
		if _, err := decodeQuestions(body); err == nil {
			t.Fatalf("expected error for %q", body)
		}
	}
}
