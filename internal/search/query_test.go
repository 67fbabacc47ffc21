package search

import (
	"slices"
	"testing"
)

func TestNormalize(t *testing.T) {
	cases := map[string]string{
		"  Senior   GO  Engineer ": "senior go engineer",
		"Front-End (React)":        "front end react",
		"C++ / Rust!!":             "c rust",
		"":                         "",
	}
	for in, want := range cases {
		if got := Normalize(in); got != want {
			t.Fatalf("Normalize(%q): expected %q, got %q", in, want, got)
		}
	}
}

func TestExpand_LeadingSynonymKeepsRest(t *testing.T) {
	got := Expand("backend jakarta")
	if got[0] != "backend jakarta" {
		t.Fatalf("expected original first, got %v", got)
	}
	if !slices.Contains(got, "back end jakarta") || !slices.Contains(got, "server developer jakarta") {
		t.Fatalf("expected synonym variants with location, got %v", got)
	}
}

func TestExpand_SpacedFormMatchesCompactKey(t *testing.T) {
	got := Expand("full stack developer")
	if !slices.Contains(got, "fullstack developer") {
		t.Fatalf("expected compact form, got %v", got)
	}
}

func TestExpand_NoSynonyms(t *testing.T) {
	got := Expand("accountant")
	if len(got) != 1 || got[0] != "accountant" {
		t.Fatalf("expected only the query, got %v", got)
	}
	if Expand("") != nil {
		t.Fatalf("expected nil for empty query")
	}
}

func TestExpand_Capped(t *testing.T) {
	old := Synonyms
	defer func() { Synonyms = old }()
	Synonyms = map[string][]string{"x": {"a", "b", "c", "d", "e", "f", "g", "h", "i"}}

	if got := Expand("x"); len(got) != maxVariants {
		t.Fatalf("expected %d variants, got %d", maxVariants, len(got))
	}
}
