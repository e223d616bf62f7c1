package normalize

import (
	"encoding/json"
	"testing"

	"exam-engine/internal/models"
)

const testRoot = "https://api.example.com"

func TestOptionShapes(t *testing.T) {
	n := New(testRoot)

	testCases := []struct {
		name        string
		options     string
		wantTexts   []string
		wantCorrect []bool
	}{
		{
			name:        "array of objects",
			options:     `[{"text":"Paris","isCorrect":true},{"text":"Lagos"}]`,
			wantTexts:   []string{"Paris", "Lagos"},
			wantCorrect: []bool{true, false},
		},
		{
			name:        "string encoded array with string flag",
			options:     `"[{\"text\":\"Paris\",\"correct\":\"1\"}]"`,
			wantTexts:   []string{"Paris"},
			wantCorrect: []bool{true},
		},
		{
			name:        "array of strings",
			options:     `["4","8","12"]`,
			wantTexts:   []string{"4", "8", "12"},
			wantCorrect: []bool{false, false, false},
		},
		{
			name:        "numeric entries become text",
			options:     `[4,8]`,
			wantTexts:   []string{"4", "8"},
			wantCorrect: []bool{false, false},
		},
		{
			name:        "answer alias with numeric one",
			options:     `[{"text":"NaCl","answer":1},{"text":"KCl","answer":0}]`,
			wantTexts:   []string{"NaCl", "KCl"},
			wantCorrect: []bool{true, false},
		},
		{
			name:        "value field fallback",
			options:     `[{"value":"Benzene"}]`,
			wantTexts:   []string{"Benzene"},
			wantCorrect: []bool{false},
		},
		{
			name:        "malformed json yields no options",
			options:     `"[{broken"`,
			wantTexts:   []string{},
			wantCorrect: []bool{},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			q := n.Question(models.RawQuestion{
				ID:       "q1",
				Question: "Pick one",
				Options:  json.RawMessage(tc.options),
			})
			if len(q.Options) != len(tc.wantTexts) {
				t.Fatalf("expected %d options, got %d", len(tc.wantTexts), len(q.Options))
			}
			for i, want := range tc.wantTexts {
				if q.Options[i].Text != want {
					t.Errorf("option %d text: expected %q, got %q", i, want, q.Options[i].Text)
				}
				if q.Options[i].IsCorrect != tc.wantCorrect[i] {
					t.Errorf("option %d isCorrect: expected %v, got %v", i, tc.wantCorrect[i], q.Options[i].IsCorrect)
				}
			}
		})
	}
}

func TestQuestionImageShapes(t *testing.T) {
	n := New(testRoot)

	testCases := []struct {
		name         string
		images       string
		wantImage    string
		wantPosition string
	}{
		{
			name:         "array of urls picks first valid",
			images:       `["[", "/uploads/wave.png"]`,
			wantImage:    testRoot + "/uploads/wave.png",
			wantPosition: "top",
		},
		{
			name:         "object entry with url and position",
			images:       `[{"url":"/uploads/circuit.png","position":"bottom"}]`,
			wantImage:    testRoot + "/uploads/circuit.png",
			wantPosition: "bottom",
		},
		{
			name:         "string encoded array",
			images:       `"[\"https://cdn.example.com/a.png\"]"`,
			wantImage:    "https://cdn.example.com/a.png",
			wantPosition: "top",
		},
		{
			name:         "bare string url",
			images:       `"/uploads/map.png"`,
			wantImage:    testRoot + "/uploads/map.png",
			wantPosition: "top",
		},
		{
			name:         "bare object",
			images:       `{"url":"/uploads/cell.png"}`,
			wantImage:    testRoot + "/uploads/cell.png",
			wantPosition: "top",
		},
		{
			name:         "garbage entries skipped",
			images:       `["[", "]", "undefined-image"]`,
			wantImage:    "",
			wantPosition: "top",
		},
		{
			name:         "short strings skipped",
			images:       `["a.png"]`,
			wantImage:    "",
			wantPosition: "top",
		},
		{
			name:         "position from first element even when second selected",
			images:       `[{"position":"bottom"},"/uploads/late.png"]`,
			wantImage:    testRoot + "/uploads/late.png",
			wantPosition: "bottom",
		},
		{
			name:         "malformed json treated as absent",
			images:       `"[{oops"`,
			wantImage:    "",
			wantPosition: "top",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			q := n.Question(models.RawQuestion{
				ID:     "q1",
				Images: json.RawMessage(tc.images),
			})
			if q.QuestionImage != tc.wantImage {
				t.Errorf("expected image %q, got %q", tc.wantImage, q.QuestionImage)
			}
			if q.ImagePosition != tc.wantPosition {
				t.Errorf("expected position %q, got %q", tc.wantPosition, q.ImagePosition)
			}
		})
	}
}

func TestExplicitImagePosition(t *testing.T) {
	n := New(testRoot)
	q := n.Question(models.RawQuestion{ImagePosition: "bottom"})
	if q.ImagePosition != "bottom" {
		t.Errorf("expected raw position to survive, got %q", q.ImagePosition)
	}
}

func TestExplanationImage(t *testing.T) {
	n := New(testRoot)

	testCases := []struct {
		name  string
		input string
		want  string
	}{
		{"bare string", `"/uploads/expl.png"`, testRoot + "/uploads/expl.png"},
		{"string encoded object", `"{\"url\":\"/uploads/expl.png\"}"`, testRoot + "/uploads/expl.png"},
		{"object", `{"url":"https://cdn.example.com/e.png"}`, "https://cdn.example.com/e.png"},
		{"malformed encoded object", `"{nope"`, ""},
		{"absent", ``, ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			q := n.Question(models.RawQuestion{ExplanationImage: json.RawMessage(tc.input)})
			if q.ExplanationImage != tc.want {
				t.Errorf("expected %q, got %q", tc.want, q.ExplanationImage)
			}
		})
	}
}

func TestResolveImageURL(t *testing.T) {
	n := New(testRoot)

	testCases := []struct {
		name  string
		input string
		want  string
	}{
		{"absolute http passes through", "http://img.example.com/a.png", "http://img.example.com/a.png"},
		{"absolute https passes through", "https://img.example.com/a.png", "https://img.example.com/a.png"},
		{"root relative path", "/uploads/a.png", testRoot + "/uploads/a.png"},
		{"cloudinary domain gets scheme", "res.cloudinary.com/demo/a.png", "https://res.cloudinary.com/demo/a.png"},
		{"www domain gets scheme", "www.example.com/a.png", "https://www.example.com/a.png"},
		{"bare filename is relative to root", "uploads/a.png", testRoot + "/uploads/a.png"},
		{"whitespace trimmed", "  /uploads/a.png  ", testRoot + "/uploads/a.png"},
		{"empty stays empty", "", ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := n.ResolveImageURL(tc.input); got != tc.want {
				t.Errorf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestCorrectOptionKeyNormalized(t *testing.T) {
	n := New(testRoot)
	q := n.Question(models.RawQuestion{CorrectOption: "  B "})
	if q.CorrectOption != "b" {
		t.Errorf("expected trimmed lower-case key, got %q", q.CorrectOption)
	}
}

func TestExplanationDefault(t *testing.T) {
	n := New(testRoot)
	q := n.Question(models.RawQuestion{ID: "q1"})
	if q.Explanation != "No explanation provided." {
		t.Errorf("expected default explanation, got %q", q.Explanation)
	}
}

func TestQuestionIDFallback(t *testing.T) {
	n := New(testRoot)
	q := n.Question(models.RawQuestion{LegacyID: "abc123"})
	if q.ID != "abc123" {
		t.Errorf("expected legacy id fallback, got %q", q.ID)
	}
}
