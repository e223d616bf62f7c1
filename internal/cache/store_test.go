package cache

import (
	"context"
	"encoding/json"
	"reflect"
	"testing"

	"exam-engine/internal/models"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	questions := []models.RawQuestion{
		{
			ID:            "q1",
			Question:      "What is 2 + 2?",
			Options:       json.RawMessage(`["3","4","5"]`),
			CorrectOption: "b",
			Explanation:   "Basic arithmetic.",
		},
		{
			ID:            "q2",
			Question:      "Capital of France?",
			Options:       json.RawMessage(`[{"text":"Paris","isCorrect":true},{"text":"Lyon"}]`),
			CorrectOption: "a",
		},
	}
	if err := store.Put(ctx, "math", 2023, questions); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	got := store.Get(ctx, "math", 2023)
	if !reflect.DeepEqual(got, questions) {
		t.Errorf("round trip mismatch: got %+v want %+v", got, questions)
	}
}

func TestMemoryStoreMiss(t *testing.T) {
	store := NewMemoryStore()
	if got := store.Get(context.Background(), "math", 2023); got != nil {
		t.Errorf("expected nil for missing batch, got %+v", got)
	}
	if got := store.GetSubjects(context.Background()); got != nil {
		t.Errorf("expected nil for missing subjects, got %+v", got)
	}
}

func TestMemoryStoreSubjects(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	subjects := []models.Subject{
		{ID: "math", Name: "Mathematics"},
		{ID: "eng", Name: "English"},
	}
	if err := store.PutSubjects(ctx, subjects); err != nil {
		t.Fatalf("PutSubjects failed: %v", err)
	}
	got := store.GetSubjects(ctx)
	if !reflect.DeepEqual(got, subjects) {
		t.Errorf("subjects mismatch: got %+v want %+v", got, subjects)
	}
}

func TestMemoryStoreOverwrite(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	first := []models.RawQuestion{{ID: "q1", Question: "old"}}
	second := []models.RawQuestion{{ID: "q1", Question: "new"}, {ID: "q2", Question: "added"}}

	store.Put(ctx, "math", 2023, first)
	store.Put(ctx, "math", 2023, second)

	got := store.Get(ctx, "math", 2023)
	if len(got) != 2 || got[0].Question != "new" {
		t.Errorf("expected overwritten batch, got %+v", got)
	}
}
