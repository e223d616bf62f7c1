package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"exam-engine/internal/models"
)

// MemoryStore is a process-local Store. It backs tests and serves as a
// fallback when no Redis instance is configured.
type MemoryStore struct {
	mu       sync.Mutex
	batches  map[string]Batch
	subjects []models.Subject
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{batches: make(map[string]Batch)}
}

func memoryKey(subjectID string, year int) string {
	return fmt.Sprintf("%s:%d", subjectID, year)
}

func (s *MemoryStore) Put(_ context.Context, subjectID string, year int, questions []models.RawQuestion) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.batches[memoryKey(subjectID, year)] = Batch{
		SubjectID: subjectID,
		Year:      year,
		Questions: questions,
		CachedAt:  time.Now().UTC(),
	}
	return nil
}

func (s *MemoryStore) Get(_ context.Context, subjectID string, year int) []models.RawQuestion {
	s.mu.Lock()
	defer s.mu.Unlock()
	batch, ok := s.batches[memoryKey(subjectID, year)]
	if !ok {
		return nil
	}
	return batch.Questions
}

func (s *MemoryStore) PutSubjects(_ context.Context, subjects []models.Subject) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subjects = subjects
	return nil
}

func (s *MemoryStore) GetSubjects(_ context.Context) []models.Subject {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.subjects
}
