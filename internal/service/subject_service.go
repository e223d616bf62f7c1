package service

import (
	"context"
	"log"

	"exam-engine/internal/cache"
	"exam-engine/internal/models"
	"exam-engine/internal/upstream"
)

type SubjectService struct {
	Source upstream.Source
	Store  cache.Store
}

func NewSubjectService(source upstream.Source, store cache.Store) *SubjectService {
	return &SubjectService{
		Source: source,
		Store:  store,
	}
}

// ListSubjects returns the subject catalog for the subject picker. A fresh
// list refreshes the cache; when the API is unreachable the cached list is
// served instead.
func (s *SubjectService) ListSubjects(ctx context.Context) ([]models.Subject, error) {
	subjects, err := s.Source.ListSubjects(ctx)
	if err != nil {
		log.Printf("[SUBJECTS] fetch failed: %v, serving cached list", err)
		cached := s.Store.GetSubjects(ctx)
		if len(cached) == 0 {
			return nil, err
		}
		return cached, nil
	}
	if cerr := s.Store.PutSubjects(ctx, subjects); cerr != nil {
		log.Printf("[SUBJECTS] caching list failed: %v", cerr)
	}
	return subjects, nil
}
