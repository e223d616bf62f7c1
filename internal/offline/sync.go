// Package offline refreshes the local question cache so sessions can be
// assembled without reaching the question API.
package offline

import (
	"context"
	"errors"
	"log"
	"sync"

	"exam-engine/internal/cache"
	"exam-engine/internal/models"
	"exam-engine/internal/upstream"
)

// Years covered by a full sync, newest first.
var SyncYears = []int{2024, 2023, 2022, 2021, 2020, 2019, 2018, 2017, 2016, 2015, 2014, 2013, 2012, 2011, 2010}

const batchLimit = 100

var ErrSyncRunning = errors.New("a sync is already in progress")

// Progress is a point-in-time snapshot of a sync run.
type Progress struct {
	Running   bool `json:"running"`
	Completed int  `json:"completed"`
	Failed    int  `json:"failed"`
	Total     int  `json:"total"`
}

// Syncer walks every subject/year pair and stores what the API returns.
// Individual fetch failures are logged and skipped so one bad year never
// aborts the run.
type Syncer struct {
	source upstream.Source
	store  cache.Store

	mu       sync.Mutex
	progress Progress
}

func NewSyncer(source upstream.Source, store cache.Store) *Syncer {
	return &Syncer{source: source, store: store}
}

// Progress reports the state of the current or most recent run.
func (s *Syncer) Progress() Progress {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.progress
}

// Run performs a full sync. Only one run may be active at a time.
func (s *Syncer) Run(ctx context.Context) (Progress, error) {
	s.mu.Lock()
	if s.progress.Running {
		s.mu.Unlock()
		return Progress{}, ErrSyncRunning
	}
	s.progress = Progress{Running: true}
	s.mu.Unlock()

	subjects, err := s.refreshSubjects(ctx)
	if err != nil {
		s.mu.Lock()
		s.progress.Running = false
		s.mu.Unlock()
		return s.Progress(), err
	}

	s.mu.Lock()
	s.progress.Total = len(subjects) * len(SyncYears)
	s.mu.Unlock()

	for _, subject := range subjects {
		for _, year := range SyncYears {
			if err := ctx.Err(); err != nil {
				s.mu.Lock()
				s.progress.Running = false
				s.mu.Unlock()
				return s.Progress(), err
			}
			s.syncBatch(ctx, subject, year)
		}
	}

	s.mu.Lock()
	s.progress.Running = false
	done := s.progress
	s.mu.Unlock()
	log.Printf("[Sync] finished: %d/%d batches cached, %d failed", done.Completed, done.Total, done.Failed)
	return done, nil
}

// refreshSubjects pulls the subject list and caches it. When the API is
// unreachable the previously cached list keeps the run going.
func (s *Syncer) refreshSubjects(ctx context.Context) ([]models.Subject, error) {
	subjects, err := s.source.ListSubjects(ctx)
	if err != nil {
		log.Printf("[Sync] subject list fetch failed: %v, falling back to cache", err)
		cached := s.store.GetSubjects(ctx)
		if len(cached) == 0 {
			return nil, err
		}
		return cached, nil
	}
	if err := s.store.PutSubjects(ctx, subjects); err != nil {
		log.Printf("[Sync] caching subject list failed: %v", err)
	}
	return subjects, nil
}

func (s *Syncer) syncBatch(ctx context.Context, subject models.Subject, year int) {
	questions, err := s.source.ListQuestions(ctx, subject.SubjectID(), year, batchLimit)
	if err != nil {
		log.Printf("[Sync] %s/%d fetch failed: %v", subject.Name, year, err)
		s.bump(false)
		return
	}
	if len(questions) == 0 {
		s.bump(true)
		return
	}
	if err := s.store.Put(ctx, subject.SubjectID(), year, questions); err != nil {
		log.Printf("[Sync] %s/%d cache write failed: %v", subject.Name, year, err)
		s.bump(false)
		return
	}
	s.bump(true)
}

func (s *Syncer) bump(ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ok {
		s.progress.Completed++
	} else {
		s.progress.Failed++
	}
}
