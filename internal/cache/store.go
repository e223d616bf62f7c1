// Package cache is the offline question store: whole batches of raw question
// records keyed by subject and year, serialized as JSON blobs, plus the
// cached subject catalog the sync job refreshes. Writes are whole-batch
// overwrites and reads never fail from the session path's point of view: a
// missing or unreadable entry is simply an empty batch.
package cache

import (
	"context"
	"time"

	"exam-engine/internal/models"
)

// Batch is one cached (subject, year) entry, written wholesale by the sync
// job and never partially updated.
type Batch struct {
	SubjectID string               `json:"subjectId"`
	Year      int                  `json:"year"`
	Questions []models.RawQuestion `json:"questions"`
	CachedAt  time.Time            `json:"cachedAt"`
}

// Store is the engine's view of cache persistence.
type Store interface {
	// Put overwrites the batch for (subjectID, year).
	Put(ctx context.Context, subjectID string, year int, questions []models.RawQuestion) error
	// Get returns the cached questions for (subjectID, year), or nil when
	// absent or unreadable. It never returns an error.
	Get(ctx context.Context, subjectID string, year int) []models.RawQuestion
	// PutSubjects overwrites the cached subject catalog.
	PutSubjects(ctx context.Context, subjects []models.Subject) error
	// GetSubjects returns the cached subject catalog, or nil.
	GetSubjects(ctx context.Context) []models.Subject
}
