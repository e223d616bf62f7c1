package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"exam-engine/internal/models"
)

const subjectsKey = "exam:subjects"

// RedisStore keeps cached batches in Redis. Entries carry no TTL: they
// persist until the next sync overwrites them or the store is flushed
// externally.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore connects to Redis at the given URL and verifies the
// connection with a ping.
func NewRedisStore(ctx context.Context, url string) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("pinging redis: %w", err)
	}
	return &RedisStore{client: client}, nil
}

// Close shuts down the underlying client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// HealthCheck verifies the connection is alive.
func (s *RedisStore) HealthCheck(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func batchKey(subjectID string, year int) string {
	return fmt.Sprintf("exam:questions:%s:%d", subjectID, year)
}

func (s *RedisStore) Put(ctx context.Context, subjectID string, year int, questions []models.RawQuestion) error {
	batch := Batch{
		SubjectID: subjectID,
		Year:      year,
		Questions: questions,
		CachedAt:  time.Now().UTC(),
	}
	data, err := json.Marshal(batch)
	if err != nil {
		return fmt.Errorf("encoding batch %s/%d: %w", subjectID, year, err)
	}
	return s.client.Set(ctx, batchKey(subjectID, year), data, 0).Err()
}

func (s *RedisStore) Get(ctx context.Context, subjectID string, year int) []models.RawQuestion {
	data, err := s.client.Get(ctx, batchKey(subjectID, year)).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Printf("[CACHE] read %s/%d failed: %v", subjectID, year, err)
		}
		return nil
	}
	var batch Batch
	if err := json.Unmarshal(data, &batch); err != nil {
		log.Printf("[CACHE] decode %s/%d failed: %v", subjectID, year, err)
		return nil
	}
	return batch.Questions
}

func (s *RedisStore) PutSubjects(ctx context.Context, subjects []models.Subject) error {
	data, err := json.Marshal(subjects)
	if err != nil {
		return fmt.Errorf("encoding subjects: %w", err)
	}
	return s.client.Set(ctx, subjectsKey, data, 0).Err()
}

func (s *RedisStore) GetSubjects(ctx context.Context) []models.Subject {
	data, err := s.client.Get(ctx, subjectsKey).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Printf("[CACHE] read subjects failed: %v", err)
		}
		return nil
	}
	var subjects []models.Subject
	if err := json.Unmarshal(data, &subjects); err != nil {
		log.Printf("[CACHE] decode subjects failed: %v", err)
		return nil
	}
	return subjects
}
