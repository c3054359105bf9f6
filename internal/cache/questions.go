package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/snaveenk972/learning-platform/internal/model"
	"github.com/snaveenk972/learning-platform/internal/repository"
)

// Questions caches the active question set per course. Question sets are
// immutable for the duration of an attempt, so a short TTL is safe. A nil
// redis client degrades to straight repository reads.
type Questions struct {
	client *redis.Client
	store  *repository.Store
	ttl    time.Duration
}

func NewQuestions(client *redis.Client, store *repository.Store, ttl time.Duration) *Questions {
	return &Questions{client: client, store: store, ttl: ttl}
}

func (c *Questions) ListActiveQuestions(ctx context.Context, courseID string) ([]model.Question, error) {
	// Misses and cache errors both fall through to the repository.
	if c.client != nil {
		value, err := c.client.Get(ctx, questionsKey(courseID)).Result()
		if err == nil {
			var questions []model.Question
			if err := json.Unmarshal([]byte(value), &questions); err == nil {
				return questions, nil
			}
		}
	}

	questions, err := c.store.ListActiveQuestions(ctx, courseID)
	if err != nil {
		return nil, err
	}

	if c.client != nil {
		if data, err := json.Marshal(questions); err == nil {
			_ = c.client.Set(ctx, questionsKey(courseID), data, c.ttl).Err()
		}
	}

	return questions, nil
}

func questionsKey(courseID string) string {
	return "questions:" + courseID
}
