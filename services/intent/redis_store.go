package intent

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tripdesk/models"

	"github.com/go-redis/redis/v8"
	jsoniter "github.com/json-iterator/go"
)

const KeyPrefix = "bookingIntent:"

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// RedisStore keeps intents in Redis with a TTL so abandoned ones expire on their own.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) Save(ctx context.Context, in models.SubmissionIntent) error {
	data, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("failed to marshal booking intent: %w", err)
	}
	if err := s.client.Set(ctx, KeyPrefix+in.VisitorID, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save booking intent: %w", err)
	}
	return nil
}

func (s *RedisStore) Take(ctx context.Context, visitorID string) (*models.SubmissionIntent, error) {
	data, err := s.client.GetDel(ctx, KeyPrefix+visitorID).Bytes()
	return decode(data, err)
}

func (s *RedisStore) Peek(ctx context.Context, visitorID string) (*models.SubmissionIntent, error) {
	data, err := s.client.Get(ctx, KeyPrefix+visitorID).Bytes()
	return decode(data, err)
}

func (s *RedisStore) Discard(ctx context.Context, visitorID string) error {
	return s.client.Del(ctx, KeyPrefix+visitorID).Err()
}

func decode(data []byte, err error) (*models.SubmissionIntent, error) {
	if errors.Is(err, redis.Nil) {
		return nil, ErrIntentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load booking intent: %w", err)
	}
	var in models.SubmissionIntent
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, fmt.Errorf("failed to unmarshal booking intent: %w", err)
	}
	return &in, nil
}
