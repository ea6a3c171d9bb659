package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"olivecrm/pkg/platform/sentinel"
)

const sessionKeyPrefix = "session:"

// RedisStore is a Redis-backed session store for deployments where multiple
// instances share login state. Expiry rides on the Redis key TTL.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore constructs a Redis-backed session store. The client lifecycle
// is managed externally.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Save(ctx context.Context, sess Session) error {
	payload, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	ttl := time.Until(sess.ExpiresAt)
	if ttl <= 0 {
		return sentinel.ErrExpired
	}
	return s.client.Set(ctx, sessionKeyPrefix+sess.ID, payload, ttl).Err()
}

func (s *RedisStore) Find(ctx context.Context, id string) (Session, error) {
	payload, err := s.client.Get(ctx, sessionKeyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return Session{}, sentinel.ErrNotFound
	}
	if err != nil {
		return Session{}, fmt.Errorf("get session: %w", err)
	}

	var sess Session
	if err := json.Unmarshal(payload, &sess); err != nil {
		return Session{}, fmt.Errorf("unmarshal session: %w", err)
	}
	return sess, nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	n, err := s.client.Del(ctx, sessionKeyPrefix+id).Result()
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}
