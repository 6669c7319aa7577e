package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	redisv9 "github.com/redis/go-redis/v9"
)

type Store interface {
	Get(ctx context.Context, id string) (*Session, error)
	Save(ctx context.Context, s *Session) error
	Delete(ctx context.Context, id string) error
}

// RedisStore keeps each session as one JSON value whose TTL is refreshed on every save.
type RedisStore struct {
	client *redisv9.Client
	ttl    time.Duration
}

func NewRedisStore(client *redisv9.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = 2 * time.Hour
	}
	return &RedisStore{client: client, ttl: ttl}
}

func (r *RedisStore) Get(ctx context.Context, id string) (*Session, error) {
	raw, err := r.client.Get(ctx, key(id)).Bytes()
	if errors.Is(err, redisv9.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get session failed: %w", err)
	}

	var s Session
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("unmarshal session failed: %w", err)
	}
	return &s, nil
}

func (r *RedisStore) Save(ctx context.Context, s *Session) error {
	payload, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal session failed: %w", err)
	}
	if err := r.client.Set(ctx, key(s.ID), payload, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set session failed: %w", err)
	}
	return nil
}

func (r *RedisStore) Delete(ctx context.Context, id string) error {
	if err := r.client.Del(ctx, key(id)).Err(); err != nil {
		return fmt.Errorf("redis delete session failed: %w", err)
	}
	return nil
}

func key(id string) string {
	return "docintake:session:" + id
}
