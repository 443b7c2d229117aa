package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ignite/partner-console/internal/pkg/distlock"
	"github.com/ignite/partner-console/internal/pkg/logger"
)

const (
	defaultKeyPrefix = "partner-console:session:"
	defaultTTL       = 24 * time.Hour
	lockTTL          = 10 * time.Second
	lockPoll         = 20 * time.Millisecond
)

// RedisStore keeps sessions in Redis as JSON with a sliding TTL.
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisStore creates a Redis-backed store. A zero ttl uses 24h and an
// empty prefix uses the default key namespace.
func NewRedisStore(client *redis.Client, prefix string, ttl time.Duration) *RedisStore {
	if prefix == "" {
		prefix = defaultKeyPrefix
	}
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &RedisStore{client: client, prefix: prefix, ttl: ttl}
}

func (s *RedisStore) key(id string) string { return s.prefix + id }

func (s *RedisStore) Load(ctx context.Context, id string) (*Data, error) {
	if id == "" {
		return nil, ErrInvalidID
	}
	raw, err := s.client.Get(ctx, s.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return New(id), nil
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	d, err := decode(id, raw)
	if err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return d, nil
}

func (s *RedisStore) Save(ctx context.Context, d *Data) error {
	if d == nil || d.ID == "" {
		return ErrInvalidID
	}
	raw, err := encode(d)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := s.client.Set(ctx, s.key(d.ID), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("set session: %w", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, s.key(id)).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// Lock takes a Redis lock on the session so instances sharing the store do
// not interleave updates. The lock expires on its own if the holder dies.
func (s *RedisStore) Lock(ctx context.Context, id string) (func(), error) {
	if id == "" {
		return nil, ErrInvalidID
	}
	l := distlock.NewRedisLock(s.client, s.key(id), lockTTL)
	if err := distlock.Wait(ctx, l, lockPoll); err != nil {
		return nil, fmt.Errorf("lock session: %w", err)
	}
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := l.Release(ctx); err != nil {
			logger.Warn("session unlock failed", "session_id", id, "error", err)
		}
	}, nil
}
