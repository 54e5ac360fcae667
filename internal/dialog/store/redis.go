// SPDX-License-Identifier: MIT

package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/flkbot/wa2bank/internal/config"
	"github.com/flkbot/wa2bank/internal/dialog"
)

// Redis stores sessions as JSON values with a per-key TTL.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedis creates a redis-backed session store.
func NewRedis(cfg config.SessionConfig) *Redis {
	return &Redis{
		client: redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		}),
		ttl: cfg.TTL,
	}
}

// NewRedisWithClient wraps an existing client, mainly for tests.
func NewRedisWithClient(client *redis.Client, ttl time.Duration) *Redis {
	return &Redis{client: client, ttl: ttl}
}

// Load returns the stored session or a fresh idle shell when the key is
// absent or expired.
func (s *Redis) Load(ctx context.Context, userKey string) (dialog.Session, error) {
	raw, err := s.client.Get(ctx, sessionKey(userKey)).Bytes()
	if errors.Is(err, redis.Nil) {
		return dialog.NewIdleSession(userKey, ""), nil
	}
	if err != nil {
		return dialog.Session{}, fmt.Errorf("redis get session: %w", err)
	}

	var sess dialog.Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		// A corrupt record is unrecoverable; start over.
		return dialog.NewIdleSession(userKey, ""), nil
	}
	return sess, nil
}

// Save writes the session and refreshes its TTL.
func (s *Redis) Save(ctx context.Context, sess dialog.Session) error {
	raw, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	if err := s.client.Set(ctx, sessionKey(sess.UserKey), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set session: %w", err)
	}
	return nil
}

// Delete removes the stored session.
func (s *Redis) Delete(ctx context.Context, userKey string) error {
	if err := s.client.Del(ctx, sessionKey(userKey)).Err(); err != nil {
		return fmt.Errorf("redis delete session: %w", err)
	}
	return nil
}

// Ping verifies connectivity.
func (s *Redis) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close releases the underlying client.
func (s *Redis) Close() error {
	return s.client.Close()
}
