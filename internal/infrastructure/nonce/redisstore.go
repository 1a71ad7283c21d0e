// Package nonce implements replay protection for launch signatures: each
// (consumer key, timestamp, nonce) triple is accepted once within the
// verification window.
package nonce

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/openfun/ashley-sub000/internal/domain/lti"
)

const noncePrefix = "lti:nonce:"

var _ lti.NonceStore = (*RedisStore)(nil)

// RedisStore remembers seen triples with a TTL slightly above the
// timestamp window, so entries expire on their own once the window has
// passed and the timestamp check rejects them anyway.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

// CheckAndStore claims the triple atomically with SETNX. It returns false
// when the triple was already claimed.
func (s *RedisStore) CheckAndStore(ctx context.Context, consumerKey, timestamp, nonce string) (bool, error) {
	key := noncePrefix + consumerKey + ":" + timestamp + ":" + nonce
	stored, err := s.client.SetNX(ctx, key, 1, s.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to store nonce: %w", err)
	}

	return stored, nil
}
