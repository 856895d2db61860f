// Package redisdedupe remembers webhook deliveries that were already applied
// so redeliveries can be acknowledged without a database round trip. It is an
// optimisation only; the database stays authoritative.
package redisdedupe

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "webhook:applied:"

type Store struct {
	client *redis.Client
	ttl    time.Duration
}

func New(client *redis.Client, ttl time.Duration) *Store {
	return &Store{client: client, ttl: ttl}
}

// NewFromURL parses a redis:// URL and pings the server.
func NewFromURL(ctx context.Context, rawURL string, ttl time.Duration) (*Store, error) {
	opts, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("redisdedupe: parse url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redisdedupe: ping: %w", err)
	}
	return New(client, ttl), nil
}

func key(event, reference string) string {
	return keyPrefix + event + ":" + reference
}

func (s *Store) Seen(ctx context.Context, event, reference string) (bool, error) {
	n, err := s.client.Exists(ctx, key(event, reference)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// MarkApplied reports whether this call stored the marker.
func (s *Store) MarkApplied(ctx context.Context, event, reference string) (bool, error) {
	return s.client.SetNX(ctx, key(event, reference), time.Now().Unix(), s.ttl).Result()
}

func (s *Store) Close() error {
	return s.client.Close()
}
