package snapshot

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const defaultRedisKey = "questions:snapshot"

// RedisSink stores the encoded snapshot under a single key with no expiry.
type RedisSink struct {
	client *redis.Client
	key    string
}

var _ Sink = (*RedisSink)(nil)

func NewRedisSink(client *redis.Client, key string) *RedisSink {
	if key == "" {
		key = defaultRedisKey
	}
	return &RedisSink{client: client, key: key}
}

func (s *RedisSink) Load(ctx context.Context) (Snapshot, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Snapshot{}, ErrNoSnapshot
		}
		return Snapshot{}, fmt.Errorf("redis get snapshot: %w", err)
	}
	return Decode(data)
}

func (s *RedisSink) Save(ctx context.Context, snap Snapshot) error {
	data, err := Encode(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := s.client.Set(ctx, s.key, data, 0).Err(); err != nil {
		return fmt.Errorf("redis set snapshot: %w", err)
	}
	return nil
}
