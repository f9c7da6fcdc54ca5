package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

type publisher interface {
	Publish(ctx context.Context, channel string, message any) *redis.IntCmd
}

// RedisSink publishes events on a per-recipient pub/sub channel so connected
// clients can be pushed in real time.
type RedisSink struct {
	rdb    publisher
	prefix string
}

func NewRedisSink(rdb publisher, prefix string) *RedisSink {
	if prefix == "" {
		prefix = "notifications"
	}
	return &RedisSink{rdb: rdb, prefix: prefix}
}

func (s *RedisSink) Name() string { return "redis" }

// Channel returns the channel events for recipient are published on.
func (s *RedisSink) Channel(e Event) string {
	return s.prefix + ":" + e.RecipientID.String()
}

func (s *RedisSink) Deliver(ctx context.Context, e Event) error {
	body, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if err := s.rdb.Publish(ctx, s.Channel(e), body).Err(); err != nil {
		return fmt.Errorf("publish event: %w", err)
	}
	return nil
}
