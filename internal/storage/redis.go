package storage

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const onlineTTL = 60 * time.Second

// PublishEvent publishes a broadcast payload on a Redis channel so that
// other server instances can fan it out to their local sockets. In-memory
// room membership is not visible across instances; this relay is the
// cross-instance path.
func (s *Service) PublishEvent(ctx context.Context, channel string, payload []byte) error {
	return s.Redis.Publish(ctx, channel, payload).Err()
}

// Subscribe opens a Redis subscription for a broadcast channel.
func (s *Service) Subscribe(ctx context.Context, channel string) *redis.PubSub {
	return s.Redis.Subscribe(ctx, channel)
}

// SetOnline refreshes the TTL'd online marker for a user. Called on
// registration; expiry handles crashed connections.
func (s *Service) SetOnline(ctx context.Context, userID string) error {
	return s.Redis.Set(ctx, "online:"+userID, "1", onlineTTL).Err()
}

func (s *Service) IsOnline(ctx context.Context, userID string) (bool, error) {
	_, err := s.Redis.Get(ctx, "online:"+userID).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
