package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vendora/backend/internal/infrastructure/config"
)

// RedisCallbackStore tracks payment callback ids that have already been
// accepted, so repeated provider deliveries can be answered from the fast
// path. The database replay check on payment_order_id stays authoritative;
// this store only spares it the round trip when the provider retries.
type RedisCallbackStore struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisClient opens a Redis connection from config and verifies it
func NewRedisClient(cfg *config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	return client, nil
}

// NewRedisCallbackStore creates a callback store on an existing client
func NewRedisCallbackStore(client *redis.Client) *RedisCallbackStore {
	return &RedisCallbackStore{
		client:    client,
		keyPrefix: "payment:callback:",
	}
}

// MarkSeen records a callback delivery with a TTL. Returns true when this is
// the first delivery for the payment order, false on a retry. SETNX keeps the
// check-and-set atomic across instances.
func (s *RedisCallbackStore) MarkSeen(ctx context.Context, paymentOrderID string, ttl time.Duration) (bool, error) {
	key := s.keyPrefix + paymentOrderID
	first, err := s.client.SetNX(ctx, key, "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("mark callback seen: %w", err)
	}
	return first, nil
}

// Forget drops the delivery marker, re-arming the slow path. Used when
// promotion fails after the marker was set, so the provider's retry is not
// mistaken for a replay.
func (s *RedisCallbackStore) Forget(ctx context.Context, paymentOrderID string) error {
	return s.client.Del(ctx, s.keyPrefix+paymentOrderID).Err()
}

// Close closes the underlying client
func (s *RedisCallbackStore) Close() error {
	return s.client.Close()
}
