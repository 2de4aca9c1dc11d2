package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	syncdomain "github.com/stocksync/engine/internal/domain/sync"
	"github.com/stocksync/engine/internal/infrastructure/config"
)

// RedisRunLease implements RunLease using Redis SETNX. It serializes
// runs of the same sync type across instances; the TTL bounds how long a
// crashed run can block its successors.
type RedisRunLease struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisRunLease creates a lease store and verifies the connection
func NewRedisRunLease(cfg *config.RedisConfig) (*RedisRunLease, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisRunLease{
		client:    client,
		keyPrefix: "sync:lease:",
	}, nil
}

// NewRedisRunLeaseWithClient creates a lease store over an existing client.
// This is useful for testing or when sharing a client across components.
func NewRedisRunLeaseWithClient(client *redis.Client, keyPrefix string) *RedisRunLease {
	if keyPrefix == "" {
		keyPrefix = "sync:lease:"
	}
	return &RedisRunLease{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

// Acquire takes the lease for a sync type. Returns false when another
// run already holds it. SETNX with TTL is a single atomic operation.
func (l *RedisRunLease) Acquire(ctx context.Context, syncType syncdomain.Type, ttl time.Duration) (bool, error) {
	acquired, err := l.client.SetNX(ctx, l.key(syncType), "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire %s lease: %w", syncType, err)
	}
	return acquired, nil
}

// Release frees the lease for a sync type
func (l *RedisRunLease) Release(ctx context.Context, syncType syncdomain.Type) error {
	if err := l.client.Del(ctx, l.key(syncType)).Err(); err != nil {
		return fmt.Errorf("failed to release %s lease: %w", syncType, err)
	}
	return nil
}

// Close closes the Redis client
func (l *RedisRunLease) Close() error {
	return l.client.Close()
}

func (l *RedisRunLease) key(syncType syncdomain.Type) string {
	return l.keyPrefix + string(syncType)
}

// Ensure RedisRunLease implements RunLease
var _ syncdomain.RunLease = (*RedisRunLease)(nil)
