package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// LockRepository hands out per-account sweep locks so only one replica
// rotates a given account's cycles at a time. SET NX with a TTL means a
// crashed holder releases itself when the TTL runs out.
type LockRepository struct {
	client *redis.Client
}

func NewLockRepository(client *redis.Client) *LockRepository {
	return &LockRepository{
		client: client,
	}
}

func lockKey(accountID uint) string {
	// key format: "sweep:lock:{account_id}"
	return fmt.Sprintf("sweep:lock:%d", accountID)
}

// Acquire returns false without error when another holder owns the lock.
func (r *LockRepository) Acquire(ctx context.Context, accountID uint, ttl time.Duration) (bool, error) {
	ok, err := r.client.SetNX(ctx, lockKey(accountID), time.Now().UTC().Format(time.RFC3339), ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire sweep lock: %w", err)
	}

	return ok, nil
}

func (r *LockRepository) Release(ctx context.Context, accountID uint) error {
	if err := r.client.Del(ctx, lockKey(accountID)).Err(); err != nil {
		return fmt.Errorf("failed to release sweep lock: %w", err)
	}

	return nil
}
