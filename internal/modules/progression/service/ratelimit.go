package service

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// CheckAndSetRateLimit claims a short-lived per-member action slot in redis.
// Returns false when the member is still inside the limit window. A nil
// client disables rate limiting.
func CheckAndSetRateLimit(ctx context.Context, rdb *redis.Client, memberID, action string, limit time.Duration) (bool, error) {
	if rdb == nil {
		return true, nil
	}

	key := fmt.Sprintf("rate_limit:member:%s:%s", memberID, action)

	wasSet, err := rdb.SetNX(ctx, key, "locked", limit).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check rate limit in redis: %w", err)
	}

	return wasSet, nil
}
