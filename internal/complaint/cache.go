package complaint

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/redis/go-redis/v9"

	"complaint-portal/internal/common/errors"
	"complaint-portal/internal/models"
)

const statusKeyPrefix = "complaint:status:"

// StatusCache keeps the latest status of each complaint in Redis.
type StatusCache struct {
	rdb redis.Cmdable
	ttl time.Duration
}

func NewStatusCache(rdb redis.Cmdable, ttl time.Duration) *StatusCache {
	return &StatusCache{rdb: rdb, ttl: ttl}
}

func statusKey(id string) string {
	return statusKeyPrefix + id
}

// Get returns the cached status. ok is false on a miss.
func (c *StatusCache) Get(ctx context.Context, id string) (status models.Status, ok bool, err error) {
	val, err := c.rdb.Get(ctx, statusKey(id)).Result()
	if stderrors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.NewCacheUnavailableError(err)
	}
	return models.Status(val), true, nil
}

func (c *StatusCache) Set(ctx context.Context, id string, status models.Status) error {
	if err := c.rdb.Set(ctx, statusKey(id), string(status), c.ttl).Err(); err != nil {
		return errors.NewCacheUnavailableError(err)
	}
	return nil
}

func (c *StatusCache) Delete(ctx context.Context, id string) error {
	if err := c.rdb.Del(ctx, statusKey(id)).Err(); err != nil {
		return errors.NewCacheUnavailableError(err)
	}
	return nil
}
