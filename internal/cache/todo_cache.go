package cache

import (
	"context"
	"encoding/json"
	"time"

	dom "github.com/maleehakhalid00-a11y/ToDo-App/internal/domain"

	"github.com/redis/go-redis/v9"
)

const keyListPrefix = "todo:list:"

// TodoCache caches per-user todo lists in Redis.
type TodoCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewTodoCache returns a new TodoCache.
func NewTodoCache(rdb *redis.Client, ttl time.Duration) *TodoCache {
	return &TodoCache{rdb: rdb, ttl: ttl}
}

// GetList returns the cached list for userID or nil if miss. A cached empty
// list comes back non-nil, so callers can tell it apart from a miss.
func (c *TodoCache) GetList(ctx context.Context, userID string) ([]dom.Todo, error) {
	b, err := c.rdb.Get(ctx, keyListPrefix+userID).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return decodeList(b)
}

// SetList stores the list for userID in cache.
func (c *TodoCache) SetList(ctx context.Context, userID string, list []dom.Todo) error {
	b, err := encodeList(list)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, keyListPrefix+userID, b, c.ttl).Err()
}

// encodeList normalizes nil to an empty slice: nil marshals to "null", which
// GetList could not distinguish from a miss.
func encodeList(list []dom.Todo) ([]byte, error) {
	if list == nil {
		list = []dom.Todo{}
	}
	return json.Marshal(list)
}

func decodeList(b []byte) ([]dom.Todo, error) {
	var list []dom.Todo
	if err := json.Unmarshal(b, &list); err != nil {
		return nil, err
	}
	if list == nil {
		list = []dom.Todo{}
	}
	return list, nil
}

// Invalidate removes the cached list for userID (cache invalidation on write).
func (c *TodoCache) Invalidate(ctx context.Context, userID string) error {
	return c.rdb.Del(ctx, keyListPrefix+userID).Err()
}
