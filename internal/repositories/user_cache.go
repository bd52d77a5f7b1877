package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"

	"usersvc/internal/models"

	"github.com/redis/go-redis/v9"
)

// UserCache defines the interface for the denormalized user cache.
type UserCache interface {
	Put(ctx context.Context, id uint64, record models.UserRecord) error
	// Get returns nil without an error when nothing is cached under id.
	Get(ctx context.Context, id uint64) (*models.UserRecord, error)
	Ping(ctx context.Context) error
}

// RedisUserCache stores user records as JSON strings keyed by the stringified user ID.
// Entries never expire.
type RedisUserCache struct {
	client redis.UniversalClient
}

// NewRedisUserCache creates a new instance of RedisUserCache.
func NewRedisUserCache(client redis.UniversalClient) *RedisUserCache {
	return &RedisUserCache{
		client: client,
	}
}

// CacheKey is the key a user's record is cached under.
func CacheKey(id uint64) string {
	return strconv.FormatUint(id, 10)
}

// Put serializes record and stores it under the user's ID.
func (c *RedisUserCache) Put(ctx context.Context, id uint64, record models.UserRecord) error {
	key := CacheKey(id)
	payload, err := json.Marshal(record)
	if err != nil {
		return &CacheError{Op: "encode", Key: key, Err: err}
	}
	if err := c.client.Set(ctx, key, payload, 0).Err(); err != nil {
		return &CacheError{Op: "set", Key: key, Err: err}
	}
	return nil
}

// Get loads and decodes the record cached under the user's ID.
func (c *RedisUserCache) Get(ctx context.Context, id uint64) (*models.UserRecord, error) {
	key := CacheKey(id)
	payload, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, &CacheError{Op: "get", Key: key, Err: err}
	}

	var record models.UserRecord
	if err := json.Unmarshal(payload, &record); err != nil {
		return nil, &CacheError{Op: "decode", Key: key, Err: err}
	}
	return &record, nil
}

// Ping checks that the cache is reachable.
func (c *RedisUserCache) Ping(ctx context.Context) error {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return &CacheError{Op: "ping", Err: err}
	}
	return nil
}
