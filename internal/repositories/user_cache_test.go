package repositories_test

import (
	"context"
	"errors"
	"testing"

	"usersvc/internal/models"
	"usersvc/internal/repositories"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*repositories.RedisUserCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return repositories.NewRedisUserCache(client), mr
}

func TestRedisUserCache_PutStoresJSONUnderStringID(t *testing.T) {
	cache, mr := newTestCache(t)

	err := cache.Put(context.Background(), 42, models.UserRecord{Email: "john@doe.com", Firstname: "John"})
	require.NoError(t, err)

	raw, err := mr.Get("42")
	require.NoError(t, err)
	assert.JSONEq(t, `{"email":"john@doe.com","firstname":"John"}`, raw)
	assert.Zero(t, mr.TTL("42"))
}

func TestRedisUserCache_Get(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()

	record, err := cache.Get(ctx, 7)
	require.NoError(t, err)
	assert.Nil(t, record, "missing key is reported as absent")

	require.NoError(t, cache.Put(ctx, 7, models.UserRecord{Email: "a@b.com", Firstname: "A"}))
	record, err = cache.Get(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, &models.UserRecord{Email: "a@b.com", Firstname: "A"}, record)

	require.NoError(t, mr.Set("8", "not json"))
	_, err = cache.Get(ctx, 8)
	var cacheErr *repositories.CacheError
	require.True(t, errors.As(err, &cacheErr))
	assert.Equal(t, "decode", cacheErr.Op)
}

func TestRedisUserCache_ConnectionLoss(t *testing.T) {
	cache, mr := newTestCache(t)
	mr.Close()

	err := cache.Put(context.Background(), 1, models.UserRecord{Email: "a@b.com", Firstname: "A"})
	var cacheErr *repositories.CacheError
	require.True(t, errors.As(err, &cacheErr))
	assert.Equal(t, "set", cacheErr.Op)
	assert.Equal(t, "1", cacheErr.Key)

	assert.Error(t, cache.Ping(context.Background()))
}
