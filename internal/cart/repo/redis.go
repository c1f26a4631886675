package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/honey-shop/cart/internal/cart/model"
	errx "github.com/honey-shop/cart/internal/core/error"
	logx "github.com/honey-shop/cart/pkg/logger"
	"github.com/redis/go-redis/v9"
)

// RedisStorage stores one browsing session's cart keys in Redis.
type RedisStorage struct {
	rdb       redis.Cmdable
	sessionID string
	ttl       time.Duration
}

func NewRedisStorage(rdb redis.Cmdable, sessionID string, ttl time.Duration) *RedisStorage {
	return &RedisStorage{rdb: rdb, sessionID: sessionID, ttl: ttl}
}

func (r *RedisStorage) storageKey(key string) string {
	return fmt.Sprintf("cart:%s:%s", r.sessionID, key)
}

func (r *RedisStorage) Load(ctx context.Context, key string) ([]byte, error) {
	k := r.storageKey(key)
	b, err := r.rdb.Get(ctx, k).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrNotFound
		}
		logx.Error().Err(err).Str("key", k).Msg("failed to load cart key from redis")
		return nil, errx.WrapRedis(err)
	}
	return b, nil
}

// Save rewrites the whole value and refreshes the session TTL.
func (r *RedisStorage) Save(ctx context.Context, key string, value []byte) error {
	k := r.storageKey(key)
	if err := r.rdb.Set(ctx, k, value, r.ttl).Err(); err != nil {
		logx.Error().Err(err).Str("key", k).Msg("failed to write cart key to redis")
		return errx.WrapRedis(err)
	}
	return nil
}

func (r *RedisStorage) Delete(ctx context.Context, key string) error {
	k := r.storageKey(key)
	if err := r.rdb.Del(ctx, k).Err(); err != nil {
		logx.Error().Err(err).Str("key", k).Msg("failed to delete cart key from redis")
		return errx.WrapRedis(err)
	}
	return nil
}

var _ model.Storage = (*RedisStorage)(nil)
