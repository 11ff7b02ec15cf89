package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/poetrydeveloper/app-store-v2/internal/store/entity"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const searchPrefix = "store:catalog:search:"

// RedisCache 基于 redis 的商品搜索缓存，读写失败按未命中处理
type RedisCache struct {
	rdb    *redis.Client
	logger *zap.Logger
}

func NewRedisCache(rdb *redis.Client, logger *zap.Logger) *RedisCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisCache{rdb: rdb, logger: logger}
}

// SearchKey 搜索缓存键，query 需已做大小写折叠
func SearchKey(query string) string {
	return searchPrefix + query
}

// GetHits 读取缓存
func (c *RedisCache) GetHits(ctx context.Context, key string) ([]entity.ProductHit, bool) {
	raw, err := c.rdb.Get(ctx, SearchKey(key)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("search cache get failed", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	var hits []entity.ProductHit
	if err := json.Unmarshal(raw, &hits); err != nil {
		c.logger.Warn("search cache entry corrupt", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return hits, true
}

// SetHits 写入缓存
func (c *RedisCache) SetHits(ctx context.Context, key string, hits []entity.ProductHit, ttl time.Duration) {
	raw, err := json.Marshal(hits)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, SearchKey(key), raw, ttl).Err(); err != nil {
		c.logger.Warn("search cache set failed", zap.String("key", key), zap.Error(err))
	}
}

// Purge 清空全部搜索缓存（商品变更后调用）
func (c *RedisCache) Purge(ctx context.Context) {
	iter := c.rdb.Scan(ctx, 0, searchPrefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		c.logger.Warn("search cache scan failed", zap.Error(err))
		return
	}
	if len(keys) == 0 {
		return
	}
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		c.logger.Warn("search cache purge failed", zap.Error(err))
	}
}
