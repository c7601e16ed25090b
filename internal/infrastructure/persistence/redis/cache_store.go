package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/xiebiao/bookshop/internal/application/port"
	"github.com/xiebiao/bookshop/pkg/metrics"
)

// CacheStore JSON缓存（Cache-Aside）
// 值以JSON存储；更新数据库后删除缓存，下次读取时重新加载
type CacheStore struct {
	client *redis.Client
	name   string // 指标标签
}

var _ port.Cache = (*CacheStore)(nil)

// NewCacheStore 创建缓存存储
func NewCacheStore(client *redis.Client) *CacheStore {
	return &CacheStore{client: client, name: "book"}
}

// Get 命中时反序列化到dest
func (c *CacheStore) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	val, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		c.observe("miss")
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("获取缓存失败: %w", err)
	}

	if err := json.Unmarshal(val, dest); err != nil {
		// 结构变更后的旧数据当作未命中，并删除
		_ = c.client.Unlink(ctx, key).Err()
		c.observe("miss")
		return false, fmt.Errorf("反序列化失败: %w", err)
	}
	c.observe("hit")
	return true, nil
}

// Set 写入缓存
func (c *CacheStore) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	val, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("序列化失败: %w", err)
	}
	if err := c.client.Set(ctx, key, val, ttl).Err(); err != nil {
		return fmt.Errorf("设置缓存失败: %w", err)
	}
	return nil
}

// Delete 删除缓存（UNLINK异步释放内存）
func (c *CacheStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := c.client.Unlink(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("删除缓存失败: %w", err)
	}
	return nil
}

// DeletePattern 按模式删除（SCAN遍历，避免KEYS阻塞）
func (c *CacheStore) DeletePattern(ctx context.Context, pattern string) (int, error) {
	iter := c.client.Scan(ctx, 0, pattern, 100).Iterator()

	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return 0, fmt.Errorf("扫描缓存key失败: %w", err)
	}
	if err := c.Delete(ctx, keys...); err != nil {
		return 0, err
	}
	return len(keys), nil
}

func (c *CacheStore) observe(result string) {
	if metrics.CacheRequestsTotal == nil {
		return
	}
	metrics.IncCounterVec(metrics.CacheRequestsTotal, map[string]string{"cache": c.name, "result": result})
}
