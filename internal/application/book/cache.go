package book

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/xiebiao/bookshop/internal/application/port"
)

// 缓存key
// book:detail:{id} 图书详情（含评分汇总），book:featured 首页推荐位
const featuredCacheKey = "book:featured"

// DetailCacheKey 图书详情缓存key
func DetailCacheKey(id uint) string {
	return fmt.Sprintf("book:detail:%d", id)
}

// Invalidator 目录数据变更后删除缓存
// 更新数据库后删除缓存，下次读取时重新加载
type Invalidator struct {
	cache  port.Cache
	logger *zap.Logger
}

// NewInvalidator 创建缓存失效器
func NewInvalidator(cache port.Cache, logger *zap.Logger) *Invalidator {
	return &Invalidator{cache: cache, logger: logger}
}

// Book 删除某本书的详情缓存以及推荐位缓存
// 删除失败只记录日志，缓存会在TTL后自然过期
func (i *Invalidator) Book(ctx context.Context, ids ...uint) {
	keys := []string{featuredCacheKey}
	for _, id := range ids {
		keys = append(keys, DetailCacheKey(id))
	}
	if err := i.cache.Delete(ctx, keys...); err != nil {
		i.logger.Warn("invalidate book cache failed", zap.Strings("keys", keys), zap.Error(err))
	}
}
