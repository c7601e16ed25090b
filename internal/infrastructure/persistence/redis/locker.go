package redis

import (
	"context"
	_ "embed"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/xiebiao/bookshop/internal/application/port"
)

//go:embed release_lock.lua
var releaseLockLua string

var releaseLockScript = redis.NewScript(releaseLockLua)

// Locker 基于SET NX PX的互斥锁
// 每次加锁写入随机token，释放时用Lua脚本比较token后删除，避免误删他人的锁
type Locker struct {
	client *redis.Client
}

var _ port.Locker = (*Locker)(nil)

// NewLocker 创建分布式锁
func NewLocker(client *redis.Client) *Locker {
	return &Locker{client: client}
}

// TryLock 尝试加锁，不等待
func (l *Locker) TryLock(ctx context.Context, key string, ttl time.Duration) (func(context.Context) error, bool, error) {
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("加锁失败: %w", err)
	}
	if !ok {
		return nil, false, nil
	}

	unlock := func(ctx context.Context) error {
		// EvalSha失败（脚本未加载）时go-redis自动回退到Eval
		if err := releaseLockScript.Run(ctx, l.client, []string{key}, token).Err(); err != nil {
			return fmt.Errorf("释放锁失败: %w", err)
		}
		return nil
	}
	return unlock, true, nil
}
