// Package shared 各领域共用的抽象
package shared

import (
	"context"
	"time"
)

// TxManager 事务边界
// fn内通过ctx调用的Repository方法在同一事务中执行，fn返回error时回滚
type TxManager interface {
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// Clock 当前时间（测试中替换为固定时间）
type Clock func() time.Time

// SystemClock 系统时间
func SystemClock() time.Time {
	return time.Now()
}
