// Package eventbus 订单领域事件总线
//
// 未启用RabbitMQ时使用进程内LocalBus同步分发；启用后由RabbitBus投递到交换机，
// 投递失败或熔断时降级为本地分发，保证事件至少在本实例被处理一次。
package eventbus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/xiebiao/bookshop/internal/application/port"
)

// LocalBus 进程内事件总线
type LocalBus struct {
	mu       sync.RWMutex
	handlers []port.EventHandler
	logger   *zap.Logger
}

var _ port.EventPublisher = (*LocalBus)(nil)

// NewLocalBus 创建进程内事件总线
func NewLocalBus(logger *zap.Logger, handlers ...port.EventHandler) *LocalBus {
	return &LocalBus{handlers: handlers, logger: logger}
}

// Subscribe 注册处理函数
func (b *LocalBus) Subscribe(handler port.EventHandler) {
	b.mu.Lock()
	b.handlers = append(b.handlers, handler)
	b.mu.Unlock()
}

// Publish 序列化后同步调用所有处理函数
func (b *LocalBus) Publish(ctx context.Context, topic string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s: %w", topic, err)
	}

	b.mu.RLock()
	handlers := make([]port.EventHandler, len(b.handlers))
	copy(handlers, b.handlers)
	b.mu.RUnlock()

	return Dispatch(handlers...)(ctx, topic, body)
}

// Dispatch 把多个处理函数合并为一个，全部执行后合并错误
func Dispatch(handlers ...port.EventHandler) port.EventHandler {
	return func(ctx context.Context, topic string, body []byte) error {
		var errs []error
		for _, h := range handlers {
			if err := h(ctx, topic, body); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	}
}
