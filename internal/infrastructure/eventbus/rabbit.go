package eventbus

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/xiebiao/bookshop/internal/application/port"
	"github.com/xiebiao/bookshop/pkg/circuitbreaker"
	"github.com/xiebiao/bookshop/pkg/mq"
)

// messagePublisher mq.Publisher的发布能力
type messagePublisher interface {
	Publish(ctx context.Context, routingKey string, message interface{}) error
}

// RabbitBus 通过RabbitMQ投递事件
type RabbitBus struct {
	publisher messagePublisher
	breaker   *circuitbreaker.CircuitBreaker
	fallback  *LocalBus
	logger    *zap.Logger
}

var _ port.EventPublisher = (*RabbitBus)(nil)

// NewRabbitBus 创建RabbitMQ事件总线，fallback在投递失败时接管
func NewRabbitBus(publisher messagePublisher, fallback *LocalBus, logger *zap.Logger) *RabbitBus {
	cb := circuitbreaker.NewCircuitBreaker("mq-publisher", circuitbreaker.DefaultConfig())
	cb.SetStateChangeCallback(func(name string, from, to circuitbreaker.State) {
		logger.Warn("circuit breaker state changed",
			zap.String("name", name),
			zap.String("from", from.String()),
			zap.String("to", to.String()),
		)
	})

	return &RabbitBus{
		publisher: publisher,
		breaker:   cb,
		fallback:  fallback,
		logger:    logger,
	}
}

// Publish 投递到交换机，失败时降级为本地分发
func (b *RabbitBus) Publish(ctx context.Context, topic string, payload interface{}) error {
	err := b.breaker.Execute(func() error {
		return b.publisher.Publish(ctx, topic, payload)
	})
	if err == nil {
		return nil
	}

	if errors.Is(err, circuitbreaker.ErrOpenState) {
		b.logger.Debug("mq circuit open, dispatch locally", zap.String("topic", topic))
	} else {
		b.logger.Warn("mq publish failed, dispatch locally", zap.String("topic", topic), zap.Error(err))
	}
	return b.fallback.Publish(ctx, topic, payload)
}

// Consume 从队列消费并分发给处理函数，阻塞直到ctx取消
func Consume(ctx context.Context, consumer *mq.Consumer, handlers ...port.EventHandler) error {
	return consumer.Consume(ctx, mq.Handler(Dispatch(handlers...)))
}
