package order

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/xiebiao/bookshop/internal/application/port"
)

// BookCacheInvalidator 图书缓存失效（销量或库存变化）
type BookCacheInvalidator interface {
	Book(ctx context.Context, ids ...uint)
}

// NewEventHandler 订单事件消费者
// order.completed：使涉及图书的详情和推荐位缓存失效（销量已变化）
// 其余事件只记录日志
func NewEventHandler(invalidator BookCacheInvalidator, logger *zap.Logger) port.EventHandler {
	return func(ctx context.Context, topic string, body []byte) error {
		var ev Event
		if err := json.Unmarshal(body, &ev); err != nil {
			// 无法解析的消息重试也不会成功，记录后丢弃
			logger.Error("decode order event failed", zap.String("topic", topic), zap.Error(err))
			return nil
		}

		logger.Info("order event",
			zap.String("topic", topic),
			zap.Uint("order_id", ev.OrderID),
			zap.Uint("user_id", ev.UserID),
			zap.String("status", ev.Status),
		)
		if topic == port.TopicOrderCompleted {
			invalidator.Book(ctx, ev.BookIDs...)
		}
		return nil
	}
}
