package notification

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/xiebiao/bookshop/internal/application/port"
)

// envelope 跨实例转发的消息
type envelope struct {
	UserID  uint            `json:"userId"` // 0表示广播
	Payload json.RawMessage `json:"payload"`
}

// RedisBridge 多实例部署时的推送
// 推送先发布到Redis频道，每个实例订阅后投递给本地连接
type RedisBridge struct {
	client  *redis.Client
	channel string
	hub     *Hub
	logger  *zap.Logger
}

var _ port.Notifier = (*RedisBridge)(nil)

// NewRedisBridge 创建Redis推送桥
func NewRedisBridge(client *redis.Client, channel string, hub *Hub, logger *zap.Logger) *RedisBridge {
	return &RedisBridge{client: client, channel: channel, hub: hub, logger: logger}
}

// Broadcast 广播到所有实例
func (b *RedisBridge) Broadcast(ctx context.Context, event string, data interface{}) error {
	return b.publish(ctx, 0, event, data)
}

// SendToUser 定向推送到所有实例上该用户的连接
func (b *RedisBridge) SendToUser(ctx context.Context, userID uint, event string, data interface{}) error {
	return b.publish(ctx, userID, event, data)
}

func (b *RedisBridge) publish(ctx context.Context, userID uint, event string, data interface{}) error {
	payload, err := json.Marshal(Message{Event: event, Data: data})
	if err != nil {
		return fmt.Errorf("encode message: %w", err)
	}
	raw, err := json.Marshal(envelope{UserID: userID, Payload: payload})
	if err != nil {
		return fmt.Errorf("encode envelope: %w", err)
	}
	if err := b.client.Publish(ctx, b.channel, raw).Err(); err != nil {
		return fmt.Errorf("publish to %s: %w", b.channel, err)
	}
	return nil
}

// Run 订阅频道并投递给本地Hub，阻塞直到ctx取消
func (b *RedisBridge) Run(ctx context.Context) error {
	sub := b.client.Subscribe(ctx, b.channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe %s: %w", b.channel, err)
	}
	b.logger.Info("notification bridge subscribed", zap.String("channel", b.channel))

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			b.dispatch(msg.Payload)
		}
	}
}

func (b *RedisBridge) dispatch(raw string) {
	var env envelope
	if err := json.Unmarshal([]byte(raw), &env); err != nil {
		b.logger.Warn("drop malformed notification", zap.Error(err))
		return
	}
	b.hub.Deliver(env.UserID, env.Payload)
}
