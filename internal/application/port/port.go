// Package port 应用层依赖的外部能力（由infrastructure实现）
package port

import (
	"context"
	"io"
	"time"
)

// 推送事件名（客户端按名称订阅）
const (
	EventReceiveAnnouncement    = "ReceiveAnnouncement"
	EventReceiveOrderCompletion = "ReceiveOrderCompletion"
)

// 订单领域事件（RabbitMQ RoutingKey）
const (
	TopicOrderCheckedOut = "order.checked_out"
	TopicOrderConfirmed  = "order.confirmed"
	TopicOrderCancelled  = "order.cancelled"
	TopicOrderCompleted  = "order.completed"
)

// Notifier 实时推送
type Notifier interface {
	// Broadcast 推送给所有在线客户端
	Broadcast(ctx context.Context, event string, data interface{}) error

	// SendToUser 推送给某个用户的所有连接
	SendToUser(ctx context.Context, userID uint, event string, data interface{}) error
}

// EventPublisher 领域事件发布
type EventPublisher interface {
	Publish(ctx context.Context, topic string, payload interface{}) error
}

// EventHandler 领域事件处理函数，body为JSON
type EventHandler func(ctx context.Context, topic string, body []byte) error

// Cache JSON缓存（Cache-Aside）
type Cache interface {
	// Get 命中时反序列化到dest并返回true
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// SessionStore 登录会话与Token黑名单
type SessionStore interface {
	SaveSession(ctx context.Context, userID uint, data map[string]interface{}, ttl time.Duration) error
	DeleteSession(ctx context.Context, userID uint) error
	AddToBlacklist(ctx context.Context, token string, ttl time.Duration) error
	IsInBlacklist(ctx context.Context, token string) (bool, error)
}

// Locker 分布式互斥锁
type Locker interface {
	// TryLock 获取锁，已被占用时返回ok=false；unlock只释放自己持有的锁
	TryLock(ctx context.Context, key string, ttl time.Duration) (unlock func(context.Context) error, ok bool, err error)
}

// FileStorage 图片存储
type FileStorage interface {
	// Save 保存文件，返回对外访问的相对URL（如/UploadedFiles/xxx.jpg）
	Save(ctx context.Context, filename string, r io.Reader) (string, error)

	// Delete 按Save返回的URL删除，文件不存在时不报错
	Delete(ctx context.Context, url string) error
}

// Upload 上传的文件
type Upload struct {
	Filename string
	Size     int64
	Reader   io.Reader
}
