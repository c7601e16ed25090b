// Package mq RabbitMQ发布/消费封装
//
// 订单事件以JSON发布到topic交换机，RoutingKey即事件名（如order.completed），
// 消费端按RoutingKey分发。消息持久化、手动确认，Prefetch=1。
package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/xiebiao/bookshop/pkg/metrics"
)

// Publisher 消息发布者
type Publisher struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
	logger   *zap.Logger
}

// NewPublisher 连接RabbitMQ并声明持久化交换机
func NewPublisher(url, exchange, exchangeType string, logger *zap.Logger) (*Publisher, error) {
	conn, channel, err := dial(url, exchange, exchangeType)
	if err != nil {
		return nil, err
	}

	logger.Info("mq publisher ready", zap.String("exchange", exchange), zap.String("type", exchangeType))

	return &Publisher{
		conn:     conn,
		channel:  channel,
		exchange: exchange,
		logger:   logger,
	}, nil
}

// Publish 发布JSON消息
func (p *Publisher) Publish(ctx context.Context, routingKey string, message interface{}) error {
	body, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("消息序列化失败: %w", err)
	}

	err = p.channel.PublishWithContext(ctx,
		p.exchange,
		routingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
		},
	)
	if err != nil {
		return fmt.Errorf("发布消息失败: %w", err)
	}

	if metrics.MessagesPublishedTotal != nil {
		metrics.IncCounterVec(metrics.MessagesPublishedTotal, map[string]string{
			"exchange":    p.exchange,
			"routing_key": routingKey,
		})
	}
	p.logger.Debug("mq message published", zap.String("routing_key", routingKey))
	return nil
}

// Close 关闭Channel和连接
func (p *Publisher) Close() error {
	return closeAll(p.channel, p.conn)
}

// Handler 消息处理函数，返回错误时消息会被Nack
type Handler func(ctx context.Context, routingKey string, body []byte) error

// Consumer 消息消费者
type Consumer struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   string
	logger  *zap.Logger
}

// NewConsumer 声明交换机和持久化队列，按routingKeys绑定（支持通配符order.*）
func NewConsumer(url, exchange, exchangeType, queue string, routingKeys []string, logger *zap.Logger) (*Consumer, error) {
	conn, channel, err := dial(url, exchange, exchangeType)
	if err != nil {
		return nil, err
	}

	q, err := channel.QueueDeclare(queue, true, false, false, false, nil)
	if err != nil {
		_ = closeAll(channel, conn)
		return nil, fmt.Errorf("声明Queue失败: %w", err)
	}

	for _, key := range routingKeys {
		if err := channel.QueueBind(q.Name, key, exchange, false, nil); err != nil {
			_ = closeAll(channel, conn)
			return nil, fmt.Errorf("绑定Queue失败: %w", err)
		}
	}

	logger.Info("mq consumer ready", zap.String("queue", q.Name), zap.Strings("routing_keys", routingKeys))

	return &Consumer{
		conn:    conn,
		channel: channel,
		queue:   q.Name,
		logger:  logger,
	}, nil
}

// Consume 阻塞消费直到ctx取消或连接断开
func (c *Consumer) Consume(ctx context.Context, handler Handler) error {
	if err := c.channel.Qos(1, 0, false); err != nil {
		return fmt.Errorf("设置Qos失败: %w", err)
	}

	msgs, err := c.channel.Consume(c.queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("开始消费失败: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("mq consumer stopped", zap.String("queue", c.queue))
			return nil

		case msg, ok := <-msgs:
			if !ok {
				return fmt.Errorf("消息Channel已关闭")
			}
			c.handle(ctx, msg, handler)
		}
	}
}

func (c *Consumer) handle(ctx context.Context, msg amqp.Delivery, handler Handler) {
	start := time.Now()
	err := handler(ctx, msg.RoutingKey, msg.Body)

	if metrics.MessageProcessingDuration != nil {
		metrics.ObserveHistogram(metrics.MessageProcessingDuration, time.Since(start).Seconds())
	}

	switch ackDecision(err, msg.Redelivered) {
	case ack:
		_ = msg.Ack(false)
		c.observe("success")
	case requeue:
		c.logger.Warn("mq message failed, requeue", zap.String("routing_key", msg.RoutingKey), zap.Error(err))
		_ = msg.Nack(false, true)
		c.observe("failure")
	case discard:
		c.logger.Error("mq message failed twice, dropped", zap.String("routing_key", msg.RoutingKey), zap.Error(err))
		_ = msg.Nack(false, false)
		c.observe("failure")
	}
}

func (c *Consumer) observe(result string) {
	if metrics.MessagesConsumedTotal == nil {
		return
	}
	metrics.IncCounterVec(metrics.MessagesConsumedTotal, map[string]string{"queue": c.queue, "result": result})
}

// Close 关闭Channel和连接
func (c *Consumer) Close() error {
	return closeAll(c.channel, c.conn)
}

type decision int

const (
	ack decision = iota
	requeue
	discard
)

// ackDecision 首次失败重新入队，重投后仍失败则丢弃（避免毒消息无限循环）
func ackDecision(err error, redelivered bool) decision {
	switch {
	case err == nil:
		return ack
	case !redelivered:
		return requeue
	default:
		return discard
	}
}

func dial(url, exchange, exchangeType string) (*amqp.Connection, *amqp.Channel, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, nil, fmt.Errorf("连接RabbitMQ失败: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, nil, fmt.Errorf("创建Channel失败: %w", err)
	}

	if err := channel.ExchangeDeclare(exchange, exchangeType, true, false, false, false, nil); err != nil {
		_ = closeAll(channel, conn)
		return nil, nil, fmt.Errorf("声明Exchange失败: %w", err)
	}
	return conn, channel, nil
}

func closeAll(channel *amqp.Channel, conn *amqp.Connection) error {
	if channel != nil {
		_ = channel.Close()
	}
	if conn != nil {
		return conn.Close()
	}
	return nil
}
