// Package notification WebSocket实时推送
//
// 客户端连接/hubs/notifications后接收JSON消息{"event": "...", "data": {...}}。
// 携带有效Token的连接归入该用户的分组，可接收定向推送；匿名连接只接收广播。
package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/xiebiao/bookshop/internal/application/port"
	"github.com/xiebiao/bookshop/pkg/metrics"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = pongWait * 9 / 10
	maxMessageSize = 512
	sendBufferSize = 16
)

// Message 推送消息格式
type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

type client struct {
	conn   *websocket.Conn
	userID uint // 0表示匿名
	send   chan []byte
}

// Hub 管理本实例的WebSocket连接
// 连接集合由mu保护；每个连接有带缓冲的发送队列，由各自的写goroutine消费
type Hub struct {
	mu       sync.RWMutex
	clients  map[*client]struct{}
	upgrader websocket.Upgrader
	logger   *zap.Logger
}

var _ port.Notifier = (*Hub)(nil)

// NewHub 创建Hub，allowedOrigins为空时允许任意来源
func NewHub(allowedOrigins []string, logger *zap.Logger) *Hub {
	origins := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		origins[o] = true
	}
	return &Hub{
		clients: make(map[*client]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return len(origins) == 0 || origin == "" || origins[origin]
			},
		},
		logger: logger,
	}
}

// Serve 升级连接并阻塞到连接关闭
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, userID uint) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return fmt.Errorf("websocket upgrade: %w", err)
	}

	c := &client{conn: conn, userID: userID, send: make(chan []byte, sendBufferSize)}
	h.register(c)

	go h.writePump(c)
	h.readPump(c)
	return nil
}

// Broadcast 推送给所有连接
func (h *Hub) Broadcast(_ context.Context, event string, data interface{}) error {
	payload, err := json.Marshal(Message{Event: event, Data: data})
	if err != nil {
		return fmt.Errorf("encode message: %w", err)
	}
	h.Deliver(0, payload)
	return nil
}

// SendToUser 推送给某个用户的所有连接
func (h *Hub) SendToUser(_ context.Context, userID uint, event string, data interface{}) error {
	payload, err := json.Marshal(Message{Event: event, Data: data})
	if err != nil {
		return fmt.Errorf("encode message: %w", err)
	}
	h.Deliver(userID, payload)
	return nil
}

// Deliver 投递已编码的消息，userID为0表示广播
// 发送队列已满的连接视为卡死，直接断开
func (h *Hub) Deliver(userID uint, payload []byte) {
	var stuck []*client

	h.mu.RLock()
	for c := range h.clients {
		if userID != 0 && c.userID != userID {
			continue
		}
		select {
		case c.send <- payload:
		default:
			stuck = append(stuck, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range stuck {
		h.logger.Warn("websocket client too slow, disconnecting", zap.Uint("user_id", c.userID))
		h.unregister(c)
	}
}

// ClientCount 当前连接数
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close 断开所有连接（优雅关闭时调用）
func (h *Hub) Close() {
	h.mu.RLock()
	all := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		all = append(all, c)
	}
	h.mu.RUnlock()

	for _, c := range all {
		h.unregister(c)
	}
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	if metrics.WebSocketConnections != nil {
		metrics.IncGauge(metrics.WebSocketConnections)
	}
	h.logger.Debug("websocket client connected", zap.Uint("user_id", c.userID))
}

// unregister 可重复调用，只有第一次生效
func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, c)
	close(c.send)
	h.mu.Unlock()

	if metrics.WebSocketConnections != nil {
		metrics.DecGauge(metrics.WebSocketConnections)
	}
	h.logger.Debug("websocket client disconnected", zap.Uint("user_id", c.userID))
}

// readPump 只处理控制帧（pong、close），客户端不需要上行消息
func (h *Hub) readPump(c *client) {
	defer func() {
		h.unregister(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
