package apptest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"
	"time"
)

// TxManager 直接执行fn，记录调用次数
type TxManager struct {
	mu    sync.Mutex
	Calls int
}

func (m *TxManager) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	m.mu.Lock()
	m.Calls++
	m.mu.Unlock()
	return fn(ctx)
}

// Push 一次推送记录
type Push struct {
	UserID uint // 0表示广播
	Event  string
	Data   interface{}
}

// Notifier 记录推送，Err非空时推送失败
type Notifier struct {
	mu     sync.Mutex
	Pushes []Push
	Err    error
}

func (n *Notifier) Broadcast(_ context.Context, event string, data interface{}) error {
	return n.record(Push{Event: event, Data: data})
}

func (n *Notifier) SendToUser(_ context.Context, userID uint, event string, data interface{}) error {
	return n.record(Push{UserID: userID, Event: event, Data: data})
}

func (n *Notifier) record(p Push) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.Err != nil {
		return n.Err
	}
	n.Pushes = append(n.Pushes, p)
	return nil
}

// Sent 已推送的记录
func (n *Notifier) Sent() []Push {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]Push(nil), n.Pushes...)
}

// Event 一条领域事件
type Event struct {
	Topic   string
	Payload interface{}
}

// Events 记录发布的领域事件
type Events struct {
	mu        sync.Mutex
	Published []Event
}

func (e *Events) Publish(_ context.Context, topic string, payload interface{}) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.Published = append(e.Published, Event{Topic: topic, Payload: payload})
	return nil
}

// Topics 按顺序返回事件名
func (e *Events) Topics() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]string, len(e.Published))
	for i, ev := range e.Published {
		out[i] = ev.Topic
	}
	return out
}

// Cache 内存JSON缓存
type Cache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func NewCache() *Cache {
	return &Cache{data: map[string][]byte{}}
}

func (c *Cache) Get(_ context.Context, key string, dest interface{}) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	raw, ok := c.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dest)
}

func (c *Cache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = raw
	return nil
}

func (c *Cache) Delete(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.data, k)
	}
	return nil
}

// Has 是否存在key
func (c *Cache) Has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.data[key]
	return ok
}

// Sessions 内存会话存储
type Sessions struct {
	mu        sync.Mutex
	Sessions  map[uint]map[string]interface{}
	Blacklist map[string]time.Duration
}

func NewSessions() *Sessions {
	return &Sessions{Sessions: map[uint]map[string]interface{}{}, Blacklist: map[string]time.Duration{}}
}

func (s *Sessions) SaveSession(_ context.Context, userID uint, data map[string]interface{}, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Sessions[userID] = data
	return nil
}

func (s *Sessions) DeleteSession(_ context.Context, userID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.Sessions, userID)
	return nil
}

func (s *Sessions) AddToBlacklist(_ context.Context, token string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Blacklist[token] = ttl
	return nil
}

func (s *Sessions) IsInBlacklist(_ context.Context, token string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.Blacklist[token]
	return ok, nil
}

// Locker 进程内锁
type Locker struct {
	mu   sync.Mutex
	held map[string]bool
}

func NewLocker() *Locker {
	return &Locker{held: map[string]bool{}}
}

func (l *Locker) TryLock(_ context.Context, key string, _ time.Duration) (func(context.Context) error, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[key] {
		return nil, false, nil
	}
	l.held[key] = true
	return func(context.Context) error {
		l.mu.Lock()
		defer l.mu.Unlock()
		delete(l.held, key)
		return nil
	}, true, nil
}

// Storage 内存文件存储
type Storage struct {
	mu    sync.Mutex
	Files map[string][]byte
	Err   error
}

func NewStorage() *Storage {
	return &Storage{Files: map[string][]byte{}}
}

func (s *Storage) Save(_ context.Context, filename string, r io.Reader) (string, error) {
	if s.Err != nil {
		return "", s.Err
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return "", err
	}
	url := "/UploadedFiles/" + filename
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Files[url] = buf.Bytes()
	return url, nil
}

func (s *Storage) Delete(_ context.Context, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.Files, url)
	return nil
}

// ErrBoom 测试用的通用故障
var ErrBoom = errors.New("boom")

// FixedClock 固定时间
func FixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
