package eventbus

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/xiebiao/bookshop/internal/application/port"
	"github.com/xiebiao/bookshop/pkg/circuitbreaker"
)

type recorder struct {
	mu     sync.Mutex
	topics []string
	bodies []string
}

func (r *recorder) handle(_ context.Context, topic string, body []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.topics = append(r.topics, topic)
	r.bodies = append(r.bodies, string(body))
	return nil
}

type stubPublisher struct {
	err   error
	calls int
}

func (p *stubPublisher) Publish(context.Context, string, interface{}) error {
	p.calls++
	return p.err
}

func TestLocalBus_Publish(t *testing.T) {
	rec := &recorder{}
	bus := NewLocalBus(zap.NewNop(), rec.handle)

	require.NoError(t, bus.Publish(context.Background(), port.TopicOrderCompleted, map[string]uint{"orderId": 3}))

	require.Len(t, rec.topics, 1)
	assert.Equal(t, port.TopicOrderCompleted, rec.topics[0])
	assert.Equal(t, int64(3), gjson.Get(rec.bodies[0], "orderId").Int())
}

func TestDispatch_RunsAllHandlers(t *testing.T) {
	rec := &recorder{}
	boom := errors.New("boom")
	failing := func(context.Context, string, []byte) error { return boom }

	bus := NewLocalBus(zap.NewNop())
	bus.Subscribe(failing)
	bus.Subscribe(rec.handle)

	err := bus.Publish(context.Background(), port.TopicOrderCancelled, struct{}{})
	assert.ErrorIs(t, err, boom)
	assert.Len(t, rec.topics, 1)
}

func TestRabbitBus_Delivered(t *testing.T) {
	rec := &recorder{}
	pub := &stubPublisher{}
	bus := NewRabbitBus(pub, NewLocalBus(zap.NewNop(), rec.handle), zap.NewNop())

	require.NoError(t, bus.Publish(context.Background(), port.TopicOrderCheckedOut, struct{}{}))
	assert.Equal(t, 1, pub.calls)
	assert.Empty(t, rec.topics)
}

func TestRabbitBus_FallsBackAndTrips(t *testing.T) {
	rec := &recorder{}
	pub := &stubPublisher{err: errors.New("connection reset")}
	bus := NewRabbitBus(pub, NewLocalBus(zap.NewNop(), rec.handle), zap.NewNop())

	for i := 0; i < 7; i++ {
		require.NoError(t, bus.Publish(context.Background(), port.TopicOrderConfirmed, struct{}{}))
	}

	// 连续失败5次后熔断，后续不再尝试投递
	assert.Equal(t, 5, pub.calls)
	assert.Equal(t, circuitbreaker.StateOpen, bus.breaker.State())
	assert.Len(t, rec.topics, 7)
}
