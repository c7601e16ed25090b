package circuitbreaker

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/bookshop/pkg/metrics"
)

var errBroker = errors.New("broker unreachable")

func fastBreaker() *CircuitBreaker {
	return NewCircuitBreaker("order-events", Config{
		MaxRequests: 1,
		Interval:    10 * time.Second,
		Timeout:     50 * time.Millisecond,
		ReadyToTrip: func(counts Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
	})
}

func fail() error    { return errBroker }
func succeed() error { return nil }

func TestCircuitBreaker_StaysClosedOnSuccess(t *testing.T) {
	cb := fastBreaker()

	for i := 0; i < 10; i++ {
		require.NoError(t, cb.Execute(succeed))
	}

	assert.Equal(t, StateClosed, cb.State())
	assert.Equal(t, uint32(10), cb.Counts().TotalSuccesses)
}

func TestCircuitBreaker_OpensAfterConsecutiveFailures(t *testing.T) {
	cb := fastBreaker()

	for i := 0; i < 3; i++ {
		assert.ErrorIs(t, cb.Execute(fail), errBroker)
	}
	assert.Equal(t, StateOpen, cb.State())

	called := false
	err := cb.Execute(func() error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, ErrOpenState)
	assert.False(t, called, "熔断时不应调用下游")
}

func TestCircuitBreaker_HalfOpenRecovers(t *testing.T) {
	cb := fastBreaker()
	for i := 0; i < 3; i++ {
		_ = cb.Execute(fail)
	}

	time.Sleep(80 * time.Millisecond)
	assert.Equal(t, StateHalfOpen, cb.State())

	require.NoError(t, cb.Execute(succeed))
	assert.Equal(t, StateClosed, cb.State())
}

func TestCircuitBreaker_HalfOpenFailureReopens(t *testing.T) {
	cb := fastBreaker()
	for i := 0; i < 3; i++ {
		_ = cb.Execute(fail)
	}

	time.Sleep(80 * time.Millisecond)
	assert.ErrorIs(t, cb.Execute(fail), errBroker)
	assert.Equal(t, StateOpen, cb.State())
}

func TestCircuitBreaker_StateChangeCallbackAndGauge(t *testing.T) {
	metrics.InitMetrics()

	cb := fastBreaker()
	var transitions []string
	cb.SetStateChangeCallback(func(name string, from, to State) {
		transitions = append(transitions, from.String()+"->"+to.String())
	})

	for i := 0; i < 3; i++ {
		_ = cb.Execute(fail)
	}
	time.Sleep(80 * time.Millisecond)
	require.NoError(t, cb.Execute(succeed))

	assert.Equal(t, []string{"CLOSED->OPEN", "OPEN->HALF_OPEN", "HALF_OPEN->CLOSED"}, transitions)
}

func TestNewCircuitBreaker_FillsDefaults(t *testing.T) {
	cb := NewCircuitBreaker("defaults", Config{})

	for i := 0; i < 4; i++ {
		_ = cb.Execute(fail)
	}
	assert.Equal(t, StateClosed, cb.State())

	_ = cb.Execute(fail)
	assert.Equal(t, StateOpen, cb.State())
}

func TestCounts_FailureRate(t *testing.T) {
	c := Counts{Requests: 4, TotalFailures: 1}
	assert.InDelta(t, 0.25, c.FailureRate(), 1e-9)

	empty := Counts{}
	assert.Zero(t, empty.FailureRate())
}
