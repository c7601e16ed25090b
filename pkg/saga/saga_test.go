package saga

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/bookshop/pkg/metrics"
)

func init() {
	metrics.InitMetrics()
}

func TestSaga_AllStepsSucceed(t *testing.T) {
	var order []string
	step := func(name string) func(context.Context) error {
		return func(context.Context) error {
			order = append(order, name)
			return nil
		}
	}

	s := NewSaga("ok", time.Second, nil)
	s.AddStep("mark", step("mark"), step("unmark")).
		AddStep("push", step("push"), nil)

	require.NoError(t, s.Execute(context.Background()))
	assert.Equal(t, []string{"mark", "push"}, order)
}

func TestSaga_FailureCompensatesInReverse(t *testing.T) {
	var order []string
	record := func(name string, err error) func(context.Context) error {
		return func(context.Context) error {
			order = append(order, name)
			return err
		}
	}
	pushErr := errors.New("hub closed")

	s := NewSaga("publish", time.Second, nil)
	s.AddStep("reserve", record("reserve", nil), record("release", nil))
	s.AddStep("mark", record("mark", nil), record("unmark", nil))
	s.AddStep("push", record("push", pushErr), record("never", nil))

	err := s.Execute(context.Background())

	assert.ErrorIs(t, err, pushErr)
	assert.Equal(t, []string{"reserve", "mark", "push", "unmark", "release"}, order)
}

func TestSaga_CompensationErrorDoesNotStopOthers(t *testing.T) {
	released := false

	s := NewSaga("partial", 0, nil)
	s.AddStep("a", func(context.Context) error { return nil }, func(context.Context) error {
		released = true
		return nil
	})
	s.AddStep("b", func(context.Context) error { return nil }, func(context.Context) error {
		return errors.New("cannot undo b")
	})
	s.AddStep("c", func(context.Context) error { return errors.New("boom") }, nil)

	require.Error(t, s.Execute(context.Background()))
	assert.True(t, released)
}

func TestSaga_TimeoutCompensatesWithLiveContext(t *testing.T) {
	var compensateCtxErr error

	s := NewSaga("slow", 20*time.Millisecond, nil)
	s.AddStep("slow", func(ctx context.Context) error {
		<-ctx.Done()
		return nil
	}, func(ctx context.Context) error {
		compensateCtxErr = ctx.Err()
		return nil
	})
	s.AddStep("after", func(context.Context) error {
		t.Fatal("超时后不应继续执行")
		return nil
	}, nil)

	err := s.Execute(context.Background())

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.NoError(t, compensateCtxErr)
}
