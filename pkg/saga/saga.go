// Package saga 编排多步操作，失败时按逆序执行已完成步骤的补偿
//
// 用于跨存储的操作（如公告发布：先落库标记已发布，再推送；推送失败时撤销标记），
// 单库内的操作应直接使用数据库事务。
//
//	s := saga.NewSaga("publish-announcement", 5*time.Second, logger)
//	s.AddStep("mark-published", markFn, unmarkFn)
//	s.AddStep("push", pushFn, nil)
//	err := s.Execute(ctx)
package saga

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/xiebiao/bookshop/pkg/metrics"
)

// Step Saga中的一步
type Step struct {
	Name       string
	Action     func(ctx context.Context) error
	Compensate func(ctx context.Context) error // 可为空（最后一步或无副作用的步骤）
}

// Saga 一次性编排器，不可复用、不可并发执行
type Saga struct {
	name     string
	steps    []Step
	executed []Step
	timeout  time.Duration
	logger   *zap.Logger
}

// NewSaga 创建Saga，timeout<=0表示不设整体超时
func NewSaga(name string, timeout time.Duration, logger *zap.Logger) *Saga {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Saga{
		name:    name,
		timeout: timeout,
		logger:  logger,
	}
}

// AddStep 追加步骤
func (s *Saga) AddStep(name string, action, compensate func(ctx context.Context) error) *Saga {
	s.steps = append(s.steps, Step{
		Name:       name,
		Action:     action,
		Compensate: compensate,
	})
	return s
}

// Execute 依次执行所有步骤
// 任一步骤失败或超时，已执行步骤按逆序补偿，返回的错误包装了失败原因
func (s *Saga) Execute(ctx context.Context) error {
	start := time.Now()

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	err := s.run(ctx)
	s.observe(start, err)
	return err
}

func (s *Saga) run(ctx context.Context) error {
	for i, step := range s.steps {
		if err := ctx.Err(); err != nil {
			s.compensate(ctx)
			return fmt.Errorf("saga[%s]超时: %w", s.name, err)
		}

		if step.Action != nil {
			if err := step.Action(ctx); err != nil {
				s.compensate(ctx)
				return fmt.Errorf("saga[%s]步骤[%d:%s]执行失败: %w", s.name, i, step.Name, err)
			}
		}
		s.executed = append(s.executed, step)
	}
	return nil
}

// compensate 逆序补偿（补偿使用脱离取消的Context，保留trace等上下文值）
func (s *Saga) compensate(ctx context.Context) {
	ctx = context.WithoutCancel(ctx)

	for i := len(s.executed) - 1; i >= 0; i-- {
		step := s.executed[i]
		if step.Compensate == nil {
			continue
		}

		if metrics.SagaCompensationsTotal != nil {
			metrics.IncCounter(metrics.SagaCompensationsTotal)
		}
		if err := step.Compensate(ctx); err != nil {
			s.logger.Error("saga compensation failed",
				zap.String("saga", s.name),
				zap.String("step", step.Name),
				zap.Error(err),
			)
		}
	}
	s.executed = nil
}

func (s *Saga) observe(start time.Time, err error) {
	if metrics.SagaExecutionsTotal == nil {
		return
	}

	result := "success"
	if err != nil {
		result = "failure"
	}
	metrics.IncCounterVec(metrics.SagaExecutionsTotal, map[string]string{"saga": s.name, "result": result})
	metrics.ObserveHistogram(metrics.SagaExecutionDuration, time.Since(start).Seconds())
}
