package announcement

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/xiebiao/bookshop/internal/application/port"
	"github.com/xiebiao/bookshop/internal/domain/announcement"
)

const (
	schedulerLockKey = "lock:announcement:scheduler"
	dueBatchSize     = 100
)

// Scheduler 公告定时发布
// 单个goroutine按interval轮询；每轮先获取Redis锁，多实例部署时同一时刻只有一个实例发布
type Scheduler struct {
	repo      announcement.Repository
	publisher *Publisher
	locker    port.Locker
	interval  time.Duration
	lockTTL   time.Duration
	logger    *zap.Logger
	now       func() time.Time
}

// NewScheduler 创建定时发布任务
func NewScheduler(
	repo announcement.Repository,
	publisher *Publisher,
	locker port.Locker,
	interval, lockTTL time.Duration,
	logger *zap.Logger,
) *Scheduler {
	return &Scheduler{
		repo:      repo,
		publisher: publisher,
		locker:    locker,
		interval:  interval,
		lockTTL:   lockTTL,
		logger:    logger,
		now:       time.Now,
	}
}

// Run 阻塞运行直到ctx取消
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("announcement scheduler started", zap.Duration("interval", s.interval))
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("announcement scheduler stopped")
			return
		case <-ticker.C:
			if _, err := s.Tick(ctx); err != nil {
				s.logger.Error("announcement scheduler tick failed", zap.Error(err))
			}
		}
	}
}

// Tick 执行一轮发布，返回本轮发布的数量；未拿到锁时返回0
func (s *Scheduler) Tick(ctx context.Context) (int, error) {
	unlock, ok, err := s.locker.TryLock(ctx, schedulerLockKey, s.lockTTL)
	if err != nil {
		return 0, err
	}
	if !ok {
		s.logger.Debug("announcement scheduler lock held by another instance")
		return 0, nil
	}
	defer func() {
		if err := unlock(context.WithoutCancel(ctx)); err != nil {
			s.logger.Warn("release scheduler lock failed", zap.Error(err))
		}
	}()

	now := s.now()
	due, err := s.repo.ListDue(ctx, now, dueBatchSize)
	if err != nil {
		return 0, err
	}

	published := 0
	for _, a := range due {
		if ctx.Err() != nil {
			break
		}
		err := s.publisher.Publish(ctx, a, now, TriggerScheduler)
		switch {
		case err == nil:
			published++
		case errors.Is(err, announcement.ErrAlreadyPublished):
			// 立即发布与轮询并发时由条件更新保证只发布一次
		default:
			s.logger.Warn("publish announcement failed", zap.Uint("id", a.ID), zap.Error(err))
		}
	}
	return published, nil
}
