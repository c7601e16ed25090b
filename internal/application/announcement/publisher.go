package announcement

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/xiebiao/bookshop/internal/application/port"
	"github.com/xiebiao/bookshop/internal/domain/announcement"
	"github.com/xiebiao/bookshop/pkg/metrics"
	"github.com/xiebiao/bookshop/pkg/saga"
)

// 发布触发方式（指标标签）
const (
	TriggerImmediate = "immediate"
	TriggerScheduler = "scheduler"
)

// Publisher 公告发布（两步Saga）
// 1. mark-published：条件更新is_published=false → true，已发布则放弃
// 2. push：广播ReceiveAnnouncement；失败时撤销第1步，下次轮询重试
type Publisher struct {
	repo     announcement.Repository
	notifier port.Notifier
	timeout  time.Duration
	logger   *zap.Logger
}

// NewPublisher 创建公告发布器
func NewPublisher(repo announcement.Repository, notifier port.Notifier, logger *zap.Logger) *Publisher {
	return &Publisher{repo: repo, notifier: notifier, timeout: 10 * time.Second, logger: logger}
}

// Publish 发布公告，成功后a的发布状态同步更新
func (p *Publisher) Publish(ctx context.Context, a *announcement.Announcement, at time.Time, trigger string) error {
	notice := Notice{ID: a.ID, Description: a.Description, PostedAt: a.PostedAt, ExpiryDate: a.ExpiryDate}

	err := saga.NewSaga("publish-announcement", p.timeout, p.logger).
		AddStep("mark-published",
			func(ctx context.Context) error { return p.repo.MarkPublished(ctx, a.ID, at) },
			func(ctx context.Context) error { return p.repo.UnmarkPublished(ctx, a.ID) },
		).
		AddStep("push",
			func(ctx context.Context) error {
				return p.notifier.Broadcast(ctx, port.EventReceiveAnnouncement, notice)
			},
			nil,
		).
		Execute(ctx)
	if err != nil {
		metrics.IncCounterVec(metrics.NotificationsFailedTotal, map[string]string{"event": port.EventReceiveAnnouncement})
		return err
	}

	a.MarkPublished(at)
	metrics.IncCounterVec(metrics.AnnouncementsPublishedTotal, map[string]string{"trigger": trigger})
	p.logger.Info("announcement published", zap.Uint("id", a.ID), zap.String("trigger", trigger))
	return nil
}
