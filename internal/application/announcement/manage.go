package announcement

import (
	"context"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/xiebiao/bookshop/internal/domain/announcement"
)

// AddAnnouncementRequest 公告内容
type AddAnnouncementRequest struct {
	Description string
	PostedAt    time.Time
	ExpiryDate  time.Time
}

// AddAnnouncementUseCase 发布公告用例（管理员）
// PostedAt已到达时立即发布并同步推送，否则留给定时任务
type AddAnnouncementUseCase struct {
	repo      announcement.Repository
	publisher *Publisher
	logger    *zap.Logger
	now       func() time.Time
}

// NewAddAnnouncementUseCase 创建公告用例
func NewAddAnnouncementUseCase(repo announcement.Repository, publisher *Publisher, logger *zap.Logger) *AddAnnouncementUseCase {
	return &AddAnnouncementUseCase{repo: repo, publisher: publisher, logger: logger, now: time.Now}
}

// Execute 创建公告
func (uc *AddAnnouncementUseCase) Execute(ctx context.Context, createdBy uint, req AddAnnouncementRequest) (*AnnouncementView, error) {
	a, err := announcement.NewAnnouncement(req.Description, req.PostedAt, req.ExpiryDate, createdBy)
	if err != nil {
		return nil, err
	}
	if err := uc.repo.Create(ctx, a); err != nil {
		return nil, err
	}

	publishIfDue(ctx, uc.publisher, uc.logger, a, uc.now())
	return toView(a), nil
}

// publishIfDue 到期则立即发布；推送失败时公告保持未发布，由定时任务重试
func publishIfDue(ctx context.Context, publisher *Publisher, logger *zap.Logger, a *announcement.Announcement, now time.Time) {
	if !a.IsDue(now) {
		return
	}
	if err := publisher.Publish(ctx, a, now, TriggerImmediate); err != nil {
		logger.Warn("immediate publish failed, left for scheduler", zap.Uint("id", a.ID), zap.Error(err))
	}
}

// UpdateAnnouncementUseCase 修改公告用例（管理员）
type UpdateAnnouncementUseCase struct {
	repo      announcement.Repository
	publisher *Publisher
	logger    *zap.Logger
	now       func() time.Time
}

// NewUpdateAnnouncementUseCase 创建修改公告用例
func NewUpdateAnnouncementUseCase(repo announcement.Repository, publisher *Publisher, logger *zap.Logger) *UpdateAnnouncementUseCase {
	return &UpdateAnnouncementUseCase{repo: repo, publisher: publisher, logger: logger, now: time.Now}
}

// Execute 修改内容和时间，已发布的公告不会重新推送
func (uc *UpdateAnnouncementUseCase) Execute(ctx context.Context, id uint, req AddAnnouncementRequest) (*AnnouncementView, error) {
	a, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := a.Revise(req.Description, req.PostedAt, req.ExpiryDate); err != nil {
		return nil, err
	}
	if err := uc.repo.Update(ctx, a); err != nil {
		return nil, err
	}

	publishIfDue(ctx, uc.publisher, uc.logger, a, uc.now())
	return toView(a), nil
}

// DeleteAnnouncementUseCase 删除公告用例（管理员）
type DeleteAnnouncementUseCase struct {
	repo announcement.Repository
}

// NewDeleteAnnouncementUseCase 创建删除公告用例
func NewDeleteAnnouncementUseCase(repo announcement.Repository) *DeleteAnnouncementUseCase {
	return &DeleteAnnouncementUseCase{repo: repo}
}

// Execute 删除公告
func (uc *DeleteAnnouncementUseCase) Execute(ctx context.Context, id uint) error {
	return uc.repo.Delete(ctx, id)
}

// QueryUseCase 公告查询
type QueryUseCase struct {
	repo announcement.Repository
	now  func() time.Time
}

// NewQueryUseCase 创建公告查询用例
func NewQueryUseCase(repo announcement.Repository) *QueryUseCase {
	return &QueryUseCase{repo: repo, now: time.Now}
}

// List 全部公告（管理员）
func (uc *QueryUseCase) List(ctx context.Context, page, pageSize int) (*AnnouncementPage, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 10
	}
	list, total, err := uc.repo.List(ctx, page, pageSize)
	if err != nil {
		return nil, err
	}
	return &AnnouncementPage{
		Items:      lo.Map(list, func(a *announcement.Announcement, _ int) AnnouncementView { return *toView(a) }),
		PageNumber: page,
		PageSize:   pageSize,
		TotalCount: total,
		TotalPages: int((total + int64(pageSize) - 1) / int64(pageSize)),
	}, nil
}

// ListActive 当前有效的公告（已发布且未过期）
func (uc *QueryUseCase) ListActive(ctx context.Context) ([]AnnouncementView, error) {
	list, err := uc.repo.ListActive(ctx, uc.now())
	if err != nil {
		return nil, err
	}
	return lo.Map(list, func(a *announcement.Announcement, _ int) AnnouncementView { return *toView(a) }), nil
}
