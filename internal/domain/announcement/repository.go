package announcement

import (
	"context"
	"time"
)

// Repository 公告仓储接口
type Repository interface {
	Create(ctx context.Context, a *Announcement) error

	// FindByID 不存在时返回ErrAnnouncementNotFound
	FindByID(ctx context.Context, id uint) (*Announcement, error)

	Update(ctx context.Context, a *Announcement) error

	Delete(ctx context.Context, id uint) error

	// List 全部公告，按发布时间倒序分页
	List(ctx context.Context, page, pageSize int) ([]*Announcement, int64, error)

	// ListActive 已发布且未过期，按发布时间倒序
	ListActive(ctx context.Context, now time.Time) ([]*Announcement, error)

	// ListDue 未发布且PostedAt ≤ now，按PostedAt升序，走(is_published, posted_at)索引
	ListDue(ctx context.Context, now time.Time, limit int) ([]*Announcement, error)

	// MarkPublished 条件更新：仅当is_published=false时置为true
	// 未命中时返回ErrAlreadyPublished
	MarkPublished(ctx context.Context, id uint, at time.Time) error

	// UnmarkPublished 撤销发布标记
	UnmarkPublished(ctx context.Context, id uint) error
}
