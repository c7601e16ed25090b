package announcement

import (
	"strings"
	"time"
)

// Announcement 公告
// PostedAt到达后发布（创建时已到达则立即发布，否则由定时任务发布），ExpiryDate之后不再展示
type Announcement struct {
	ID          uint
	Description string
	PostedAt    time.Time
	ExpiryDate  time.Time
	IsPublished bool
	PublishedAt *time.Time
	CreatedBy   uint
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewAnnouncement 创建未发布的公告
func NewAnnouncement(description string, postedAt, expiryDate time.Time, createdBy uint) (*Announcement, error) {
	a := &Announcement{CreatedBy: createdBy}
	if err := a.Revise(description, postedAt, expiryDate); err != nil {
		return nil, err
	}
	a.CreatedAt = a.UpdatedAt
	return a, nil
}

// Revise 修改内容和时间
// 业务规则：内容非空，ExpiryDate晚于PostedAt
func (a *Announcement) Revise(description string, postedAt, expiryDate time.Time) error {
	description = strings.TrimSpace(description)
	if description == "" {
		return ErrEmptyDescription
	}
	if !expiryDate.After(postedAt) {
		return ErrInvalidExpiry
	}
	a.Description = description
	a.PostedAt = postedAt
	a.ExpiryDate = expiryDate
	a.UpdatedAt = time.Now()
	return nil
}

// IsDue 未发布且发布时间已到
func (a *Announcement) IsDue(now time.Time) bool {
	return !a.IsPublished && !a.PostedAt.After(now)
}

// IsActive 已发布且未过期
func (a *Announcement) IsActive(now time.Time) bool {
	return a.IsPublished && a.ExpiryDate.After(now)
}

// MarkPublished 标记为已发布
func (a *Announcement) MarkPublished(at time.Time) {
	a.IsPublished = true
	a.PublishedAt = &at
}

// Unpublish 撤销发布标记（推送失败时补偿）
func (a *Announcement) Unpublish() {
	a.IsPublished = false
	a.PublishedAt = nil
}
