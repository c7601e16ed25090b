package announcement

import (
	"time"

	"github.com/xiebiao/bookshop/internal/domain/announcement"
)

// AnnouncementView 公告
type AnnouncementView struct {
	ID          uint       `json:"id"`
	Description string     `json:"description"`
	PostedAt    time.Time  `json:"postedAt"`
	ExpiryDate  time.Time  `json:"expiryDate"`
	IsPublished bool       `json:"isPublished"`
	PublishedAt *time.Time `json:"publishedAt,omitempty"`
	CreatedBy   uint       `json:"createdBy"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

func toView(a *announcement.Announcement) *AnnouncementView {
	return &AnnouncementView{
		ID:          a.ID,
		Description: a.Description,
		PostedAt:    a.PostedAt,
		ExpiryDate:  a.ExpiryDate,
		IsPublished: a.IsPublished,
		PublishedAt: a.PublishedAt,
		CreatedBy:   a.CreatedBy,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}

// Notice ReceiveAnnouncement推送内容
type Notice struct {
	ID          uint      `json:"id"`
	Description string    `json:"description"`
	PostedAt    time.Time `json:"postedAt"`
	ExpiryDate  time.Time `json:"expiryDate"`
}

// AnnouncementPage 公告分页
type AnnouncementPage struct {
	Items      []AnnouncementView `json:"items"`
	PageNumber int                `json:"pageNumber"`
	PageSize   int                `json:"pageSize"`
	TotalCount int64              `json:"totalCount"`
	TotalPages int                `json:"totalPages"`
}
