package mysql

import (
	"context"
	"time"

	"github.com/samber/lo"
	"gorm.io/gorm"

	"github.com/xiebiao/bookshop/internal/domain/announcement"
	apperrors "github.com/xiebiao/bookshop/pkg/errors"
)

// announcementRepository 公告仓储实现
type announcementRepository struct {
	db *gorm.DB
}

// NewAnnouncementRepository 创建公告仓储
func NewAnnouncementRepository(db *gorm.DB) announcement.Repository {
	return &announcementRepository{db: db}
}

// Create 创建公告
func (r *announcementRepository) Create(ctx context.Context, a *announcement.Announcement) error {
	model := toAnnouncementModel(a)
	if err := getDB(ctx, r.db).Create(model).Error; err != nil {
		return apperrors.Wrap(err, "创建公告失败")
	}
	a.ID = model.ID
	a.CreatedAt = model.CreatedAt
	a.UpdatedAt = model.UpdatedAt
	return nil
}

// FindByID 根据ID查找公告
func (r *announcementRepository) FindByID(ctx context.Context, id uint) (*announcement.Announcement, error) {
	var model AnnouncementModel
	if err := getDB(ctx, r.db).First(&model, id).Error; err != nil {
		if isNotFound(err) {
			return nil, announcement.ErrAnnouncementNotFound
		}
		return nil, apperrors.Wrap(err, "查询公告失败")
	}
	return toAnnouncementEntity(&model), nil
}

// Update 更新内容和时间（发布状态由MarkPublished/UnmarkPublished维护）
func (r *announcementRepository) Update(ctx context.Context, a *announcement.Announcement) error {
	result := getDB(ctx, r.db).Model(&AnnouncementModel{}).
		Where("id = ?", a.ID).
		Updates(map[string]interface{}{
			"description": a.Description,
			"posted_at":   a.PostedAt,
			"expiry_date": a.ExpiryDate,
			"updated_at":  a.UpdatedAt,
		})
	if result.Error != nil {
		return apperrors.Wrap(result.Error, "更新公告失败")
	}
	if result.RowsAffected == 0 {
		if _, err := r.FindByID(ctx, a.ID); err != nil {
			return err
		}
	}
	return nil
}

// Delete 删除公告
func (r *announcementRepository) Delete(ctx context.Context, id uint) error {
	result := getDB(ctx, r.db).Delete(&AnnouncementModel{}, id)
	if result.Error != nil {
		return apperrors.Wrap(result.Error, "删除公告失败")
	}
	if result.RowsAffected == 0 {
		return announcement.ErrAnnouncementNotFound
	}
	return nil
}

// List 全部公告分页
func (r *announcementRepository) List(ctx context.Context, page, pageSize int) ([]*announcement.Announcement, int64, error) {
	var (
		models []AnnouncementModel
		total  int64
	)
	query := getDB(ctx, r.db).Model(&AnnouncementModel{})
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Wrap(err, "查询公告总数失败")
	}
	err := query.Order("posted_at DESC").
		Order("id DESC").
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Find(&models).Error
	if err != nil {
		return nil, 0, apperrors.Wrap(err, "查询公告列表失败")
	}
	return toAnnouncementEntities(models), total, nil
}

// ListActive 已发布且未过期
func (r *announcementRepository) ListActive(ctx context.Context, now time.Time) ([]*announcement.Announcement, error) {
	var models []AnnouncementModel
	err := getDB(ctx, r.db).
		Where("is_published = ? AND expiry_date > ?", true, now).
		Order("posted_at DESC").
		Find(&models).Error
	if err != nil {
		return nil, apperrors.Wrap(err, "查询有效公告失败")
	}
	return toAnnouncementEntities(models), nil
}

// ListDue 待发布公告
func (r *announcementRepository) ListDue(ctx context.Context, now time.Time, limit int) ([]*announcement.Announcement, error) {
	var models []AnnouncementModel
	err := getDB(ctx, r.db).
		Where("is_published = ? AND posted_at <= ?", false, now).
		Order("posted_at ASC").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, apperrors.Wrap(err, "查询待发布公告失败")
	}
	return toAnnouncementEntities(models), nil
}

// MarkPublished 条件更新：is_published由false置为true
func (r *announcementRepository) MarkPublished(ctx context.Context, id uint, at time.Time) error {
	result := getDB(ctx, r.db).Model(&AnnouncementModel{}).
		Where("id = ? AND is_published = ?", id, false).
		Updates(map[string]interface{}{
			"is_published": true,
			"published_at": at,
		})
	if result.Error != nil {
		return apperrors.Wrap(result.Error, "标记公告发布失败")
	}
	if result.RowsAffected == 0 {
		return announcement.ErrAlreadyPublished
	}
	return nil
}

// UnmarkPublished 撤销发布标记
func (r *announcementRepository) UnmarkPublished(ctx context.Context, id uint) error {
	err := getDB(ctx, r.db).Model(&AnnouncementModel{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"is_published": false,
			"published_at": gorm.Expr("NULL"),
		}).Error
	if err != nil {
		return apperrors.Wrap(err, "撤销公告发布失败")
	}
	return nil
}

func toAnnouncementModel(a *announcement.Announcement) *AnnouncementModel {
	return &AnnouncementModel{
		ID:          a.ID,
		Description: a.Description,
		PostedAt:    a.PostedAt,
		ExpiryDate:  a.ExpiryDate,
		IsPublished: a.IsPublished,
		PublishedAt: a.PublishedAt,
		CreatedBy:   a.CreatedBy,
	}
}

func toAnnouncementEntity(m *AnnouncementModel) *announcement.Announcement {
	return &announcement.Announcement{
		ID:          m.ID,
		Description: m.Description,
		PostedAt:    m.PostedAt,
		ExpiryDate:  m.ExpiryDate,
		IsPublished: m.IsPublished,
		PublishedAt: m.PublishedAt,
		CreatedBy:   m.CreatedBy,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func toAnnouncementEntities(models []AnnouncementModel) []*announcement.Announcement {
	return lo.Map(models, func(m AnnouncementModel, _ int) *announcement.Announcement {
		return toAnnouncementEntity(&m)
	})
}
