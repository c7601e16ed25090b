package mysql

import (
	"context"

	"github.com/samber/lo"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/xiebiao/bookshop/internal/domain/bookmark"
	apperrors "github.com/xiebiao/bookshop/pkg/errors"
)

// bookmarkRepository 收藏夹仓储实现
type bookmarkRepository struct {
	db *gorm.DB
}

// NewBookmarkRepository 创建收藏夹仓储
func NewBookmarkRepository(db *gorm.DB) bookmark.Repository {
	return &bookmarkRepository{db: db}
}

// FindByUserID 查询用户收藏夹（含明细，按收藏时间倒序）
func (r *bookmarkRepository) FindByUserID(ctx context.Context, userID uint) (*bookmark.Bookmark, error) {
	var model BookmarkModel
	err := getDB(ctx, r.db).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id DESC") }).
		Where("user_id = ?", userID).
		First(&model).Error
	if err != nil {
		if isNotFound(err) {
			return nil, bookmark.ErrBookmarkNotFound
		}
		return nil, apperrors.Wrap(err, "查询收藏夹失败")
	}

	return &bookmark.Bookmark{
		ID:     model.ID,
		UserID: model.UserID,
		Items: lo.Map(model.Items, func(m BookmarkItemModel, _ int) bookmark.Item {
			return bookmark.Item{ID: m.ID, BookmarkID: m.BookmarkID, BookID: m.BookID, CreatedAt: m.CreatedAt}
		}),
		CreatedAt: model.CreatedAt,
	}, nil
}

// Create 创建收藏夹，并发创建时回读已存在的记录
func (r *bookmarkRepository) Create(ctx context.Context, b *bookmark.Bookmark) error {
	db := getDB(ctx, r.db)
	model := &BookmarkModel{UserID: b.UserID}

	result := db.Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "user_id"}}, DoNothing: true}).
		Create(model)
	if err := result.Error; err != nil {
		return apperrors.Wrap(err, "创建收藏夹失败")
	}
	if result.RowsAffected == 0 {
		model = &BookmarkModel{}
		if err := db.Where("user_id = ?", b.UserID).First(model).Error; err != nil {
			return apperrors.Wrap(err, "查询收藏夹失败")
		}
	}

	b.ID = model.ID
	b.CreatedAt = model.CreatedAt
	return nil
}

// AddItem 收藏（已收藏时忽略）
func (r *bookmarkRepository) AddItem(ctx context.Context, item *bookmark.Item) error {
	model := &BookmarkItemModel{BookmarkID: item.BookmarkID, BookID: item.BookID}
	err := getDB(ctx, r.db).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(model).Error
	if err != nil {
		return apperrors.Wrap(err, "收藏失败")
	}
	item.ID = model.ID
	item.CreatedAt = model.CreatedAt
	return nil
}

// RemoveItem 取消收藏
func (r *bookmarkRepository) RemoveItem(ctx context.Context, bookmarkID, bookID uint) error {
	result := getDB(ctx, r.db).
		Where("bookmark_id = ? AND book_id = ?", bookmarkID, bookID).
		Delete(&BookmarkItemModel{})
	if result.Error != nil {
		return apperrors.Wrap(result.Error, "取消收藏失败")
	}
	if result.RowsAffected == 0 {
		return bookmark.ErrItemNotFound
	}
	return nil
}
