package mysql

import (
	"context"
	"math"

	"gorm.io/gorm"

	"github.com/xiebiao/bookshop/internal/domain/review"
	apperrors "github.com/xiebiao/bookshop/pkg/errors"
)

// reviewRepository 书评仓储实现
type reviewRepository struct {
	db *gorm.DB
}

// NewReviewRepository 创建书评仓储
func NewReviewRepository(db *gorm.DB) review.Repository {
	return &reviewRepository{db: db}
}

// Create 创建书评，(user_id, book_id)唯一索引兜底并发重复提交
func (r *reviewRepository) Create(ctx context.Context, rv *review.Review) error {
	model := &ReviewModel{
		UserID:  rv.UserID,
		BookID:  rv.BookID,
		Content: rv.Content,
		Rating:  rv.Rating,
	}
	if err := getDB(ctx, r.db).Create(model).Error; err != nil {
		if isDuplicateError(err) {
			return review.ErrAlreadyReviewed
		}
		return apperrors.Wrap(err, "创建书评失败")
	}
	rv.ID = model.ID
	rv.CreatedAt = model.CreatedAt
	return nil
}

// Exists 用户是否已评价该书
func (r *reviewRepository) Exists(ctx context.Context, userID, bookID uint) (bool, error) {
	var count int64
	err := getDB(ctx, r.db).Model(&ReviewModel{}).
		Where("user_id = ? AND book_id = ?", userID, bookID).
		Count(&count).Error
	if err != nil {
		return false, apperrors.Wrap(err, "查询书评失败")
	}
	return count > 0, nil
}

// reviewRow 书评列表行（关联用户昵称）
type reviewRow struct {
	ReviewModel
	Nickname string
}

// ListByBook 分页查询某本书的书评，按时间倒序
func (r *reviewRepository) ListByBook(ctx context.Context, bookID uint, page, pageSize int) ([]*review.Review, int64, error) {
	var (
		rows  []reviewRow
		total int64
	)

	query := getDB(ctx, r.db).Model(&ReviewModel{}).Where("reviews.book_id = ?", bookID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Wrap(err, "查询书评总数失败")
	}

	err := query.
		Select("reviews.*, users.nickname AS nickname").
		Joins("LEFT JOIN users ON users.id = reviews.user_id").
		Order("reviews.created_at DESC").
		Order("reviews.id DESC").
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Scan(&rows).Error
	if err != nil {
		return nil, 0, apperrors.Wrap(err, "查询书评列表失败")
	}

	reviews := make([]*review.Review, len(rows))
	for i, row := range rows {
		reviews[i] = &review.Review{
			ID:        row.ID,
			UserID:    row.UserID,
			BookID:    row.BookID,
			Nickname:  row.Nickname,
			Content:   row.Content,
			Rating:    row.Rating,
			CreatedAt: row.CreatedAt,
		}
	}
	return reviews, total, nil
}

// Summary 评分汇总
func (r *reviewRepository) Summary(ctx context.Context, bookID uint) (*review.Summary, error) {
	var agg struct {
		Average float64
		Count   int64
	}
	err := getDB(ctx, r.db).Model(&ReviewModel{}).
		Select("COALESCE(AVG(rating), 0) AS average, COUNT(*) AS count").
		Where("book_id = ?", bookID).
		Scan(&agg).Error
	if err != nil {
		return nil, apperrors.Wrap(err, "查询评分汇总失败")
	}
	return &review.Summary{
		BookID:  bookID,
		Average: math.Round(agg.Average*100) / 100,
		Count:   agg.Count,
	}, nil
}
