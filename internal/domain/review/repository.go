package review

import (
	"context"
)

// Repository 书评仓储接口
type Repository interface {
	// Create (user_id, book_id)唯一，重复时返回ErrAlreadyReviewed
	Create(ctx context.Context, review *Review) error

	// Exists 用户是否已评价该书
	Exists(ctx context.Context, userID, bookID uint) (bool, error)

	// ListByBook 按时间倒序分页
	ListByBook(ctx context.Context, bookID uint, page, pageSize int) ([]*Review, int64, error)

	// Summary 单本书的评分汇总
	Summary(ctx context.Context, bookID uint) (*Summary, error)
}
