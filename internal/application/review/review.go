package review

import (
	"context"
	"time"

	"github.com/samber/lo"

	bookapp "github.com/xiebiao/bookshop/internal/application/book"
	"github.com/xiebiao/bookshop/internal/domain/book"
	"github.com/xiebiao/bookshop/internal/domain/order"
	"github.com/xiebiao/bookshop/internal/domain/review"
	"github.com/xiebiao/bookshop/internal/domain/shared"
)

// ReviewView 书评
type ReviewView struct {
	ID        uint      `json:"id"`
	UserID    uint      `json:"userId"`
	Nickname  string    `json:"nickname"`
	BookID    uint      `json:"bookId"`
	Content   string    `json:"content"`
	Rating    int       `json:"rating"`
	CreatedAt time.Time `json:"createdAt"`
}

func toReviewView(r *review.Review) ReviewView {
	return ReviewView{
		ID:        r.ID,
		UserID:    r.UserID,
		Nickname:  r.Nickname,
		BookID:    r.BookID,
		Content:   r.Content,
		Rating:    r.Rating,
		CreatedAt: r.CreatedAt,
	}
}

// AddReviewUseCase 发表书评用例
// 业务规则（单个事务内校验）：
// 1. 评分在[1,5]之间
// 2. 用户有包含该书的已完成订单
// 3. 每个用户对每本书只能评价一次（唯一索引兜底）
type AddReviewUseCase struct {
	txManager   shared.TxManager
	reviewRepo  review.Repository
	orderRepo   order.Repository
	bookRepo    book.Repository
	invalidator *bookapp.Invalidator
}

// NewAddReviewUseCase 创建发表书评用例
func NewAddReviewUseCase(
	txManager shared.TxManager,
	reviewRepo review.Repository,
	orderRepo order.Repository,
	bookRepo book.Repository,
	invalidator *bookapp.Invalidator,
) *AddReviewUseCase {
	return &AddReviewUseCase{
		txManager:   txManager,
		reviewRepo:  reviewRepo,
		orderRepo:   orderRepo,
		bookRepo:    bookRepo,
		invalidator: invalidator,
	}
}

// AddReviewRequest 书评内容
type AddReviewRequest struct {
	Content string
	Rating  int
}

// Execute 发表书评
func (uc *AddReviewUseCase) Execute(ctx context.Context, userID, bookID uint, req AddReviewRequest) (*ReviewView, error) {
	r, err := review.NewReview(userID, bookID, req.Content, req.Rating)
	if err != nil {
		return nil, err
	}

	err = uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		if _, err := uc.bookRepo.FindByID(txCtx, bookID); err != nil {
			return err
		}

		eligible, err := uc.orderRepo.HasCompletedOrderWithBook(txCtx, userID, bookID)
		if err != nil {
			return err
		}
		if !eligible {
			return review.ErrNotEligible
		}

		exists, err := uc.reviewRepo.Exists(txCtx, userID, bookID)
		if err != nil {
			return err
		}
		if exists {
			return review.ErrAlreadyReviewed
		}
		return uc.reviewRepo.Create(txCtx, r)
	})
	if err != nil {
		return nil, err
	}

	// 详情中的平均分和推荐位的评分排行已变化
	uc.invalidator.Book(ctx, bookID)
	v := toReviewView(r)
	return &v, nil
}

// ReviewPage 书评分页
type ReviewPage struct {
	Items      []ReviewView `json:"items"`
	PageNumber int          `json:"pageNumber"`
	PageSize   int          `json:"pageSize"`
	TotalCount int64        `json:"totalCount"`
	TotalPages int          `json:"totalPages"`
}

// ListUseCase 图书的书评列表
type ListUseCase struct {
	reviewRepo review.Repository
	bookRepo   book.Repository
}

// NewListUseCase 创建书评列表用例
func NewListUseCase(reviewRepo review.Repository, bookRepo book.Repository) *ListUseCase {
	return &ListUseCase{reviewRepo: reviewRepo, bookRepo: bookRepo}
}

// Execute 按时间倒序分页
func (uc *ListUseCase) Execute(ctx context.Context, bookID uint, page, pageSize int) (*ReviewPage, error) {
	if _, err := uc.bookRepo.FindByID(ctx, bookID); err != nil {
		return nil, err
	}
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 10
	}

	reviews, total, err := uc.reviewRepo.ListByBook(ctx, bookID, page, pageSize)
	if err != nil {
		return nil, err
	}
	return &ReviewPage{
		Items:      lo.Map(reviews, func(r *review.Review, _ int) ReviewView { return toReviewView(r) }),
		PageNumber: page,
		PageSize:   pageSize,
		TotalCount: total,
		TotalPages: int((total + int64(pageSize) - 1) / int64(pageSize)),
	}, nil
}
