package book

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/xiebiao/bookshop/internal/application/port"
	"github.com/xiebiao/bookshop/internal/domain/book"
)

// UpdateBookUseCase 修改图书用例（管理员）
type UpdateBookUseCase struct {
	bookService book.Service
	bookRepo    book.Repository
	storage     port.FileStorage
	invalidator *Invalidator
	now         func() time.Time
}

// NewUpdateBookUseCase 创建修改图书用例
func NewUpdateBookUseCase(
	bookService book.Service,
	bookRepo book.Repository,
	storage port.FileStorage,
	invalidator *Invalidator,
) *UpdateBookUseCase {
	return &UpdateBookUseCase{
		bookService: bookService,
		bookRepo:    bookRepo,
		storage:     storage,
		invalidator: invalidator,
		now:         time.Now,
	}
}

// UpdateBookRequest 修改请求，nil字段不修改
type UpdateBookRequest struct {
	book.Patch
	Cover *port.Upload // 上传新封面时替换旧文件
}

// Execute 修改图书信息
func (uc *UpdateBookUseCase) Execute(ctx context.Context, id uint, req UpdateBookRequest) (*BookDetail, error) {
	current, err := uc.bookRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	coverURL, err := saveCover(ctx, uc.storage, req.Cover)
	if err != nil {
		return nil, err
	}
	patch := req.Patch
	if coverURL != "" {
		patch.CoverURL = &coverURL
	}

	updated, err := uc.bookService.UpdateBook(ctx, id, patch)
	if err != nil {
		removeCover(ctx, uc.storage, coverURL)
		return nil, err
	}
	if coverURL != "" && current.CoverURL != coverURL {
		removeCover(ctx, uc.storage, current.CoverURL)
	}

	uc.invalidator.Book(ctx, id)
	return ToBookDetail(updated, nil, uc.now()), nil
}

// SetDiscountUseCase 设置折扣用例（管理员）
type SetDiscountUseCase struct {
	bookService book.Service
	invalidator *Invalidator
	now         func() time.Time
}

// NewSetDiscountUseCase 创建设置折扣用例
func NewSetDiscountUseCase(bookService book.Service, invalidator *Invalidator) *SetDiscountUseCase {
	return &SetDiscountUseCase{bookService: bookService, invalidator: invalidator, now: time.Now}
}

// SetDiscountRequest 折扣设置，Discount为[0,1)之间的小数，0表示取消折扣
type SetDiscountRequest struct {
	Discount  decimal.Decimal
	StartDate *time.Time
	EndDate   *time.Time
}

// Execute 设置折扣
func (uc *SetDiscountUseCase) Execute(ctx context.Context, id uint, req SetDiscountRequest) (*BookDetail, error) {
	b, err := uc.bookService.SetDiscount(ctx, id, req.Discount, req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}
	uc.invalidator.Book(ctx, id)
	return ToBookDetail(b, nil, uc.now()), nil
}

// DeleteBookUseCase 下架图书用例（管理员，软删除）
type DeleteBookUseCase struct {
	bookService book.Service
	invalidator *Invalidator
}

// NewDeleteBookUseCase 创建下架用例
func NewDeleteBookUseCase(bookService book.Service, invalidator *Invalidator) *DeleteBookUseCase {
	return &DeleteBookUseCase{bookService: bookService, invalidator: invalidator}
}

// Execute 下架图书（封面文件保留，历史订单仍可展示）
func (uc *DeleteBookUseCase) Execute(ctx context.Context, id uint) error {
	if err := uc.bookService.DeleteBook(ctx, id); err != nil {
		return err
	}
	uc.invalidator.Book(ctx, id)
	return nil
}
