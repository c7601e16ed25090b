package bookmark

import (
	"context"
	"errors"
	"time"

	"github.com/samber/lo"

	bookapp "github.com/xiebiao/bookshop/internal/application/book"
	"github.com/xiebiao/bookshop/internal/domain/book"
	"github.com/xiebiao/bookshop/internal/domain/bookmark"
	"github.com/xiebiao/bookshop/internal/domain/shared"
)

// ToggleResult 切换后的收藏状态
type ToggleResult struct {
	BookID       uint `json:"bookId"`
	IsBookmarked bool `json:"isBookmarked"`
}

// ToggleUseCase 收藏/取消收藏用例（单个事务内完成）
type ToggleUseCase struct {
	txManager    shared.TxManager
	bookmarkRepo bookmark.Repository
	bookRepo     book.Repository
}

// NewToggleUseCase 创建收藏切换用例
func NewToggleUseCase(txManager shared.TxManager, bookmarkRepo bookmark.Repository, bookRepo book.Repository) *ToggleUseCase {
	return &ToggleUseCase{txManager: txManager, bookmarkRepo: bookmarkRepo, bookRepo: bookRepo}
}

// Execute 已收藏则移除，否则添加
func (uc *ToggleUseCase) Execute(ctx context.Context, userID, bookID uint) (*ToggleResult, error) {
	result := &ToggleResult{BookID: bookID}

	err := uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		bm, err := uc.bookmarkRepo.FindByUserID(txCtx, userID)
		if errors.Is(err, bookmark.ErrBookmarkNotFound) {
			bm = bookmark.NewBookmark(userID)
			err = uc.bookmarkRepo.Create(txCtx, bm)
		}
		if err != nil {
			return err
		}

		if bm.Contains(bookID) {
			result.IsBookmarked = false
			return uc.bookmarkRepo.RemoveItem(txCtx, bm.ID, bookID)
		}

		if _, err := uc.bookRepo.FindByID(txCtx, bookID); err != nil {
			return err
		}
		result.IsBookmarked = true
		return uc.bookmarkRepo.AddItem(txCtx, &bookmark.Item{BookmarkID: bm.ID, BookID: bookID, CreatedAt: time.Now()})
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ListUseCase 我的收藏
type ListUseCase struct {
	bookmarkRepo bookmark.Repository
	bookRepo     book.Repository
	now          func() time.Time
}

// NewListUseCase 创建收藏列表用例
func NewListUseCase(bookmarkRepo bookmark.Repository, bookRepo book.Repository) *ListUseCase {
	return &ListUseCase{bookmarkRepo: bookmarkRepo, bookRepo: bookRepo, now: time.Now}
}

// Execute 按收藏时间倒序返回图书，已下架的图书不返回
func (uc *ListUseCase) Execute(ctx context.Context, userID uint) ([]bookapp.BookItem, error) {
	bm, err := uc.bookmarkRepo.FindByUserID(ctx, userID)
	if errors.Is(err, bookmark.ErrBookmarkNotFound) {
		return []bookapp.BookItem{}, nil
	}
	if err != nil {
		return nil, err
	}

	ids := bm.BookIDs()
	books, err := uc.bookRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := lo.KeyBy(books, func(b *book.Book) uint { return b.ID })

	now := uc.now()
	items := make([]bookapp.BookItem, 0, len(ids))
	for _, id := range ids {
		if b, ok := byID[id]; ok {
			items = append(items, bookapp.ToBookItem(b, now))
		}
	}
	return items, nil
}

// StatusUseCase 单本图书的收藏状态
type StatusUseCase struct {
	bookmarkRepo bookmark.Repository
}

// NewStatusUseCase 创建收藏状态用例
func NewStatusUseCase(bookmarkRepo bookmark.Repository) *StatusUseCase {
	return &StatusUseCase{bookmarkRepo: bookmarkRepo}
}

// IsBookmarked 用户尚未建立收藏夹时返回false
func (uc *StatusUseCase) IsBookmarked(ctx context.Context, userID, bookID uint) (bool, error) {
	bm, err := uc.bookmarkRepo.FindByUserID(ctx, userID)
	if errors.Is(err, bookmark.ErrBookmarkNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return bm.Contains(bookID), nil
}
