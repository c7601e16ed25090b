package cart

import (
	"context"
	"errors"
	"time"

	"github.com/xiebiao/bookshop/internal/domain/book"
	"github.com/xiebiao/bookshop/internal/domain/cart"
	"github.com/xiebiao/bookshop/internal/domain/shared"
)

// ManageCartUseCase 购物车维护：改数量、移除、清空、查看
type ManageCartUseCase struct {
	txManager shared.TxManager
	cartRepo  cart.Repository
	bookRepo  book.Repository
	now       func() time.Time
}

// NewManageCartUseCase 创建购物车维护用例
func NewManageCartUseCase(txManager shared.TxManager, cartRepo cart.Repository, bookRepo book.Repository) *ManageCartUseCase {
	return &ManageCartUseCase{txManager: txManager, cartRepo: cartRepo, bookRepo: bookRepo, now: time.Now}
}

// UpdateQuantity 修改数量，范围[1, 当前库存]
func (uc *ManageCartUseCase) UpdateQuantity(ctx context.Context, userID, bookID uint, quantity int) (*CartView, error) {
	err := uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		c, err := uc.cartRepo.FindByUserID(txCtx, userID)
		if err != nil {
			return err
		}
		if _, ok := c.FindItem(bookID); !ok {
			return cart.ErrItemNotFound
		}

		b, err := uc.bookRepo.FindByID(txCtx, bookID)
		if err != nil {
			return err
		}
		if quantity < 1 || quantity > b.Stock {
			return cart.ErrInvalidQuantity
		}
		return uc.cartRepo.UpdateItemQuantity(txCtx, c.ID, bookID, quantity)
	})
	if err != nil {
		return nil, err
	}
	return uc.Get(ctx, userID)
}

// Remove 移出购物车
func (uc *ManageCartUseCase) Remove(ctx context.Context, userID, bookID uint) (*CartView, error) {
	err := uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		c, err := uc.cartRepo.FindByUserID(txCtx, userID)
		if err != nil {
			return err
		}
		return uc.cartRepo.RemoveItem(txCtx, c.ID, bookID)
	})
	if err != nil {
		return nil, err
	}
	return uc.Get(ctx, userID)
}

// Clear 清空购物车（购物车不存在时视为已清空）
func (uc *ManageCartUseCase) Clear(ctx context.Context, userID uint) error {
	return uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		c, err := uc.cartRepo.FindByUserID(txCtx, userID)
		if errors.Is(err, cart.ErrCartNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return uc.cartRepo.ClearItems(txCtx, c.ID)
	})
}

// Get 查看购物车
func (uc *ManageCartUseCase) Get(ctx context.Context, userID uint) (*CartView, error) {
	return loadCart(ctx, uc.cartRepo, uc.bookRepo, userID, uc.now())
}
