package cart

import (
	"context"
	"errors"
	"time"

	"github.com/xiebiao/bookshop/internal/domain/book"
	"github.com/xiebiao/bookshop/internal/domain/cart"
	"github.com/xiebiao/bookshop/internal/domain/shared"
)

// AddToCartUseCase 加入购物车用例
// 业务流程（单个事务内）：
// 1. 校验图书存在且有库存
// 2. 购物车不存在时创建（user_id唯一索引兜底并发创建）
// 3. 已在购物车中的图书数量保持不变，否则新增数量为1的明细
type AddToCartUseCase struct {
	txManager shared.TxManager
	cartRepo  cart.Repository
	bookRepo  book.Repository
	now       func() time.Time
}

// NewAddToCartUseCase 创建加购用例
func NewAddToCartUseCase(txManager shared.TxManager, cartRepo cart.Repository, bookRepo book.Repository) *AddToCartUseCase {
	return &AddToCartUseCase{txManager: txManager, cartRepo: cartRepo, bookRepo: bookRepo, now: time.Now}
}

// Execute 加入购物车，返回最新的购物车
func (uc *AddToCartUseCase) Execute(ctx context.Context, userID, bookID uint) (*CartView, error) {
	err := uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		b, err := uc.bookRepo.FindByID(txCtx, bookID)
		if err != nil {
			return err
		}
		if !b.InStock() {
			return book.ErrOutOfStock
		}

		c, err := findOrCreateCart(txCtx, uc.cartRepo, userID)
		if err != nil {
			return err
		}
		if _, ok := c.FindItem(bookID); ok {
			return nil
		}

		err = uc.cartRepo.AddItem(txCtx, &cart.Item{CartID: c.ID, BookID: bookID, Quantity: 1})
		if errors.Is(err, cart.ErrItemExists) {
			// 并发加购同一本书，结果一致
			return nil
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return loadCart(ctx, uc.cartRepo, uc.bookRepo, userID, uc.now())
}

func findOrCreateCart(ctx context.Context, repo cart.Repository, userID uint) (*cart.Cart, error) {
	c, err := repo.FindByUserID(ctx, userID)
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, cart.ErrCartNotFound) {
		return nil, err
	}
	c = cart.NewCart(userID)
	if err := repo.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// loadCart 读取购物车并按当前价格汇总，购物车不存在时返回空视图
func loadCart(ctx context.Context, cartRepo cart.Repository, bookRepo book.Repository, userID uint, now time.Time) (*CartView, error) {
	c, err := cartRepo.FindByUserID(ctx, userID)
	if errors.Is(err, cart.ErrCartNotFound) {
		return toCartView(cart.Summarize(nil, nil, now)), nil
	}
	if err != nil {
		return nil, err
	}

	books, err := bookRepo.FindByIDs(ctx, c.BookIDs())
	if err != nil {
		return nil, err
	}
	byID := make(map[uint]*book.Book, len(books))
	for _, b := range books {
		byID[b.ID] = b
	}
	return toCartView(cart.Summarize(c, byID, now)), nil
}
