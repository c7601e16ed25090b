package cart

import (
	"context"
)

// Repository 购物车仓储接口
type Repository interface {
	// FindByUserID 查询用户购物车（含明细），不存在时返回ErrCartNotFound
	FindByUserID(ctx context.Context, userID uint) (*Cart, error)

	// Create 创建购物车（user_id唯一，并发创建时返回已存在的购物车）
	Create(ctx context.Context, cart *Cart) error

	// AddItem 新增明细，(cart_id, book_id)已存在时返回ErrItemExists
	AddItem(ctx context.Context, item *Item) error

	// UpdateItemQuantity 明细不存在时返回ErrItemNotFound
	UpdateItemQuantity(ctx context.Context, cartID, bookID uint, quantity int) error

	// RemoveItem 明细不存在时返回ErrItemNotFound
	RemoveItem(ctx context.Context, cartID, bookID uint) error

	// ClearItems 删除全部明细
	ClearItems(ctx context.Context, cartID uint) error
}
