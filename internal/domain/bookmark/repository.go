package bookmark

import (
	"context"
)

// Repository 收藏夹仓储接口
type Repository interface {
	// FindByUserID 不存在时返回ErrBookmarkNotFound
	FindByUserID(ctx context.Context, userID uint) (*Bookmark, error)

	Create(ctx context.Context, bookmark *Bookmark) error

	// AddItem 已收藏时不报错（幂等）
	AddItem(ctx context.Context, item *Item) error

	// RemoveItem 未收藏时返回ErrItemNotFound
	RemoveItem(ctx context.Context, bookmarkID, bookID uint) error
}
