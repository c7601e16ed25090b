package bookmark

import (
	"time"
)

// Bookmark 收藏夹（每个用户一个，首次收藏时创建），结构与购物车对称
type Bookmark struct {
	ID        uint
	UserID    uint
	Items     []Item
	CreatedAt time.Time
}

// Item 收藏明细，(BookmarkID, BookID)唯一
type Item struct {
	ID         uint
	BookmarkID uint
	BookID     uint
	CreatedAt  time.Time
}

// NewBookmark 创建空收藏夹
func NewBookmark(userID uint) *Bookmark {
	return &Bookmark{UserID: userID, CreatedAt: time.Now()}
}

// Contains 是否已收藏
func (b *Bookmark) Contains(bookID uint) bool {
	for _, item := range b.Items {
		if item.BookID == bookID {
			return true
		}
	}
	return false
}

// BookIDs 按收藏顺序返回图书ID
func (b *Bookmark) BookIDs() []uint {
	ids := make([]uint, 0, len(b.Items))
	for _, item := range b.Items {
		ids = append(ids, item.BookID)
	}
	return ids
}
