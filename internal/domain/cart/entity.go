package cart

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/xiebiao/bookshop/internal/domain/book"
)

// Cart 购物车（每个用户一个，首次加购时创建）
// 总数量和总金额不落库，每次读取时按明细重新计算
type Cart struct {
	ID        uint
	UserID    uint
	Items     []Item
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Item 购物车明细，(CartID, BookID)唯一
type Item struct {
	ID        uint
	CartID    uint
	BookID    uint
	Quantity  int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewCart 创建空购物车
func NewCart(userID uint) *Cart {
	now := time.Now()
	return &Cart{
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// IsEmpty 是否没有任何明细
func (c *Cart) IsEmpty() bool {
	return c == nil || len(c.Items) == 0
}

// FindItem 查找某本书的明细
func (c *Cart) FindItem(bookID uint) (*Item, bool) {
	for i := range c.Items {
		if c.Items[i].BookID == bookID {
			return &c.Items[i], true
		}
	}
	return nil, false
}

// BookIDs 明细中的图书ID
func (c *Cart) BookIDs() []uint {
	ids := make([]uint, 0, len(c.Items))
	for _, item := range c.Items {
		ids = append(ids, item.BookID)
	}
	return ids
}

// Line 带价格的明细行
type Line struct {
	BookID         uint
	Title          string
	CoverURL       string
	Quantity       int
	Stock          int
	UnitPrice      int64           // 原价（分）
	Discount       decimal.Decimal // 当前生效折扣
	FinalUnitPrice int64           // 折后单价
	LineTotal      int64           // 折后单价 × 数量
}

// Summary 购物车汇总（读取时计算）
type Summary struct {
	CartID        uint
	Lines         []Line
	TotalQuantity int
	TotalPrice    int64 // 折后总价
	TotalSaved    int64 // 折扣优惠金额
}

// Summarize 按当前图书价格与折扣计算明细和总计
// 已下架（books中不存在）的图书跳过
func Summarize(c *Cart, books map[uint]*book.Book, now time.Time) *Summary {
	s := &Summary{Lines: []Line{}}
	if c == nil {
		return s
	}
	s.CartID = c.ID

	for _, item := range c.Items {
		b, ok := books[item.BookID]
		if !ok {
			continue
		}
		discount := b.EffectiveDiscount(now)
		final := book.ApplyDiscount(b.Price, discount)
		line := Line{
			BookID:         b.ID,
			Title:          b.Title,
			CoverURL:       b.CoverURL,
			Quantity:       item.Quantity,
			Stock:          b.Stock,
			UnitPrice:      b.Price,
			Discount:       discount,
			FinalUnitPrice: final,
			LineTotal:      final * int64(item.Quantity),
		}
		s.Lines = append(s.Lines, line)
		s.TotalQuantity += line.Quantity
		s.TotalPrice += line.LineTotal
		s.TotalSaved += (line.UnitPrice - line.FinalUnitPrice) * int64(line.Quantity)
	}
	return s
}
