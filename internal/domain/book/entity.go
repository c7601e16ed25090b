package book

import (
	"time"

	"github.com/shopspring/decimal"
)

// Book 图书实体（聚合根）
// 1. 价格使用int64存储"分"（避免浮点数精度问题）
// 2. 折扣是[0,1)之间的小数（0.1表示九折），使用decimal计算
// 3. 折扣窗口的起止时间可为空，为空表示该侧不限
type Book struct {
	ID                uint
	ISBN              string
	Title             string
	Author            string
	Publisher         string
	Genre             string
	Language          string
	Format            string // 精装、平装、电子书等
	Description       string
	Price             int64 // 单位：分
	Stock             int
	CoverURL          string
	PublicationDate   time.Time
	Discount          decimal.Decimal
	DiscountStartDate *time.Time
	DiscountEndDate   *time.Time
	SoldCount         int
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// EffectiveDiscount 当前生效的折扣
// discount>0 且 now 落在 [start, end] 内（空边界视为满足）时返回discount，否则为0
func (b *Book) EffectiveDiscount(now time.Time) decimal.Decimal {
	if !b.Discount.IsPositive() {
		return decimal.Zero
	}
	if b.DiscountStartDate != nil && now.Before(*b.DiscountStartDate) {
		return decimal.Zero
	}
	if b.DiscountEndDate != nil && now.After(*b.DiscountEndDate) {
		return decimal.Zero
	}
	return b.Discount
}

// IsOnSale 当前是否处于折扣期
func (b *Book) IsOnSale(now time.Time) bool {
	return b.EffectiveDiscount(now).IsPositive()
}

// FinalPrice 折后单价（分），四舍五入
func (b *Book) FinalPrice(now time.Time) int64 {
	return ApplyDiscount(b.Price, b.EffectiveDiscount(now))
}

// ApplyDiscount price × (1 − discount)，四舍五入到分
func ApplyDiscount(price int64, discount decimal.Decimal) int64 {
	return decimal.NewFromInt(price).
		Mul(decimal.NewFromInt(1).Sub(discount)).
		Round(0).
		IntPart()
}

// InStock 是否有库存
func (b *Book) InStock() bool {
	return b.Stock > 0
}

// IsReleased 是否已出版（出版日期不晚于now）
func (b *Book) IsReleased(now time.Time) bool {
	return !b.PublicationDate.After(now)
}

// SetDiscount 设置折扣
// 业务规则：0 ≤ discount < 1；起止时间都给出时 start ≤ end
func (b *Book) SetDiscount(discount decimal.Decimal, start, end *time.Time) error {
	if discount.IsNegative() || discount.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return ErrInvalidDiscount
	}
	if start != nil && end != nil && start.After(*end) {
		return ErrInvalidDiscountWindow
	}
	b.Discount = discount
	b.DiscountStartDate = start
	b.DiscountEndDate = end
	b.UpdatedAt = time.Now()
	return nil
}

// DecrStock 扣减库存（开启下单预占库存时使用）
func (b *Book) DecrStock(quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	if b.Stock < quantity {
		return ErrInsufficientStock
	}
	b.Stock -= quantity
	b.UpdatedAt = time.Now()
	return nil
}
