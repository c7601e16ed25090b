package book

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/xiebiao/bookshop/internal/domain/book"
	"github.com/xiebiao/bookshop/internal/domain/review"
)

// BookItem 列表项
// 价格单位为分，Discount为当前生效折扣（0表示无折扣）
type BookItem struct {
	ID              uint            `json:"id"`
	ISBN            string          `json:"isbn"`
	Title           string          `json:"title"`
	Author          string          `json:"author"`
	Publisher       string          `json:"publisher"`
	Genre           string          `json:"genre"`
	Language        string          `json:"language"`
	Format          string          `json:"format"`
	Price           int64           `json:"price"`
	Discount        decimal.Decimal `json:"discount"`
	IsOnSale        bool            `json:"isOnSale"`
	FinalPrice      int64           `json:"finalPrice"`
	Stock           int             `json:"stock"`
	CoverURL        string          `json:"coverUrl"`
	PublicationDate time.Time       `json:"publicationDate"`
	SoldCount       int             `json:"soldCount"`
}

// BookDetail 图书详情
type BookDetail struct {
	BookItem
	Description       string     `json:"description"`
	ConfiguredRate    string     `json:"configuredDiscount"` // 配置的折扣（可能不在生效期内）
	DiscountStartDate *time.Time `json:"discountStartDate"`
	DiscountEndDate   *time.Time `json:"discountEndDate"`
	AverageRating     float64    `json:"averageRating"`
	ReviewCount       int64      `json:"reviewCount"`
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`
	IsBookmarked      *bool      `json:"isBookmarked,omitempty"` // 仅顾客登录时返回
}

// ToBookItem 按now计算折扣后的列表项
func ToBookItem(b *book.Book, now time.Time) BookItem {
	discount := b.EffectiveDiscount(now)
	return BookItem{
		ID:              b.ID,
		ISBN:            b.ISBN,
		Title:           b.Title,
		Author:          b.Author,
		Publisher:       b.Publisher,
		Genre:           b.Genre,
		Language:        b.Language,
		Format:          b.Format,
		Price:           b.Price,
		Discount:        discount,
		IsOnSale:        discount.IsPositive(),
		FinalPrice:      book.ApplyDiscount(b.Price, discount),
		Stock:           b.Stock,
		CoverURL:        b.CoverURL,
		PublicationDate: b.PublicationDate,
		SoldCount:       b.SoldCount,
	}
}

// ToBookDetail 图书详情（summary为空时评分为0）
func ToBookDetail(b *book.Book, summary *review.Summary, now time.Time) *BookDetail {
	d := &BookDetail{
		BookItem:          ToBookItem(b, now),
		Description:       b.Description,
		ConfiguredRate:    b.Discount.String(),
		DiscountStartDate: b.DiscountStartDate,
		DiscountEndDate:   b.DiscountEndDate,
		CreatedAt:         b.CreatedAt,
		UpdatedAt:         b.UpdatedAt,
	}
	if summary != nil {
		d.AverageRating = summary.Average
		d.ReviewCount = summary.Count
	}
	return d
}
