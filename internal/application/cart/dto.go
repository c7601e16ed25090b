package cart

import (
	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/xiebiao/bookshop/internal/domain/cart"
)

// CartLine 购物车明细
type CartLine struct {
	BookID         uint            `json:"bookId"`
	Title          string          `json:"title"`
	CoverURL       string          `json:"coverUrl"`
	Quantity       int             `json:"quantity"`
	Stock          int             `json:"stock"`
	UnitPrice      int64           `json:"unitPrice"`
	Discount       decimal.Decimal `json:"discount"`
	FinalUnitPrice int64           `json:"finalUnitPrice"`
	LineTotal      int64           `json:"lineTotal"`
}

// CartView 购物车（合计按当前价格实时计算）
type CartView struct {
	CartID        uint       `json:"cartId"`
	Items         []CartLine `json:"items"`
	TotalQuantity int        `json:"totalQuantity"`
	TotalPrice    int64      `json:"totalPrice"`
	TotalSaved    int64      `json:"totalSaved"`
}

func toCartView(s *cart.Summary) *CartView {
	return &CartView{
		CartID: s.CartID,
		Items: lo.Map(s.Lines, func(l cart.Line, _ int) CartLine {
			return CartLine{
				BookID:         l.BookID,
				Title:          l.Title,
				CoverURL:       l.CoverURL,
				Quantity:       l.Quantity,
				Stock:          l.Stock,
				UnitPrice:      l.UnitPrice,
				Discount:       l.Discount,
				FinalUnitPrice: l.FinalUnitPrice,
				LineTotal:      l.LineTotal,
			}
		}),
		TotalQuantity: s.TotalQuantity,
		TotalPrice:    s.TotalPrice,
		TotalSaved:    s.TotalSaved,
	}
}
