package order

import (
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/xiebiao/bookshop/internal/domain/order"
)

// OrderItemView 订单明细（下单时的价格快照）
type OrderItemView struct {
	BookID         uint            `json:"bookId"`
	Title          string          `json:"title"`
	Quantity       int             `json:"quantity"`
	UnitPrice      int64           `json:"unitPrice"`
	Discount       decimal.Decimal `json:"discount"`
	FinalUnitPrice int64           `json:"finalUnitPrice"`
	LineTotal      int64           `json:"lineTotal"`
}

// OrderView 订单
// ClaimCode只返回给下单用户本人，店员需由顾客出示
type OrderView struct {
	ID          uint            `json:"id"`
	OrderNo     string          `json:"orderNo"`
	UserID      uint            `json:"userId"`
	ClaimCode   string          `json:"claimCode,omitempty"`
	TotalPrice  int64           `json:"totalPrice"`
	Discount    int64           `json:"discount"`
	Status      string          `json:"status"`
	Items       []OrderItemView `json:"items"`
	CompletedAt *time.Time      `json:"completedAt,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// OrderPage 订单分页
type OrderPage struct {
	Items      []OrderView `json:"items"`
	PageNumber int         `json:"pageNumber"`
	PageSize   int         `json:"pageSize"`
	TotalCount int64       `json:"totalCount"`
	TotalPages int         `json:"totalPages"`
}

func toOrderView(o *order.Order, withClaimCode bool) *OrderView {
	v := &OrderView{
		ID:          o.ID,
		OrderNo:     o.OrderNo,
		UserID:      o.UserID,
		TotalPrice:  o.TotalPrice,
		Discount:    o.Discount,
		Status:      o.Status.String(),
		CompletedAt: o.CompletedAt,
		CreatedAt:   o.CreatedAt,
		UpdatedAt:   o.UpdatedAt,
		Items: lo.Map(o.Items, func(i order.Item, _ int) OrderItemView {
			return OrderItemView{
				BookID:         i.BookID,
				Title:          i.Title,
				Quantity:       i.Quantity,
				UnitPrice:      i.UnitPrice,
				Discount:       i.Discount,
				FinalUnitPrice: i.FinalUnitPrice,
				LineTotal:      i.LineTotal(),
			}
		}),
	}
	if withClaimCode {
		v.ClaimCode = o.ClaimCode
	}
	return v
}

// Event 订单领域事件内容
type Event struct {
	OrderID    uint      `json:"orderId"`
	OrderNo    string    `json:"orderNo"`
	UserID     uint      `json:"userId"`
	Status     string    `json:"status"`
	TotalPrice int64     `json:"totalPrice"`
	BookIDs    []uint    `json:"bookIds"`
	OccurredAt time.Time `json:"occurredAt"`
}

func newEvent(o *order.Order, at time.Time) Event {
	return Event{
		OrderID:    o.ID,
		OrderNo:    o.OrderNo,
		UserID:     o.UserID,
		Status:     o.Status.String(),
		TotalPrice: o.TotalPrice,
		BookIDs:    bookIDs(o),
		OccurredAt: at,
	}
}

func bookIDs(o *order.Order) []uint {
	return lo.Map(o.Items, func(i order.Item, _ int) uint { return i.BookID })
}

// CompletionNotice 订单完成推送内容（ReceiveOrderCompletion）
type CompletionNotice struct {
	OrderID     uint      `json:"orderId"`
	OrderNo     string    `json:"orderNo"`
	Message     string    `json:"message"`
	CompletedAt time.Time `json:"completedAt"`
}
