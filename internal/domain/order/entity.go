package order

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Status 订单状态
// 取值与历史数据保持一致：1待确认 2已取消 3进行中（待取货）4已完成
type Status int

const (
	StatusPending   Status = 1
	StatusCancelled Status = 2
	StatusOngoing   Status = 3
	StatusCompleted Status = 4
)

// String 对外展示的状态名
func (s Status) String() string {
	switch s {
	case StatusPending:
		return "Pending"
	case StatusCancelled:
		return "Cancelled"
	case StatusOngoing:
		return "Ongoing"
	case StatusCompleted:
		return "Completed"
	default:
		return "Unknown"
	}
}

// IsTerminal 是否终态
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// ParseStatus 解析状态名（不区分大小写）或数字
func ParseStatus(v string) (Status, error) {
	if n, err := strconv.Atoi(v); err == nil {
		s := Status(n)
		if s.String() != "Unknown" {
			return s, nil
		}
		return 0, fmt.Errorf("unknown order status %q", v)
	}
	for _, s := range []Status{StatusPending, StatusCancelled, StatusOngoing, StatusCompleted} {
		if strings.EqualFold(v, s.String()) {
			return s, nil
		}
	}
	return 0, fmt.Errorf("unknown order status %q", v)
}

// transitions 合法的状态流转（终态没有后续状态）
var transitions = map[Status][]Status{
	StatusPending: {StatusOngoing, StatusCancelled},
	StatusOngoing: {StatusCompleted},
}

// Order 订单（聚合根）
// Items是下单时购物车的快照，与之后的图书改价无关
type Order struct {
	ID          uint
	OrderNo     string
	UserID      uint
	ClaimCode   string // 取货码，店员核对后完成订单
	TotalPrice  int64  // 折后总价（分）
	Discount    int64  // 折扣优惠金额（分）
	Status      Status
	Items       []Item
	CompletedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Item 订单明细（价格快照）
type Item struct {
	ID             uint
	OrderID        uint
	BookID         uint
	Title          string
	Quantity       int
	UnitPrice      int64           // 下单时原价
	Discount       decimal.Decimal // 下单时生效的折扣
	FinalUnitPrice int64           // 下单时折后单价
}

// LineTotal 明细折后金额
func (i Item) LineTotal() int64 {
	return i.FinalUnitPrice * int64(i.Quantity)
}

// NewOrder 创建待确认订单，总价和优惠金额由明细计算
func NewOrder(orderNo, claimCode string, userID uint, items []Item) (*Order, error) {
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}
	for _, item := range items {
		if item.Quantity <= 0 {
			return nil, ErrInvalidQuantity
		}
	}

	now := time.Now()
	o := &Order{
		OrderNo:   orderNo,
		UserID:    userID,
		ClaimCode: claimCode,
		Status:    StatusPending,
		Items:     items,
		CreatedAt: now,
		UpdatedAt: now,
	}
	o.TotalPrice, o.Discount = o.CalculateTotals()
	return o, nil
}

// CalculateTotals 按明细计算折后总价和优惠金额
func (o *Order) CalculateTotals() (total, saved int64) {
	for _, item := range o.Items {
		total += item.LineTotal()
		saved += (item.UnitPrice - item.FinalUnitPrice) * int64(item.Quantity)
	}
	return total, saved
}

// CanTransitionTo 检查是否可以转换到目标状态
func (o *Order) CanTransitionTo(target Status) bool {
	for _, allowed := range transitions[o.Status] {
		if allowed == target {
			return true
		}
	}
	return false
}

// TransitionTo 状态转换
func (o *Order) TransitionTo(target Status, now time.Time) error {
	if !o.CanTransitionTo(target) {
		return fmt.Errorf("%w: %s → %s", ErrInvalidStatusTransition, o.Status, target)
	}
	o.Status = target
	o.UpdatedAt = now
	if target == StatusCompleted {
		o.CompletedAt = &now
	}
	return nil
}

// IsOwnedBy 检查订单是否属于指定用户
func (o *Order) IsOwnedBy(userID uint) bool {
	return o.UserID == userID
}

// ContainsBook 订单中是否包含某本书
func (o *Order) ContainsBook(bookID uint) bool {
	for _, item := range o.Items {
		if item.BookID == bookID {
			return true
		}
	}
	return false
}
