package order

import (
	"context"
	"time"
)

// Repository 订单仓储接口
type Repository interface {
	// Create 创建订单（含明细），需在事务中调用
	Create(ctx context.Context, order *Order) error

	// FindByID 查询订单（含明细），不存在时返回ErrOrderNotFound
	FindByID(ctx context.Context, id uint) (*Order, error)

	// UpdateStatus 条件更新：仅当当前状态为from时改为to
	// 未命中（状态已变）时返回ErrConcurrentUpdate
	UpdateStatus(ctx context.Context, id uint, from, to Status, at time.Time) error

	// List 分页查询，按创建时间倒序
	List(ctx context.Context, params ListParams) ([]*Order, int64, error)

	// HasCompletedOrderWithBook 用户是否有包含该书的已完成订单
	HasCompletedOrderWithBook(ctx context.Context, userID, bookID uint) (bool, error)
}

// ListParams 订单列表查询参数，零值字段不过滤
type ListParams struct {
	UserID   uint
	Status   Status
	Page     int
	PageSize int
}
