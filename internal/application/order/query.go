package order

import (
	"context"

	"github.com/samber/lo"

	"github.com/xiebiao/bookshop/internal/domain/order"
)

// Viewer 查询订单的当前用户
type Viewer struct {
	UserID     uint
	Privileged bool // Admin或Staff
}

// QueryUseCase 订单查询
type QueryUseCase struct {
	orderRepo order.Repository
}

// NewQueryUseCase 创建订单查询用例
func NewQueryUseCase(orderRepo order.Repository) *QueryUseCase {
	return &QueryUseCase{orderRepo: orderRepo}
}

// Get 订单详情：本人或Admin/Staff可查看
func (uc *QueryUseCase) Get(ctx context.Context, orderID uint, viewer Viewer) (*OrderView, error) {
	o, err := uc.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	owner := o.IsOwnedBy(viewer.UserID)
	if !owner && !viewer.Privileged {
		return nil, order.ErrNotOwner
	}
	return toOrderView(o, owner), nil
}

// ListByUser 用户自己的订单
func (uc *QueryUseCase) ListByUser(ctx context.Context, userID uint, page, pageSize int) (*OrderPage, error) {
	return uc.list(ctx, order.ListParams{UserID: userID, Page: page, PageSize: pageSize}, true)
}

// ListAll 全部订单（Admin/Staff）
func (uc *QueryUseCase) ListAll(ctx context.Context, page, pageSize int) (*OrderPage, error) {
	return uc.list(ctx, order.ListParams{Page: page, PageSize: pageSize}, false)
}

// ListByStatus 按状态查询（Admin/Staff），status为状态名或数字
func (uc *QueryUseCase) ListByStatus(ctx context.Context, status string, page, pageSize int) (*OrderPage, error) {
	s, err := order.ParseStatus(status)
	if err != nil {
		return nil, order.ErrInvalidStatus
	}
	return uc.list(ctx, order.ListParams{Status: s, Page: page, PageSize: pageSize}, false)
}

func (uc *QueryUseCase) list(ctx context.Context, params order.ListParams, withClaimCode bool) (*OrderPage, error) {
	params.Page, params.PageSize = normalizePage(params.Page, params.PageSize)
	orders, total, err := uc.orderRepo.List(ctx, params)
	if err != nil {
		return nil, err
	}
	return &OrderPage{
		Items: lo.Map(orders, func(o *order.Order, _ int) OrderView {
			return *toOrderView(o, withClaimCode)
		}),
		PageNumber: params.Page,
		PageSize:   params.PageSize,
		TotalCount: total,
		TotalPages: int((total + int64(params.PageSize) - 1) / int64(params.PageSize)),
	}, nil
}

func normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}
	if pageSize > 100 {
		pageSize = 100
	}
	return page, pageSize
}
