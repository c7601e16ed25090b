package order

import (
	apperrors "github.com/xiebiao/bookshop/pkg/errors"
)

// 订单领域错误定义
var (
	ErrOrderNotFound = apperrors.New(apperrors.ErrCodeOrderNotFound, "订单不存在")

	// ErrInvalidStatusTransition 当前状态不允许此操作
	ErrInvalidStatusTransition = apperrors.New(apperrors.ErrCodeInvalidOrderStatus, "订单状态不允许此操作")

	// ErrConcurrentUpdate 条件更新未命中（订单状态已被其他请求修改）
	ErrConcurrentUpdate = apperrors.New(apperrors.ErrCodeConflict, "订单状态已变更，请刷新后重试")

	ErrNotOwner         = apperrors.New(apperrors.ErrCodeNotOwner, "无权操作此订单")
	ErrInvalidClaimCode = apperrors.New(apperrors.ErrCodeInvalidClaimCode, "取货码错误")
	ErrEmptyCart        = apperrors.New(apperrors.ErrCodeEmptyCart, "购物车为空，无法下单")
	ErrInvalidQuantity  = apperrors.New(apperrors.ErrCodeInvalidParams, "购买数量必须大于0")
	ErrInvalidStatus    = apperrors.New(apperrors.ErrCodeInvalidParams, "未知的订单状态")
)
