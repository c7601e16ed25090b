package handler

import (
	"github.com/gin-gonic/gin"

	apporder "github.com/xiebiao/bookshop/internal/application/order"
	"github.com/xiebiao/bookshop/internal/interface/http/dto"
	"github.com/xiebiao/bookshop/internal/interface/http/middleware"
	"github.com/xiebiao/bookshop/pkg/response"
)

// OrderHandler 订单HTTP处理器
type OrderHandler struct {
	checkout *apporder.CheckoutUseCase
	confirm  *apporder.ConfirmOrderUseCase
	complete *apporder.CompleteOrderUseCase
	cancel   *apporder.CancelOrderUseCase
	query    *apporder.QueryUseCase
}

// NewOrderHandler 创建订单处理器
func NewOrderHandler(
	checkout *apporder.CheckoutUseCase,
	confirm *apporder.ConfirmOrderUseCase,
	complete *apporder.CompleteOrderUseCase,
	cancel *apporder.CancelOrderUseCase,
	query *apporder.QueryUseCase,
) *OrderHandler {
	return &OrderHandler{
		checkout: checkout,
		confirm:  confirm,
		complete: complete,
		cancel:   cancel,
		query:    query,
	}
}

// Checkout 购物车结算
// @Summary      结算下单
// @Description  按当前价格和折扣生成订单快照，购物车保持不变
// @Tags         订单
// @Produce      json
// @Security     BearerAuth
// @Success      201 {object} response.Response{data=apporder.OrderView}
// @Failure      400 {object} response.Response "购物车为空"
// @Router       /api/Order/checkout [post]
func (h *OrderHandler) Checkout(c *gin.Context) {
	view, err := h.checkout.Execute(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, view)
}

// Confirm 确认订单（Pending → Ongoing）
// @Summary      确认订单
// @Tags         订单
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "订单ID"
// @Success      200 {object} response.Response{data=apporder.OrderView}
// @Failure      400 {object} response.Response "状态不允许"
// @Failure      403 {object} response.Response "非本人订单"
// @Failure      409 {object} response.Response "并发修改"
// @Router       /api/Order/confirm-order/{id} [post]
func (h *OrderHandler) Confirm(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	view, err := h.confirm.Execute(c.Request.Context(), id, middleware.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, view)
}

// Complete 店员核销取货码（Ongoing → Completed）
// @Summary      完成订单
// @Tags         订单
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "订单ID"
// @Param        request body dto.CompleteOrderRequest true "取货码"
// @Success      200 {object} response.Response{data=apporder.OrderView}
// @Failure      400 {object} response.Response "取货码错误或状态不允许"
// @Failure      403 {object} response.Response "非店员"
// @Router       /api/Order/complete-order/{id} [post]
func (h *OrderHandler) Complete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req dto.CompleteOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	view, err := h.complete.Execute(c.Request.Context(), id, req.ClaimCode)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, view)
}

// Cancel 取消订单（Pending → Cancelled）
// @Summary      取消订单
// @Tags         订单
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "订单ID"
// @Success      200 {object} response.Response{data=apporder.OrderView}
// @Failure      400 {object} response.Response "状态不允许"
// @Failure      403 {object} response.Response "非本人订单"
// @Router       /api/Order/cancel-order/{id} [post]
func (h *OrderHandler) Cancel(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	view, err := h.cancel.Execute(c.Request.Context(), id, middleware.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, view)
}

// Get 订单详情（本人或管理员/店员）
// @Summary      订单详情
// @Tags         订单
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "订单ID"
// @Success      200 {object} response.Response{data=apporder.OrderView}
// @Failure      403 {object} response.Response "无权查看"
// @Failure      404 {object} response.Response "订单不存在"
// @Router       /api/Order/{id} [get]
func (h *OrderHandler) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	view, err := h.query.Get(c.Request.Context(), id, apporder.Viewer{
		UserID:     middleware.GetUserID(c),
		Privileged: middleware.IsPrivileged(c),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, view)
}

// ListMine 我的订单
// @Summary      我的订单
// @Tags         订单
// @Produce      json
// @Security     BearerAuth
// @Param        pageNumber query int false "页码"
// @Param        pageSize query int false "每页数量"
// @Success      200 {object} response.Response{data=apporder.OrderPage}
// @Router       /api/Order/user-orders [get]
func (h *OrderHandler) ListMine(c *gin.Context) {
	var q dto.PageQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		bindError(c, err)
		return
	}
	page, err := h.query.ListByUser(c.Request.Context(), middleware.GetUserID(c), q.PageNumber, q.PageSize)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, page)
}

// ListAll 全部订单（管理员/店员）
// @Summary      全部订单
// @Tags         订单
// @Produce      json
// @Security     BearerAuth
// @Param        pageNumber query int false "页码"
// @Param        pageSize query int false "每页数量"
// @Success      200 {object} response.Response{data=apporder.OrderPage}
// @Router       /api/Order/admin/all-orders [get]
func (h *OrderHandler) ListAll(c *gin.Context) {
	var q dto.PageQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		bindError(c, err)
		return
	}
	page, err := h.query.ListAll(c.Request.Context(), q.PageNumber, q.PageSize)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, page)
}

// ListByStatus 按状态查询订单（管理员/店员）
// @Summary      按状态查询订单
// @Tags         订单
// @Produce      json
// @Security     BearerAuth
// @Param        status path string true "订单状态" Enums(Pending, Ongoing, Completed, Cancelled)
// @Param        pageNumber query int false "页码"
// @Param        pageSize query int false "每页数量"
// @Success      200 {object} response.Response{data=apporder.OrderPage}
// @Failure      400 {object} response.Response "状态非法"
// @Router       /api/Order/admin/orders-by-status/{status} [get]
func (h *OrderHandler) ListByStatus(c *gin.Context) {
	var uri dto.OrderStatusURI
	if err := c.ShouldBindUri(&uri); err != nil {
		bindError(c, err)
		return
	}
	var q dto.PageQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		bindError(c, err)
		return
	}
	page, err := h.query.ListByStatus(c.Request.Context(), uri.Status, q.PageNumber, q.PageSize)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, page)
}
