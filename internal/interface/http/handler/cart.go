package handler

import (
	"github.com/gin-gonic/gin"

	appcart "github.com/xiebiao/bookshop/internal/application/cart"
	"github.com/xiebiao/bookshop/internal/interface/http/dto"
	"github.com/xiebiao/bookshop/internal/interface/http/middleware"
	"github.com/xiebiao/bookshop/pkg/response"
)

// CartHandler 购物车HTTP处理器（顾客）
type CartHandler struct {
	addToCart *appcart.AddToCartUseCase
	manage    *appcart.ManageCartUseCase
}

// NewCartHandler 创建购物车处理器
func NewCartHandler(addToCart *appcart.AddToCartUseCase, manage *appcart.ManageCartUseCase) *CartHandler {
	return &CartHandler{addToCart: addToCart, manage: manage}
}

// Add 加入购物车，已存在时数量不变
// @Summary      加入购物车
// @Tags         购物车
// @Produce      json
// @Security     BearerAuth
// @Param        bookId path int true "图书ID"
// @Success      200 {object} response.Response{data=appcart.CartView}
// @Failure      400 {object} response.Response "库存不足"
// @Failure      404 {object} response.Response "图书不存在"
// @Router       /api/Cart/add-to-cart/{bookId} [post]
func (h *CartHandler) Add(c *gin.Context) {
	bookID, ok := paramID(c, "bookId")
	if !ok {
		return
	}
	view, err := h.addToCart.Execute(c.Request.Context(), middleware.GetUserID(c), bookID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, view)
}

// UpdateQuantity 修改数量（1..库存）
// @Summary      修改数量
// @Tags         购物车
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        bookId path int true "图书ID"
// @Param        request body dto.UpdateQuantityRequest true "数量"
// @Success      200 {object} response.Response{data=appcart.CartView}
// @Failure      400 {object} response.Response "数量非法"
// @Router       /api/Cart/update/{bookId} [put]
func (h *CartHandler) UpdateQuantity(c *gin.Context) {
	bookID, ok := paramID(c, "bookId")
	if !ok {
		return
	}

	var req dto.UpdateQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	view, err := h.manage.UpdateQuantity(c.Request.Context(), middleware.GetUserID(c), bookID, req.Quantity)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, view)
}

// Remove 移出购物车
// @Summary      移出购物车
// @Tags         购物车
// @Produce      json
// @Security     BearerAuth
// @Param        bookId path int true "图书ID"
// @Success      200 {object} response.Response{data=appcart.CartView}
// @Router       /api/Cart/remove/{bookId} [delete]
func (h *CartHandler) Remove(c *gin.Context) {
	bookID, ok := paramID(c, "bookId")
	if !ok {
		return
	}
	view, err := h.manage.Remove(c.Request.Context(), middleware.GetUserID(c), bookID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, view)
}

// Clear 清空购物车
// @Summary      清空购物车
// @Tags         购物车
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.Response
// @Router       /api/Cart/clear [delete]
func (h *CartHandler) Clear(c *gin.Context) {
	if err := h.manage.Clear(c.Request.Context(), middleware.GetUserID(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

// Get 查看购物车
// @Summary      查看购物车
// @Description  金额按当前价格和折扣实时计算
// @Tags         购物车
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.Response{data=appcart.CartView}
// @Router       /api/Cart [get]
func (h *CartHandler) Get(c *gin.Context) {
	view, err := h.manage.Get(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, view)
}
