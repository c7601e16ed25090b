package handler

import (
	"github.com/gin-gonic/gin"

	appbookmark "github.com/xiebiao/bookshop/internal/application/bookmark"
	"github.com/xiebiao/bookshop/internal/interface/http/middleware"
	"github.com/xiebiao/bookshop/pkg/response"
)

// BookmarkHandler 收藏HTTP处理器（顾客）
type BookmarkHandler struct {
	toggle *appbookmark.ToggleUseCase
	list   *appbookmark.ListUseCase
}

// NewBookmarkHandler 创建收藏处理器
func NewBookmarkHandler(toggle *appbookmark.ToggleUseCase, list *appbookmark.ListUseCase) *BookmarkHandler {
	return &BookmarkHandler{toggle: toggle, list: list}
}

// Toggle 收藏/取消收藏
// @Summary      切换收藏
// @Tags         收藏
// @Produce      json
// @Security     BearerAuth
// @Param        bookId path int true "图书ID"
// @Success      200 {object} response.Response{data=appbookmark.ToggleResult}
// @Failure      404 {object} response.Response "图书不存在"
// @Router       /api/Bookmark/toggle/{bookId} [post]
func (h *BookmarkHandler) Toggle(c *gin.Context) {
	bookID, ok := paramID(c, "bookId")
	if !ok {
		return
	}
	result, err := h.toggle.Execute(c.Request.Context(), middleware.GetUserID(c), bookID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// List 我的收藏
// @Summary      收藏列表
// @Tags         收藏
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.Response{data=[]appbook.BookItem}
// @Router       /api/Bookmark [get]
func (h *BookmarkHandler) List(c *gin.Context) {
	items, err := h.list.Execute(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, items)
}
