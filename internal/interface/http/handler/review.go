package handler

import (
	"github.com/gin-gonic/gin"

	appreview "github.com/xiebiao/bookshop/internal/application/review"
	"github.com/xiebiao/bookshop/internal/interface/http/dto"
	"github.com/xiebiao/bookshop/internal/interface/http/middleware"
	"github.com/xiebiao/bookshop/pkg/response"
)

// ReviewHandler 书评HTTP处理器
type ReviewHandler struct {
	add  *appreview.AddReviewUseCase
	list *appreview.ListUseCase
}

// NewReviewHandler 创建书评处理器
func NewReviewHandler(add *appreview.AddReviewUseCase, list *appreview.ListUseCase) *ReviewHandler {
	return &ReviewHandler{add: add, list: list}
}

// Add 发表书评（需有包含该书的已完成订单）
// @Summary      发表书评
// @Tags         书评
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        bookId path int true "图书ID"
// @Param        request body dto.ReviewRequest true "书评"
// @Success      201 {object} response.Response{data=appreview.ReviewView}
// @Failure      400 {object} response.Response "评分非法"
// @Failure      403 {object} response.Response "未购买"
// @Failure      409 {object} response.Response "已评价"
// @Router       /api/Review/add/{bookId} [post]
func (h *ReviewHandler) Add(c *gin.Context) {
	bookID, ok := paramID(c, "bookId")
	if !ok {
		return
	}

	var req dto.ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	view, err := h.add.Execute(c.Request.Context(), middleware.GetUserID(c), bookID, appreview.AddReviewRequest{
		Content: req.Content,
		Rating:  req.Rating,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, view)
}

// List 图书的书评
// @Summary      书评列表
// @Tags         书评
// @Produce      json
// @Param        bookId path int true "图书ID"
// @Param        pageNumber query int false "页码"
// @Param        pageSize query int false "每页数量"
// @Success      200 {object} response.Response{data=appreview.ReviewPage}
// @Router       /api/Review/book/{bookId} [get]
func (h *ReviewHandler) List(c *gin.Context) {
	bookID, ok := paramID(c, "bookId")
	if !ok {
		return
	}

	var q dto.PageQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		bindError(c, err)
		return
	}

	page, err := h.list.Execute(c.Request.Context(), bookID, q.PageNumber, q.PageSize)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, page)
}
