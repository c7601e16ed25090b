package handler

import (
	"github.com/gin-gonic/gin"

	appbook "github.com/xiebiao/bookshop/internal/application/book"
	appbookmark "github.com/xiebiao/bookshop/internal/application/bookmark"
	"github.com/xiebiao/bookshop/internal/domain/book"
	"github.com/xiebiao/bookshop/internal/domain/user"
	"github.com/xiebiao/bookshop/internal/interface/http/dto"
	"github.com/xiebiao/bookshop/internal/interface/http/middleware"
	apperrors "github.com/xiebiao/bookshop/pkg/errors"
	"github.com/xiebiao/bookshop/pkg/response"
)

// coverField 封面图片的表单字段名
const coverField = "image"

// BookHandler 图书HTTP处理器
type BookHandler struct {
	addBook     *appbook.AddBookUseCase
	updateBook  *appbook.UpdateBookUseCase
	setDiscount *appbook.SetDiscountUseCase
	deleteBook  *appbook.DeleteBookUseCase
	listBooks   *appbook.ListBooksUseCase
	getBook     *appbook.GetBookUseCase
	getFilters  *appbook.GetFiltersUseCase
	getFeatured *appbook.GetFeaturedUseCase
	bookmarks   *appbookmark.StatusUseCase
	maxUpload   int64 // 字节
}

// NewBookHandler 创建图书处理器
func NewBookHandler(
	addBook *appbook.AddBookUseCase,
	updateBook *appbook.UpdateBookUseCase,
	setDiscount *appbook.SetDiscountUseCase,
	deleteBook *appbook.DeleteBookUseCase,
	listBooks *appbook.ListBooksUseCase,
	getBook *appbook.GetBookUseCase,
	getFilters *appbook.GetFiltersUseCase,
	getFeatured *appbook.GetFeaturedUseCase,
	bookmarks *appbookmark.StatusUseCase,
	maxUploadMB int64,
) *BookHandler {
	return &BookHandler{
		addBook:     addBook,
		updateBook:  updateBook,
		setDiscount: setDiscount,
		deleteBook:  deleteBook,
		listBooks:   listBooks,
		getBook:     getBook,
		getFilters:  getFilters,
		getFeatured: getFeatured,
		bookmarks:   bookmarks,
		maxUpload:   maxUploadMB << 20,
	}
}

// AddBook 新增图书（管理员）
// @Summary      新增图书
// @Description  multipart表单，封面图片字段为image
// @Tags         图书
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        isbn formData string true "ISBN"
// @Param        title formData string true "书名"
// @Param        author formData string true "作者"
// @Param        publisher formData string true "出版社"
// @Param        genre formData string true "类别"
// @Param        language formData string true "语言"
// @Param        format formData string true "装帧"
// @Param        description formData string false "简介"
// @Param        price formData int true "价格（分）"
// @Param        stock formData int true "库存"
// @Param        publicationDate formData string true "出版日期"
// @Param        image formData file false "封面"
// @Success      201 {object} response.Response{data=appbook.BookDetail}
// @Failure      400 {object} response.Response "参数错误"
// @Failure      409 {object} response.Response "ISBN已存在"
// @Router       /api/Book/addBook [post]
func (h *BookHandler) AddBook(c *gin.Context) {
	var form dto.BookForm
	if err := c.ShouldBind(&form); err != nil {
		bindError(c, err)
		return
	}
	published, err := dto.ParseDate(form.PublicationDate)
	if err != nil {
		response.ErrorWithCode(c, apperrors.ErrCodeInvalidParams, err.Error())
		return
	}

	cover, closeCover, err := formUpload(c, coverField, h.maxUpload)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer closeCover()

	detail, err := h.addBook.Execute(c.Request.Context(), appbook.AddBookRequest{
		ISBN:            form.ISBN,
		Title:           form.Title,
		Author:          form.Author,
		Publisher:       form.Publisher,
		Genre:           form.Genre,
		Language:        form.Language,
		Format:          form.Format,
		Description:     form.Description,
		Price:           form.Price,
		Stock:           form.Stock,
		PublicationDate: published,
		Cover:           cover,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, detail)
}

// UpdateBook 修改图书（管理员）
// @Summary      修改图书
// @Description  只修改提交的字段，上传image时替换封面
// @Tags         图书
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "图书ID"
// @Param        image formData file false "新封面"
// @Success      200 {object} response.Response{data=appbook.BookDetail}
// @Failure      404 {object} response.Response "图书不存在"
// @Router       /api/Book/{id} [put]
func (h *BookHandler) UpdateBook(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var form dto.BookPatchForm
	if err := c.ShouldBind(&form); err != nil {
		bindError(c, err)
		return
	}
	published, err := dto.ParseOptionalDate(form.PublicationDate)
	if err != nil {
		response.ErrorWithCode(c, apperrors.ErrCodeInvalidParams, err.Error())
		return
	}

	cover, closeCover, err := formUpload(c, coverField, h.maxUpload)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer closeCover()

	detail, err := h.updateBook.Execute(c.Request.Context(), id, appbook.UpdateBookRequest{
		Patch: book.Patch{
			ISBN:            form.ISBN,
			Title:           form.Title,
			Author:          form.Author,
			Publisher:       form.Publisher,
			Genre:           form.Genre,
			Language:        form.Language,
			Format:          form.Format,
			Description:     form.Description,
			Price:           form.Price,
			Stock:           form.Stock,
			PublicationDate: published,
		},
		Cover: cover,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, detail)
}

// SetDiscount 设置折扣（管理员）
// @Summary      设置折扣
// @Description  discount ∈ [0,1)，起止日期可选
// @Tags         图书
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "图书ID"
// @Param        request body dto.DiscountRequest true "折扣"
// @Success      200 {object} response.Response{data=appbook.BookDetail}
// @Failure      400 {object} response.Response "折扣非法"
// @Router       /api/Book/{id}/discount [put]
func (h *BookHandler) SetDiscount(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req dto.DiscountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	start, err := dto.ParseOptionalDate(req.StartDate)
	if err != nil {
		response.ErrorWithCode(c, apperrors.ErrCodeInvalidParams, err.Error())
		return
	}
	end, err := dto.ParseOptionalDate(req.EndDate)
	if err != nil {
		response.ErrorWithCode(c, apperrors.ErrCodeInvalidParams, err.Error())
		return
	}

	detail, err := h.setDiscount.Execute(c.Request.Context(), id, appbook.SetDiscountRequest{
		Discount:  req.Discount,
		StartDate: start,
		EndDate:   end,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, detail)
}

// DeleteBook 删除图书（管理员，软删除）
// @Summary      删除图书
// @Tags         图书
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "图书ID"
// @Success      200 {object} response.Response
// @Failure      404 {object} response.Response "图书不存在"
// @Router       /api/Book/{id} [delete]
func (h *BookHandler) DeleteBook(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.deleteBook.Execute(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

// ListBooks 图书检索
// @Summary      图书列表
// @Tags         图书
// @Produce      json
// @Param        pageNumber query int false "页码"
// @Param        pageSize query int false "每页数量"
// @Param        search query string false "书名/作者/ISBN/简介"
// @Param        author query string false "作者"
// @Param        genre query string false "类别"
// @Param        publisher query string false "出版社"
// @Param        language query string false "语言"
// @Param        format query string false "装帧"
// @Param        minPrice query int false "最低价（分）"
// @Param        maxPrice query int false "最高价（分）"
// @Param        inStock query bool false "仅有货"
// @Param        sortBy query string false "排序字段" Enums(title, price, publication_date, popularity, created_at)
// @Param        sortDesc query bool false "降序"
// @Success      200 {object} response.Response{data=appbook.ListBooksResponse}
// @Router       /api/Book [get]
func (h *BookHandler) ListBooks(c *gin.Context) {
	var q dto.ListBooksQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		bindError(c, err)
		return
	}

	result, err := h.listBooks.Execute(c.Request.Context(), appbook.ListBooksRequest{
		PageNumber: q.PageNumber,
		PageSize:   q.PageSize,
		Search:     q.Search,
		Author:     q.Author,
		Genre:      q.Genre,
		Publisher:  q.Publisher,
		Language:   q.Language,
		Format:     q.Format,
		MinPrice:   q.MinPrice,
		MaxPrice:   q.MaxPrice,
		InStock:    q.InStock,
		SortBy:     q.SortBy,
		SortDesc:   q.SortDesc,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// GetBook 图书详情
// @Summary      图书详情
// @Description  含当前折扣、评分和书评数；顾客携带Token时返回isBookmarked
// @Tags         图书
// @Produce      json
// @Param        id path int true "图书ID"
// @Success      200 {object} response.Response{data=appbook.BookDetail}
// @Failure      404 {object} response.Response "图书不存在"
// @Router       /api/Book/{id} [get]
func (h *BookHandler) GetBook(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	detail, err := h.getBook.Execute(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	if userID := middleware.GetUserID(c); userID != 0 && middleware.GetRole(c) == user.RoleRegular {
		marked, err := h.bookmarks.IsBookmarked(c.Request.Context(), userID, id)
		if err != nil {
			response.Error(c, err)
			return
		}
		detail.IsBookmarked = &marked
	}
	response.Success(c, detail)
}

// GetFilters 筛选项
// @Summary      筛选项
// @Tags         图书
// @Produce      json
// @Success      200 {object} response.Response{data=appbook.Filters}
// @Router       /api/Book/filters [get]
func (h *BookHandler) GetFilters(c *gin.Context) {
	filters, err := h.getFilters.Execute(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, filters)
}

// GetFeatured 首页推荐
// @Summary      首页推荐
// @Description  新上架、新出版、销量榜、好评榜、即将出版
// @Tags         图书
// @Produce      json
// @Success      200 {object} response.Response
// @Router       /api/Book/featured [get]
func (h *BookHandler) GetFeatured(c *gin.Context) {
	featured, err := h.getFeatured.Execute(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, featured)
}
