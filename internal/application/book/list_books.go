package book

import (
	"context"
	"time"

	"github.com/samber/lo"

	"github.com/xiebiao/bookshop/internal/domain/book"
)

// ListBooksUseCase 图书检索用例
// 支持分页、搜索、多条件筛选、排序；列表项不返回description
type ListBooksUseCase struct {
	bookRepo book.Repository
	now      func() time.Time
}

// NewListBooksUseCase 创建检索用例
func NewListBooksUseCase(bookRepo book.Repository) *ListBooksUseCase {
	return &ListBooksUseCase{bookRepo: bookRepo, now: time.Now}
}

// ListBooksRequest 检索请求
type ListBooksRequest struct {
	PageNumber int
	PageSize   int
	Search     string
	Author     string
	Genre      string
	Publisher  string
	Language   string
	Format     string
	MinPrice   *int64 // 分
	MaxPrice   *int64
	InStock    bool
	SortBy     string // title | price | publication_date | popularity | created_at
	SortDesc   bool
}

// ListBooksResponse 检索结果
// len(Items) ≤ PageSize，TotalPages = ceil(TotalCount / PageSize)
type ListBooksResponse struct {
	Items      []BookItem `json:"items"`
	PageNumber int        `json:"pageNumber"`
	PageSize   int        `json:"pageSize"`
	TotalCount int64      `json:"totalCount"`
	TotalPages int        `json:"totalPages"`
}

// Execute 执行检索
func (uc *ListBooksUseCase) Execute(ctx context.Context, req ListBooksRequest) (*ListBooksResponse, error) {
	params := book.ListParams{
		Page:      req.PageNumber,
		PageSize:  req.PageSize,
		Search:    req.Search,
		Author:    req.Author,
		Genre:     req.Genre,
		Publisher: req.Publisher,
		Language:  req.Language,
		Format:    req.Format,
		MinPrice:  req.MinPrice,
		MaxPrice:  req.MaxPrice,
		InStock:   req.InStock,
		SortBy:    req.SortBy,
		SortDesc:  req.SortDesc,
	}
	params.Normalize()

	books, total, err := uc.bookRepo.List(ctx, params)
	if err != nil {
		return nil, err
	}

	now := uc.now()
	return &ListBooksResponse{
		Items:      lo.Map(books, func(b *book.Book, _ int) BookItem { return ToBookItem(b, now) }),
		PageNumber: params.Page,
		PageSize:   params.PageSize,
		TotalCount: total,
		TotalPages: totalPages(total, params.PageSize),
	}, nil
}

func totalPages(total int64, pageSize int) int {
	if pageSize <= 0 {
		return 0
	}
	return int((total + int64(pageSize) - 1) / int64(pageSize))
}
