package book

import (
	"context"
	"time"
)

// Repository 图书仓储接口
type Repository interface {
	Create(ctx context.Context, book *Book) error

	// FindByID 不存在时返回ErrBookNotFound
	FindByID(ctx context.Context, id uint) (*Book, error)

	// FindByIDs 批量查询（购物车、订单展示），不存在的ID直接忽略
	FindByIDs(ctx context.Context, ids []uint) ([]*Book, error)

	// FindByISBN 不存在时返回ErrBookNotFound
	FindByISBN(ctx context.Context, isbn string) (*Book, error)

	Update(ctx context.Context, book *Book) error

	// Delete 软删除
	Delete(ctx context.Context, id uint) error

	// List 分页检索，返回当前页和总数
	List(ctx context.Context, params ListParams) ([]*Book, int64, error)

	// Facets 检索条件的可选值
	Facets(ctx context.Context) (*Facets, error)

	// Featured 首页推荐位
	Featured(ctx context.Context, kind FeaturedKind, now time.Time, limit int) ([]*Book, error)

	// LockByID SELECT ... FOR UPDATE，必须在事务中调用
	LockByID(ctx context.Context, id uint) (*Book, error)

	// UpdateStock 原子增减库存，扣减后为负时返回ErrInsufficientStock
	UpdateStock(ctx context.Context, id uint, delta int) error

	// IncrSoldCount 累加销量（订单完成时）
	IncrSoldCount(ctx context.Context, id uint, quantity int) error
}

// 排序字段
const (
	SortByTitle           = "title"
	SortByPrice           = "price"
	SortByPublicationDate = "publication_date"
	SortByPopularity      = "popularity"
	SortByCreatedAt       = "created_at"
)

// ListParams 图书检索参数
type ListParams struct {
	Page      int
	PageSize  int
	Search    string // 匹配书名、作者、ISBN、简介
	Author    string
	Genre     string
	Publisher string
	Language  string
	Format    string
	MinPrice  *int64 // 分
	MaxPrice  *int64
	InStock   bool
	SortBy    string
	SortDesc  bool
}

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Normalize 补全默认值：页码从1开始，页大小1-100，未知排序字段按上架时间
func (p *ListParams) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = DefaultPageSize
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
	switch p.SortBy {
	case SortByTitle, SortByPrice, SortByPublicationDate, SortByPopularity, SortByCreatedAt:
	default:
		p.SortBy = SortByCreatedAt
		p.SortDesc = true
	}
}

// Offset 分页偏移量
func (p ListParams) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// Facets 检索条件可选值
type Facets struct {
	Authors    []string
	Genres     []string
	Publishers []string
	Languages  []string
	Formats    []string
	MinPrice   int64
	MaxPrice   int64
}

// FeaturedKind 推荐位类型
type FeaturedKind string

const (
	FeaturedNewArrivals FeaturedKind = "newArrivals" // 最新上架
	FeaturedNewReleases FeaturedKind = "newReleases" // 最新出版（不含未出版）
	FeaturedTopSales    FeaturedKind = "topSales"    // 销量最高
	FeaturedBestSellers FeaturedKind = "bestSellers" // 评分最高
	FeaturedComingSoon  FeaturedKind = "comingSoon"  // 即将出版
)

// FeaturedKinds 首页展示顺序
var FeaturedKinds = []FeaturedKind{
	FeaturedNewArrivals,
	FeaturedNewReleases,
	FeaturedTopSales,
	FeaturedBestSellers,
	FeaturedComingSoon,
}

// FeaturedLimit 每个推荐位最多展示的图书数
const FeaturedLimit = 6
