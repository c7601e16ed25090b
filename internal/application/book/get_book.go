package book

import (
	"context"
	"time"

	"github.com/samber/lo"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/xiebiao/bookshop/internal/application/port"
	"github.com/xiebiao/bookshop/internal/domain/book"
	"github.com/xiebiao/bookshop/internal/domain/review"
	"github.com/xiebiao/bookshop/pkg/tracing"
)

// detailSnapshot 详情缓存内容
// 缓存原始数据而不是计算后的价格，折扣是否生效在读取时按当前时间判断
type detailSnapshot struct {
	Book    *book.Book      `json:"book"`
	Summary *review.Summary `json:"summary"`
}

// GetBookUseCase 图书详情用例（Cache-Aside）
type GetBookUseCase struct {
	bookRepo   book.Repository
	reviewRepo review.Repository
	cache      port.Cache
	ttl        time.Duration
	logger     *zap.Logger
	now        func() time.Time
}

// NewGetBookUseCase 创建详情用例
func NewGetBookUseCase(
	bookRepo book.Repository,
	reviewRepo review.Repository,
	cache port.Cache,
	ttl time.Duration,
	logger *zap.Logger,
) *GetBookUseCase {
	return &GetBookUseCase{
		bookRepo:   bookRepo,
		reviewRepo: reviewRepo,
		cache:      cache,
		ttl:        ttl,
		logger:     logger,
		now:        time.Now,
	}
}

// Execute 查询详情：先查缓存，未命中再查数据库并回填
func (uc *GetBookUseCase) Execute(ctx context.Context, id uint) (*BookDetail, error) {
	ctx, span := tracing.StartSpan(ctx, "book", "GetBookDetails", attribute.Int64("book_id", int64(id)))
	defer span.End()

	key := DetailCacheKey(id)
	var snap detailSnapshot
	hit, err := uc.cache.Get(ctx, key, &snap)
	if err != nil {
		uc.logger.Warn("read book cache failed", zap.String("key", key), zap.Error(err))
	}
	if hit && snap.Book != nil {
		return ToBookDetail(snap.Book, snap.Summary, uc.now()), nil
	}

	b, err := uc.bookRepo.FindByID(ctx, id)
	if err != nil {
		tracing.RecordError(span, err)
		return nil, err
	}
	summary, err := uc.reviewRepo.Summary(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := uc.cache.Set(ctx, key, detailSnapshot{Book: b, Summary: summary}, uc.ttl); err != nil {
		uc.logger.Warn("write book cache failed", zap.String("key", key), zap.Error(err))
	}
	return ToBookDetail(b, summary, uc.now()), nil
}

// Filters 检索条件可选值
type Filters struct {
	Authors    []string `json:"authors"`
	Genres     []string `json:"genres"`
	Publishers []string `json:"publishers"`
	Languages  []string `json:"languages"`
	Formats    []string `json:"formats"`
	MinPrice   int64    `json:"minPrice"`
	MaxPrice   int64    `json:"maxPrice"`
}

// GetFiltersUseCase 检索条件用例
type GetFiltersUseCase struct {
	bookRepo book.Repository
}

// NewGetFiltersUseCase 创建检索条件用例
func NewGetFiltersUseCase(bookRepo book.Repository) *GetFiltersUseCase {
	return &GetFiltersUseCase{bookRepo: bookRepo}
}

// Execute 查询检索条件
func (uc *GetFiltersUseCase) Execute(ctx context.Context) (*Filters, error) {
	f, err := uc.bookRepo.Facets(ctx)
	if err != nil {
		return nil, err
	}
	orEmpty := func(s []string) []string { return lo.Ternary(s == nil, []string{}, s) }
	return &Filters{
		Authors:    orEmpty(f.Authors),
		Genres:     orEmpty(f.Genres),
		Publishers: orEmpty(f.Publishers),
		Languages:  orEmpty(f.Languages),
		Formats:    orEmpty(f.Formats),
		MinPrice:   f.MinPrice,
		MaxPrice:   f.MaxPrice,
	}, nil
}

// GetFeaturedUseCase 首页推荐位用例
type GetFeaturedUseCase struct {
	bookRepo book.Repository
	cache    port.Cache
	ttl      time.Duration
	logger   *zap.Logger
	now      func() time.Time
}

// NewGetFeaturedUseCase 创建推荐位用例
func NewGetFeaturedUseCase(bookRepo book.Repository, cache port.Cache, ttl time.Duration, logger *zap.Logger) *GetFeaturedUseCase {
	return &GetFeaturedUseCase{bookRepo: bookRepo, cache: cache, ttl: ttl, logger: logger, now: time.Now}
}

// Execute 返回各推荐位（每个最多6本），key为推荐位名称
func (uc *GetFeaturedUseCase) Execute(ctx context.Context) (map[string][]BookItem, error) {
	now := uc.now()

	var snap map[book.FeaturedKind][]*book.Book
	hit, err := uc.cache.Get(ctx, featuredCacheKey, &snap)
	if err != nil {
		uc.logger.Warn("read featured cache failed", zap.Error(err))
	}
	if !hit || snap == nil {
		snap = make(map[book.FeaturedKind][]*book.Book, len(book.FeaturedKinds))
		for _, kind := range book.FeaturedKinds {
			books, err := uc.bookRepo.Featured(ctx, kind, now, book.FeaturedLimit)
			if err != nil {
				return nil, err
			}
			snap[kind] = books
		}
		if err := uc.cache.Set(ctx, featuredCacheKey, snap, uc.ttl); err != nil {
			uc.logger.Warn("write featured cache failed", zap.Error(err))
		}
	}

	result := make(map[string][]BookItem, len(book.FeaturedKinds))
	for _, kind := range book.FeaturedKinds {
		result[string(kind)] = lo.Map(snap[kind], func(b *book.Book, _ int) BookItem { return ToBookItem(b, now) })
	}
	return result, nil
}
