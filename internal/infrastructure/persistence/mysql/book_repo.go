package mysql

import (
	"context"
	"time"

	"github.com/samber/lo"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/xiebiao/bookshop/internal/domain/book"
	apperrors "github.com/xiebiao/bookshop/pkg/errors"
)

// bookRepository 图书仓储实现
type bookRepository struct {
	db *gorm.DB
}

// NewBookRepository 创建图书仓储
func NewBookRepository(db *gorm.DB) book.Repository {
	return &bookRepository{db: db}
}

// Create 创建图书
func (r *bookRepository) Create(ctx context.Context, b *book.Book) error {
	model := toBookModel(b)
	if err := getDB(ctx, r.db).Create(model).Error; err != nil {
		if isDuplicateError(err) {
			return book.ErrISBNDuplicate
		}
		return apperrors.Wrap(err, "创建图书失败")
	}

	b.ID = model.ID
	b.CreatedAt = model.CreatedAt
	b.UpdatedAt = model.UpdatedAt
	return nil
}

// FindByID 根据ID查找图书
func (r *bookRepository) FindByID(ctx context.Context, id uint) (*book.Book, error) {
	var model BookModel
	if err := getDB(ctx, r.db).First(&model, id).Error; err != nil {
		if isNotFound(err) {
			return nil, book.ErrBookNotFound
		}
		return nil, apperrors.Wrap(err, "查询图书失败")
	}
	return toBookEntity(&model), nil
}

// FindByIDs 批量查询，不存在的ID忽略
func (r *bookRepository) FindByIDs(ctx context.Context, ids []uint) ([]*book.Book, error) {
	if len(ids) == 0 {
		return []*book.Book{}, nil
	}
	var models []BookModel
	if err := getDB(ctx, r.db).Where("id IN ?", lo.Uniq(ids)).Find(&models).Error; err != nil {
		return nil, apperrors.Wrap(err, "批量查询图书失败")
	}
	return toBookEntities(models), nil
}

// FindByISBN 根据ISBN查找图书
func (r *bookRepository) FindByISBN(ctx context.Context, isbn string) (*book.Book, error) {
	var model BookModel
	if err := getDB(ctx, r.db).Where("isbn = ?", isbn).First(&model).Error; err != nil {
		if isNotFound(err) {
			return nil, book.ErrBookNotFound
		}
		return nil, apperrors.Wrap(err, "查询图书失败")
	}
	return toBookEntity(&model), nil
}

// Update 更新图书信息（全字段）
func (r *bookRepository) Update(ctx context.Context, b *book.Book) error {
	model := toBookModel(b)
	if err := getDB(ctx, r.db).Save(model).Error; err != nil {
		if isDuplicateError(err) {
			return book.ErrISBNDuplicate
		}
		return apperrors.Wrap(err, "更新图书失败")
	}
	b.UpdatedAt = model.UpdatedAt
	return nil
}

// Delete 删除图书(软删除)
func (r *bookRepository) Delete(ctx context.Context, id uint) error {
	result := getDB(ctx, r.db).Delete(&BookModel{}, id)
	if result.Error != nil {
		return apperrors.Wrap(result.Error, "删除图书失败")
	}
	if result.RowsAffected == 0 {
		return book.ErrBookNotFound
	}
	return nil
}

// List 分页检索图书
func (r *bookRepository) List(ctx context.Context, params book.ListParams) ([]*book.Book, int64, error) {
	params.Normalize()

	var (
		models []BookModel
		total  int64
	)

	query := applyBookFilters(getDB(ctx, r.db).Model(&BookModel{}), params)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Wrap(err, "查询图书总数失败")
	}

	err := query.Order(bookOrder(params)).
		Order("id").
		Limit(params.PageSize).
		Offset(params.Offset()).
		Find(&models).Error
	if err != nil {
		return nil, 0, apperrors.Wrap(err, "查询图书列表失败")
	}
	return toBookEntities(models), total, nil
}

func applyBookFilters(query *gorm.DB, p book.ListParams) *gorm.DB {
	if p.Search != "" {
		kw := "%" + escapeLike(p.Search) + "%"
		query = query.Where("title LIKE ? OR author LIKE ? OR isbn LIKE ? OR description LIKE ?", kw, kw, kw, kw)
	}
	if p.Author != "" {
		query = query.Where("author = ?", p.Author)
	}
	if p.Genre != "" {
		query = query.Where("genre = ?", p.Genre)
	}
	if p.Publisher != "" {
		query = query.Where("publisher = ?", p.Publisher)
	}
	if p.Language != "" {
		query = query.Where("language = ?", p.Language)
	}
	if p.Format != "" {
		query = query.Where("format = ?", p.Format)
	}
	if p.MinPrice != nil {
		query = query.Where("price >= ?", *p.MinPrice)
	}
	if p.MaxPrice != nil {
		query = query.Where("price <= ?", *p.MaxPrice)
	}
	if p.InStock {
		query = query.Where("stock > 0")
	}
	return query
}

func bookOrder(p book.ListParams) clause.OrderByColumn {
	column := p.SortBy
	if p.SortBy == book.SortByPopularity {
		column = "sold_count"
	}
	return clause.OrderByColumn{Column: clause.Column{Name: column}, Desc: p.SortDesc}
}

// Facets 检索条件可选值
func (r *bookRepository) Facets(ctx context.Context) (*book.Facets, error) {
	db := getDB(ctx, r.db)
	f := &book.Facets{}

	columns := []struct {
		name string
		dest *[]string
	}{
		{"author", &f.Authors},
		{"genre", &f.Genres},
		{"publisher", &f.Publishers},
		{"language", &f.Languages},
		{"format", &f.Formats},
	}
	for _, c := range columns {
		var values []string
		err := db.Model(&BookModel{}).
			Where(c.name+" <> ''").
			Distinct().
			Order(c.name).
			Pluck(c.name, &values).Error
		if err != nil {
			return nil, apperrors.Wrap(err, "查询筛选条件失败")
		}
		*c.dest = values
	}

	var bounds struct {
		MinPrice int64
		MaxPrice int64
	}
	err := db.Model(&BookModel{}).
		Select("COALESCE(MIN(price), 0) AS min_price, COALESCE(MAX(price), 0) AS max_price").
		Scan(&bounds).Error
	if err != nil {
		return nil, apperrors.Wrap(err, "查询价格区间失败")
	}
	f.MinPrice, f.MaxPrice = bounds.MinPrice, bounds.MaxPrice
	return f, nil
}

// Featured 首页推荐位
func (r *bookRepository) Featured(ctx context.Context, kind book.FeaturedKind, now time.Time, limit int) ([]*book.Book, error) {
	var models []BookModel
	query := getDB(ctx, r.db).Model(&BookModel{}).Limit(limit)

	switch kind {
	case book.FeaturedNewArrivals:
		query = query.Order("created_at DESC")
	case book.FeaturedNewReleases:
		query = query.Where("publication_date <= ?", now).Order("publication_date DESC")
	case book.FeaturedTopSales:
		query = query.Where("sold_count > 0").Order("sold_count DESC")
	case book.FeaturedBestSellers:
		query = query.
			Joins("JOIN (SELECT book_id, AVG(rating) AS avg_rating, COUNT(*) AS review_count FROM reviews GROUP BY book_id) r ON r.book_id = books.id").
			Order("r.avg_rating DESC").
			Order("r.review_count DESC")
	case book.FeaturedComingSoon:
		query = query.Where("publication_date > ?", now).Order("publication_date ASC")
	default:
		return []*book.Book{}, nil
	}

	if err := query.Order("books.id").Find(&models).Error; err != nil {
		return nil, apperrors.Wrap(err, "查询推荐图书失败")
	}
	return toBookEntities(models), nil
}

// LockByID 悲观锁查询图书，必须在事务中调用
func (r *bookRepository) LockByID(ctx context.Context, id uint) (*book.Book, error) {
	var model BookModel
	err := getDB(ctx, r.db).Clauses(clause.Locking{Strength: "UPDATE"}).First(&model, id).Error
	if err != nil {
		if isNotFound(err) {
			return nil, book.ErrBookNotFound
		}
		return nil, apperrors.Wrap(err, "锁定图书失败")
	}
	return toBookEntity(&model), nil
}

// UpdateStock 原子更新库存
// UPDATE books SET stock = stock + delta WHERE id = ? AND stock + delta >= 0
func (r *bookRepository) UpdateStock(ctx context.Context, id uint, delta int) error {
	db := getDB(ctx, r.db)
	result := db.Model(&BookModel{}).
		Where("id = ?", id).
		Where("stock + ? >= 0", delta).
		Update("stock", gorm.Expr("stock + ?", delta))
	if result.Error != nil {
		return apperrors.Wrap(result.Error, "更新库存失败")
	}

	if result.RowsAffected == 0 {
		// 图书不存在或库存不足，再查一次确定原因
		var model BookModel
		if err := db.Select("id").First(&model, id).Error; err != nil {
			if isNotFound(err) {
				return book.ErrBookNotFound
			}
			return apperrors.Wrap(err, "查询图书失败")
		}
		return book.ErrInsufficientStock
	}
	return nil
}

// IncrSoldCount 累加销量（图书被删除时忽略）
func (r *bookRepository) IncrSoldCount(ctx context.Context, id uint, quantity int) error {
	err := getDB(ctx, r.db).Model(&BookModel{}).
		Where("id = ?", id).
		Update("sold_count", gorm.Expr("sold_count + ?", quantity)).Error
	if err != nil {
		return apperrors.Wrap(err, "更新销量失败")
	}
	return nil
}

// toBookModel 领域实体 → GORM模型
func toBookModel(b *book.Book) *BookModel {
	return &BookModel{
		ID:                b.ID,
		ISBN:              b.ISBN,
		Title:             b.Title,
		Author:            b.Author,
		Publisher:         b.Publisher,
		Genre:             b.Genre,
		Language:          b.Language,
		Format:            b.Format,
		Description:       b.Description,
		Price:             b.Price,
		Stock:             b.Stock,
		CoverURL:          b.CoverURL,
		PublicationDate:   b.PublicationDate,
		Discount:          b.Discount,
		DiscountStartDate: b.DiscountStartDate,
		DiscountEndDate:   b.DiscountEndDate,
		SoldCount:         b.SoldCount,
		CreatedAt:         b.CreatedAt,
		UpdatedAt:         b.UpdatedAt,
	}
}

// toBookEntity GORM模型 → 领域实体
func toBookEntity(model *BookModel) *book.Book {
	return &book.Book{
		ID:                model.ID,
		ISBN:              model.ISBN,
		Title:             model.Title,
		Author:            model.Author,
		Publisher:         model.Publisher,
		Genre:             model.Genre,
		Language:          model.Language,
		Format:            model.Format,
		Description:       model.Description,
		Price:             model.Price,
		Stock:             model.Stock,
		CoverURL:          model.CoverURL,
		PublicationDate:   model.PublicationDate,
		Discount:          model.Discount,
		DiscountStartDate: model.DiscountStartDate,
		DiscountEndDate:   model.DiscountEndDate,
		SoldCount:         model.SoldCount,
		CreatedAt:         model.CreatedAt,
		UpdatedAt:         model.UpdatedAt,
	}
}

func toBookEntities(models []BookModel) []*book.Book {
	return lo.Map(models, func(m BookModel, _ int) *book.Book { return toBookEntity(&m) })
}
