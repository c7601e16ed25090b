package mysql

import (
	"context"

	"github.com/samber/lo"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/xiebiao/bookshop/internal/domain/cart"
	apperrors "github.com/xiebiao/bookshop/pkg/errors"
)

// cartRepository 购物车仓储实现
type cartRepository struct {
	db *gorm.DB
}

// NewCartRepository 创建购物车仓储
func NewCartRepository(db *gorm.DB) cart.Repository {
	return &cartRepository{db: db}
}

// FindByUserID 查询用户购物车（含明细，按加入时间排序）
func (r *cartRepository) FindByUserID(ctx context.Context, userID uint) (*cart.Cart, error) {
	var model CartModel
	err := getDB(ctx, r.db).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Where("user_id = ?", userID).
		First(&model).Error
	if err != nil {
		if isNotFound(err) {
			return nil, cart.ErrCartNotFound
		}
		return nil, apperrors.Wrap(err, "查询购物车失败")
	}
	return toCartEntity(&model), nil
}

// Create 创建购物车
// user_id唯一，并发创建时忽略冲突并回读已存在的购物车
func (r *cartRepository) Create(ctx context.Context, c *cart.Cart) error {
	db := getDB(ctx, r.db)
	model := &CartModel{UserID: c.UserID}

	result := db.Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "user_id"}}, DoNothing: true}).
		Create(model)
	if err := result.Error; err != nil {
		return apperrors.Wrap(err, "创建购物车失败")
	}

	if result.RowsAffected == 0 {
		model = &CartModel{}
		if err := db.Where("user_id = ?", c.UserID).First(model).Error; err != nil {
			return apperrors.Wrap(err, "查询购物车失败")
		}
	}

	c.ID = model.ID
	c.CreatedAt = model.CreatedAt
	c.UpdatedAt = model.UpdatedAt
	return nil
}

// AddItem 新增明细
func (r *cartRepository) AddItem(ctx context.Context, item *cart.Item) error {
	model := &CartItemModel{
		CartID:   item.CartID,
		BookID:   item.BookID,
		Quantity: item.Quantity,
	}
	if err := getDB(ctx, r.db).Create(model).Error; err != nil {
		if isDuplicateError(err) {
			return cart.ErrItemExists
		}
		return apperrors.Wrap(err, "加入购物车失败")
	}
	item.ID = model.ID
	item.CreatedAt = model.CreatedAt
	item.UpdatedAt = model.UpdatedAt
	return nil
}

// UpdateItemQuantity 修改明细数量
// MySQL的RowsAffected只统计实际变化的行，数量不变时需再查一次是否存在
func (r *cartRepository) UpdateItemQuantity(ctx context.Context, cartID, bookID uint, quantity int) error {
	db := getDB(ctx, r.db)
	result := db.Model(&CartItemModel{}).
		Where("cart_id = ? AND book_id = ?", cartID, bookID).
		Update("quantity", quantity)
	if result.Error != nil {
		return apperrors.Wrap(result.Error, "修改购物车数量失败")
	}
	if result.RowsAffected > 0 {
		return nil
	}

	var count int64
	if err := db.Model(&CartItemModel{}).Where("cart_id = ? AND book_id = ?", cartID, bookID).Count(&count).Error; err != nil {
		return apperrors.Wrap(err, "查询购物车明细失败")
	}
	if count == 0 {
		return cart.ErrItemNotFound
	}
	return nil
}

// RemoveItem 删除明细
func (r *cartRepository) RemoveItem(ctx context.Context, cartID, bookID uint) error {
	result := getDB(ctx, r.db).
		Where("cart_id = ? AND book_id = ?", cartID, bookID).
		Delete(&CartItemModel{})
	if result.Error != nil {
		return apperrors.Wrap(result.Error, "移出购物车失败")
	}
	if result.RowsAffected == 0 {
		return cart.ErrItemNotFound
	}
	return nil
}

// ClearItems 清空购物车
func (r *cartRepository) ClearItems(ctx context.Context, cartID uint) error {
	err := getDB(ctx, r.db).Where("cart_id = ?", cartID).Delete(&CartItemModel{}).Error
	if err != nil {
		return apperrors.Wrap(err, "清空购物车失败")
	}
	return nil
}

// toCartEntity GORM模型 → 领域实体
func toCartEntity(model *CartModel) *cart.Cart {
	return &cart.Cart{
		ID:     model.ID,
		UserID: model.UserID,
		Items: lo.Map(model.Items, func(m CartItemModel, _ int) cart.Item {
			return cart.Item{
				ID:        m.ID,
				CartID:    m.CartID,
				BookID:    m.BookID,
				Quantity:  m.Quantity,
				CreatedAt: m.CreatedAt,
				UpdatedAt: m.UpdatedAt,
			}
		}),
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}
}
