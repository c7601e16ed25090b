package mysql

import (
	"context"
	"time"

	"github.com/samber/lo"
	"gorm.io/gorm"

	"github.com/xiebiao/bookshop/internal/domain/order"
	apperrors "github.com/xiebiao/bookshop/pkg/errors"
)

// orderRepository 订单仓储实现
// 1. Order和OrderItem是聚合关系，必须一起保存
// 2. 查询时使用Preload预加载明细，避免N+1问题
// 3. 事务通过context传递
type orderRepository struct {
	db *gorm.DB
}

// NewOrderRepository 创建订单仓储
func NewOrderRepository(db *gorm.DB) order.Repository {
	return &orderRepository{db: db}
}

// Create 创建订单，GORM会一并保存关联的Items
func (r *orderRepository) Create(ctx context.Context, o *order.Order) error {
	model := toOrderModel(o)
	if err := getDB(ctx, r.db).Create(model).Error; err != nil {
		return apperrors.Wrap(err, "创建订单失败")
	}

	o.ID = model.ID
	o.CreatedAt = model.CreatedAt
	o.UpdatedAt = model.UpdatedAt
	for i := range o.Items {
		o.Items[i].ID = model.Items[i].ID
		o.Items[i].OrderID = model.ID
	}
	return nil
}

// FindByID 根据ID查找订单
// Preload("Items")会执行:
// 1. SELECT * FROM orders WHERE id = ?
// 2. SELECT * FROM order_items WHERE order_id IN (?)
func (r *orderRepository) FindByID(ctx context.Context, id uint) (*order.Order, error) {
	var model OrderModel
	if err := getDB(ctx, r.db).Preload("Items").First(&model, id).Error; err != nil {
		if isNotFound(err) {
			return nil, order.ErrOrderNotFound
		}
		return nil, apperrors.Wrap(err, "查询订单失败")
	}
	return toOrderEntity(&model), nil
}

// UpdateStatus 条件更新订单状态
// UPDATE orders SET status = to WHERE id = ? AND status = from
func (r *orderRepository) UpdateStatus(ctx context.Context, id uint, from, to order.Status, at time.Time) error {
	updates := map[string]interface{}{
		"status":     int(to),
		"updated_at": at,
	}
	if to == order.StatusCompleted {
		updates["completed_at"] = at
	}

	result := getDB(ctx, r.db).Model(&OrderModel{}).
		Where("id = ? AND status = ?", id, int(from)).
		Updates(updates)
	if result.Error != nil {
		return apperrors.Wrap(result.Error, "更新订单状态失败")
	}
	if result.RowsAffected == 0 {
		return order.ErrConcurrentUpdate
	}
	return nil
}

// List 分页查询订单（含明细），按创建时间倒序
func (r *orderRepository) List(ctx context.Context, params order.ListParams) ([]*order.Order, int64, error) {
	var (
		models []OrderModel
		total  int64
	)

	query := getDB(ctx, r.db).Model(&OrderModel{})
	if params.UserID != 0 {
		query = query.Where("user_id = ?", params.UserID)
	}
	if params.Status != 0 {
		query = query.Where("status = ?", int(params.Status))
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Wrap(err, "查询订单总数失败")
	}

	err := query.Preload("Items").
		Order("created_at DESC").
		Order("id DESC").
		Limit(params.PageSize).
		Offset((params.Page - 1) * params.PageSize).
		Find(&models).Error
	if err != nil {
		return nil, 0, apperrors.Wrap(err, "查询订单列表失败")
	}

	return lo.Map(models, func(m OrderModel, _ int) *order.Order { return toOrderEntity(&m) }), total, nil
}

// HasCompletedOrderWithBook 用户是否有包含该书的已完成订单
func (r *orderRepository) HasCompletedOrderWithBook(ctx context.Context, userID, bookID uint) (bool, error) {
	var count int64
	err := getDB(ctx, r.db).Model(&OrderModel{}).
		Joins("JOIN order_items ON order_items.order_id = orders.id").
		Where("orders.user_id = ? AND orders.status = ? AND order_items.book_id = ?",
			userID, int(order.StatusCompleted), bookID).
		Count(&count).Error
	if err != nil {
		return false, apperrors.Wrap(err, "查询购买记录失败")
	}
	return count > 0, nil
}

// toOrderModel 领域实体 → GORM模型
func toOrderModel(o *order.Order) *OrderModel {
	return &OrderModel{
		ID:          o.ID,
		OrderNo:     o.OrderNo,
		UserID:      o.UserID,
		ClaimCode:   o.ClaimCode,
		TotalPrice:  o.TotalPrice,
		Discount:    o.Discount,
		Status:      int(o.Status),
		CompletedAt: o.CompletedAt,
		CreatedAt:   o.CreatedAt,
		UpdatedAt:   o.UpdatedAt,
		Items: lo.Map(o.Items, func(item order.Item, _ int) OrderItemModel {
			return OrderItemModel{
				ID:             item.ID,
				OrderID:        item.OrderID,
				BookID:         item.BookID,
				Title:          item.Title,
				Quantity:       item.Quantity,
				UnitPrice:      item.UnitPrice,
				Discount:       item.Discount,
				FinalUnitPrice: item.FinalUnitPrice,
			}
		}),
	}
}

// toOrderEntity GORM模型 → 领域实体
func toOrderEntity(model *OrderModel) *order.Order {
	return &order.Order{
		ID:          model.ID,
		OrderNo:     model.OrderNo,
		UserID:      model.UserID,
		ClaimCode:   model.ClaimCode,
		TotalPrice:  model.TotalPrice,
		Discount:    model.Discount,
		Status:      order.Status(model.Status),
		CompletedAt: model.CompletedAt,
		CreatedAt:   model.CreatedAt,
		UpdatedAt:   model.UpdatedAt,
		Items: lo.Map(model.Items, func(item OrderItemModel, _ int) order.Item {
			return order.Item{
				ID:             item.ID,
				OrderID:        item.OrderID,
				BookID:         item.BookID,
				Title:          item.Title,
				Quantity:       item.Quantity,
				UnitPrice:      item.UnitPrice,
				Discount:       item.Discount,
				FinalUnitPrice: item.FinalUnitPrice,
			}
		}),
	}
}
