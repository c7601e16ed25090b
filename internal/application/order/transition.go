package order

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/xiebiao/bookshop/internal/application/port"
	"github.com/xiebiao/bookshop/internal/domain/book"
	"github.com/xiebiao/bookshop/internal/domain/order"
	"github.com/xiebiao/bookshop/internal/domain/shared"
	"github.com/xiebiao/bookshop/pkg/metrics"
)

// ConfirmOrderUseCase 确认订单用例（下单用户本人，Pending → Ongoing）
type ConfirmOrderUseCase struct {
	orderRepo order.Repository
	events    port.EventPublisher
	logger    *zap.Logger
	now       func() time.Time
}

// NewConfirmOrderUseCase 创建确认订单用例
func NewConfirmOrderUseCase(orderRepo order.Repository, events port.EventPublisher, logger *zap.Logger) *ConfirmOrderUseCase {
	return &ConfirmOrderUseCase{orderRepo: orderRepo, events: events, logger: logger, now: time.Now}
}

// Execute 确认订单
func (uc *ConfirmOrderUseCase) Execute(ctx context.Context, orderID, userID uint) (*OrderView, error) {
	o, err := uc.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !o.IsOwnedBy(userID) {
		return nil, order.ErrNotOwner
	}

	now := uc.now()
	from := o.Status
	if err := o.TransitionTo(order.StatusOngoing, now); err != nil {
		return nil, err
	}
	// 条件更新：状态已被其他请求修改时返回冲突
	if err := uc.orderRepo.UpdateStatus(ctx, o.ID, from, o.Status, now); err != nil {
		return nil, err
	}

	observeTransition(o.Status)
	publishEvent(ctx, uc.events, uc.logger, port.TopicOrderConfirmed, o, now)
	return toOrderView(o, true), nil
}

// CancelOrderUseCase 取消订单用例（下单用户本人，仅Pending可取消）
type CancelOrderUseCase struct {
	txManager    shared.TxManager
	orderRepo    order.Repository
	bookRepo     book.Repository
	events       port.EventPublisher
	invalidator  BookCacheInvalidator
	reserveStock bool
	logger       *zap.Logger
	now          func() time.Time
}

// NewCancelOrderUseCase 创建取消订单用例
func NewCancelOrderUseCase(
	txManager shared.TxManager,
	orderRepo order.Repository,
	bookRepo book.Repository,
	events port.EventPublisher,
	invalidator BookCacheInvalidator,
	reserveStock bool,
	logger *zap.Logger,
) *CancelOrderUseCase {
	return &CancelOrderUseCase{
		txManager:    txManager,
		orderRepo:    orderRepo,
		bookRepo:     bookRepo,
		events:       events,
		invalidator:  invalidator,
		reserveStock: reserveStock,
		logger:       logger,
		now:          time.Now,
	}
}

// Execute 取消订单，开启库存预占时同一事务内归还库存（已下架的图书不再归还）
func (uc *CancelOrderUseCase) Execute(ctx context.Context, orderID, userID uint) (*OrderView, error) {
	var cancelled *order.Order
	now := uc.now()

	err := uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		o, err := uc.orderRepo.FindByID(txCtx, orderID)
		if err != nil {
			return err
		}
		if !o.IsOwnedBy(userID) {
			return order.ErrNotOwner
		}

		from := o.Status
		if err := o.TransitionTo(order.StatusCancelled, now); err != nil {
			return err
		}
		if err := uc.orderRepo.UpdateStatus(txCtx, o.ID, from, o.Status, now); err != nil {
			return err
		}

		if uc.reserveStock {
			for _, item := range o.Items {
				err := uc.bookRepo.UpdateStock(txCtx, item.BookID, item.Quantity)
				if err != nil && !errors.Is(err, book.ErrBookNotFound) {
					return err
				}
			}
		}
		cancelled = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	observeTransition(cancelled.Status)
	if uc.reserveStock {
		uc.invalidator.Book(ctx, bookIDs(cancelled)...)
	}
	publishEvent(ctx, uc.events, uc.logger, port.TopicOrderCancelled, cancelled, now)
	return toOrderView(cancelled, true), nil
}

func observeTransition(to order.Status) {
	metrics.IncCounterVec(metrics.OrderTransitionsTotal, map[string]string{"to": to.String()})
}
