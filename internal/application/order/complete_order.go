package order

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/xiebiao/bookshop/internal/application/port"
	"github.com/xiebiao/bookshop/internal/domain/book"
	"github.com/xiebiao/bookshop/internal/domain/order"
	"github.com/xiebiao/bookshop/internal/domain/shared"
	"github.com/xiebiao/bookshop/pkg/metrics"
	"github.com/xiebiao/bookshop/pkg/tracing"
)

// CompleteOrderUseCase 完成订单用例（店员核对取货码，Ongoing → Completed）
// 业务流程：
// 1. 事务内：校验取货码、条件更新状态、累加各图书销量
// 2. 提交后：推送ReceiveOrderCompletion给下单用户，发布order.completed事件
//
// 取货码错误时不修改任何数据。
type CompleteOrderUseCase struct {
	txManager shared.TxManager
	orderRepo order.Repository
	bookRepo  book.Repository
	verifier  order.ClaimCodeVerifier
	notifier  port.Notifier
	events    port.EventPublisher
	logger    *zap.Logger
	now       func() time.Time
}

// NewCompleteOrderUseCase 创建完成订单用例
func NewCompleteOrderUseCase(
	txManager shared.TxManager,
	orderRepo order.Repository,
	bookRepo book.Repository,
	verifier order.ClaimCodeVerifier,
	notifier port.Notifier,
	events port.EventPublisher,
	logger *zap.Logger,
) *CompleteOrderUseCase {
	return &CompleteOrderUseCase{
		txManager: txManager,
		orderRepo: orderRepo,
		bookRepo:  bookRepo,
		verifier:  verifier,
		notifier:  notifier,
		events:    events,
		logger:    logger,
		now:       time.Now,
	}
}

// Execute 完成订单
func (uc *CompleteOrderUseCase) Execute(ctx context.Context, orderID uint, claimCode string) (*OrderView, error) {
	ctx, span := tracing.StartSpan(ctx, "order", "CompleteOrder", attribute.Int64("order_id", int64(orderID)))
	defer span.End()

	var completed *order.Order
	now := uc.now()

	err := uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		o, err := uc.orderRepo.FindByID(txCtx, orderID)
		if err != nil {
			return err
		}
		if !uc.verifier.Verify(o.ClaimCode, claimCode) {
			metrics.IncCounter(metrics.ClaimCodeRejectedTotal)
			return order.ErrInvalidClaimCode
		}

		from := o.Status
		if err := o.TransitionTo(order.StatusCompleted, now); err != nil {
			return err
		}
		if err := uc.orderRepo.UpdateStatus(txCtx, o.ID, from, o.Status, now); err != nil {
			return err
		}
		for _, item := range o.Items {
			if err := uc.bookRepo.IncrSoldCount(txCtx, item.BookID, item.Quantity); err != nil {
				return err
			}
		}
		completed = o
		return nil
	})
	if err != nil {
		tracing.RecordError(span, err)
		return nil, err
	}

	observeTransition(completed.Status)
	uc.notify(ctx, completed, now)
	publishEvent(ctx, uc.events, uc.logger, port.TopicOrderCompleted, completed, now)
	return toOrderView(completed, false), nil
}

// notify 推送失败不影响订单结果
func (uc *CompleteOrderUseCase) notify(ctx context.Context, o *order.Order, at time.Time) {
	notice := CompletionNotice{
		OrderID:     o.ID,
		OrderNo:     o.OrderNo,
		Message:     "您的订单" + o.OrderNo + "已完成取货",
		CompletedAt: at,
	}
	if err := uc.notifier.SendToUser(ctx, o.UserID, port.EventReceiveOrderCompletion, notice); err != nil {
		metrics.IncCounterVec(metrics.NotificationsFailedTotal, map[string]string{"event": port.EventReceiveOrderCompletion})
		uc.logger.Warn("push order completion failed", zap.Uint("order_id", o.ID), zap.Error(err))
	}
}
