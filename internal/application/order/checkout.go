package order

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/xiebiao/bookshop/internal/application/port"
	"github.com/xiebiao/bookshop/internal/domain/book"
	"github.com/xiebiao/bookshop/internal/domain/cart"
	"github.com/xiebiao/bookshop/internal/domain/order"
	"github.com/xiebiao/bookshop/internal/domain/shared"
	apperrors "github.com/xiebiao/bookshop/pkg/errors"
	"github.com/xiebiao/bookshop/pkg/metrics"
	"github.com/xiebiao/bookshop/pkg/tracing"
)

// CheckoutUseCase 下单用例
// 业务流程（单个事务内）：
// 1. 读取购物车，购物车不存在或为空时失败，不产生订单
// 2. 按当前价格和生效折扣为每行生成快照，已下架的图书跳过（与购物车展示一致）
// 3. 开启库存预占时，SELECT FOR UPDATE锁定图书行并扣减库存
// 4. 生成订单号和取货码，写入订单及明细
//
// 购物车保持不变，由用户自行清空。预占库存后提交时使图书缓存失效。
type CheckoutUseCase struct {
	txManager    shared.TxManager
	cartRepo     cart.Repository
	bookRepo     book.Repository
	orderRepo    order.Repository
	events       port.EventPublisher
	invalidator  BookCacheInvalidator
	reserveStock bool
	logger       *zap.Logger
	now          func() time.Time
}

// NewCheckoutUseCase 创建下单用例
func NewCheckoutUseCase(
	txManager shared.TxManager,
	cartRepo cart.Repository,
	bookRepo book.Repository,
	orderRepo order.Repository,
	events port.EventPublisher,
	invalidator BookCacheInvalidator,
	reserveStock bool,
	logger *zap.Logger,
) *CheckoutUseCase {
	return &CheckoutUseCase{
		txManager:    txManager,
		cartRepo:     cartRepo,
		bookRepo:     bookRepo,
		orderRepo:    orderRepo,
		events:       events,
		invalidator:  invalidator,
		reserveStock: reserveStock,
		logger:       logger,
		now:          time.Now,
	}
}

// Execute 执行下单
func (uc *CheckoutUseCase) Execute(ctx context.Context, userID uint) (*OrderView, error) {
	ctx, span := tracing.StartSpan(ctx, "order", "Checkout", attribute.Int64("user_id", int64(userID)))
	defer span.End()
	start := time.Now()

	var created *order.Order
	err := uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		c, err := uc.cartRepo.FindByUserID(txCtx, userID)
		if errors.Is(err, cart.ErrCartNotFound) {
			return order.ErrEmptyCart
		}
		if err != nil {
			return err
		}
		if c.IsEmpty() {
			return order.ErrEmptyCart
		}

		now := uc.now()
		items := make([]order.Item, 0, len(c.Items))
		for _, line := range c.Items {
			b, err := uc.loadBook(txCtx, line)
			if errors.Is(err, book.ErrBookNotFound) {
				uc.logger.Info("skip removed book at checkout",
					zap.Uint("user_id", userID),
					zap.Uint("book_id", line.BookID),
				)
				continue
			}
			if err != nil {
				return err
			}
			discount := b.EffectiveDiscount(now)
			items = append(items, order.Item{
				BookID:         b.ID,
				Title:          b.Title,
				Quantity:       line.Quantity,
				UnitPrice:      b.Price,
				Discount:       discount,
				FinalUnitPrice: book.ApplyDiscount(b.Price, discount),
			})
		}

		if len(items) == 0 {
			return order.ErrEmptyCart
		}

		o, err := order.NewOrder(order.GenerateOrderNo(), order.GenerateClaimCode(), userID, items)
		if err != nil {
			return err
		}
		o.CreatedAt, o.UpdatedAt = now, now
		if err := uc.orderRepo.Create(txCtx, o); err != nil {
			return err
		}
		created = o
		return nil
	})

	metrics.ObserveHistogram(metrics.CheckoutDuration, time.Since(start).Seconds())
	if err != nil {
		metrics.IncCounter(metrics.OrdersFailedTotal)
		tracing.RecordError(span, err)
		return nil, err
	}
	metrics.IncCounter(metrics.OrdersCheckedOutTotal)

	if uc.reserveStock {
		uc.invalidator.Book(ctx, bookIDs(created)...)
	}
	uc.publish(ctx, port.TopicOrderCheckedOut, created)
	return toOrderView(created, true), nil
}

// loadBook 读取图书，开启库存预占时加行锁并扣减
func (uc *CheckoutUseCase) loadBook(ctx context.Context, line cart.Item) (*book.Book, error) {
	if !uc.reserveStock {
		return uc.bookRepo.FindByID(ctx, line.BookID)
	}

	b, err := uc.bookRepo.LockByID(ctx, line.BookID)
	if err != nil {
		return nil, err
	}
	if b.Stock < line.Quantity {
		return nil, apperrors.WithMessage(book.ErrInsufficientStock, "图书《"+b.Title+"》库存不足")
	}
	if err := uc.bookRepo.UpdateStock(ctx, b.ID, -line.Quantity); err != nil {
		return nil, err
	}
	return b, nil
}

func (uc *CheckoutUseCase) publish(ctx context.Context, topic string, o *order.Order) {
	publishEvent(ctx, uc.events, uc.logger, topic, o, uc.now())
}

// publishEvent 事务提交后发布事件，失败只记录日志（订单已落库）
func publishEvent(ctx context.Context, events port.EventPublisher, logger *zap.Logger, topic string, o *order.Order, at time.Time) {
	if err := events.Publish(ctx, topic, newEvent(o, at)); err != nil {
		logger.Warn("publish order event failed",
			zap.String("topic", topic),
			zap.Uint("order_id", o.ID),
			zap.Error(err),
		)
	}
}
