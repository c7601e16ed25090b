package order

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xiebiao/bookshop/internal/application/apptest"
	"github.com/xiebiao/bookshop/internal/application/port"
	"github.com/xiebiao/bookshop/internal/domain/book"
	"github.com/xiebiao/bookshop/internal/domain/cart"
	"github.com/xiebiao/bookshop/internal/domain/order"
	"github.com/xiebiao/bookshop/pkg/metrics"
)

var now = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

const buyer uint = 7

type fixture struct {
	tx       *apptest.TxManager
	carts    *apptest.CartRepo
	books    *apptest.BookRepo
	orders   *apptest.OrderRepo
	notifier *apptest.Notifier
	events   *apptest.Events
	caches   *recordingInvalidator
	checkout *CheckoutUseCase
	confirm  *ConfirmOrderUseCase
	cancel   *CancelOrderUseCase
	complete *CompleteOrderUseCase
	query    *QueryUseCase
}

func newFixture(reserveStock bool) *fixture {
	metrics.InitMetrics()

	f := &fixture{
		tx:       &apptest.TxManager{},
		carts:    apptest.NewCartRepo(),
		books:    apptest.NewBookRepo(),
		orders:   apptest.NewOrderRepo(),
		notifier: &apptest.Notifier{},
		events:   &apptest.Events{},
		caches:   &recordingInvalidator{},
	}
	log := zap.NewNop()
	clock := apptest.FixedClock(now)

	f.checkout = NewCheckoutUseCase(f.tx, f.carts, f.books, f.orders, f.events, f.caches, reserveStock, log)
	f.confirm = NewConfirmOrderUseCase(f.orders, f.events, log)
	f.cancel = NewCancelOrderUseCase(f.tx, f.orders, f.books, f.events, f.caches, reserveStock, log)
	f.complete = NewCompleteOrderUseCase(f.tx, f.orders, f.books, order.NewPlainClaimCodeVerifier(), f.notifier, f.events, log)
	f.query = NewQueryUseCase(f.orders)
	f.checkout.now, f.confirm.now, f.cancel.now, f.complete.now = clock, clock, clock, clock
	return f
}

// fillCart 为buyer建购物车：一本打九折的书×2，一本原价书×1
func (f *fixture) fillCart(t *testing.T) (discounted, plain *book.Book) {
	t.Helper()
	ctx := context.Background()
	yesterday, tomorrow := now.AddDate(0, 0, -1), now.AddDate(0, 0, 1)
	discounted = f.books.Seed(&book.Book{
		Title: "打折书", Price: 2000, Stock: 5,
		Discount: decimal.RequireFromString("0.1"), DiscountStartDate: &yesterday, DiscountEndDate: &tomorrow,
	})
	plain = f.books.Seed(&book.Book{Title: "原价书", Price: 1500, Stock: 1})

	c := cart.NewCart(buyer)
	require.NoError(t, f.carts.Create(ctx, c))
	require.NoError(t, f.carts.AddItem(ctx, &cart.Item{CartID: c.ID, BookID: discounted.ID, Quantity: 2}))
	require.NoError(t, f.carts.AddItem(ctx, &cart.Item{CartID: c.ID, BookID: plain.ID, Quantity: 1}))
	return discounted, plain
}

func TestCheckout_EmptyOrMissingCartCreatesNoOrder(t *testing.T) {
	f := newFixture(false)
	ctx := context.Background()

	_, err := f.checkout.Execute(ctx, buyer)
	assert.ErrorIs(t, err, order.ErrEmptyCart)

	require.NoError(t, f.carts.Create(ctx, cart.NewCart(buyer)))
	_, err = f.checkout.Execute(ctx, buyer)
	assert.ErrorIs(t, err, order.ErrEmptyCart)

	assert.Zero(t, f.orders.Count())
	assert.Empty(t, f.events.Topics())
}

func TestCheckout_SnapshotsPricesAndKeepsCart(t *testing.T) {
	f := newFixture(false)
	ctx := context.Background()
	discounted, plain := f.fillCart(t)

	view, err := f.checkout.Execute(ctx, buyer)
	require.NoError(t, err)
	assert.Equal(t, "Pending", view.Status)
	assert.Len(t, view.ClaimCode, order.ClaimCodeLength)
	assert.Equal(t, int64(1800*2+1500), view.TotalPrice)
	assert.Equal(t, int64(200*2), view.Discount)
	require.Len(t, view.Items, 2)
	assert.True(t, decimal.RequireFromString("0.1").Equal(view.Items[0].Discount))
	assert.Equal(t, []string{port.TopicOrderCheckedOut}, f.events.Topics())

	// 下单后改价不影响订单快照
	b := f.books.Get(discounted.ID)
	b.Price = 9999
	require.NoError(t, f.books.Update(ctx, b))
	stored, err := f.query.Get(ctx, view.ID, Viewer{UserID: buyer})
	require.NoError(t, err)
	assert.Equal(t, int64(2000), stored.Items[0].UnitPrice)

	c, err := f.carts.FindByUserID(ctx, buyer)
	require.NoError(t, err)
	assert.Len(t, c.Items, 2)
	assert.Equal(t, 5, f.books.Get(discounted.ID).Stock)
	assert.Equal(t, 1, f.books.Get(plain.ID).Stock)
}

func TestCheckout_ReserveStock(t *testing.T) {
	f := newFixture(true)
	ctx := context.Background()
	discounted, plain := f.fillCart(t)

	view, err := f.checkout.Execute(ctx, buyer)
	require.NoError(t, err)
	assert.Equal(t, 3, f.books.Get(discounted.ID).Stock)
	assert.Equal(t, 0, f.books.Get(plain.ID).Stock)

	_, err = f.cancel.Execute(ctx, view.ID, buyer)
	require.NoError(t, err)
	assert.Equal(t, 5, f.books.Get(discounted.ID).Stock)
	assert.Equal(t, 1, f.books.Get(plain.ID).Stock)
}

func TestCheckout_ReserveStockInvalidatesBookCache(t *testing.T) {
	f := newFixture(true)
	ctx := context.Background()
	discounted, plain := f.fillCart(t)

	view, err := f.checkout.Execute(ctx, buyer)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint{discounted.ID, plain.ID}, f.caches.ids)

	f.caches.ids = nil
	_, err = f.cancel.Execute(ctx, view.ID, buyer)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint{discounted.ID, plain.ID}, f.caches.ids)
}

func TestCheckout_WithoutReservationLeavesCacheAlone(t *testing.T) {
	f := newFixture(false)
	ctx := context.Background()
	f.fillCart(t)

	view, err := f.checkout.Execute(ctx, buyer)
	require.NoError(t, err)
	_, err = f.cancel.Execute(ctx, view.ID, buyer)
	require.NoError(t, err)
	assert.Empty(t, f.caches.ids)
}

func TestCheckout_SkipsRemovedBooks(t *testing.T) {
	f := newFixture(true)
	ctx := context.Background()
	discounted, plain := f.fillCart(t)
	require.NoError(t, f.books.Delete(ctx, plain.ID))

	view, err := f.checkout.Execute(ctx, buyer)
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	assert.Equal(t, discounted.ID, view.Items[0].BookID)
	assert.Equal(t, int64(1800*2), view.TotalPrice)
	assert.Equal(t, 3, f.books.Get(discounted.ID).Stock)

	// 书已下架后取消，其余图书照常归还库存
	require.NoError(t, f.books.Delete(ctx, discounted.ID))
	cancelled, err := f.cancel.Execute(ctx, view.ID, buyer)
	require.NoError(t, err)
	assert.Equal(t, "Cancelled", cancelled.Status)
}

func TestCheckout_OnlyRemovedBooksIsEmptyCart(t *testing.T) {
	f := newFixture(false)
	ctx := context.Background()
	discounted, plain := f.fillCart(t)
	require.NoError(t, f.books.Delete(ctx, discounted.ID))
	require.NoError(t, f.books.Delete(ctx, plain.ID))

	_, err := f.checkout.Execute(ctx, buyer)
	assert.ErrorIs(t, err, order.ErrEmptyCart)
	assert.Zero(t, f.orders.Count())
}

func TestCheckout_ReserveStockRejectsShortage(t *testing.T) {
	f := newFixture(true)
	ctx := context.Background()
	scarce := f.books.Seed(&book.Book{Title: "孤本", Price: 100, Stock: 1})
	c := cart.NewCart(buyer)
	require.NoError(t, f.carts.Create(ctx, c))
	require.NoError(t, f.carts.AddItem(ctx, &cart.Item{CartID: c.ID, BookID: scarce.ID, Quantity: 2}))

	_, err := f.checkout.Execute(ctx, buyer)
	assert.ErrorIs(t, err, book.ErrInsufficientStock)
	assert.Zero(t, f.orders.Count())
	assert.Equal(t, 1, f.books.Get(scarce.ID).Stock)
}

func TestConfirmOrder(t *testing.T) {
	f := newFixture(false)
	ctx := context.Background()
	f.fillCart(t)
	view, err := f.checkout.Execute(ctx, buyer)
	require.NoError(t, err)

	_, err = f.confirm.Execute(ctx, view.ID, buyer+1)
	assert.ErrorIs(t, err, order.ErrNotOwner)

	confirmed, err := f.confirm.Execute(ctx, view.ID, buyer)
	require.NoError(t, err)
	assert.Equal(t, "Ongoing", confirmed.Status)

	_, err = f.confirm.Execute(ctx, view.ID, buyer)
	assert.ErrorIs(t, err, order.ErrInvalidStatusTransition)

	_, err = f.confirm.Execute(ctx, 999, buyer)
	assert.ErrorIs(t, err, order.ErrOrderNotFound)
}

func TestCompleteOrder(t *testing.T) {
	f := newFixture(false)
	ctx := context.Background()
	discounted, _ := f.fillCart(t)
	view, err := f.checkout.Execute(ctx, buyer)
	require.NoError(t, err)

	// Pending状态不能完成
	_, err = f.complete.Execute(ctx, view.ID, view.ClaimCode)
	assert.ErrorIs(t, err, order.ErrInvalidStatusTransition)

	_, err = f.confirm.Execute(ctx, view.ID, buyer)
	require.NoError(t, err)

	wrongCodes := []string{"", "WRONGCODE1"}
	if lower := strings.ToLower(view.ClaimCode); lower != view.ClaimCode {
		wrongCodes = append(wrongCodes, lower)
	}
	for _, wrong := range wrongCodes {
		_, err = f.complete.Execute(ctx, view.ID, wrong)
		assert.ErrorIs(t, err, order.ErrInvalidClaimCode)
	}
	stored, err := f.orders.FindByID(ctx, view.ID)
	require.NoError(t, err)
	assert.Equal(t, order.StatusOngoing, stored.Status)
	assert.Empty(t, f.notifier.Sent())

	done, err := f.complete.Execute(ctx, view.ID, view.ClaimCode)
	require.NoError(t, err)
	assert.Equal(t, "Completed", done.Status)
	assert.Empty(t, done.ClaimCode)
	require.NotNil(t, done.CompletedAt)
	assert.Equal(t, 2, f.books.Get(discounted.ID).SoldCount)

	sent := f.notifier.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, buyer, sent[0].UserID)
	assert.Equal(t, port.EventReceiveOrderCompletion, sent[0].Event)
	assert.Equal(t, []string{port.TopicOrderCheckedOut, port.TopicOrderConfirmed, port.TopicOrderCompleted}, f.events.Topics())

	// 完成后不能取消
	_, err = f.cancel.Execute(ctx, view.ID, buyer)
	assert.ErrorIs(t, err, order.ErrInvalidStatusTransition)
}

func TestCompleteOrder_PushFailureDoesNotFailOrder(t *testing.T) {
	f := newFixture(false)
	ctx := context.Background()
	f.fillCart(t)
	view, err := f.checkout.Execute(ctx, buyer)
	require.NoError(t, err)
	_, err = f.confirm.Execute(ctx, view.ID, buyer)
	require.NoError(t, err)

	f.notifier.Err = apptest.ErrBoom
	done, err := f.complete.Execute(ctx, view.ID, view.ClaimCode)
	require.NoError(t, err)
	assert.Equal(t, "Completed", done.Status)
}

func TestCancelOrder(t *testing.T) {
	f := newFixture(false)
	ctx := context.Background()
	f.fillCart(t)
	view, err := f.checkout.Execute(ctx, buyer)
	require.NoError(t, err)

	_, err = f.cancel.Execute(ctx, view.ID, buyer+1)
	assert.ErrorIs(t, err, order.ErrNotOwner)

	cancelled, err := f.cancel.Execute(ctx, view.ID, buyer)
	require.NoError(t, err)
	assert.Equal(t, "Cancelled", cancelled.Status)

	_, err = f.confirm.Execute(ctx, view.ID, buyer)
	assert.ErrorIs(t, err, order.ErrInvalidStatusTransition)
}

func TestTransition_LostRaceIsConflict(t *testing.T) {
	f := newFixture(false)
	ctx := context.Background()
	f.fillCart(t)
	view, err := f.checkout.Execute(ctx, buyer)
	require.NoError(t, err)

	// 模拟另一个请求在读取之后抢先取消
	require.NoError(t, f.orders.UpdateStatus(ctx, view.ID, order.StatusPending, order.StatusCancelled, now))
	racing := &staleOrderRepo{OrderRepo: f.orders, status: order.StatusPending}
	confirm := NewConfirmOrderUseCase(racing, f.events, zap.NewNop())

	_, err = confirm.Execute(ctx, view.ID, buyer)
	assert.ErrorIs(t, err, order.ErrConcurrentUpdate)
}

// staleOrderRepo 返回过期状态的读，模拟并发
type staleOrderRepo struct {
	*apptest.OrderRepo
	status order.Status
}

func (r *staleOrderRepo) FindByID(ctx context.Context, id uint) (*order.Order, error) {
	o, err := r.OrderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	o.Status = r.status
	return o, nil
}

func TestQuery(t *testing.T) {
	f := newFixture(false)
	ctx := context.Background()
	f.fillCart(t)
	first, err := f.checkout.Execute(ctx, buyer)
	require.NoError(t, err)
	second, err := f.checkout.Execute(ctx, buyer)
	require.NoError(t, err)
	_, err = f.confirm.Execute(ctx, second.ID, buyer)
	require.NoError(t, err)

	_, err = f.query.Get(ctx, first.ID, Viewer{UserID: 99})
	assert.ErrorIs(t, err, order.ErrNotOwner)

	staffView, err := f.query.Get(ctx, first.ID, Viewer{UserID: 99, Privileged: true})
	require.NoError(t, err)
	assert.Empty(t, staffView.ClaimCode)

	mine, err := f.query.ListByUser(ctx, buyer, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), mine.TotalCount)
	assert.Equal(t, 2, mine.TotalPages)
	require.Len(t, mine.Items, 1)
	assert.Equal(t, second.ID, mine.Items[0].ID)
	assert.NotEmpty(t, mine.Items[0].ClaimCode)

	ongoing, err := f.query.ListByStatus(ctx, "ongoing", 1, 10)
	require.NoError(t, err)
	require.Len(t, ongoing.Items, 1)
	assert.Equal(t, second.ID, ongoing.Items[0].ID)

	_, err = f.query.ListByStatus(ctx, "Shipped", 1, 10)
	assert.ErrorIs(t, err, order.ErrInvalidStatus)

	all, err := f.query.ListAll(ctx, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, all.PageNumber)
	assert.Equal(t, 10, all.PageSize)
	assert.Len(t, all.Items, 2)
}

type recordingInvalidator struct{ ids []uint }

func (r *recordingInvalidator) Book(_ context.Context, ids ...uint) { r.ids = append(r.ids, ids...) }

func TestEventHandler(t *testing.T) {
	inv := &recordingInvalidator{}
	handle := NewEventHandler(inv, zap.NewNop())
	ctx := context.Background()

	body, err := json.Marshal(Event{OrderID: 1, UserID: buyer, BookIDs: []uint{3, 4}})
	require.NoError(t, err)

	require.NoError(t, handle(ctx, port.TopicOrderConfirmed, body))
	assert.Empty(t, inv.ids)

	require.NoError(t, handle(ctx, port.TopicOrderCompleted, body))
	assert.Equal(t, []uint{3, 4}, inv.ids)

	assert.NoError(t, handle(ctx, port.TopicOrderCompleted, []byte("not json")))
}
