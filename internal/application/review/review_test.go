package review

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xiebiao/bookshop/internal/application/apptest"
	bookapp "github.com/xiebiao/bookshop/internal/application/book"
	"github.com/xiebiao/bookshop/internal/domain/book"
	"github.com/xiebiao/bookshop/internal/domain/order"
	"github.com/xiebiao/bookshop/internal/domain/review"
)

type fixture struct {
	books   *apptest.BookRepo
	orders  *apptest.OrderRepo
	reviews *apptest.ReviewRepo
	cache   *apptest.Cache
	add     *AddReviewUseCase
	list    *ListUseCase
}

func newFixture() *fixture {
	f := &fixture{
		books:   apptest.NewBookRepo(),
		orders:  apptest.NewOrderRepo(),
		reviews: apptest.NewReviewRepo(),
		cache:   apptest.NewCache(),
	}
	inv := bookapp.NewInvalidator(f.cache, zap.NewNop())
	f.add = NewAddReviewUseCase(&apptest.TxManager{}, f.reviews, f.orders, f.books, inv)
	f.list = NewListUseCase(f.reviews, f.books)
	return f
}

// placeOrder 为用户创建一张包含该书的订单并置为指定状态
func (f *fixture) placeOrder(t *testing.T, userID, bookID uint, status order.Status) {
	t.Helper()
	o, err := order.NewOrder(order.GenerateOrderNo(), order.GenerateClaimCode(), userID,
		[]order.Item{{BookID: bookID, Quantity: 1, UnitPrice: 100, FinalUnitPrice: 100}})
	require.NoError(t, err)
	require.NoError(t, f.orders.Create(context.Background(), o))
	if status != order.StatusPending {
		require.NoError(t, f.orders.UpdateStatus(context.Background(), o.ID, order.StatusPending, status, time.Now()))
	}
}

func TestAddReview_Rules(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	b := f.books.Seed(&book.Book{Title: "T", Price: 100})

	_, err := f.add.Execute(ctx, 1, b.ID, AddReviewRequest{Content: "好书", Rating: 6})
	assert.ErrorIs(t, err, review.ErrInvalidRating)

	_, err = f.add.Execute(ctx, 1, b.ID, AddReviewRequest{Content: "好书", Rating: 5})
	assert.ErrorIs(t, err, review.ErrNotEligible)

	// 只有已完成的订单才有资格
	f.placeOrder(t, 1, b.ID, order.StatusOngoing)
	_, err = f.add.Execute(ctx, 1, b.ID, AddReviewRequest{Content: "好书", Rating: 5})
	assert.ErrorIs(t, err, review.ErrNotEligible)

	f.placeOrder(t, 1, b.ID, order.StatusCompleted)
	v, err := f.add.Execute(ctx, 1, b.ID, AddReviewRequest{Content: "  好书  ", Rating: 5})
	require.NoError(t, err)
	assert.Equal(t, "好书", v.Content)

	_, err = f.add.Execute(ctx, 1, b.ID, AddReviewRequest{Content: "再评一次", Rating: 1})
	assert.ErrorIs(t, err, review.ErrAlreadyReviewed)

	_, err = f.add.Execute(ctx, 1, 999, AddReviewRequest{Rating: 3})
	assert.ErrorIs(t, err, book.ErrBookNotFound)
}

func TestAddReview_InvalidatesBookCache(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	b := f.books.Seed(&book.Book{Title: "T", Price: 100})
	f.placeOrder(t, 1, b.ID, order.StatusCompleted)
	require.NoError(t, f.cache.Set(ctx, bookapp.DetailCacheKey(b.ID), "stale", time.Minute))

	_, err := f.add.Execute(ctx, 1, b.ID, AddReviewRequest{Rating: 4})
	require.NoError(t, err)
	assert.False(t, f.cache.Has(bookapp.DetailCacheKey(b.ID)))
}

func TestListReviews(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	b := f.books.Seed(&book.Book{Title: "T", Price: 100})
	for user := uint(1); user <= 3; user++ {
		f.placeOrder(t, user, b.ID, order.StatusCompleted)
		_, err := f.add.Execute(ctx, user, b.ID, AddReviewRequest{Rating: int(user) + 2})
		require.NoError(t, err)
	}

	page, err := f.list.Execute(ctx, b.ID, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.TotalCount)
	assert.Equal(t, 2, page.TotalPages)
	require.Len(t, page.Items, 2)
	assert.Equal(t, uint(3), page.Items[0].UserID)

	_, err = f.list.Execute(ctx, 404, 1, 10)
	assert.ErrorIs(t, err, book.ErrBookNotFound)
}
