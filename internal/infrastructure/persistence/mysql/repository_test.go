package mysql

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/xiebiao/bookshop/internal/domain/announcement"
	"github.com/xiebiao/bookshop/internal/domain/book"
	"github.com/xiebiao/bookshop/internal/domain/cart"
	"github.com/xiebiao/bookshop/internal/domain/order"
	"github.com/xiebiao/bookshop/internal/domain/review"
	"github.com/xiebiao/bookshop/internal/domain/user"
)

// 需要本地MySQL：
// BOOKSHOP_TEST_MYSQL_DSN="root:root@tcp(127.0.0.1:3306)/bookshop_test?charset=utf8mb4&parseTime=True&loc=Local"
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := os.Getenv("BOOKSHOP_TEST_MYSQL_DSN")
	if dsn == "" {
		t.Skip("BOOKSHOP_TEST_MYSQL_DSN not set")
	}
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, AutoMigrate(db))
	return db
}

func seedUser(t *testing.T, repo user.Repository) *user.User {
	t.Helper()
	u := user.NewUser(fmt.Sprintf("%s@test.local", uuid.NewString()[:8]), "hash", "测试用户", user.RoleRegular)
	require.NoError(t, repo.Create(context.Background(), u))
	return u
}

func seedBook(t *testing.T, repo book.Repository, stock int) *book.Book {
	t.Helper()
	b := &book.Book{
		ISBN:            "T" + uuid.NewString()[:12],
		Title:           "Go语言实战",
		Author:          "William Kennedy",
		Publisher:       "人民邮电出版社",
		Price:           5900,
		Stock:           stock,
		PublicationDate: time.Now().AddDate(-1, 0, 0),
		Discount:        decimal.Zero,
	}
	require.NoError(t, repo.Create(context.Background(), b))
	return b
}

func TestUserRepository_DuplicateEmail(t *testing.T) {
	db := openTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	u := seedUser(t, repo)
	dup := user.NewUser(u.Email, "hash", "另一个", user.RoleRegular)
	assert.ErrorIs(t, repo.Create(ctx, dup), user.ErrEmailDuplicate)

	found, err := repo.FindByEmail(ctx, u.Email)
	require.NoError(t, err)
	assert.Equal(t, user.RoleRegular, found.Role)
}

func TestBookRepository_UpdateStock(t *testing.T) {
	db := openTestDB(t)
	repo := NewBookRepository(db)
	ctx := context.Background()

	b := seedBook(t, repo, 2)
	require.NoError(t, repo.UpdateStock(ctx, b.ID, -2))
	assert.ErrorIs(t, repo.UpdateStock(ctx, b.ID, -1), book.ErrInsufficientStock)
	assert.ErrorIs(t, repo.UpdateStock(ctx, 0, -1), book.ErrBookNotFound)
}

func TestCartRepository_LazyCreateAndItems(t *testing.T) {
	db := openTestDB(t)
	users := NewUserRepository(db)
	books := NewBookRepository(db)
	repo := NewCartRepository(db)
	ctx := context.Background()

	u := seedUser(t, users)
	b := seedBook(t, books, 5)

	c := cart.NewCart(u.ID)
	require.NoError(t, repo.Create(ctx, c))
	again := cart.NewCart(u.ID)
	require.NoError(t, repo.Create(ctx, again))
	assert.Equal(t, c.ID, again.ID)

	require.NoError(t, repo.AddItem(ctx, &cart.Item{CartID: c.ID, BookID: b.ID, Quantity: 1}))
	assert.ErrorIs(t, repo.AddItem(ctx, &cart.Item{CartID: c.ID, BookID: b.ID, Quantity: 1}), cart.ErrItemExists)

	require.NoError(t, repo.UpdateItemQuantity(ctx, c.ID, b.ID, 1))
	require.NoError(t, repo.UpdateItemQuantity(ctx, c.ID, b.ID, 3))

	loaded, err := repo.FindByUserID(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Items, 1)
	assert.Equal(t, 3, loaded.Items[0].Quantity)

	require.NoError(t, repo.ClearItems(ctx, c.ID))
	assert.ErrorIs(t, repo.RemoveItem(ctx, c.ID, b.ID), cart.ErrItemNotFound)
}

func TestOrderRepository_ConditionalTransition(t *testing.T) {
	db := openTestDB(t)
	users := NewUserRepository(db)
	books := NewBookRepository(db)
	orders := NewOrderRepository(db)
	reviews := NewReviewRepository(db)
	tx := NewTxManager(db)
	ctx := context.Background()

	u := seedUser(t, users)
	b := seedBook(t, books, 5)

	o, err := order.NewOrder(order.GenerateOrderNo(), order.GenerateClaimCode(), u.ID, []order.Item{{
		BookID: b.ID, Title: b.Title, Quantity: 2, UnitPrice: b.Price, FinalUnitPrice: b.Price,
	}})
	require.NoError(t, err)
	require.NoError(t, tx.Transaction(ctx, func(ctx context.Context) error {
		return orders.Create(ctx, o)
	}))

	now := time.Now()
	require.NoError(t, orders.UpdateStatus(ctx, o.ID, order.StatusPending, order.StatusOngoing, now))
	assert.ErrorIs(t, orders.UpdateStatus(ctx, o.ID, order.StatusPending, order.StatusCancelled, now), order.ErrConcurrentUpdate)

	ok, err := orders.HasCompletedOrderWithBook(ctx, u.ID, b.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, orders.UpdateStatus(ctx, o.ID, order.StatusOngoing, order.StatusCompleted, now))
	ok, err = orders.HasCompletedOrderWithBook(ctx, u.ID, b.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	loaded, err := orders.FindByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, order.StatusCompleted, loaded.Status)
	assert.NotNil(t, loaded.CompletedAt)

	rv, err := review.NewReview(u.ID, b.ID, "好书", 5)
	require.NoError(t, err)
	require.NoError(t, reviews.Create(ctx, rv))
	dup, _ := review.NewReview(u.ID, b.ID, "再评一次", 4)
	assert.ErrorIs(t, reviews.Create(ctx, dup), review.ErrAlreadyReviewed)

	summary, err := reviews.Summary(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), summary.Count)
	assert.InDelta(t, 5.0, summary.Average, 0.001)
}

func TestTxManager_Rollback(t *testing.T) {
	db := openTestDB(t)
	books := NewBookRepository(db)
	tx := NewTxManager(db)
	ctx := context.Background()

	b := seedBook(t, books, 3)
	err := tx.Transaction(ctx, func(ctx context.Context) error {
		if err := books.UpdateStock(ctx, b.ID, -1); err != nil {
			return err
		}
		return book.ErrInsufficientStock
	})
	require.ErrorIs(t, err, book.ErrInsufficientStock)

	reloaded, err := books.FindByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, reloaded.Stock)
}

func TestAnnouncementRepository_MarkPublishedOnce(t *testing.T) {
	db := openTestDB(t)
	repo := NewAnnouncementRepository(db)
	ctx := context.Background()

	now := time.Now()
	a, err := announcement.NewAnnouncement("闭店盘点", now.Add(-time.Minute), now.Add(time.Hour), 1)
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, a))

	due, err := repo.ListDue(ctx, now, 100)
	require.NoError(t, err)
	assert.Contains(t, ids(due), a.ID)

	require.NoError(t, repo.MarkPublished(ctx, a.ID, now))
	assert.ErrorIs(t, repo.MarkPublished(ctx, a.ID, now), announcement.ErrAlreadyPublished)

	active, err := repo.ListActive(ctx, now)
	require.NoError(t, err)
	assert.Contains(t, ids(active), a.ID)

	require.NoError(t, repo.UnmarkPublished(ctx, a.ID))
	require.NoError(t, repo.MarkPublished(ctx, a.ID, now))
	require.NoError(t, repo.Delete(ctx, a.ID))
}

func ids(list []*announcement.Announcement) []uint {
	out := make([]uint, len(list))
	for i, a := range list {
		out[i] = a.ID
	}
	return out
}
