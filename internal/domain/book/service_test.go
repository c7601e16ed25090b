package book

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memRepo 只实现目录维护用到的方法
type memRepo struct {
	Repository
	books  map[uint]*Book
	nextID uint
}

func newMemRepo() *memRepo {
	return &memRepo{books: map[uint]*Book{}, nextID: 1}
}

func (r *memRepo) Create(_ context.Context, b *Book) error {
	b.ID = r.nextID
	r.nextID++
	r.books[b.ID] = b
	return nil
}

func (r *memRepo) FindByID(_ context.Context, id uint) (*Book, error) {
	b, ok := r.books[id]
	if !ok {
		return nil, ErrBookNotFound
	}
	return b, nil
}

func (r *memRepo) FindByISBN(_ context.Context, isbn string) (*Book, error) {
	for _, b := range r.books {
		if b.ISBN == isbn {
			return b, nil
		}
	}
	return nil, ErrBookNotFound
}

func (r *memRepo) Update(_ context.Context, b *Book) error {
	r.books[b.ID] = b
	return nil
}

func (r *memRepo) Delete(_ context.Context, id uint) error {
	delete(r.books, id)
	return nil
}

func goBook() *Book {
	return &Book{ISBN: "978-0-13-419044-0", Title: "Go程序设计语言", Author: "Donovan", Price: 7900, Stock: 5}
}

func TestAddBook(t *testing.T) {
	repo := newMemRepo()
	s := NewService(repo)
	ctx := context.Background()

	b := goBook()
	require.NoError(t, s.AddBook(ctx, b))
	assert.Equal(t, "9780134190440", b.ISBN)
	assert.NotZero(t, b.ID)

	assert.ErrorIs(t, s.AddBook(ctx, goBook()), ErrISBNDuplicate)

	bad := goBook()
	bad.ISBN = "9787111213826"
	bad.Price = 0
	assert.ErrorIs(t, s.AddBook(ctx, bad), ErrInvalidPrice)

	bad = goBook()
	bad.ISBN = "123"
	assert.ErrorIs(t, s.AddBook(ctx, bad), ErrInvalidISBN)
}

func TestUpdateBook_Patch(t *testing.T) {
	repo := newMemRepo()
	s := NewService(repo)
	ctx := context.Background()

	first := goBook()
	require.NoError(t, s.AddBook(ctx, first))
	second := goBook()
	second.ISBN = "9787111213826"
	require.NoError(t, s.AddBook(ctx, second))

	price := int64(6900)
	updated, err := s.UpdateBook(ctx, first.ID, Patch{Price: &price})
	require.NoError(t, err)
	assert.Equal(t, int64(6900), updated.Price)
	assert.Equal(t, "Go程序设计语言", updated.Title)

	taken := "9787111213826"
	_, err = s.UpdateBook(ctx, first.ID, Patch{ISBN: &taken})
	assert.ErrorIs(t, err, ErrISBNDuplicate)

	negative := -1
	_, err = s.UpdateBook(ctx, first.ID, Patch{Stock: &negative})
	assert.ErrorIs(t, err, ErrInvalidStock)

	_, err = s.UpdateBook(ctx, 999, Patch{})
	assert.ErrorIs(t, err, ErrBookNotFound)
}

func TestSetDiscountAndDelete(t *testing.T) {
	repo := newMemRepo()
	s := NewService(repo)
	ctx := context.Background()

	b := goBook()
	require.NoError(t, s.AddBook(ctx, b))

	end := time.Now().Add(time.Hour)
	updated, err := s.SetDiscount(ctx, b.ID, decimal.RequireFromString("0.25"), nil, &end)
	require.NoError(t, err)
	assert.Equal(t, int64(5925), updated.FinalPrice(time.Now()))

	require.NoError(t, s.DeleteBook(ctx, b.ID))
	assert.ErrorIs(t, s.DeleteBook(ctx, b.ID), ErrBookNotFound)
}
