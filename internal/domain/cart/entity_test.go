package cart

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/xiebiao/bookshop/internal/domain/book"
)

func TestSummarize_RecomputesFromLines(t *testing.T) {
	now := time.Now()
	c := &Cart{ID: 3, Items: []Item{
		{BookID: 1, Quantity: 2},
		{BookID: 2, Quantity: 1},
		{BookID: 99, Quantity: 5}, // 已下架
	}}
	books := map[uint]*book.Book{
		1: {ID: 1, Title: "A", Price: 2000, Discount: decimal.RequireFromString("0.1")},
		2: {ID: 2, Title: "B", Price: 3550},
	}

	s := Summarize(c, books, now)

	assert.Len(t, s.Lines, 2)
	assert.Equal(t, 3, s.TotalQuantity)
	assert.Equal(t, int64(1800*2+3550), s.TotalPrice)
	assert.Equal(t, int64(400), s.TotalSaved)
	assert.Equal(t, int64(3600), s.Lines[0].LineTotal)
}

func TestSummarize_NilCart(t *testing.T) {
	s := Summarize(nil, nil, time.Now())
	assert.Empty(t, s.Lines)
	assert.Zero(t, s.TotalPrice)
}

func TestCart_FindItem(t *testing.T) {
	c := &Cart{Items: []Item{{BookID: 5, Quantity: 1}}}

	item, ok := c.FindItem(5)
	assert.True(t, ok)
	assert.Equal(t, 1, item.Quantity)

	_, ok = c.FindItem(6)
	assert.False(t, ok)
	assert.Equal(t, []uint{5}, c.BookIDs())
	assert.True(t, (&Cart{}).IsEmpty())
}
