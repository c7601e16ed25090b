package order

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleItems() []Item {
	return []Item{
		{BookID: 1, Quantity: 2, UnitPrice: 2000, Discount: decimal.RequireFromString("0.1"), FinalUnitPrice: 1800},
		{BookID: 2, Quantity: 1, UnitPrice: 3500, FinalUnitPrice: 3500},
	}
}

func TestNewOrder(t *testing.T) {
	o, err := NewOrder("ORD1", "ABCDEF1234", 7, sampleItems())
	require.NoError(t, err)

	assert.Equal(t, StatusPending, o.Status)
	assert.Equal(t, int64(7100), o.TotalPrice)
	assert.Equal(t, int64(400), o.Discount)
	assert.True(t, o.ContainsBook(2))
	assert.False(t, o.ContainsBook(3))

	_, err = NewOrder("ORD2", "X", 7, nil)
	assert.ErrorIs(t, err, ErrEmptyCart)

	_, err = NewOrder("ORD3", "X", 7, []Item{{BookID: 1, Quantity: 0}})
	assert.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestTransitions(t *testing.T) {
	all := []Status{StatusPending, StatusCancelled, StatusOngoing, StatusCompleted}
	allowed := map[Status]map[Status]bool{
		StatusPending: {StatusOngoing: true, StatusCancelled: true},
		StatusOngoing: {StatusCompleted: true},
	}

	for _, from := range all {
		for _, to := range all {
			o := &Order{Status: from}
			assert.Equal(t, allowed[from][to], o.CanTransitionTo(to), "%s → %s", from, to)
		}
	}
}

func TestTransitionTo_SetsCompletedAt(t *testing.T) {
	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	o := &Order{Status: StatusOngoing}

	require.NoError(t, o.TransitionTo(StatusCompleted, now))
	require.NotNil(t, o.CompletedAt)
	assert.Equal(t, now, *o.CompletedAt)

	// 已完成的订单不能取消
	err := o.TransitionTo(StatusCancelled, now)
	assert.ErrorIs(t, err, ErrInvalidStatusTransition)
	assert.Equal(t, StatusCompleted, o.Status)
}

func TestParseStatus(t *testing.T) {
	s, err := ParseStatus("ongoing")
	require.NoError(t, err)
	assert.Equal(t, StatusOngoing, s)

	s, err = ParseStatus("4")
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, s)

	_, err = ParseStatus("Shipped")
	assert.Error(t, err)
	_, err = ParseStatus("9")
	assert.Error(t, err)
	assert.True(t, StatusCancelled.IsTerminal())
	assert.False(t, StatusOngoing.IsTerminal())
}

func TestClaimCode(t *testing.T) {
	code := GenerateClaimCode()
	assert.Len(t, code, ClaimCodeLength)
	assert.Regexp(t, `^[0-9A-F]+$`, code)
	assert.NotEqual(t, code, GenerateClaimCode())

	v := NewPlainClaimCodeVerifier()
	assert.True(t, v.Verify("AB12CD34EF", "AB12CD34EF"))
	assert.False(t, v.Verify("AB12CD34EF", "ab12cd34ef"), "区分大小写")
	assert.False(t, v.Verify("AB12CD34EF", "AB12CD34E"))
	assert.False(t, v.Verify("", ""))
}

func TestGenerateOrderNo(t *testing.T) {
	assert.Regexp(t, `^ORD\d{16}$`, GenerateOrderNo())
}
