package review

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewReview_RatingRange(t *testing.T) {
	for _, rating := range []int{0, 6, -1} {
		_, err := NewReview(1, 2, "不错", rating)
		assert.ErrorIs(t, err, ErrInvalidRating, "rating=%d", rating)
	}

	for rating := MinRating; rating <= MaxRating; rating++ {
		r, err := NewReview(1, 2, "  不错  ", rating)
		require.NoError(t, err)
		assert.Equal(t, "不错", r.Content)
	}
}

func TestNewReview_ContentLength(t *testing.T) {
	_, err := NewReview(1, 2, strings.Repeat("好", MaxContentLength+1), 5)
	assert.ErrorIs(t, err, ErrContentTooLong)

	_, err = NewReview(1, 2, strings.Repeat("好", MaxContentLength), 5)
	assert.NoError(t, err)
}
