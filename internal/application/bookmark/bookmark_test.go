package bookmark

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/bookshop/internal/application/apptest"
	"github.com/xiebiao/bookshop/internal/domain/book"
)

func TestToggleAndList(t *testing.T) {
	tx := &apptest.TxManager{}
	marks := apptest.NewBookmarkRepo()
	books := apptest.NewBookRepo()
	toggle := NewToggleUseCase(tx, marks, books)
	list := NewListUseCase(marks, books)
	ctx := context.Background()

	empty, err := list.Execute(ctx, 1)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	a := books.Seed(&book.Book{Title: "A", Price: 100})
	b := books.Seed(&book.Book{Title: "B", Price: 200})

	res, err := toggle.Execute(ctx, 1, a.ID)
	require.NoError(t, err)
	assert.True(t, res.IsBookmarked)
	res, err = toggle.Execute(ctx, 1, b.ID)
	require.NoError(t, err)
	assert.True(t, res.IsBookmarked)

	items, err := list.Execute(ctx, 1)
	require.NoError(t, err)
	require.Len(t, items, 2)

	res, err = toggle.Execute(ctx, 1, a.ID)
	require.NoError(t, err)
	assert.False(t, res.IsBookmarked)

	items, err = list.Execute(ctx, 1)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "B", items[0].Title)
	assert.Equal(t, 3, tx.Calls)

	// 其他用户的收藏互不影响
	other, err := list.Execute(ctx, 2)
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestToggle_UnknownBook(t *testing.T) {
	toggle := NewToggleUseCase(&apptest.TxManager{}, apptest.NewBookmarkRepo(), apptest.NewBookRepo())
	_, err := toggle.Execute(context.Background(), 1, 42)
	assert.ErrorIs(t, err, book.ErrBookNotFound)
}

func TestStatus_ReflectsToggle(t *testing.T) {
	tx := &apptest.TxManager{}
	marks := apptest.NewBookmarkRepo()
	books := apptest.NewBookRepo()
	toggle := NewToggleUseCase(tx, marks, books)
	status := NewStatusUseCase(marks)
	ctx := context.Background()

	a := books.Seed(&book.Book{Title: "A", Price: 100})

	marked, err := status.IsBookmarked(ctx, 1, a.ID)
	require.NoError(t, err)
	assert.False(t, marked)

	_, err = toggle.Execute(ctx, 1, a.ID)
	require.NoError(t, err)

	marked, err = status.IsBookmarked(ctx, 1, a.ID)
	require.NoError(t, err)
	assert.True(t, marked)

	marked, err = status.IsBookmarked(ctx, 2, a.ID)
	require.NoError(t, err)
	assert.False(t, marked)
}
