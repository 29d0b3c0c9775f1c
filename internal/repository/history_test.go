package repository

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smeshko/text-extractor/internal/common"
)

func TestKeywordHistory_AddAndList(t *testing.T) {
	ctx := context.Background()
	repo := NewKeywordHistoryRepository(openTestDB(t), 0, nil)

	require.NoError(t, repo.Add(ctx, "Total"))
	require.NoError(t, repo.Add(ctx, "  Tax  "))
	require.NoError(t, repo.Add(ctx, "Итого"))

	got, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Total", "Tax", "Итого"}, got)
}

func TestKeywordHistory_ReAddMovesToEnd(t *testing.T) {
	ctx := context.Background()
	repo := NewKeywordHistoryRepository(openTestDB(t), 0, nil)

	for _, kw := range []string{"Total", "Tax", "Fee"} {
		require.NoError(t, repo.Add(ctx, kw))
	}
	require.NoError(t, repo.Add(ctx, "TOTAL"))
	require.NoError(t, repo.Add(ctx, "ИТОГО"))
	require.NoError(t, repo.Add(ctx, "итого"))

	got, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Tax", "Fee", "TOTAL", "итого"}, got)

	ok, err := repo.Contains(ctx, "total")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestKeywordHistory_Capped(t *testing.T) {
	ctx := context.Background()
	repo := NewKeywordHistoryRepository(openTestDB(t), 3, nil)

	for i := 1; i <= 5; i++ {
		require.NoError(t, repo.Add(ctx, fmt.Sprintf("kw%d", i)))
	}
	got, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"kw3", "kw4", "kw5"}, got)
}

func TestKeywordHistory_RejectsInvalid(t *testing.T) {
	ctx := context.Background()
	repo := NewKeywordHistoryRepository(openTestDB(t), 0, nil)

	err := repo.Add(ctx, "   ")
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestKeywordHistory_RemoveAndClear(t *testing.T) {
	ctx := context.Background()
	repo := NewKeywordHistoryRepository(openTestDB(t), 0, nil)

	require.NoError(t, repo.Add(ctx, "Total"))
	require.NoError(t, repo.Add(ctx, "Tax"))

	require.NoError(t, repo.Remove(ctx, "total"))
	assert.ErrorIs(t, repo.Remove(ctx, "total"), common.ErrNotFound)

	got, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Tax"}, got)

	require.NoError(t, repo.Clear(ctx))
	got, err = repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)
}
