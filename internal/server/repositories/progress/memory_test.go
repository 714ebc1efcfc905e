package progress

import (
	"context"
	"sync"
	"testing"

	"github.com/dmitrijs2005/booklib/internal/common"
	"github.com/dmitrijs2005/booklib/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRepository_UpsertKeepsOneRecordPerPair(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	first, err := repo.Upsert(ctx, &models.ReadingProgress{UserID: "u", BookID: "b", CurrentPage: 1, TotalPages: 5})
	require.NoError(t, err)

	second, err := repo.Upsert(ctx, &models.ReadingProgress{UserID: "u", BookID: "b", CurrentPage: 5, TotalPages: 5, Completed: true})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.CreatedAt, second.CreatedAt)
	assert.Equal(t, 5, second.CurrentPage)
	assert.Equal(t, 1, repo.Len())

	got, err := repo.Get(ctx, "u", "b")
	require.NoError(t, err)
	assert.True(t, got.Completed)

	_, err = repo.Get(ctx, "u", "other")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestMemoryRepository_ConcurrentUpserts(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	var wg sync.WaitGroup
	for i := 1; i <= 50; i++ {
		wg.Add(1)
		go func(page int) {
			defer wg.Done()
			_, err := repo.Upsert(ctx, &models.ReadingProgress{UserID: "u", BookID: "b", CurrentPage: page, TotalPages: 50})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, repo.Len())
}

func TestMemoryRepository_ListAndCount(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	_, _ = repo.Upsert(ctx, &models.ReadingProgress{UserID: "u1", BookID: "b1", CurrentPage: 3, TotalPages: 3, Completed: true})
	_, _ = repo.Upsert(ctx, &models.ReadingProgress{UserID: "u1", BookID: "b2", CurrentPage: 1, TotalPages: 3})
	_, _ = repo.Upsert(ctx, &models.ReadingProgress{UserID: "u2", BookID: "b1", CurrentPage: 3, TotalPages: 3, Completed: true})

	list, err := repo.ListByUser(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, list, 2)

	none, err := repo.ListByUser(ctx, "nobody")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)

	n, err := repo.CountCompleted(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}
