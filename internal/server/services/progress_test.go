package services

import (
	"context"
	"sync"
	"testing"

	"github.com/dmitrijs2005/booklib/internal/common"
	"github.com/dmitrijs2005/booklib/internal/logging"
	"github.com/dmitrijs2005/booklib/internal/server/models"
	"github.com/dmitrijs2005/booklib/internal/server/repositories/progress"
	"github.com/dmitrijs2005/booklib/internal/server/repositories/repomanager"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProgress(t *testing.T) (*ProgressService, *repomanager.MemoryRepositoryManager) {
	t.Helper()
	store, m := newTestStore(t)
	return NewProgressService(store, logging.NewNop()), m
}

func TestUpsert_Boundaries(t *testing.T) {
	tests := []struct {
		name          string
		current       int
		total         int
		wantPage      int
		wantCompleted bool
	}{
		{"first page", 1, 10, 1, false},
		{"last page", 10, 10, 10, true},
		{"past the end is clamped", 11, 10, 10, true},
		{"below one is clamped", 0, 10, 1, false},
		{"single page book", 1, 1, 1, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newProgress(t)
			p, err := s.Upsert(context.Background(), "u1", "b1", tt.current, tt.total)
			require.NoError(t, err)
			assert.Equal(t, tt.wantPage, p.CurrentPage)
			assert.Equal(t, tt.total, p.TotalPages)
			assert.Equal(t, tt.wantCompleted, p.Completed)
		})
	}
}

func TestUpsert_RejectsEmptyBook(t *testing.T) {
	s, _ := newProgress(t)
	_, err := s.Upsert(context.Background(), "u1", "b1", 1, 0)

	var verr *common.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "totalPages")
}

func TestUpsert_Idempotent(t *testing.T) {
	s, m := newProgress(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		p, err := s.Upsert(ctx, "u1", "b1", 5, 5)
		require.NoError(t, err)
		assert.True(t, p.Completed)
	}
	assert.Equal(t, 1, m.Progress().(*progress.MemoryRepository).Len())
}

func TestUpsert_ConcurrentPageTurns(t *testing.T) {
	s, m := newProgress(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for page := 1; page <= 20; page++ {
		wg.Add(1)
		go func(page int) {
			defer wg.Done()
			_, err := s.Upsert(ctx, "u1", "b1", page, 20)
			assert.NoError(t, err)
		}(page)
	}
	wg.Wait()

	assert.Equal(t, 1, m.Progress().(*progress.MemoryRepository).Len())
	p, err := s.Get(ctx, "u1", "b1")
	require.NoError(t, err)
	assert.Equal(t, p.CurrentPage >= p.TotalPages, p.Completed)
}

func TestRecord(t *testing.T) {
	s, m := newProgress(t)
	ctx := context.Background()
	student := models.SessionUser{ID: "u1", Role: models.RoleStudent}
	admin := models.SessionUser{ID: "u2", Role: models.RoleAdmin}

	visible := seedBook(t, m, "Visible", 5, true)
	hidden := seedBook(t, m, "Hidden", 3, false)

	p, err := s.Record(ctx, student, visible.ID, ProgressInput{CurrentPage: 2, TotalPages: 99})
	require.NoError(t, err)
	assert.Equal(t, 5, p.TotalPages, "the book's page count wins over the client's")
	assert.False(t, p.Completed)

	_, err = s.Record(ctx, student, visible.ID, ProgressInput{CurrentPage: 6, TotalPages: 5})
	assert.ErrorIs(t, err, common.ErrorValidation)

	_, err = s.Record(ctx, student, visible.ID, ProgressInput{CurrentPage: 0, TotalPages: 5})
	assert.ErrorIs(t, err, common.ErrorValidation)

	_, err = s.Record(ctx, student, hidden.ID, ProgressInput{CurrentPage: 1, TotalPages: 3})
	assert.ErrorIs(t, err, common.ErrorNotFound)

	p, err = s.Record(ctx, admin, hidden.ID, ProgressInput{CurrentPage: 3, TotalPages: 3})
	require.NoError(t, err)
	assert.True(t, p.Completed)

	_, err = s.Record(ctx, student, "missing", ProgressInput{CurrentPage: 1, TotalPages: 1})
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestGet_NoRecordIsNotAnError(t *testing.T) {
	s, _ := newProgress(t)
	p, err := s.Get(context.Background(), "u1", "never-opened")
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestListForUser(t *testing.T) {
	s, m := newProgress(t)
	ctx := context.Background()

	reading := seedBook(t, m, "Reading", 4, true)
	done := seedBook(t, m, "Done", 2, true)
	removed := seedBook(t, m, "Removed", 3, true)

	_, err := s.Upsert(ctx, "u1", reading.ID, 2, 4)
	require.NoError(t, err)
	_, err = s.Upsert(ctx, "u1", done.ID, 2, 2)
	require.NoError(t, err)
	_, err = s.Upsert(ctx, "u1", removed.ID, 1, 3)
	require.NoError(t, err)
	_, err = s.Upsert(ctx, "someone-else", reading.ID, 4, 4)
	require.NoError(t, err)
	require.NoError(t, m.Books().Delete(ctx, removed.ID))

	got, err := s.ListForUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, got.Completed, 1)
	require.Len(t, got.InProgress, 2)
	assert.Equal(t, "Done", got.Completed[0].Book.Title)

	books := map[string]*models.Book{}
	for _, e := range got.InProgress {
		books[e.BookID] = e.Book
	}
	require.NotNil(t, books[reading.ID])
	assert.Equal(t, "Reading", books[reading.ID].Title)
	assert.Nil(t, books[removed.ID])
}

func TestListForUser_Empty(t *testing.T) {
	s, _ := newProgress(t)
	got, err := s.ListForUser(context.Background(), "u1")
	require.NoError(t, err)
	assert.NotNil(t, got.InProgress)
	assert.NotNil(t, got.Completed)
}

func TestAggregateStats(t *testing.T) {
	s, m := newProgress(t)
	ctx := context.Background()
	b := seedBook(t, m, "A", 2, true)
	seedBook(t, m, "B", 2, false)

	_, err := s.Upsert(ctx, "u1", b.ID, 2, 2)
	require.NoError(t, err)
	_, err = s.Upsert(ctx, "u2", b.ID, 1, 2)
	require.NoError(t, err)

	stats, err := s.AggregateStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, &models.Stats{BookCount: 2, CompletedSessions: 1}, stats)
}
