package services

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/dmitrijs2005/booklib/internal/logging"
	"github.com/dmitrijs2005/booklib/internal/server/auth"
	"github.com/dmitrijs2005/booklib/internal/server/models"
	"github.com/dmitrijs2005/booklib/internal/server/repositories/repomanager"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestStore(t *testing.T) (*repomanager.Lazy, *repomanager.MemoryRepositoryManager) {
	t.Helper()
	m := repomanager.NewMemoryRepositoryManager()
	l := repomanager.NewLazyWith("memory://", func(context.Context, string) (repomanager.RepositoryManager, error) {
		return m, nil
	}, logging.NewNop())
	return l, m
}

func newTestTokens(t *testing.T) *auth.TokenService {
	t.Helper()
	ts, err := auth.NewTokenService("access-secret", "refresh-secret", 15*time.Minute, 7*24*time.Hour)
	require.NoError(t, err)
	return ts
}

func newTestHasher() *auth.PasswordHasher {
	return auth.NewPasswordHasher(bcrypt.MinCost)
}

func seedBook(t *testing.T, m *repomanager.MemoryRepositoryManager, title string, pages int, visible bool) *models.Book {
	t.Helper()
	b := &models.Book{
		Title:     title,
		Category:  "Science",
		Folder:    "f",
		Pages:     make([]string, 0, pages),
		IsVisible: visible,
	}
	for i := 1; i <= pages; i++ {
		b.Pages = append(b.Pages, "/books/f/"+strconv.Itoa(i)+".jpg")
	}
	created, err := m.Books().Create(context.Background(), b)
	require.NoError(t, err)
	return created
}
