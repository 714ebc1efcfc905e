// Package books is the thin catalog store the reading features depend on.
package books

import (
	"context"

	"github.com/dmitrijs2005/booklib/internal/server/models"
)

// UpdateFunc mutates a loaded book in place. Returning an error aborts the update.
type UpdateFunc func(b *models.Book) error

// Repository persists books. Lookups by a missing or malformed id return
// common.ErrorNotFound.
type Repository interface {
	List(ctx context.Context, filter models.BookFilter) ([]models.Book, error)
	GetByID(ctx context.Context, id string) (*models.Book, error)
	GetByIDs(ctx context.Context, ids []string) ([]models.Book, error)
	Create(ctx context.Context, book *models.Book) (*models.Book, error)
	// Update loads the book, applies fn and stores the result atomically.
	Update(ctx context.Context, id string, fn UpdateFunc) (*models.Book, error)
	Delete(ctx context.Context, id string) error
	Categories(ctx context.Context) ([]string, error)
	RenameCategory(ctx context.Context, from, to string) (int64, error)
	Count(ctx context.Context) (int64, error)
	CountVisible(ctx context.Context) (int64, error)
}
