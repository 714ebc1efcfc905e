// Package progress stores reading progress: exactly one record per
// (user, book) pair, written by atomic upsert.
package progress

import (
	"context"

	"github.com/dmitrijs2005/booklib/internal/server/models"
)

// Repository persists ReadingProgress. Upsert creates the record on first
// call and overwrites it in place afterwards; implementations rely on a
// uniqueness constraint over (user, book) rather than application locks.
// Completed is stored as given; the caller derives it.
type Repository interface {
	Upsert(ctx context.Context, p *models.ReadingProgress) (*models.ReadingProgress, error)
	Get(ctx context.Context, userID, bookID string) (*models.ReadingProgress, error)
	ListByUser(ctx context.Context, userID string) ([]models.ReadingProgress, error)
	CountCompleted(ctx context.Context) (int64, error)
}
