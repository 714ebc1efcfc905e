package progress

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/dmitrijs2005/booklib/internal/common"
	"github.com/dmitrijs2005/booklib/internal/server/models"
	"github.com/google/uuid"
)

type key struct {
	userID string
	bookID string
}

// MemoryRepository keys records by (user, book) in a map, which gives the
// same single-record-per-pair guarantee as the database constraint.
type MemoryRepository struct {
	mu      sync.RWMutex
	records map[key]models.ReadingProgress
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{records: make(map[key]models.ReadingProgress)}
}

func (r *MemoryRepository) Upsert(_ context.Context, p *models.ReadingProgress) (*models.ReadingProgress, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	k := key{userID: p.UserID, bookID: p.BookID}

	rec, exists := r.records[k]
	if !exists {
		rec = models.ReadingProgress{
			ID:        uuid.NewString(),
			UserID:    p.UserID,
			BookID:    p.BookID,
			CreatedAt: now,
		}
	}
	rec.CurrentPage = p.CurrentPage
	rec.TotalPages = p.TotalPages
	rec.Completed = p.Completed
	rec.UpdatedAt = now
	r.records[k] = rec

	return &rec, nil
}

func (r *MemoryRepository) Get(_ context.Context, userID, bookID string) (*models.ReadingProgress, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.records[key{userID: userID, bookID: bookID}]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &rec, nil
}

func (r *MemoryRepository) ListByUser(_ context.Context, userID string) ([]models.ReadingProgress, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]models.ReadingProgress, 0)
	for k, rec := range r.records {
		if k.userID == userID {
			result = append(result, rec)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].UpdatedAt.After(result[j].UpdatedAt)
	})
	return result, nil
}

func (r *MemoryRepository) CountCompleted(_ context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var n int64
	for _, rec := range r.records {
		if rec.Completed {
			n++
		}
	}
	return n, nil
}

// Len is the number of stored records.
func (r *MemoryRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.records)
}
