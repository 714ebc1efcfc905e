package books

import (
	"context"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/booklib/internal/common"
	"github.com/dmitrijs2005/booklib/internal/server/models"
	"github.com/google/uuid"
)

type MemoryRepository struct {
	mu    sync.RWMutex
	books map[string]models.Book
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{books: make(map[string]models.Book)}
}

func (r *MemoryRepository) List(_ context.Context, filter models.BookFilter) ([]models.Book, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	search := strings.ToLower(strings.TrimSpace(filter.Search))
	result := make([]models.Book, 0)
	for _, b := range r.books {
		if !filter.IncludeHidden && !b.IsVisible {
			continue
		}
		if filter.Category != "" && b.Category != filter.Category {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(b.Title), search) &&
			!strings.Contains(strings.ToLower(b.Description), search) &&
			!strings.Contains(strings.ToLower(b.Category), search) {
			continue
		}
		result = append(result, clone(b))
	}
	sortNewestFirst(result)
	return result, nil
}

func (r *MemoryRepository) GetByID(_ context.Context, id string) (*models.Book, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	b, ok := r.books[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	c := clone(b)
	return &c, nil
}

func (r *MemoryRepository) GetByIDs(_ context.Context, ids []string) ([]models.Book, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]models.Book, 0, len(ids))
	for _, id := range ids {
		if b, ok := r.books[id]; ok {
			result = append(result, clone(b))
		}
	}
	return result, nil
}

func (r *MemoryRepository) Create(_ context.Context, book *models.Book) (*models.Book, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	book.ID = uuid.NewString()
	book.Pages = nonNilPages(book.Pages)
	book.CreatedAt = now
	book.UpdatedAt = now
	r.books[book.ID] = clone(*book)
	return book, nil
}

func (r *MemoryRepository) Update(_ context.Context, id string, fn UpdateFunc) (*models.Book, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.books[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	b = clone(b)
	if err := fn(&b); err != nil {
		return nil, err
	}
	b.ID = id
	b.UpdatedAt = time.Now().UTC()
	r.books[id] = clone(b)
	return &b, nil
}

func (r *MemoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.books[id]; !ok {
		return common.ErrorNotFound
	}
	delete(r.books, id)
	return nil
}

func (r *MemoryRepository) Categories(_ context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]struct{})
	result := make([]string, 0)
	for _, b := range r.books {
		if _, dup := seen[b.Category]; !dup {
			seen[b.Category] = struct{}{}
			result = append(result, b.Category)
		}
	}
	sort.Strings(result)
	return result, nil
}

func (r *MemoryRepository) RenameCategory(_ context.Context, from, to string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	now := time.Now().UTC()
	for id, b := range r.books {
		if b.Category == from {
			b.Category = to
			b.UpdatedAt = now
			r.books[id] = b
			n++
		}
	}
	return n, nil
}

func (r *MemoryRepository) Count(_ context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.books)), nil
}

func (r *MemoryRepository) CountVisible(_ context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var n int64
	for _, b := range r.books {
		if b.IsVisible {
			n++
		}
	}
	return n, nil
}

func clone(b models.Book) models.Book {
	b.Pages = slices.Clone(nonNilPages(b.Pages))
	return b
}

func sortNewestFirst(list []models.Book) {
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].ID < list[j].ID
		}
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})
}
