package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/booklib/internal/common"
	"github.com/dmitrijs2005/booklib/internal/logging"
	"github.com/dmitrijs2005/booklib/internal/server/models"
	"github.com/dmitrijs2005/booklib/internal/validation"
)

type ProgressInput struct {
	CurrentPage int `json:"currentPage" validate:"gte=1"`
	TotalPages  int `json:"totalPages" validate:"gte=1"`
}

// ProgressService is the progress tracker. Consistency under concurrent
// writes is left to the repository's atomic upsert; last writer wins.
type ProgressService struct {
	store  Store
	logger logging.Logger
}

func NewProgressService(store Store, logger logging.Logger) *ProgressService {
	return &ProgressService{store: store, logger: logger.With("module", "progress")}
}

// Upsert stores progress for (userID, bookID). currentPage is clamped into
// [1, totalPages] and completed is always recomputed from the stored values.
func (s *ProgressService) Upsert(ctx context.Context, userID, bookID string, currentPage, totalPages int) (*models.ReadingProgress, error) {
	if totalPages < 1 {
		return nil, common.NewValidationError("totalPages", "must be greater than or equal to 1")
	}
	currentPage = min(max(currentPage, 1), totalPages)

	m, err := s.store.Get(ctx)
	if err != nil {
		return nil, err
	}
	return m.Progress().Upsert(ctx, &models.ReadingProgress{
		UserID:      userID,
		BookID:      bookID,
		CurrentPage: currentPage,
		TotalPages:  totalPages,
		Completed:   currentPage >= totalPages,
	})
}

// Record is the request-facing write: the book must exist and be visible to
// the caller, the page must lie within the book, and the book's own page
// count is used as totalPages.
func (s *ProgressService) Record(ctx context.Context, user models.SessionUser, bookID string, in ProgressInput) (*models.ReadingProgress, error) {
	if err := validation.Struct(&in); err != nil {
		return nil, err
	}

	m, err := s.store.Get(ctx)
	if err != nil {
		return nil, err
	}
	book, err := m.Books().GetByID(ctx, bookID)
	if err != nil {
		return nil, err
	}
	if !book.IsVisible && user.Role != models.RoleAdmin {
		return nil, common.ErrorNotFound
	}

	total := len(book.Pages)
	if in.CurrentPage > total {
		return nil, common.NewValidationError("currentPage", fmt.Sprintf("must be at most %d", total))
	}
	return s.Upsert(ctx, user.ID, book.ID, in.CurrentPage, total)
}

// Get returns nil without error when nothing was recorded yet.
func (s *ProgressService) Get(ctx context.Context, userID, bookID string) (*models.ReadingProgress, error) {
	m, err := s.store.Get(ctx)
	if err != nil {
		return nil, err
	}
	p, err := m.Progress().Get(ctx, userID, bookID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return p, nil
}

// ListForUser splits the user's records by completion and joins each with
// its book. Book is nil for books that were removed.
func (s *ProgressService) ListForUser(ctx context.Context, userID string) (*models.DashboardProgress, error) {
	m, err := s.store.Get(ctx)
	if err != nil {
		return nil, err
	}

	records, err := m.Progress().ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(records))
	for _, r := range records {
		ids = append(ids, r.BookID)
	}
	list, err := m.Books().GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*models.Book, len(list))
	for i := range list {
		byID[list[i].ID] = &list[i]
	}

	out := &models.DashboardProgress{
		InProgress: make([]models.ProgressEntry, 0),
		Completed:  make([]models.ProgressEntry, 0),
	}
	for _, r := range records {
		e := models.ProgressEntry{ReadingProgress: r, Book: byID[r.BookID]}
		if r.Completed {
			out.Completed = append(out.Completed, e)
		} else {
			out.InProgress = append(out.InProgress, e)
		}
	}
	return out, nil
}

func (s *ProgressService) AggregateStats(ctx context.Context) (*models.Stats, error) {
	m, err := s.store.Get(ctx)
	if err != nil {
		return nil, err
	}
	books, err := m.Books().Count(ctx)
	if err != nil {
		return nil, err
	}
	completed, err := m.Progress().CountCompleted(ctx)
	if err != nil {
		return nil, err
	}
	return &models.Stats{BookCount: books, CompletedSessions: completed}, nil
}
