package services

import (
	"context"
	"strings"

	"github.com/dmitrijs2005/booklib/internal/common"
	"github.com/dmitrijs2005/booklib/internal/logging"
	"github.com/dmitrijs2005/booklib/internal/server/models"
	"github.com/dmitrijs2005/booklib/internal/server/pages"
	"github.com/dmitrijs2005/booklib/internal/validation"
)

type BookInput struct {
	Title       string   `json:"title" validate:"required,min=2,max=180"`
	Description string   `json:"description" validate:"omitempty,min=10,max=500"`
	Category    string   `json:"category" validate:"required,min=2,max=80"`
	Folder      string   `json:"folder" validate:"required"`
	Pages       []string `json:"pages" validate:"dive,bookpage"`
	CoverImage  string   `json:"coverImage"`
	IsVisible   *bool    `json:"isVisible"`
}

// BookPatch is a partial update; nil fields are left unchanged.
type BookPatch struct {
	Title       *string  `json:"title" validate:"omitempty,min=2,max=180"`
	Description *string  `json:"description" validate:"omitempty,min=10,max=500"`
	Category    *string  `json:"category" validate:"omitempty,min=2,max=80"`
	Folder      *string  `json:"folder" validate:"omitempty,min=1"`
	Pages       []string `json:"pages" validate:"omitempty,dive,bookpage"`
	CoverImage  *string  `json:"coverImage"`
	IsVisible   *bool    `json:"isVisible"`
}

type CategoryInput struct {
	CurrentName string `json:"currentName"`
	NewName     string `json:"newName" validate:"required,min=2,max=80"`
}

type BookList struct {
	Books      []models.Book `json:"books"`
	Categories []string      `json:"categories"`
}

// BookService is the thin catalog. Hidden books exist only for admins.
type BookService struct {
	store    Store
	resolver pages.Resolver
	logger   logging.Logger
}

func NewBookService(store Store, resolver pages.Resolver, logger logging.Logger) *BookService {
	return &BookService{store: store, resolver: resolver, logger: logger.With("module", "books")}
}

func isAdmin(viewer *models.SessionUser) bool {
	return viewer != nil && viewer.Role == models.RoleAdmin
}

// List returns the books matching filter together with all categories.
// IncludeHidden is honoured for admins only.
func (s *BookService) List(ctx context.Context, filter models.BookFilter, viewer *models.SessionUser) (*BookList, error) {
	if !isAdmin(viewer) {
		filter.IncludeHidden = false
	}

	m, err := s.store.Get(ctx)
	if err != nil {
		return nil, err
	}
	list, err := m.Books().List(ctx, filter)
	if err != nil {
		return nil, err
	}
	cats, err := m.Books().Categories(ctx)
	if err != nil {
		return nil, err
	}
	return &BookList{Books: list, Categories: cats}, nil
}

func (s *BookService) Get(ctx context.Context, id string, viewer *models.SessionUser) (*models.Book, error) {
	m, err := s.store.Get(ctx)
	if err != nil {
		return nil, err
	}
	b, err := m.Books().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !b.IsVisible && !isAdmin(viewer) {
		return nil, common.ErrorNotFound
	}
	return b, nil
}

// Pages returns loadable URLs for the book's pages, in reading order.
func (s *BookService) Pages(ctx context.Context, id string, viewer *models.SessionUser) ([]string, error) {
	b, err := s.Get(ctx, id, viewer)
	if err != nil {
		return nil, err
	}
	return s.resolver.Resolve(ctx, b)
}

func (s *BookService) Create(ctx context.Context, in BookInput, createdBy string) (*models.Book, error) {
	trimBookInput(&in)
	if err := validation.Struct(&in); err != nil {
		return nil, err
	}

	book := &models.Book{
		Title:       in.Title,
		Description: in.Description,
		Category:    in.Category,
		Folder:      in.Folder,
		Pages:       in.Pages,
		CoverImage:  in.CoverImage,
		IsVisible:   in.IsVisible == nil || *in.IsVisible,
		CreatedBy:   createdBy,
	}
	if book.Pages == nil {
		book.Pages = []string{}
	}
	if book.CoverImage == "" && len(book.Pages) > 0 {
		book.CoverImage = book.Pages[0]
	}

	m, err := s.store.Get(ctx)
	if err != nil {
		return nil, err
	}
	b, err := m.Books().Create(ctx, book)
	if err != nil {
		return nil, err
	}
	s.logger.Info(ctx, "book created", "book_id", b.ID)
	return b, nil
}

func (s *BookService) Update(ctx context.Context, id string, patch BookPatch) (*models.Book, error) {
	trimBookPatch(&patch)
	if err := validation.Struct(&patch); err != nil {
		return nil, err
	}

	m, err := s.store.Get(ctx)
	if err != nil {
		return nil, err
	}
	return m.Books().Update(ctx, id, func(b *models.Book) error {
		applyPatch(b, patch)
		return nil
	})
}

func (s *BookService) SetVisibility(ctx context.Context, id string, visible bool) (*models.Book, error) {
	m, err := s.store.Get(ctx)
	if err != nil {
		return nil, err
	}
	return m.Books().Update(ctx, id, func(b *models.Book) error {
		b.IsVisible = visible
		return nil
	})
}

func (s *BookService) Delete(ctx context.Context, id string) error {
	m, err := s.store.Get(ctx)
	if err != nil {
		return err
	}
	if err := m.Books().Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info(ctx, "book deleted", "book_id", id)
	return nil
}

func (s *BookService) Categories(ctx context.Context) ([]string, error) {
	m, err := s.store.Get(ctx)
	if err != nil {
		return nil, err
	}
	return m.Books().Categories(ctx)
}

// RenameCategory moves every book in CurrentName to NewName. Without a
// CurrentName nothing is moved; categories exist only through books.
func (s *BookService) RenameCategory(ctx context.Context, in CategoryInput) (string, error) {
	in.CurrentName = strings.TrimSpace(in.CurrentName)
	in.NewName = strings.TrimSpace(in.NewName)
	if err := validation.Struct(&in); err != nil {
		return "", err
	}
	if in.CurrentName == "" || in.CurrentName == in.NewName {
		return in.NewName, nil
	}

	m, err := s.store.Get(ctx)
	if err != nil {
		return "", err
	}
	n, err := m.Books().RenameCategory(ctx, in.CurrentName, in.NewName)
	if err != nil {
		return "", err
	}
	s.logger.Info(ctx, "category renamed", "from", in.CurrentName, "to", in.NewName, "books", n)
	return in.NewName, nil
}

// DeleteCategory moves the category's books to Uncategorized.
func (s *BookService) DeleteCategory(ctx context.Context, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", common.NewValidationError("name", "is required")
	}

	m, err := s.store.Get(ctx)
	if err != nil {
		return "", err
	}
	if _, err := m.Books().RenameCategory(ctx, name, common.UncategorizedCategory); err != nil {
		return "", err
	}
	return common.UncategorizedCategory, nil
}

func (s *BookService) Summary(ctx context.Context) (*models.BookSummary, error) {
	m, err := s.store.Get(ctx)
	if err != nil {
		return nil, err
	}
	total, err := m.Books().Count(ctx)
	if err != nil {
		return nil, err
	}
	visible, err := m.Books().CountVisible(ctx)
	if err != nil {
		return nil, err
	}
	return &models.BookSummary{TotalBooks: total, VisibleBooks: visible}, nil
}

func trimBookInput(in *BookInput) {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.Category = strings.TrimSpace(in.Category)
	in.Folder = strings.TrimSpace(in.Folder)
	in.CoverImage = strings.TrimSpace(in.CoverImage)
}

// trimBookPatch trims the present fields in place.
func trimBookPatch(p *BookPatch) {
	for _, f := range []*string{p.Title, p.Description, p.Category, p.Folder, p.CoverImage} {
		if f != nil {
			*f = strings.TrimSpace(*f)
		}
	}
}

// applyPatch expects a trimmed, validated patch.
func applyPatch(b *models.Book, p BookPatch) {
	if p.Title != nil {
		b.Title = *p.Title
	}
	if p.Description != nil {
		b.Description = *p.Description
	}
	if p.Category != nil {
		b.Category = *p.Category
	}
	if p.Folder != nil {
		b.Folder = *p.Folder
	}
	if p.Pages != nil {
		b.Pages = p.Pages
	}
	if p.IsVisible != nil {
		b.IsVisible = *p.IsVisible
	}
	switch {
	case p.CoverImage != nil && *p.CoverImage != "":
		b.CoverImage = *p.CoverImage
	case len(p.Pages) > 0:
		b.CoverImage = p.Pages[0]
	}
}
