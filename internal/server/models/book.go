package models

import "time"

type Book struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Category    string    `json:"category"`
	Folder      string    `json:"folder"`
	Pages       []string  `json:"pages"`
	CoverImage  string    `json:"coverImage,omitempty"`
	IsVisible   bool      `json:"isVisible"`
	CreatedBy   string    `json:"createdBy,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// BookFilter narrows a catalog listing. Search is a case-insensitive
// substring match on title, description and category.
type BookFilter struct {
	Search        string
	Category      string
	IncludeHidden bool
}

// BookSummary is the catalog overview shown on the admin dashboard.
type BookSummary struct {
	TotalBooks   int64 `json:"totalBooks"`
	VisibleBooks int64 `json:"visibleBooks"`
}
