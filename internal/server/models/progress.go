package models

import "time"

// ReadingProgress is the single record kept per (UserID, BookID).
type ReadingProgress struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	BookID      string    `json:"bookId"`
	CurrentPage int       `json:"currentPage"`
	TotalPages  int       `json:"totalPages"`
	Completed   bool      `json:"completed"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// ProgressEntry is a progress record joined with its book at read time.
// Book is nil when the book no longer exists.
type ProgressEntry struct {
	ReadingProgress
	Book *Book `json:"book"`
}

type DashboardProgress struct {
	InProgress []ProgressEntry `json:"inProgress"`
	Completed  []ProgressEntry `json:"completed"`
}

type Stats struct {
	BookCount         int64 `json:"bookCount"`
	CompletedSessions int64 `json:"completedSessions"`
}
