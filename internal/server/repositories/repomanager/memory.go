package repomanager

import (
	"context"

	"github.com/dmitrijs2005/booklib/internal/server/repositories/books"
	"github.com/dmitrijs2005/booklib/internal/server/repositories/progress"
	"github.com/dmitrijs2005/booklib/internal/server/repositories/users"
)

// MemoryRepositoryManager keeps everything in process memory. Used by tests
// and by `memory://` deployments.
type MemoryRepositoryManager struct {
	users    *users.MemoryRepository
	progress *progress.MemoryRepository
	books    *books.MemoryRepository
}

func NewMemoryRepositoryManager() *MemoryRepositoryManager {
	return &MemoryRepositoryManager{
		users:    users.NewMemoryRepository(),
		progress: progress.NewMemoryRepository(),
		books:    books.NewMemoryRepository(),
	}
}

func (m *MemoryRepositoryManager) Users() users.Repository       { return m.users }
func (m *MemoryRepositoryManager) Progress() progress.Repository { return m.progress }
func (m *MemoryRepositoryManager) Books() books.Repository       { return m.books }

func (m *MemoryRepositoryManager) Close(context.Context) error { return nil }
