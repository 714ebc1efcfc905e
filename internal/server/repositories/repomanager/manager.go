// Package repomanager opens a storage backend and vends its repositories.
// The backend is chosen by the DSN scheme.
package repomanager

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/dmitrijs2005/booklib/internal/common"
	"github.com/dmitrijs2005/booklib/internal/server/repositories/books"
	"github.com/dmitrijs2005/booklib/internal/server/repositories/progress"
	"github.com/dmitrijs2005/booklib/internal/server/repositories/users"
)

// RepositoryManager gives access to the repositories of one opened backend.
type RepositoryManager interface {
	Users() users.Repository
	Progress() progress.Repository
	Books() books.Repository
	Close(ctx context.Context) error
}

// Open connects to the backend named by dsn and prepares its schema.
func Open(ctx context.Context, dsn string) (RepositoryManager, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil, fmt.Errorf("%w: database dsn is not set", common.ErrorConfiguration)
	}

	u, err := url.Parse(dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: malformed database dsn", common.ErrorConfiguration)
	}

	switch strings.ToLower(u.Scheme) {
	case "mongodb", "mongodb+srv":
		return NewMongoRepositoryManager(ctx, dsn)
	case "postgres", "postgresql":
		return NewPostgresRepositoryManager(ctx, dsn)
	case "memory":
		return NewMemoryRepositoryManager(), nil
	default:
		return nil, fmt.Errorf("%w: unsupported database scheme %q", common.ErrorConfiguration, u.Scheme)
	}
}
