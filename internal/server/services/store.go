// Package services holds the server business logic: the authenticator,
// the progress tracker, user administration and the book catalog.
package services

import (
	"context"
	"strings"

	"github.com/dmitrijs2005/booklib/internal/server/repositories/repomanager"
)

// Store yields the opened repositories. *repomanager.Lazy implements it.
type Store interface {
	Get(ctx context.Context) (repomanager.RepositoryManager, error)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
