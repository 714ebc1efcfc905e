// Package users is the credential store: account records keyed by id and by
// lowercase email.
package users

import (
	"context"

	"github.com/dmitrijs2005/booklib/internal/server/models"
)

// Repository persists accounts. Emails are expected to be normalised by the
// caller. Lookups return common.ErrorNotFound when nothing matches, and Create
// returns common.ErrorConflict when the email is taken.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	UpdateRole(ctx context.Context, id string, role models.Role) (*models.User, error)
	Count(ctx context.Context) (int64, error)
}
