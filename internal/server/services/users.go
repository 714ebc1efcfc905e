package services

import (
	"context"
	"errors"
	"strings"

	"github.com/dmitrijs2005/booklib/internal/common"
	"github.com/dmitrijs2005/booklib/internal/logging"
	"github.com/dmitrijs2005/booklib/internal/server/auth"
	"github.com/dmitrijs2005/booklib/internal/server/models"
	"github.com/dmitrijs2005/booklib/internal/validation"
)

type RoleChange struct {
	UserID string `json:"userId" validate:"required"`
	Role   string `json:"role" validate:"required,role"`
}

type UserList struct {
	Users []models.User    `json:"users"`
	Stats models.UserStats `json:"stats"`
}

// UserService covers account administration.
type UserService struct {
	store  Store
	hasher *auth.PasswordHasher
	logger logging.Logger
}

func NewUserService(store Store, hasher *auth.PasswordHasher, logger logging.Logger) *UserService {
	return &UserService{store: store, hasher: hasher, logger: logger.With("module", "users")}
}

// List returns every account, newest first, with the admin overview counts.
func (s *UserService) List(ctx context.Context) (*UserList, error) {
	m, err := s.store.Get(ctx)
	if err != nil {
		return nil, err
	}

	list, err := m.Users().List(ctx)
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

	return &UserList{
		Users: list,
		Stats: models.UserStats{
			TotalUsers:        int64(len(list)),
			BookCount:         books,
			CompletedSessions: completed,
		},
	}, nil
}

func (s *UserService) UpdateRole(ctx context.Context, in RoleChange) (*models.User, error) {
	if err := validation.Struct(&in); err != nil {
		return nil, err
	}
	role, err := models.ParseRole(in.Role)
	if err != nil {
		return nil, common.NewValidationError("role", "must be ADMIN or STUDENT")
	}

	m, err := s.store.Get(ctx)
	if err != nil {
		return nil, err
	}
	u, err := m.Users().UpdateRole(ctx, in.UserID, role)
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "role changed", "user_id", u.ID, "role", u.Role.String())
	return u, nil
}

// CreateAdmin provisions an ADMIN account. Used by the operator CLI.
func (s *UserService) CreateAdmin(ctx context.Context, in RegisterInput) (*models.User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = normalizeEmail(in.Email)
	if err := validation.Struct(&in); err != nil {
		return nil, err
	}

	m, err := s.store.Get(ctx)
	if err != nil {
		return nil, err
	}
	repo := m.Users()

	if _, err := repo.GetByEmail(ctx, in.Email); err == nil {
		return nil, common.ErrorConflict
	} else if !errors.Is(err, common.ErrorNotFound) {
		return nil, err
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}
	u, err := repo.Create(ctx, &models.User{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
		Role:         models.RoleAdmin,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "admin created", "user_id", u.ID)
	return u, nil
}

func (s *UserService) SetRoleByEmail(ctx context.Context, email string, role models.Role) (*models.User, error) {
	if !role.Valid() {
		return nil, common.NewValidationError("role", "must be ADMIN or STUDENT")
	}

	m, err := s.store.Get(ctx)
	if err != nil {
		return nil, err
	}
	u, err := m.Users().GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, err
	}
	return s.UpdateRole(ctx, RoleChange{UserID: u.ID, Role: role.String()})
}
