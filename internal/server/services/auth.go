package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/booklib/internal/common"
	"github.com/dmitrijs2005/booklib/internal/logging"
	"github.com/dmitrijs2005/booklib/internal/server/auth"
	"github.com/dmitrijs2005/booklib/internal/server/models"
	"github.com/dmitrijs2005/booklib/internal/validation"
)

// RefreshOutcome says which credential, if any, a refresh was granted on.
type RefreshOutcome int

const (
	Unauthenticated RefreshOutcome = iota
	RotatedViaRefresh
	RotatedViaAccess
)

func (o RefreshOutcome) String() string {
	switch o {
	case RotatedViaRefresh:
		return "rotated_via_refresh"
	case RotatedViaAccess:
		return "rotated_via_access"
	default:
		return "unauthenticated"
	}
}

// Reason is why a request carries no usable session. It is logged, never
// returned to clients.
type Reason string

const (
	ReasonNone           Reason = ""
	ReasonNoToken        Reason = "no_token"
	ReasonInvalidToken   Reason = "invalid_token"
	ReasonAccountMissing Reason = "account_missing"
)

type RegisterInput struct {
	Name     string `json:"name" validate:"required,min=2,max=120"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Session is a signed-in identity with its freshly issued tokens.
type Session struct {
	User   models.SessionUser
	Tokens auth.TokenPair
}

// AuthService is the authenticator: it registers and logs in accounts,
// rotates token pairs and resolves the caller of a request.
type AuthService struct {
	store  Store
	tokens *auth.TokenService
	hasher *auth.PasswordHasher
	logger logging.Logger
}

func NewAuthService(store Store, tokens *auth.TokenService, hasher *auth.PasswordHasher, logger logging.Logger) *AuthService {
	return &AuthService{
		store:  store,
		tokens: tokens,
		hasher: hasher,
		logger: logger.With("module", "auth"),
	}
}

// Register creates a STUDENT account and signs it in. The email is matched
// case-insensitively; a taken email yields common.ErrorConflict.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*Session, error) {
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
		Role:         models.RoleStudent,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "account registered", "user_id", u.ID)
	return s.issue(u.Session())
}

// Login checks credentials. Unknown email and wrong password both return
// common.ErrorUnauthorized after the same amount of bcrypt work.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*Session, error) {
	in.Email = normalizeEmail(in.Email)
	if err := validation.Struct(&in); err != nil {
		return nil, err
	}

	m, err := s.store.Get(ctx)
	if err != nil {
		return nil, err
	}

	u, err := m.Users().GetByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.hasher.CompareDummy(in.Password)
			s.logger.Warn(ctx, "login rejected")
			return nil, common.ErrorUnauthorized
		}
		return nil, err
	}

	if err := s.hasher.Compare(u.PasswordHash, in.Password); err != nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			s.logger.Warn(ctx, "login rejected")
			return nil, common.ErrorUnauthorized
		}
		return nil, err
	}

	return s.issue(u.Session())
}

// Refresh re-issues a token pair. A valid refresh token wins; failing that a
// valid access token lets a session recover a lost refresh cookie. The
// account is always reloaded so role changes apply. A token for an account
// that no longer exists is refused outright.
func (s *AuthService) Refresh(ctx context.Context, refreshToken, accessToken string) (RefreshOutcome, *Session, error) {
	if refreshToken != "" {
		claims, err := s.tokens.VerifyRefresh(refreshToken)
		if err == nil {
			sess, err := s.reissue(ctx, claims.ID)
			if err != nil {
				return Unauthenticated, nil, err
			}
			return RotatedViaRefresh, sess, nil
		}
		s.logger.Warn(ctx, "refresh token rejected", "reason", ReasonInvalidToken)
	}

	if accessToken != "" {
		claims, err := s.tokens.VerifyAccess(accessToken)
		if err == nil {
			sess, err := s.reissue(ctx, claims.ID)
			if err != nil {
				return Unauthenticated, nil, err
			}
			return RotatedViaAccess, sess, nil
		}
		s.logger.Warn(ctx, "access token rejected", "reason", ReasonInvalidToken)
	}

	if refreshToken == "" && accessToken == "" {
		s.logger.Warn(ctx, "refresh without credentials", "reason", ReasonNoToken)
	}
	return Unauthenticated, nil, common.ErrorUnauthorized
}

// Resolve verifies an access token without touching the store. A missing or
// bad token is not an error: the user is nil and the reason says why.
func (s *AuthService) Resolve(ctx context.Context, accessToken string) (*models.SessionUser, Reason) {
	if accessToken == "" {
		return nil, ReasonNoToken
	}
	user, err := s.tokens.VerifyAccess(accessToken)
	if err != nil {
		return nil, ReasonInvalidToken
	}
	return &user, ReasonNone
}

// CurrentUser is Resolve plus an account reload, so a deleted account reads
// as logged out and a changed name or role is reported fresh.
func (s *AuthService) CurrentUser(ctx context.Context, accessToken string) (*models.SessionUser, error) {
	claims, reason := s.Resolve(ctx, accessToken)
	if claims == nil {
		if reason == ReasonInvalidToken {
			s.logger.Warn(ctx, "current user unresolved", "reason", reason)
		}
		return nil, nil
	}

	m, err := s.store.Get(ctx)
	if err != nil {
		return nil, err
	}
	u, err := m.Users().GetByID(ctx, claims.ID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.logger.Warn(ctx, "current user unresolved", "reason", ReasonAccountMissing, "user_id", claims.ID)
			return nil, nil
		}
		return nil, err
	}
	su := u.Session()
	return &su, nil
}

func (s *AuthService) reissue(ctx context.Context, userID string) (*Session, error) {
	m, err := s.store.Get(ctx)
	if err != nil {
		return nil, err
	}
	u, err := m.Users().GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.logger.Warn(ctx, "token for missing account", "reason", ReasonAccountMissing, "user_id", userID)
			return nil, common.ErrorUnauthorized
		}
		return nil, err
	}
	return s.issue(u.Session())
}

func (s *AuthService) issue(user models.SessionUser) (*Session, error) {
	pair, err := s.tokens.Issue(user)
	if err != nil {
		return nil, fmt.Errorf("issue tokens: %w", err)
	}
	return &Session{User: user, Tokens: pair}, nil
}
