// Package auth mints and verifies the access/refresh token pair and hashes
// passwords.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/booklib/internal/common"
	"github.com/dmitrijs2005/booklib/internal/server/models"
	"github.com/golang-jwt/jwt/v5"
)

// Claims carries the session identity next to the registered claims.
type Claims struct {
	jwt.RegisteredClaims
	User models.SessionUser `json:"user"`
}

type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// TokenService signs access and refresh tokens with independent secrets and
// lifetimes. Verification is stateless: there is no revocation list.
type TokenService struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	now           func() time.Time
}

func NewTokenService(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) (*TokenService, error) {
	if accessSecret == "" || refreshSecret == "" {
		return nil, fmt.Errorf("%w: token signing secrets must be set", common.ErrorConfiguration)
	}
	return &TokenService{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
		now:           time.Now,
	}, nil
}

// Issue signs the same SessionUser into both tokens.
func (s *TokenService) Issue(user models.SessionUser) (TokenPair, error) {
	now := s.now()

	access, err := s.sign(user, s.accessSecret, now, s.accessTTL)
	if err != nil {
		return TokenPair{}, fmt.Errorf("sign access token: %w", err)
	}
	refresh, err := s.sign(user, s.refreshSecret, now, s.refreshTTL)
	if err != nil {
		return TokenPair{}, fmt.Errorf("sign refresh token: %w", err)
	}
	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (s *TokenService) VerifyAccess(token string) (models.SessionUser, error) {
	return s.verify(token, s.accessSecret)
}

func (s *TokenService) VerifyRefresh(token string) (models.SessionUser, error) {
	return s.verify(token, s.refreshSecret)
}

func (s *TokenService) sign(user models.SessionUser, secret []byte, now time.Time, ttl time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		User: user,
	})
	return token.SignedString(secret)
}

// verify collapses every failure (bad signature, expiry, malformed payload)
// into common.ErrInvalidToken.
func (s *TokenService) verify(tokenString string, secret []byte) (models.SessionUser, error) {
	if tokenString == "" {
		return models.SessionUser{}, common.ErrInvalidToken
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return models.SessionUser{}, errors.Join(common.ErrInvalidToken, err)
	}
	if !token.Valid || claims.User.ID == "" || !claims.User.Role.Valid() {
		return models.SessionUser{}, common.ErrInvalidToken
	}

	return claims.User, nil
}
