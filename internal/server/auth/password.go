package auth

import (
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/booklib/internal/common"
	"golang.org/x/crypto/bcrypt"
)

const DefaultPasswordCost = 12

// PasswordHasher wraps bcrypt at a fixed cost.
type PasswordHasher struct {
	cost      int
	dummyOnce sync.Once
	dummy     []byte
}

func NewPasswordHasher(cost int) *PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultPasswordCost
	}
	return &PasswordHasher{cost: cost}
}

func (h *PasswordHasher) Hash(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(b), nil
}

// Compare returns common.ErrorUnauthorized when password does not match hash.
func (h *PasswordHasher) Compare(hash, password string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	switch {
	case err == nil:
		return nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return common.ErrorUnauthorized
	default:
		return fmt.Errorf("compare password: %w", err)
	}
}

// CompareDummy burns the same bcrypt work as Compare against a throwaway
// hash. Used when the account does not exist so both login failures take
// the same time.
func (h *PasswordHasher) CompareDummy(password string) {
	h.dummyOnce.Do(func() {
		h.dummy, _ = bcrypt.GenerateFromPassword([]byte("booklib-dummy-password"), h.cost)
	})
	_ = bcrypt.CompareHashAndPassword(h.dummy, []byte(password))
}
