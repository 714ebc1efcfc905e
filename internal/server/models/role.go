package models

import (
	"fmt"
	"strings"
)

// Role is the closed set of account roles. The zero value is not a valid role.
type Role uint8

const (
	RoleStudent Role = iota + 1
	RoleAdmin
)

// Roles lists every valid role.
var Roles = []Role{RoleStudent, RoleAdmin}

// ParseRole accepts the wire spelling ("ADMIN", "STUDENT"), case-insensitively.
func ParseRole(s string) (Role, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "STUDENT":
		return RoleStudent, nil
	case "ADMIN":
		return RoleAdmin, nil
	default:
		return 0, fmt.Errorf("unknown role %q", s)
	}
}

func (r Role) String() string {
	switch r {
	case RoleStudent:
		return "STUDENT"
	case RoleAdmin:
		return "ADMIN"
	default:
		return fmt.Sprintf("Role(%d)", uint8(r))
	}
}

func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleAdmin:
		return true
	default:
		return false
	}
}

// Home is the landing page for the role; under-privileged page requests
// are redirected there.
func (r Role) Home() string {
	switch r {
	case RoleAdmin:
		return "/admin"
	case RoleStudent:
		return "/dashboard"
	default:
		return "/login"
	}
}

func (r Role) MarshalText() ([]byte, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("invalid role %d", uint8(r))
	}
	return []byte(r.String()), nil
}

func (r *Role) UnmarshalText(b []byte) error {
	parsed, err := ParseRole(string(b))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}
