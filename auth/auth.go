// Package auth defines the authenticated identity types shared by the token
// service, the middleware layer, and the route handlers.
package auth

import "fmt"

// Role is the authorization level carried inside a token.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// ParseRole validates a role string coming from an untrusted source
// (typically a token claim).
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleUser, RoleAdmin:
		return Role(s), nil
	default:
		return "", fmt.Errorf("auth: unknown role %q", s)
	}
}

// Valid reports whether the role is one of the known values.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// Principal is the authenticated identity derived from a valid token.
// It is immutable once issued: tokens are superseded or revoked, never edited.
type Principal struct {
	ID   string `json:"id"`
	Role Role   `json:"role"`
}
