package account

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned when no user matches the lookup.
	ErrNotFound = errors.New("account: user not found")

	// ErrDuplicateEmail is returned when creating a user whose email is
	// already registered. Emails are compared case-insensitively.
	ErrDuplicateEmail = errors.New("account: email already registered")
)

// Store persists users. Implementations must be safe for concurrent use.
type Store interface {
	// Create inserts a new user. Fails with ErrDuplicateEmail when the
	// email is taken.
	Create(ctx context.Context, u *User) error

	// GetByID returns the user with the given ID or ErrNotFound.
	GetByID(ctx context.Context, id string) (*User, error)

	// GetByEmail returns the user with the given email or ErrNotFound.
	GetByEmail(ctx context.Context, email string) (*User, error)

	// Update overwrites the stored user identified by u.ID.
	Update(ctx context.Context, u *User) error

	// List returns all users ordered by creation time.
	List(ctx context.Context) ([]*User, error)
}
