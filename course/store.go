package course

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned when no course matches the lookup.
	ErrNotFound = errors.New("course: not found")

	// ErrDuplicateSlug is returned when creating a course whose slug is
	// taken.
	ErrDuplicateSlug = errors.New("course: slug already exists")
)

// Store persists courses. Implementations must be safe for concurrent use.
type Store interface {
	// Create inserts a new course. Fails with ErrDuplicateSlug when the
	// slug is taken.
	Create(ctx context.Context, c *Course) error

	// GetBySlug returns the course with the given slug or ErrNotFound.
	GetBySlug(ctx context.Context, slug string) (*Course, error)

	// List returns courses ordered by creation time. When publishedOnly is
	// true, unpublished courses are excluded.
	List(ctx context.Context, publishedOnly bool) ([]*Course, error)

	// SetPublished flips the published flag on a course.
	SetPublished(ctx context.Context, slug string, published bool) error
}
