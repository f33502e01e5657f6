package course

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore is an in-memory Store for development and tests.
type MemoryStore struct {
	mu     sync.RWMutex
	bySlug map[string]*Course
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{bySlug: make(map[string]*Course)}
}

func (s *MemoryStore) Create(ctx context.Context, c *Course) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.bySlug[c.Slug]; exists {
		return ErrDuplicateSlug
	}
	cp := *c
	cp.Lessons = append([]Lesson(nil), c.Lessons...)
	s.bySlug[c.Slug] = &cp
	return nil
}

func (s *MemoryStore) GetBySlug(ctx context.Context, slug string) (*Course, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.bySlug[slug]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *c
	cp.Lessons = append([]Lesson(nil), c.Lessons...)
	return &cp, nil
}

func (s *MemoryStore) List(ctx context.Context, publishedOnly bool) ([]*Course, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	courses := make([]*Course, 0, len(s.bySlug))
	for _, c := range s.bySlug {
		if publishedOnly && !c.Published {
			continue
		}
		cp := *c
		cp.Lessons = append([]Lesson(nil), c.Lessons...)
		courses = append(courses, &cp)
	}
	sort.Slice(courses, func(i, j int) bool {
		return courses[i].CreatedAt.Before(courses[j].CreatedAt)
	})
	return courses, nil
}

func (s *MemoryStore) SetPublished(ctx context.Context, slug string, published bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.bySlug[slug]
	if !ok {
		return ErrNotFound
	}
	c.Published = published
	return nil
}

var _ Store = (*MemoryStore)(nil)
