package course

import (
	"context"
	"errors"
	"testing"
	"time"
)

func testCourse(slug string, published bool, created time.Time) *Course {
	return &Course{
		ID:          "id-" + slug,
		Title:       "Course " + slug,
		Description: "A course about " + slug,
		Thumbnail:   "https://cdn.example.com/" + slug + ".png",
		Price:       49.99,
		Slug:        slug,
		Published:   published,
		Lessons: []Lesson{
			{Title: "Intro", Description: "Welcome", Order: 1, Published: published},
		},
		CreatedAt: created,
	}
}

func TestMemoryStoreCreateAndGet(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	c := testCourse("go-basics", true, time.Now())
	if err := s.Create(ctx, c); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := s.GetBySlug(ctx, "go-basics")
	if err != nil {
		t.Fatalf("GetBySlug: %v", err)
	}
	if got.Title != c.Title || len(got.Lessons) != 1 {
		t.Errorf("got %+v", got)
	}

	// The store hands back copies: mutating the result must not leak in.
	got.Title = "mutated"
	got.Lessons[0].Title = "mutated"
	again, _ := s.GetBySlug(ctx, "go-basics")
	if again.Title == "mutated" || again.Lessons[0].Title == "mutated" {
		t.Error("store returned a shared reference")
	}
}

func TestMemoryStoreDuplicateSlug(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	if err := s.Create(ctx, testCourse("dup", true, time.Now())); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := s.Create(ctx, testCourse("dup", false, time.Now())); !errors.Is(err, ErrDuplicateSlug) {
		t.Errorf("err = %v, want ErrDuplicateSlug", err)
	}
}

func TestMemoryStoreGetMissing(t *testing.T) {
	s := NewMemoryStore()
	if _, err := s.GetBySlug(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestMemoryStoreListPublishedOnly(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	base := time.Now()

	s.Create(ctx, testCourse("first", true, base))
	s.Create(ctx, testCourse("second", false, base.Add(time.Second)))
	s.Create(ctx, testCourse("third", true, base.Add(2*time.Second)))

	all, err := s.List(ctx, false)
	if err != nil {
		t.Fatalf("List(all): %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("len(all) = %d, want 3", len(all))
	}
	if all[0].Slug != "first" || all[2].Slug != "third" {
		t.Errorf("list not ordered by creation time: %v, %v", all[0].Slug, all[2].Slug)
	}

	published, err := s.List(ctx, true)
	if err != nil {
		t.Fatalf("List(published): %v", err)
	}
	if len(published) != 2 {
		t.Errorf("len(published) = %d, want 2", len(published))
	}
	for _, c := range published {
		if !c.Published {
			t.Errorf("unpublished course %s in published list", c.Slug)
		}
	}
}

func TestMemoryStoreSetPublished(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	s.Create(ctx, testCourse("draft", false, time.Now()))

	if err := s.SetPublished(ctx, "draft", true); err != nil {
		t.Fatalf("SetPublished: %v", err)
	}
	got, _ := s.GetBySlug(ctx, "draft")
	if !got.Published {
		t.Error("publish flag not flipped")
	}

	if err := s.SetPublished(ctx, "missing", true); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}
