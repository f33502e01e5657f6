// Package course provides the course catalog: admin-managed CRUD with a
// public read surface for published courses.
package course

import "time"

// Course is a catalog entry. Unpublished courses are only visible to admins.
type Course struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Thumbnail   string    `json:"thumbnail"`
	Price       float64   `json:"price"`
	Slug        string    `json:"slug"`
	Published   bool      `json:"published"`
	Lessons     []Lesson  `json:"lessons,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Lesson is one ordered content item inside a course.
type Lesson struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url,omitempty"`
	VideoURL    string `json:"video_url,omitempty"`
	Order       int    `json:"order"`
	Published   bool   `json:"published"`
}
