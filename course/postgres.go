package course

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore is a Store backed by PostgreSQL via pgxpool. Lessons are
// stored as a JSONB column; the catalog needs no relational access to them.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a PostgreSQL-backed store on an existing pool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) Create(ctx context.Context, c *Course) error {
	lessons, err := json.Marshal(c.Lessons)
	if err != nil {
		return fmt.Errorf("marshal lessons: %w", err)
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO courses (id, title, description, thumbnail, price, slug, published, lessons, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		c.ID, c.Title, c.Description, c.Thumbnail, c.Price, c.Slug,
		c.Published, lessons, c.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateSlug
		}
		return fmt.Errorf("insert course: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetBySlug(ctx context.Context, slug string) (*Course, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, title, description, thumbnail, price, slug, published, lessons, created_at
		FROM courses WHERE slug = $1`, slug)
	return scanCourse(row)
}

func (s *PostgresStore) List(ctx context.Context, publishedOnly bool) ([]*Course, error) {
	query := `
		SELECT id, title, description, thumbnail, price, slug, published, lessons, created_at
		FROM courses`
	if publishedOnly {
		query += ` WHERE published`
	}
	query += ` ORDER BY created_at`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	defer rows.Close()

	var courses []*Course
	for rows.Next() {
		c, err := scanCourse(rows)
		if err != nil {
			return nil, err
		}
		courses = append(courses, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	return courses, nil
}

func (s *PostgresStore) SetPublished(ctx context.Context, slug string, published bool) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE courses SET published = $2 WHERE slug = $1`, slug, published)
	if err != nil {
		return fmt.Errorf("publish course: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanCourse(row pgx.Row) (*Course, error) {
	var c Course
	var lessons []byte
	err := row.Scan(
		&c.ID,
		&c.Title,
		&c.Description,
		&c.Thumbnail,
		&c.Price,
		&c.Slug,
		&c.Published,
		&lessons,
		&c.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan course: %w", err)
	}
	if len(lessons) > 0 {
		if err := json.Unmarshal(lessons, &c.Lessons); err != nil {
			return nil, fmt.Errorf("unmarshal lessons: %w", err)
		}
	}
	return &c, nil
}
