package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mavilleverte/mvv-api/internal/database"
	"github.com/mavilleverte/mvv-api/internal/models"
)

const contentColumns = `id, title, summary, category, tags, cover_image_url, content_markdown,
	address, status, author_email, published_at, updated_at`

// contentRepo is the concrete implementation of ContentRepository. The table
// name comes from models.Kind and is never user input.
type contentRepo struct {
	db *database.DB
}

// NewContentRepo creates a new content repository
func NewContentRepo(db *database.DB) ContentRepository {
	return &contentRepo{db: db}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanContent(row rowScanner) (*models.Content, error) {
	var c models.Content
	var publishedAt sql.NullTime

	err := row.Scan(
		&c.ID, &c.Title, &c.Summary, &c.Category, &c.Tags, &c.CoverImageURL, &c.ContentMarkdown,
		&c.Address, &c.Status, &c.AuthorEmail, &publishedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if publishedAt.Valid {
		c.PublishedAt = &publishedAt.Time
	}
	return &c, nil
}

func table(kind models.Kind) (string, error) {
	if !kind.Valid() {
		return "", fmt.Errorf("unknown content kind %q", kind)
	}
	return kind.Table(), nil
}

// List returns every row, most recently edited first
func (r *contentRepo) List(ctx context.Context, kind models.Kind) ([]*models.Content, error) {
	tbl, err := table(kind)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+contentColumns+` FROM `+tbl+` ORDER BY updated_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []*models.Content{}
	for rows.Next() {
		c, err := scanContent(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, c)
	}
	return items, rows.Err()
}

// ListPublished returns the public projection of published rows, newest first
func (r *contentRepo) ListPublished(ctx context.Context, kind models.Kind) ([]*models.ContentSummary, error) {
	tbl, err := table(kind)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT id, title, summary, category, tags, cover_image_url, address, published_at, updated_at
		FROM ` + tbl + `
		WHERE status = 'published'
		ORDER BY published_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []*models.ContentSummary{}
	for rows.Next() {
		var s models.ContentSummary
		var publishedAt sql.NullTime
		if err := rows.Scan(
			&s.ID, &s.Title, &s.Summary, &s.Category, &s.Tags, &s.CoverImageURL,
			&s.Address, &publishedAt, &s.UpdatedAt,
		); err != nil {
			return nil, err
		}
		if publishedAt.Valid {
			s.PublishedAt = &publishedAt.Time
		}
		items = append(items, &s)
	}
	return items, rows.Err()
}

// GetByID retrieves a row by ID regardless of status
func (r *contentRepo) GetByID(ctx context.Context, kind models.Kind, id string) (*models.Content, error) {
	return r.getOne(ctx, kind, `WHERE id = $1`, id)
}

// GetPublishedByID retrieves a row by ID only if it is published
func (r *contentRepo) GetPublishedByID(ctx context.Context, kind models.Kind, id string) (*models.Content, error) {
	return r.getOne(ctx, kind, `WHERE id = $1 AND status = 'published'`, id)
}

func (r *contentRepo) getOne(ctx context.Context, kind models.Kind, where, id string) (*models.Content, error) {
	tbl, err := table(kind)
	if err != nil {
		return nil, err
	}

	row := r.db.QueryRowContext(ctx, `SELECT `+contentColumns+` FROM `+tbl+` `+where, id)
	c, err := scanContent(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Create inserts a new row
func (r *contentRepo) Create(ctx context.Context, kind models.Kind, c *models.Content) error {
	tbl, err := table(kind)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO ` + tbl + ` (` + contentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err = r.db.ExecContext(ctx, query,
		c.ID, c.Title, c.Summary, c.Category, c.Tags, c.CoverImageURL, c.ContentMarkdown,
		c.Address, c.Status, c.AuthorEmail, c.PublishedAt, c.UpdatedAt,
	)
	return err
}

// Update rewrites every column of an existing row
func (r *contentRepo) Update(ctx context.Context, kind models.Kind, c *models.Content) error {
	tbl, err := table(kind)
	if err != nil {
		return err
	}

	query := `
		UPDATE ` + tbl + ` SET
			title = $1, summary = $2, category = $3, tags = $4, cover_image_url = $5,
			content_markdown = $6, address = $7, status = $8, author_email = $9,
			published_at = $10, updated_at = $11
		WHERE id = $12
	`
	_, err = r.db.ExecContext(ctx, query,
		c.Title, c.Summary, c.Category, c.Tags, c.CoverImageURL,
		c.ContentMarkdown, c.Address, c.Status, c.AuthorEmail,
		c.PublishedAt, c.UpdatedAt, c.ID,
	)
	return err
}

// Delete removes a row and reports whether it existed
func (r *contentRepo) Delete(ctx context.Context, kind models.Kind, id string) (bool, error) {
	tbl, err := table(kind)
	if err != nil {
		return false, err
	}

	res, err := r.db.ExecContext(ctx, `DELETE FROM `+tbl+` WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Count returns the total number of rows
func (r *contentRepo) Count(ctx context.Context, kind models.Kind) (int, error) {
	tbl, err := table(kind)
	if err != nil {
		return 0, err
	}

	var count int
	err = r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+tbl).Scan(&count)
	return count, err
}

// StreamAll streams every row for export
func (r *contentRepo) StreamAll(ctx context.Context, kind models.Kind, callback func(*models.Content) error) error {
	tbl, err := table(kind)
	if err != nil {
		return err
	}

	rows, err := r.db.QueryContext(ctx, `SELECT `+contentColumns+` FROM `+tbl+` ORDER BY updated_at`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		c, err := scanContent(rows)
		if err != nil {
			return err
		}
		if err := callback(c); err != nil {
			return err
		}
	}

	return rows.Err()
}
