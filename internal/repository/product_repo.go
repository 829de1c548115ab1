package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
	"github.com/mavilleverte/mvv-api/internal/database"
	"github.com/mavilleverte/mvv-api/internal/models"
)

const productColumns = `id, title, description, category, price, image_url, affiliate_link,
	status, created_at, updated_at`

// productRepo is the concrete implementation of ProductRepository
type productRepo struct {
	db *database.DB
}

// NewProductRepo creates a new product repository
func NewProductRepo(db *database.DB) ProductRepository {
	return &productRepo{db: db}
}

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
}

func scanProduct(row rowScanner) (*models.Product, error) {
	var p models.Product
	err := row.Scan(
		&p.ID, &p.Title, &p.Description, &p.Category, &p.Price, &p.ImageURL, &p.AffiliateLink,
		&p.Status, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *productRepo) list(ctx context.Context, query string) ([]*models.Product, error) {
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := []*models.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// List returns every product, most recently edited first
func (r *productRepo) List(ctx context.Context) ([]*models.Product, error) {
	return r.list(ctx, `SELECT `+productColumns+` FROM products ORDER BY updated_at DESC`)
}

// ListPublished returns published products, newest first
func (r *productRepo) ListPublished(ctx context.Context) ([]*models.Product, error) {
	return r.list(ctx, `SELECT `+productColumns+` FROM products WHERE status = 'published' ORDER BY created_at DESC`)
}

// GetByID retrieves a product and its gallery
func (r *productRepo) GetByID(ctx context.Context, id string) (*models.Product, error) {
	return r.getOne(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
}

// GetPublishedByID retrieves a product and its gallery only if it is published
func (r *productRepo) GetPublishedByID(ctx context.Context, id string) (*models.Product, error) {
	return r.getOne(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1 AND status = 'published'`, id)
}

func (r *productRepo) getOne(ctx context.Context, query, id string) (*models.Product, error) {
	p, err := scanProduct(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	p.Images, err = loadImages(ctx, r.db, p.ID)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func loadImages(ctx context.Context, q queryer, productID string) ([]models.ProductImage, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT id, product_id, url, position FROM product_images WHERE product_id = $1 ORDER BY position`,
		productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var images []models.ProductImage
	for rows.Next() {
		var img models.ProductImage
		if err := rows.Scan(&img.ID, &img.ProductID, &img.URL, &img.Position); err != nil {
			return nil, err
		}
		images = append(images, img)
	}
	return images, rows.Err()
}

// insertImages bulk-loads a gallery with COPY inside the caller's transaction
func insertImages(ctx context.Context, tx *sql.Tx, productID string, images []models.ProductImage) error {
	if len(images) == 0 {
		return nil
	}

	stmt, err := tx.PrepareContext(ctx, pq.CopyIn("product_images", "id", "product_id", "url", "position"))
	if err != nil {
		return fmt.Errorf("prepare image copy: %w", err)
	}
	defer stmt.Close()

	for _, img := range images {
		if _, err := stmt.ExecContext(ctx, img.ID, productID, img.URL, img.Position); err != nil {
			return fmt.Errorf("copy image %s: %w", img.ID, err)
		}
	}

	if _, err := stmt.ExecContext(ctx); err != nil {
		return fmt.Errorf("flush image copy: %w", err)
	}
	return nil
}

// Create inserts the product row and its gallery atomically
func (r *productRepo) Create(ctx context.Context, p *models.Product) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		query := `
			INSERT INTO products (` + productColumns + `)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		`
		if _, err := tx.ExecContext(ctx, query,
			p.ID, p.Title, p.Description, p.Category, p.Price, p.ImageURL, p.AffiliateLink,
			p.Status, p.CreatedAt, p.UpdatedAt,
		); err != nil {
			return fmt.Errorf("insert product: %w", err)
		}
		return insertImages(ctx, tx, p.ID, p.Images)
	})
}

// Update rewrites the product row and optionally replaces its gallery
func (r *productRepo) Update(ctx context.Context, p *models.Product, replaceImages bool) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		query := `
			UPDATE products SET
				title = $1, description = $2, category = $3, price = $4, image_url = $5,
				affiliate_link = $6, status = $7, updated_at = $8
			WHERE id = $9
		`
		if _, err := tx.ExecContext(ctx, query,
			p.Title, p.Description, p.Category, p.Price, p.ImageURL,
			p.AffiliateLink, p.Status, p.UpdatedAt, p.ID,
		); err != nil {
			return fmt.Errorf("update product: %w", err)
		}

		if !replaceImages {
			return nil
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM product_images WHERE product_id = $1`, p.ID); err != nil {
			return fmt.Errorf("delete images: %w", err)
		}
		return insertImages(ctx, tx, p.ID, p.Images)
	})
}

// Delete removes a product; its images go with it through ON DELETE CASCADE
func (r *productRepo) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Count returns the total number of products
func (r *productRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM products").Scan(&count)
	return count, err
}

// StreamAll streams every product with its gallery for export
func (r *productRepo) StreamAll(ctx context.Context, callback func(*models.Product) error) error {
	galleries, err := r.allImages(ctx)
	if err != nil {
		return err
	}

	rows, err := r.db.QueryContext(ctx, `SELECT `+productColumns+` FROM products ORDER BY created_at`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return err
		}
		p.Images = galleries[p.ID]
		if err := callback(p); err != nil {
			return err
		}
	}

	return rows.Err()
}

func (r *productRepo) allImages(ctx context.Context) (map[string][]models.ProductImage, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, product_id, url, position FROM product_images ORDER BY product_id, position`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	galleries := make(map[string][]models.ProductImage)
	for rows.Next() {
		var img models.ProductImage
		if err := rows.Scan(&img.ID, &img.ProductID, &img.URL, &img.Position); err != nil {
			return nil, err
		}
		galleries[img.ProductID] = append(galleries[img.ProductID], img)
	}
	return galleries, rows.Err()
}
