package repository

import (
	"context"

	"github.com/mavilleverte/mvv-api/internal/database"
	"github.com/mavilleverte/mvv-api/internal/models"
)

// ContentRepository defines data operations on articles and recommendations.
// Lookups return (nil, nil) when no row matches.
type ContentRepository interface {
	List(ctx context.Context, kind models.Kind) ([]*models.Content, error)
	ListPublished(ctx context.Context, kind models.Kind) ([]*models.ContentSummary, error)
	GetByID(ctx context.Context, kind models.Kind, id string) (*models.Content, error)
	GetPublishedByID(ctx context.Context, kind models.Kind, id string) (*models.Content, error)
	Create(ctx context.Context, kind models.Kind, content *models.Content) error
	Update(ctx context.Context, kind models.Kind, content *models.Content) error
	Delete(ctx context.Context, kind models.Kind, id string) (bool, error)
	Count(ctx context.Context, kind models.Kind) (int, error)
	StreamAll(ctx context.Context, kind models.Kind, callback func(*models.Content) error) error
}

// ProductRepository defines data operations on products and their galleries.
// Lookups return (nil, nil) when no row matches.
type ProductRepository interface {
	List(ctx context.Context) ([]*models.Product, error)
	ListPublished(ctx context.Context) ([]*models.Product, error)
	GetByID(ctx context.Context, id string) (*models.Product, error)
	GetPublishedByID(ctx context.Context, id string) (*models.Product, error)
	// Create inserts the product and product.Images in one transaction.
	Create(ctx context.Context, product *models.Product) error
	// Update rewrites the product row; when replaceImages is set the stored
	// gallery is deleted and product.Images inserted in the same transaction.
	Update(ctx context.Context, product *models.Product, replaceImages bool) error
	Delete(ctx context.Context, id string) (bool, error)
	Count(ctx context.Context) (int, error)
	StreamAll(ctx context.Context, callback func(*models.Product) error) error
}

// Repositories holds all repository interfaces
type Repositories struct {
	Content ContentRepository
	Product ProductRepository
}

// New creates all repositories with the given database connection
func New(db *database.DB) *Repositories {
	return &Repositories{
		Content: NewContentRepo(db),
		Product: NewProductRepo(db),
	}
}
