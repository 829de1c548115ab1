package service

import (
	"context"
	"net/http"

	"github.com/mavilleverte/mvv-api/internal/config"
	"github.com/mavilleverte/mvv-api/internal/models"
	"github.com/mavilleverte/mvv-api/internal/repository"
	"github.com/mavilleverte/mvv-api/internal/storage"
	"github.com/rs/zerolog"
)

// ContentService defines operations on articles and recommendations
type ContentService interface {
	List(ctx context.Context, kind models.Kind) ([]*models.Content, error)
	Get(ctx context.Context, kind models.Kind, id string) (*models.Content, error)
	Create(ctx context.Context, kind models.Kind, in *models.ContentInput) (*models.Content, error)
	Update(ctx context.Context, kind models.Kind, id string, in *models.ContentInput) (*models.Content, error)
	Delete(ctx context.Context, kind models.Kind, id string) error
	ListPublished(ctx context.Context, kind models.Kind) ([]*models.ContentSummary, error)
	GetPublished(ctx context.Context, kind models.Kind, id string) (*models.Content, error)
	Count(ctx context.Context, kind models.Kind) (int, error)
}

// ProductService defines operations on products and their galleries
type ProductService interface {
	List(ctx context.Context) ([]*models.Product, error)
	Get(ctx context.Context, id string) (*models.Product, error)
	Create(ctx context.Context, in *models.ProductInput) (*models.Product, error)
	Update(ctx context.Context, id string, in *models.ProductInput) (*models.Product, error)
	Delete(ctx context.Context, id string) error
	ListPublished(ctx context.Context) ([]*models.Product, error)
	GetPublished(ctx context.Context, id string) (*models.Product, error)
	Count(ctx context.Context) (int, error)
}

// UploadService stores and serves uploaded images
type UploadService interface {
	Upload(ctx context.Context, f *UploadFile) (*models.UploadResult, error)
	Open(ctx context.Context, name string) (*storage.Object, error)
}

// ContactService relays contact form submissions
type ContactService interface {
	Submit(ctx context.Context, req *models.ContactRequest) (*models.ContactResult, error)
}

// AuthService checks admin credentials
type AuthService interface {
	Login(ctx context.Context, username, password string) error
}

// ExportService defines the interface for export operations
type ExportService interface {
	StreamResource(ctx context.Context, w http.ResponseWriter, resource, format string) error
	GetCount(ctx context.Context, resource string) (int, error)
}

// Services holds all service interfaces
type Services struct {
	Content ContentService
	Product ProductService
	Upload  UploadService
	Contact ContactService
	Auth    AuthService
	Export  ExportService
}

// NewServices creates all services. A nil mailer keeps the contact relay in
// development mode.
func NewServices(repos *repository.Repositories, store storage.Store, m Mailer, cfg *config.Config, log zerolog.Logger) *Services {
	return &Services{
		Content: newContentService(repos.Content, cfg.Server.PublicBaseURL, log),
		Product: newProductService(repos.Product, cfg.Server.PublicBaseURL, log),
		Upload:  newUploadService(store, cfg.Storage.MaxUploadSize, log),
		Contact: newContactService(m, cfg.Mail.From, cfg.Mail.To, log),
		Auth:    newAuthService(cfg.Auth.AdminUsername, cfg.Auth.AdminPasswordHash, log),
		Export:  newExportService(repos, log),
	}
}
