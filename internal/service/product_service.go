package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/mavilleverte/mvv-api/internal/models"
	"github.com/mavilleverte/mvv-api/internal/repository"
	"github.com/mavilleverte/mvv-api/internal/validation"
	"github.com/rs/zerolog"
)

// productService is the concrete implementation of ProductService
type productService struct {
	repo repository.ProductRepository
	urls urlRewriter
	now  func() time.Time
	log  zerolog.Logger
}

// newProductService creates a new ProductService
func newProductService(repo repository.ProductRepository, publicBaseURL string, log zerolog.Logger) *productService {
	return &productService{
		repo: repo,
		urls: newURLRewriter(publicBaseURL),
		now:  timestamp,
		log:  log.With().Str("service", "product").Logger(),
	}
}

func (s *productService) List(ctx context.Context) ([]*models.Product, error) {
	products, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

func (s *productService) Get(ctx context.Context, id string) (*models.Product, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product %s: %w", id, err)
	}
	if p == nil {
		return nil, ErrNotFound
	}
	return p, nil
}

func (s *productService) Create(ctx context.Context, in *models.ProductInput) (*models.Product, error) {
	if err := validation.ValidateProduct(in, true).OrNil(); err != nil {
		return nil, err
	}

	now := s.now()
	p := &models.Product{
		ID:        newID("prod", now),
		Title:     strings.TrimSpace(*in.Title),
		Status:    models.StatusDraft,
		CreatedAt: now,
		UpdatedAt: now,
	}
	applyProductInput(p, in, now)

	if err := s.repo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}

	s.log.Info().Str("id", p.ID).Int("images", len(p.Images)).Msg("Product created")
	return p, nil
}

func (s *productService) Update(ctx context.Context, id string, in *models.ProductInput) (*models.Product, error) {
	if err := validation.ValidateProduct(in, false).OrNil(); err != nil {
		return nil, err
	}

	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if in.Title != nil {
		p.Title = strings.TrimSpace(*in.Title)
	}
	applyProductInput(p, in, now)
	p.UpdatedAt = now

	if err := s.repo.Update(ctx, p, in.Images != nil); err != nil {
		return nil, fmt.Errorf("update product %s: %w", id, err)
	}

	s.log.Info().Str("id", id).Bool("images_replaced", in.Images != nil).Msg("Product updated")
	return p, nil
}

// applyProductInput copies every sent field onto p. A sent gallery replaces
// the current one and drives imageUrl.
func applyProductInput(p *models.Product, in *models.ProductInput, now time.Time) {
	if in.Description != nil {
		p.Description = sanitizeRichText(in.Description)
	}
	if in.Category != nil {
		p.Category = optional(in.Category)
	}
	if in.Price != nil {
		price := *in.Price
		p.Price = &price
	}
	if in.ImageURL != nil {
		p.ImageURL = optional(in.ImageURL)
	}
	if in.AffiliateLink != nil {
		p.AffiliateLink = optional(in.AffiliateLink)
	}
	if in.Status != nil && *in.Status != "" {
		p.Status = *in.Status
	}

	if in.Images != nil {
		p.Images = buildGallery(p.ID, *in.Images, now)
		p.ImageURL = nil
		if len(p.Images) > 0 {
			first := p.Images[0].URL
			p.ImageURL = &first
		}
	}
}

// buildGallery orders images by the client position, keeping submission
// order for ties, and renumbers them from zero.
func buildGallery(productID string, in []models.ProductImageInput, now time.Time) []models.ProductImage {
	sorted := make([]models.ProductImageInput, len(in))
	copy(sorted, in)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Position < sorted[j].Position
	})

	images := make([]models.ProductImage, len(sorted))
	for i, img := range sorted {
		images[i] = models.ProductImage{
			ID:        newID("img", now),
			ProductID: productID,
			URL:       strings.TrimSpace(img.URL),
			Position:  i,
		}
	}
	return images
}

func (s *productService) Delete(ctx context.Context, id string) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete product %s: %w", id, err)
	}
	if !deleted {
		return ErrNotFound
	}
	s.log.Info().Str("id", id).Msg("Product deleted")
	return nil
}

func (s *productService) ListPublished(ctx context.Context) ([]*models.Product, error) {
	products, err := s.repo.ListPublished(ctx)
	if err != nil {
		return nil, fmt.Errorf("list published products: %w", err)
	}
	for _, p := range products {
		s.absolutize(p)
	}
	return products, nil
}

func (s *productService) GetPublished(ctx context.Context, id string) (*models.Product, error) {
	p, err := s.repo.GetPublishedByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get published product %s: %w", id, err)
	}
	if p == nil {
		return nil, ErrNotFound
	}
	s.absolutize(p)
	return p, nil
}

func (s *productService) absolutize(p *models.Product) {
	p.ImageURL = s.urls.url(p.ImageURL)
	p.Description = s.urls.text(p.Description)
	for i := range p.Images {
		p.Images[i].URL = s.urls.absolute(p.Images[i].URL)
	}
}

func (s *productService) Count(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}
