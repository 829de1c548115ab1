package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mavilleverte/mvv-api/internal/models"
	"github.com/mavilleverte/mvv-api/internal/repository"
	"github.com/mavilleverte/mvv-api/internal/validation"
	"github.com/rs/zerolog"
)

// contentService is the concrete implementation of ContentService
type contentService struct {
	repo repository.ContentRepository
	urls urlRewriter
	now  func() time.Time
	log  zerolog.Logger
}

// newContentService creates a new ContentService
func newContentService(repo repository.ContentRepository, publicBaseURL string, log zerolog.Logger) *contentService {
	return &contentService{
		repo: repo,
		urls: newURLRewriter(publicBaseURL),
		now:  timestamp,
		log:  log.With().Str("service", "content").Logger(),
	}
}

func (s *contentService) List(ctx context.Context, kind models.Kind) ([]*models.Content, error) {
	items, err := s.repo.List(ctx, kind)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", kind, err)
	}
	return items, nil
}

func (s *contentService) Get(ctx context.Context, kind models.Kind, id string) (*models.Content, error) {
	c, err := s.repo.GetByID(ctx, kind, id)
	if err != nil {
		return nil, fmt.Errorf("get %s %s: %w", kind, id, err)
	}
	if c == nil {
		return nil, ErrNotFound
	}
	return c, nil
}

func (s *contentService) Create(ctx context.Context, kind models.Kind, in *models.ContentInput) (*models.Content, error) {
	if err := validation.ValidateContent(in, true).OrNil(); err != nil {
		return nil, err
	}

	now := s.now()
	c := &models.Content{
		ID:        newID(kind.IDPrefix(), now),
		Title:     strings.TrimSpace(*in.Title),
		Status:    models.StatusDraft,
		UpdatedAt: now,
	}
	applyContentInput(c, in)
	if c.Status == models.StatusPublished {
		c.PublishedAt = &now
	}

	if err := s.repo.Create(ctx, kind, c); err != nil {
		return nil, fmt.Errorf("create %s: %w", kind, err)
	}

	s.log.Info().Str("kind", string(kind)).Str("id", c.ID).Str("status", string(c.Status)).Msg("Content created")
	return c, nil
}

func (s *contentService) Update(ctx context.Context, kind models.Kind, id string, in *models.ContentInput) (*models.Content, error) {
	if err := validation.ValidateContent(in, false).OrNil(); err != nil {
		return nil, err
	}

	c, err := s.Get(ctx, kind, id)
	if err != nil {
		return nil, err
	}

	now := s.now()
	wasPublished := c.Status == models.StatusPublished
	if in.Title != nil {
		c.Title = strings.TrimSpace(*in.Title)
	}
	applyContentInput(c, in)

	switch {
	case in.Status != nil && *in.Status == models.StatusPublished && !wasPublished:
		c.PublishedAt = &now
	case in.Status != nil && *in.Status == models.StatusDraft:
		c.PublishedAt = nil
	}
	c.UpdatedAt = now

	if err := s.repo.Update(ctx, kind, c); err != nil {
		return nil, fmt.Errorf("update %s %s: %w", kind, id, err)
	}

	s.log.Info().Str("kind", string(kind)).Str("id", id).Str("status", string(c.Status)).Msg("Content updated")
	return c, nil
}

// applyContentInput copies every sent optional field onto c
func applyContentInput(c *models.Content, in *models.ContentInput) {
	if in.Summary != nil {
		c.Summary = optional(in.Summary)
	}
	if in.Category != nil {
		c.Category = optional(in.Category)
	}
	if in.Tags != nil {
		c.Tags = in.Tags
		if *in.Tags == "" {
			c.Tags = nil
		}
	}
	if in.CoverImageURL != nil {
		c.CoverImageURL = optional(in.CoverImageURL)
	}
	if in.ContentMarkdown != nil {
		c.ContentMarkdown = sanitizeRichText(in.ContentMarkdown)
	}
	if in.Address != nil {
		c.Address = optional(in.Address)
	}
	if in.Status != nil && *in.Status != "" {
		c.Status = *in.Status
	}
	if in.AuthorEmail != nil {
		c.AuthorEmail = optional(in.AuthorEmail)
	}
}

func (s *contentService) Delete(ctx context.Context, kind models.Kind, id string) error {
	deleted, err := s.repo.Delete(ctx, kind, id)
	if err != nil {
		return fmt.Errorf("delete %s %s: %w", kind, id, err)
	}
	if !deleted {
		return ErrNotFound
	}
	s.log.Info().Str("kind", string(kind)).Str("id", id).Msg("Content deleted")
	return nil
}

func (s *contentService) ListPublished(ctx context.Context, kind models.Kind) ([]*models.ContentSummary, error) {
	items, err := s.repo.ListPublished(ctx, kind)
	if err != nil {
		return nil, fmt.Errorf("list published %s: %w", kind, err)
	}
	for _, item := range items {
		item.CoverImageURL = s.urls.url(item.CoverImageURL)
	}
	return items, nil
}

func (s *contentService) GetPublished(ctx context.Context, kind models.Kind, id string) (*models.Content, error) {
	c, err := s.repo.GetPublishedByID(ctx, kind, id)
	if err != nil {
		return nil, fmt.Errorf("get published %s %s: %w", kind, id, err)
	}
	if c == nil {
		return nil, ErrNotFound
	}
	c.CoverImageURL = s.urls.url(c.CoverImageURL)
	c.ContentMarkdown = s.urls.text(c.ContentMarkdown)
	return c, nil
}

func (s *contentService) Count(ctx context.Context, kind models.Kind) (int, error) {
	return s.repo.Count(ctx, kind)
}
