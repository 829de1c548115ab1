package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/mavilleverte/mvv-api/internal/models"
	"github.com/mavilleverte/mvv-api/internal/repository"
	"github.com/rs/zerolog"
)

// Export resources
const (
	ResourceArticles        = "articles"
	ResourceRecommendations = "recommendations"
	ResourceProducts        = "products"
)

// ExportResources lists every exportable resource
var ExportResources = []string{ResourceArticles, ResourceRecommendations, ResourceProducts}

// exportService is the concrete implementation of ExportService
type exportService struct {
	repos *repository.Repositories
	log   zerolog.Logger
}

// newExportService creates a new ExportService
func newExportService(repos *repository.Repositories, log zerolog.Logger) *exportService {
	return &exportService{
		repos: repos,
		log:   log.With().Str("service", "export").Logger(),
	}
}

// recordWriter writes one exported row
type recordWriter func(v interface{}) error

// StreamResource streams every row of resource in the given format
func (s *exportService) StreamResource(ctx context.Context, w http.ResponseWriter, resource, format string) error {
	walk, err := s.walker(ctx, resource)
	if err != nil {
		return err
	}

	s.log.Info().Str("resource", resource).Str("format", format).Msg("Starting export")

	var count int
	switch format {
	case "ndjson":
		count, err = s.streamNDJSON(w, resource, walk)
	case "json":
		count, err = s.streamJSON(w, resource, walk)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}

	if err != nil {
		s.log.Error().Err(err).Str("resource", resource).Int("count", count).Msg("Export interrupted")
		return err
	}
	s.log.Info().Str("resource", resource).Int("count", count).Msg("Export completed")
	return nil
}

func (s *exportService) walker(ctx context.Context, resource string) (func(recordWriter) error, error) {
	switch resource {
	case ResourceArticles, ResourceRecommendations:
		kind := models.Kind(resource)
		return func(emit recordWriter) error {
			return s.repos.Content.StreamAll(ctx, kind, func(c *models.Content) error {
				return emit(c)
			})
		}, nil
	case ResourceProducts:
		return func(emit recordWriter) error {
			return s.repos.Product.StreamAll(ctx, func(p *models.Product) error {
				return emit(p)
			})
		}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownResource, resource)
	}
}

func (s *exportService) streamNDJSON(w http.ResponseWriter, resource string, walk func(recordWriter) error) (int, error) {
	w.Header().Set("Content-Type", "application/x-ndjson")
	w.Header().Set("Content-Disposition", "attachment; filename="+resource+".ndjson")

	flusher, _ := w.(http.Flusher)
	count := 0

	err := walk(func(v interface{}) error {
		data, err := json.Marshal(v)
		if err != nil {
			return err
		}
		if _, err := w.Write(append(data, '\n')); err != nil {
			return err
		}
		count++

		if count%100 == 0 && flusher != nil {
			flusher.Flush()
		}
		return nil
	})
	return count, err
}

// streamJSON writes a JSON array. The closing bracket is only written when
// every row made it out, so a failed export never parses as complete.
func (s *exportService) streamJSON(w http.ResponseWriter, resource string, walk func(recordWriter) error) (int, error) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", "attachment; filename="+resource+".json")

	if _, err := w.Write([]byte("[")); err != nil {
		return 0, err
	}
	count := 0

	err := walk(func(v interface{}) error {
		data, err := json.Marshal(v)
		if err != nil {
			return err
		}
		if count > 0 {
			data = append([]byte(","), data...)
		}
		if _, err := w.Write(data); err != nil {
			return err
		}
		count++
		return nil
	})
	if err != nil {
		return count, err
	}

	_, err = w.Write([]byte("]"))
	return count, err
}

// GetCount returns the row count for a resource
func (s *exportService) GetCount(ctx context.Context, resource string) (int, error) {
	switch resource {
	case ResourceArticles, ResourceRecommendations:
		return s.repos.Content.Count(ctx, models.Kind(resource))
	case ResourceProducts:
		return s.repos.Product.Count(ctx)
	default:
		return 0, fmt.Errorf("%w: %s", ErrUnknownResource, resource)
	}
}
