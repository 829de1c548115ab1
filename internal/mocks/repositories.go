package mocks

import (
	"context"
	"sort"
	"sync"

	"github.com/mavilleverte/mvv-api/internal/models"
	"github.com/mavilleverte/mvv-api/internal/repository"
)

var (
	_ repository.ContentRepository = (*MockContentRepository)(nil)
	_ repository.ProductRepository = (*MockProductRepository)(nil)
)

// MockContentRepository is an in-memory ContentRepository. Rows are copied
// on the way in and out so callers cannot mutate stored state.
type MockContentRepository struct {
	mu    sync.Mutex
	Items map[models.Kind]map[string]*models.Content
	Err   error
}

func NewMockContentRepository() *MockContentRepository {
	items := make(map[models.Kind]map[string]*models.Content)
	for _, k := range models.Kinds {
		items[k] = make(map[string]*models.Content)
	}
	return &MockContentRepository{Items: items}
}

func copyContent(c *models.Content) *models.Content {
	cp := *c
	return &cp
}

func (m *MockContentRepository) List(ctx context.Context, kind models.Kind) ([]*models.Content, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}

	items := []*models.Content{}
	for _, c := range m.Items[kind] {
		items = append(items, copyContent(c))
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].UpdatedAt.After(items[j].UpdatedAt)
	})
	return items, nil
}

func (m *MockContentRepository) ListPublished(ctx context.Context, kind models.Kind) ([]*models.ContentSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}

	var published []*models.Content
	for _, c := range m.Items[kind] {
		if c.Status == models.StatusPublished {
			published = append(published, c)
		}
	}
	sort.SliceStable(published, func(i, j int) bool {
		a, b := published[i].PublishedAt, published[j].PublishedAt
		if a == nil || b == nil {
			return b == nil && a != nil
		}
		return a.After(*b)
	})

	items := []*models.ContentSummary{}
	for _, c := range published {
		items = append(items, &models.ContentSummary{
			ID:            c.ID,
			Title:         c.Title,
			Summary:       c.Summary,
			Category:      c.Category,
			Tags:          c.Tags,
			CoverImageURL: c.CoverImageURL,
			Address:       c.Address,
			PublishedAt:   c.PublishedAt,
			UpdatedAt:     c.UpdatedAt,
		})
	}
	return items, nil
}

func (m *MockContentRepository) GetByID(ctx context.Context, kind models.Kind, id string) (*models.Content, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	c, ok := m.Items[kind][id]
	if !ok {
		return nil, nil
	}
	return copyContent(c), nil
}

func (m *MockContentRepository) GetPublishedByID(ctx context.Context, kind models.Kind, id string) (*models.Content, error) {
	c, err := m.GetByID(ctx, kind, id)
	if err != nil || c == nil || c.Status != models.StatusPublished {
		return nil, err
	}
	return c, nil
}

func (m *MockContentRepository) Create(ctx context.Context, kind models.Kind, c *models.Content) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.Items[kind][c.ID] = copyContent(c)
	return nil
}

func (m *MockContentRepository) Update(ctx context.Context, kind models.Kind, c *models.Content) error {
	return m.Create(ctx, kind, c)
}

func (m *MockContentRepository) Delete(ctx context.Context, kind models.Kind, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return false, m.Err
	}
	_, ok := m.Items[kind][id]
	delete(m.Items[kind], id)
	return ok, nil
}

func (m *MockContentRepository) Count(ctx context.Context, kind models.Kind) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Items[kind]), m.Err
}

func (m *MockContentRepository) StreamAll(ctx context.Context, kind models.Kind, callback func(*models.Content) error) error {
	items, err := m.List(ctx, kind)
	if err != nil {
		return err
	}
	for _, c := range items {
		if err := callback(c); err != nil {
			return err
		}
	}
	return nil
}

// MockProductRepository is an in-memory ProductRepository. Galleries are
// kept in Images so tests can assert on the cascade.
type MockProductRepository struct {
	mu       sync.Mutex
	Products map[string]*models.Product
	Images   map[string][]models.ProductImage
	Err      error
}

func NewMockProductRepository() *MockProductRepository {
	return &MockProductRepository{
		Products: make(map[string]*models.Product),
		Images:   make(map[string][]models.ProductImage),
	}
}

func (m *MockProductRepository) load(p *models.Product, withImages bool) *models.Product {
	cp := *p
	cp.Images = nil
	if withImages {
		cp.Images = append([]models.ProductImage(nil), m.Images[p.ID]...)
	}
	return &cp
}

func (m *MockProductRepository) list(publishedOnly bool) []*models.Product {
	products := []*models.Product{}
	for _, p := range m.Products {
		if publishedOnly && p.Status != models.StatusPublished {
			continue
		}
		products = append(products, m.load(p, false))
	}
	return products
}

func (m *MockProductRepository) List(ctx context.Context) ([]*models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	products := m.list(false)
	sort.SliceStable(products, func(i, j int) bool {
		return products[i].UpdatedAt.After(products[j].UpdatedAt)
	})
	return products, nil
}

func (m *MockProductRepository) ListPublished(ctx context.Context) ([]*models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	products := m.list(true)
	sort.SliceStable(products, func(i, j int) bool {
		return products[i].CreatedAt.After(products[j].CreatedAt)
	})
	return products, nil
}

func (m *MockProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	p, ok := m.Products[id]
	if !ok {
		return nil, nil
	}
	return m.load(p, true), nil
}

func (m *MockProductRepository) GetPublishedByID(ctx context.Context, id string) (*models.Product, error) {
	p, err := m.GetByID(ctx, id)
	if err != nil || p == nil || p.Status != models.StatusPublished {
		return nil, err
	}
	return p, nil
}

func (m *MockProductRepository) Create(ctx context.Context, p *models.Product) error {
	return m.Update(ctx, p, true)
}

func (m *MockProductRepository) Update(ctx context.Context, p *models.Product, replaceImages bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	cp := *p
	cp.Images = nil
	m.Products[p.ID] = &cp
	if replaceImages {
		images := make([]models.ProductImage, len(p.Images))
		for i, img := range p.Images {
			img.ProductID = p.ID
			images[i] = img
		}
		m.Images[p.ID] = images
	}
	return nil
}

func (m *MockProductRepository) Delete(ctx context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return false, m.Err
	}
	_, ok := m.Products[id]
	delete(m.Products, id)
	delete(m.Images, id)
	return ok, nil
}

func (m *MockProductRepository) Count(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Products), m.Err
}

func (m *MockProductRepository) StreamAll(ctx context.Context, callback func(*models.Product) error) error {
	m.mu.Lock()
	products := make([]*models.Product, 0, len(m.Products))
	for _, p := range m.Products {
		products = append(products, m.load(p, true))
	}
	err := m.Err
	m.mu.Unlock()
	if err != nil {
		return err
	}

	sort.SliceStable(products, func(i, j int) bool {
		return products[i].CreatedAt.Before(products[j].CreatedAt)
	})
	for _, p := range products {
		if err := callback(p); err != nil {
			return err
		}
	}
	return nil
}
