package mocks

import (
	"bytes"
	"context"
	"crypto/md5"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/mavilleverte/mvv-api/internal/mailer"
	"github.com/mavilleverte/mvv-api/internal/storage"
)

var _ storage.Store = (*MockStore)(nil)

// MockStore is an in-memory object store
type MockStore struct {
	mu      sync.Mutex
	Objects map[string][]byte
	Types   map[string]string
	PutErr  error
	Puts    []string
}

func NewMockStore() *MockStore {
	return &MockStore{
		Objects: make(map[string][]byte),
		Types:   make(map[string]string),
	}
}

func (m *MockStore) info(key string) *storage.ObjectInfo {
	data := m.Objects[key]
	return &storage.ObjectInfo{
		Key:          key,
		ContentType:  m.Types[key],
		ETag:         fmt.Sprintf(`"%x"`, md5.Sum(data)),
		Size:         int64(len(data)),
		LastModified: time.Unix(0, 0).UTC(),
	}
}

func (m *MockStore) Put(ctx context.Context, key string, r io.Reader, contentType string) (*storage.ObjectInfo, error) {
	if err := storage.ValidateKey(key); err != nil {
		return nil, err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.PutErr != nil {
		return nil, m.PutErr
	}
	m.Objects[key] = data
	m.Types[key] = contentType
	m.Puts = append(m.Puts, key)
	return m.info(key), nil
}

func (m *MockStore) Get(ctx context.Context, key string) (*storage.Object, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.Objects[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &storage.Object{
		ObjectInfo: *m.info(key),
		Body:       io.NopCloser(bytes.NewReader(data)),
	}, nil
}

func (m *MockStore) Stat(ctx context.Context, key string) (*storage.ObjectInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.Objects[key]; !ok {
		return nil, storage.ErrNotFound
	}
	return m.info(key), nil
}

func (m *MockStore) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.Objects[key]; !ok {
		return storage.ErrNotFound
	}
	delete(m.Objects, key)
	delete(m.Types, key)
	return nil
}

// MockMailer records sent messages
type MockMailer struct {
	mu       sync.Mutex
	Sent     []*mailer.Message
	SendFunc func(ctx context.Context, msg *mailer.Message) (string, error)
}

func NewMockMailer() *MockMailer {
	return &MockMailer{}
}

func (m *MockMailer) Send(ctx context.Context, msg *mailer.Message) (string, error) {
	m.mu.Lock()
	m.Sent = append(m.Sent, msg)
	m.mu.Unlock()

	if m.SendFunc != nil {
		return m.SendFunc(ctx, msg)
	}
	return "mock-email-id", nil
}
