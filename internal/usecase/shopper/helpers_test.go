package shopper

import (
	"context"
	"errors"
	"sync"

	domaincatalog "storefront/internal/domain/catalog"
)

var errStorageDown = errors.New("storage down")

type memoryKV struct {
	mu     sync.Mutex
	data   map[string]string
	getErr error
	setErr error
}

func newMemoryKV() *memoryKV {
	return &memoryKV{data: make(map[string]string)}
}

func (m *memoryKV) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return "", false, m.getErr
	}
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memoryKV) Set(_ context.Context, key string, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setErr != nil {
		return m.setErr
	}
	m.data[key] = value
	return nil
}

func (m *memoryKV) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func product(id int64) domaincatalog.Product {
	return domaincatalog.Product{ID: id, Title: "product", Price: float64(id)}
}
