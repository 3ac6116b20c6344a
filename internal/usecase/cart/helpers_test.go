package cart

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"

	domaincart "storefront/internal/domain/cart"
	"storefront/internal/infrastructure/kvstore"
	"storefront/internal/infrastructure/persistence/sqlite/model"
	"storefront/internal/ports"
)

var errStorageDown = errors.New("storage down")

type memoryKV struct {
	mu     sync.Mutex
	data   map[string]string
	sets   int
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
	m.sets++
	m.data[key] = value
	return nil
}

func (m *memoryKV) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *memoryKV) setCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sets
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []ports.CartEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, event ports.CartEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.err
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

func setupSQLiteKV(t *testing.T) *kvstore.SQLiteStore {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "cart.sqlite")
	db, err := gorm.Open(gormsqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db: %v", err)
	}
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
	if err := db.AutoMigrate(&model.KV{}); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}
	return kvstore.NewSQLiteStore(db)
}

func testProduct(id string, price float64) domaincart.Product {
	return domaincart.Product{
		ID:       domaincart.ProductID(id),
		Title:    "product " + id,
		Price:    price,
		Image:    "https://img/" + id + ".jpg",
		Category: "electronics",
	}
}
