package shopper

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"storefront/internal/bootstrap/logging"
	domaincatalog "storefront/internal/domain/catalog"
	"storefront/internal/errs"
	"storefront/internal/ports"
)

const (
	RecentlyViewedKey = "recentlyViewed"
	MaxRecentlyViewed = 5
)

// RecentlyViewed keeps the last products a shopper opened, newest first and unique by
// id. Like the cart it fails open on load and persists best-effort.
type RecentlyViewed struct {
	mu       sync.Mutex
	store    ports.KeyValueStore
	products []domaincatalog.Product
}

func NewRecentlyViewed(ctx context.Context, store ports.KeyValueStore) *RecentlyViewed {
	r := &RecentlyViewed{store: store}
	r.products = r.load(ctx)
	return r
}

func (r *RecentlyViewed) Add(ctx context.Context, product domaincatalog.Product) {
	r.mu.Lock()
	defer r.mu.Unlock()

	next := make([]domaincatalog.Product, 0, MaxRecentlyViewed)
	next = append(next, product)
	for _, p := range r.products {
		if p.ID == product.ID {
			continue
		}
		if len(next) == MaxRecentlyViewed {
			break
		}
		next = append(next, p)
	}
	r.products = next
	r.save(ctx)
}

func (r *RecentlyViewed) List() []domaincatalog.Product {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]domaincatalog.Product, len(r.products))
	copy(out, r.products)
	return out
}

func (r *RecentlyViewed) Clear(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.products = nil
	r.save(ctx)
}

func (r *RecentlyViewed) load(ctx context.Context) []domaincatalog.Product {
	logCtx := logging.WithComponent(ctx, "usecase.shopper.recent")

	raw, found, err := r.store.Get(ctx, RecentlyViewedKey)
	if err != nil {
		logging.Warn(logCtx, "read recently viewed failed", slog.Any("err", errs.Loggable(err)))
		return nil
	}
	if !found {
		return nil
	}

	var products []domaincatalog.Product
	if err := json.Unmarshal([]byte(raw), &products); err != nil {
		logging.Warn(logCtx, "parse recently viewed failed", slog.Any("err", errs.Loggable(err)))
		return nil
	}
	if len(products) > MaxRecentlyViewed {
		products = products[:MaxRecentlyViewed]
	}
	return products
}

func (r *RecentlyViewed) save(ctx context.Context) {
	products := r.products
	if products == nil {
		products = []domaincatalog.Product{}
	}

	data, err := json.Marshal(products)
	if err == nil {
		err = r.store.Set(ctx, RecentlyViewedKey, string(data))
	}
	if err != nil {
		logging.Warn(logging.WithComponent(ctx, "usecase.shopper.recent"), "persist recently viewed failed", slog.Any("err", errs.Loggable(err)))
	}
}
