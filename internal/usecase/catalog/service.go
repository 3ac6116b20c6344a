package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"storefront/internal/bootstrap/logging"
	domaincatalog "storefront/internal/domain/catalog"
	"storefront/internal/errs"
	"storefront/internal/infrastructure/cache"
	"storefront/internal/ports"
)

var (
	ErrProductNotFound  = errors.New("product not found")
	ErrCategoryRequired = errors.New("category is required")
	ErrDecodePayload    = errors.New("decode catalog payload")
	ErrEmptyPayload     = errors.New("empty catalog payload")
)

// Service serves catalog reads through a TTL read-through cache keyed like
// "products", "product_<id>", "categories" and "category_<name>".
type Service struct {
	fetcher ports.CatalogFetcher
	cache   *cache.Cache[json.RawMessage]
}

func NewService(fetcher ports.CatalogFetcher, c *cache.Cache[json.RawMessage]) *Service {
	if c == nil {
		c = cache.New[json.RawMessage]()
	}
	return &Service{fetcher: fetcher, cache: c}
}

func (s *Service) Products(ctx context.Context) ([]domaincatalog.Product, error) {
	var products []domaincatalog.Product
	if err := s.fetchInto(ctx, domaincatalog.KeyProducts, domaincatalog.PathProducts, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// LimitedProducts returns the first limit products; limit <= 0 means DefaultLimit.
func (s *Service) LimitedProducts(ctx context.Context, limit int) ([]domaincatalog.Product, error) {
	if limit <= 0 {
		limit = domaincatalog.DefaultLimit
	}
	var products []domaincatalog.Product
	if err := s.fetchInto(ctx, domaincatalog.LimitKey(limit), domaincatalog.LimitPath(limit), &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (s *Service) Product(ctx context.Context, id int64) (domaincatalog.Product, error) {
	key := domaincatalog.ProductKey(id)
	payload, err := s.cache.FetchThrough(ctx, key, func(ctx context.Context) (json.RawMessage, error) {
		payload, err := s.load(ctx, key, domaincatalog.ProductPath(id))
		if err != nil {
			return nil, err
		}
		if isEmptyPayload(payload) {
			return nil, fmt.Errorf("%w: id %d", ErrProductNotFound, id)
		}
		return payload, nil
	})
	if err != nil {
		return domaincatalog.Product{}, err
	}

	var product domaincatalog.Product
	if err := decode(payload, &product); err != nil {
		return domaincatalog.Product{}, err
	}
	return product, nil
}

func (s *Service) Categories(ctx context.Context) ([]string, error) {
	var categories []string
	if err := s.fetchInto(ctx, domaincatalog.KeyCategories, domaincatalog.PathCategories, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

func (s *Service) ProductsByCategory(ctx context.Context, category string) ([]domaincatalog.Product, error) {
	category = strings.TrimSpace(category)
	if category == "" {
		return nil, ErrCategoryRequired
	}
	var products []domaincatalog.Product
	if err := s.fetchInto(ctx, domaincatalog.CategoryKey(category), domaincatalog.CategoryPath(category), &products); err != nil {
		return nil, err
	}
	return products, nil
}

// Invalidate drops every cached payload.
func (s *Service) Invalidate() {
	s.cache.Clear()
}

func (s *Service) fetchInto(ctx context.Context, key string, path string, out any) error {
	payload, err := s.cache.FetchThrough(ctx, key, func(ctx context.Context) (json.RawMessage, error) {
		payload, err := s.load(ctx, key, path)
		if err != nil {
			return nil, err
		}
		// returned as an error so an empty answer is never cached
		if isEmptyPayload(payload) {
			return nil, fmt.Errorf("%w: GET %s", ErrEmptyPayload, path)
		}
		return payload, nil
	})
	if err != nil {
		return err
	}
	return decode(payload, out)
}

func (s *Service) load(ctx context.Context, key string, path string) (json.RawMessage, error) {
	logging.Debug(
		logging.WithAttrs(ctx, slog.String("component", "usecase.catalog"), slog.String("cache_key", key)),
		"catalog cache miss",
	)
	return s.fetcher.Fetch(ctx, path)
}

func decode(payload json.RawMessage, out any) error {
	if err := json.Unmarshal(payload, out); err != nil {
		return errs.Wrap(fmt.Errorf("%w: %v", ErrDecodePayload, err), "decode catalog response")
	}
	return nil
}

func isEmptyPayload(payload json.RawMessage) bool {
	trimmed := bytes.TrimSpace(payload)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}
