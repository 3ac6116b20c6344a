package ports

import (
	"context"
	"encoding/json"
)

// CatalogFetcher returns the raw JSON payload served by the remote catalog for a path
// such as "/products" or "/products/category/jewelery".
type CatalogFetcher interface {
	Fetch(ctx context.Context, path string) (json.RawMessage, error)
}
