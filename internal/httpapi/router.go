package httpapi

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	domaincatalog "storefront/internal/domain/catalog"
	"storefront/internal/usecase/cart"
	"storefront/internal/usecase/shopper"
)

// Catalog is the read side of the product catalog the API serves.
type Catalog interface {
	Products(ctx context.Context) ([]domaincatalog.Product, error)
	LimitedProducts(ctx context.Context, limit int) ([]domaincatalog.Product, error)
	Product(ctx context.Context, id int64) (domaincatalog.Product, error)
	Categories(ctx context.Context) ([]string, error)
	ProductsByCategory(ctx context.Context, category string) ([]domaincatalog.Product, error)
	Invalidate()
}

type Dependencies struct {
	Catalog        Catalog
	Controller     *cart.Controller
	RecentlyViewed *shopper.RecentlyViewed
	Preferences    *shopper.PreferenceStore
}

type handler struct {
	catalog     Catalog
	controller  *cart.Controller
	recent      *shopper.RecentlyViewed
	preferences *shopper.PreferenceStore
}

// NewRouter mounts the storefront JSON API. baseCtx carries the logger used for
// request logs.
func NewRouter(baseCtx context.Context, deps Dependencies) http.Handler {
	h := &handler{
		catalog:     deps.Catalog,
		controller:  deps.Controller,
		recent:      deps.RecentlyViewed,
		preferences: deps.Preferences,
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(baseCtx))

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeErrorCode(w, http.StatusNotFound, "not_found", "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeErrorCode(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
	})

	r.Get("/healthz", h.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Route("/cart", func(r chi.Router) {
			r.Get("/", h.handleGetCart)
			r.Delete("/", h.handleClearCart)
			r.Post("/items", h.handleAddItem)
			r.Patch("/items/{id}", h.handleUpdateItem)
			r.Delete("/items/{id}", h.handleRemoveItem)
		})

		r.Get("/products", h.handleListProducts)
		r.Get("/products/{id}", h.handleGetProduct)
		r.Get("/categories", h.handleListCategories)
		r.Delete("/catalog/cache", h.handleInvalidateCatalog)

		r.Get("/recently-viewed", h.handleGetRecentlyViewed)
		r.Delete("/recently-viewed", h.handleClearRecentlyViewed)

		r.Get("/preferences", h.handleGetPreferences)
		r.Patch("/preferences", h.handleUpdatePreferences)
		r.Delete("/preferences", h.handleResetPreferences)
	})

	return r
}

func (h *handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
