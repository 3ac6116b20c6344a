package httpapi

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"storefront/internal/bootstrap/logging"
	domaincatalog "storefront/internal/domain/catalog"
)

func (h *handler) handleListProducts(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	category := strings.TrimSpace(query.Get("category"))
	rawLimit := strings.TrimSpace(query.Get("limit"))

	var (
		products []domaincatalog.Product
		err      error
	)
	switch {
	case category != "":
		products, err = h.catalog.ProductsByCategory(r.Context(), category)
	case rawLimit != "":
		limit, convErr := strconv.Atoi(rawLimit)
		if convErr != nil || limit <= 0 {
			writeError(r.Context(), w, fmt.Errorf("%w: limit must be a positive integer", errBadRequest))
			return
		}
		products, err = h.catalog.LimitedProducts(r.Context(), limit)
	default:
		products, err = h.catalog.Products(r.Context())
	}
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	if products == nil {
		products = []domaincatalog.Product{}
	}
	writeJSON(w, http.StatusOK, products)
}

// handleGetProduct also records the product as recently viewed.
func (h *handler) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	raw := strings.TrimSpace(chi.URLParam(r, "id"))
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		writeError(r.Context(), w, fmt.Errorf("%w: invalid product id %q", errBadRequest, raw))
		return
	}

	product, err := h.catalog.Product(r.Context(), id)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	h.recent.Add(r.Context(), product)
	writeJSON(w, http.StatusOK, product)
}

func (h *handler) handleListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.catalog.Categories(r.Context())
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	if categories == nil {
		categories = []string{}
	}
	writeJSON(w, http.StatusOK, categories)
}

func (h *handler) handleInvalidateCatalog(w http.ResponseWriter, r *http.Request) {
	h.catalog.Invalidate()
	logging.Info(r.Context(), "catalog cache invalidated")
	w.WriteHeader(http.StatusNoContent)
}
