package httpapi

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"storefront/internal/bootstrap/logging"
	domaincart "storefront/internal/domain/cart"
	"storefront/internal/errs"
)

type cartResponse struct {
	Items  []domaincart.Line `json:"items"`
	Totals domaincart.Totals `json:"totals"`
	IsBusy bool              `json:"isBusy"`
}

type addItemRequest struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

type updateItemRequest struct {
	Quantity *int `json:"quantity"`
}

func (h *handler) cartSnapshot() cartResponse {
	store := h.controller.Store()
	items := store.Lines()
	if items == nil {
		items = []domaincart.Line{}
	}
	return cartResponse{
		Items:  items,
		Totals: store.Totals(),
		IsBusy: h.controller.IsBusy(),
	}
}

func (h *handler) handleGetCart(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.cartSnapshot())
}

func (h *handler) handleAddItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(r.Context(), w, err)
		return
	}
	if req.ProductID <= 0 {
		writeError(r.Context(), w, fmt.Errorf("%w: product_id must be positive", errBadRequest))
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	product, err := h.catalog.Product(r.Context(), req.ProductID)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}

	h.commit(r, h.controller.AddToCart(r.Context(), product.CartProduct(), req.Quantity))
	writeJSON(w, http.StatusOK, h.cartSnapshot())
}

func (h *handler) handleUpdateItem(w http.ResponseWriter, r *http.Request) {
	id, ok := cartItemID(w, r)
	if !ok {
		return
	}
	var req updateItemRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(r.Context(), w, err)
		return
	}
	if req.Quantity == nil {
		writeError(r.Context(), w, fmt.Errorf("%w: quantity is required", errBadRequest))
		return
	}

	h.commit(r, h.controller.UpdateItemQuantity(r.Context(), id, *req.Quantity))
	writeJSON(w, http.StatusOK, h.cartSnapshot())
}

func (h *handler) handleRemoveItem(w http.ResponseWriter, r *http.Request) {
	id, ok := cartItemID(w, r)
	if !ok {
		return
	}
	h.commit(r, h.controller.RemoveFromCart(r.Context(), id))
	writeJSON(w, http.StatusOK, h.cartSnapshot())
}

func (h *handler) handleClearCart(w http.ResponseWriter, r *http.Request) {
	h.commit(r, h.controller.ClearAllItems(r.Context()))
	writeJSON(w, http.StatusOK, h.cartSnapshot())
}

// commit logs a cancelled delay; the mutation itself has already been applied.
func (h *handler) commit(r *http.Request, err error) {
	if err != nil {
		logging.Debug(r.Context(), "cart delay interrupted", slog.Any("err", errs.Loggable(err)))
	}
}

func cartItemID(w http.ResponseWriter, r *http.Request) (domaincart.ProductID, bool) {
	raw := strings.TrimSpace(chi.URLParam(r, "id"))
	if raw == "" {
		writeError(r.Context(), w, fmt.Errorf("%w: item id is required", errBadRequest))
		return "", false
	}
	if _, err := strconv.ParseInt(raw, 10, 64); err != nil {
		writeError(r.Context(), w, fmt.Errorf("%w: invalid item id %q", errBadRequest, raw))
		return "", false
	}
	return domaincart.ProductID(raw), true
}
