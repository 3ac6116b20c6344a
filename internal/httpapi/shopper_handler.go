package httpapi

import (
	"fmt"
	"net/http"

	domaincatalog "storefront/internal/domain/catalog"
)

type recentlyViewedResponse struct {
	Items []domaincatalog.Product `json:"items"`
}

func (h *handler) handleGetRecentlyViewed(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, recentlyViewedResponse{Items: h.recent.List()})
}

func (h *handler) handleClearRecentlyViewed(w http.ResponseWriter, r *http.Request) {
	h.recent.Clear(r.Context())
	writeJSON(w, http.StatusOK, recentlyViewedResponse{Items: h.recent.List()})
}

func (h *handler) handleGetPreferences(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.preferences.Get())
}

// handleUpdatePreferences accepts a partial preferences document; values may be JSON
// strings or numbers.
func (h *handler) handleUpdatePreferences(w http.ResponseWriter, r *http.Request) {
	var body map[string]any
	if err := decodeBody(w, r, &body); err != nil {
		writeError(r.Context(), w, err)
		return
	}
	if len(body) == 0 {
		writeError(r.Context(), w, fmt.Errorf("%w: no preferences given", errBadRequest))
		return
	}

	changes := make(map[string]string, len(body))
	for name, value := range body {
		switch value.(type) {
		case string, float64:
			changes[name] = fmt.Sprint(value)
		default:
			writeError(r.Context(), w, fmt.Errorf("%w: preference %q must be a string or number", errBadRequest, name))
			return
		}
	}

	prefs, err := h.preferences.Apply(r.Context(), changes)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, prefs)
}

func (h *handler) handleResetPreferences(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.preferences.Reset(r.Context()))
}
