package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"storefront/internal/bootstrap/logging"
	"storefront/internal/errs"
	"storefront/internal/infrastructure/catalogapi"
	"storefront/internal/usecase/catalog"
	"storefront/internal/usecase/shopper"
)

var errBadRequest = errors.New("bad request")

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

func writeErrorCode(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, errorResponse{Error: code, Message: message})
}

// writeError maps use case errors onto HTTP statuses.
func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	status, code := classify(err)
	if status >= http.StatusInternalServerError {
		logging.Warn(ctx, "request failed", slog.Int("status", status), slog.Any("err", errs.Loggable(err)))
	}
	writeErrorCode(w, status, code, err.Error())
}

func classify(err error) (int, string) {
	var statusErr *catalogapi.StatusError
	switch {
	case errors.Is(err, catalog.ErrProductNotFound):
		return http.StatusNotFound, "not_found"
	case errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound:
		return http.StatusNotFound, "not_found"
	case errs.IsAny(err, errBadRequest, catalog.ErrCategoryRequired, shopper.ErrInvalidPreference, shopper.ErrUnknownPreference):
		return http.StatusBadRequest, "bad_request"
	case errs.IsAny(err, catalogapi.ErrUnexpectedStatus, catalogapi.ErrInvalidPayload, catalog.ErrDecodePayload, catalog.ErrEmptyPayload):
		return http.StatusBadGateway, "upstream_error"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "timeout"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, out any) error {
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(out); err != nil {
		return errs.Wrap(errors.Join(errBadRequest, err), "decode request body")
	}
	return nil
}
