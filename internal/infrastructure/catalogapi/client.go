package catalogapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"storefront/internal/bootstrap/config"
	"storefront/internal/bootstrap/logging"
	"storefront/internal/errs"
	"storefront/internal/ports"
)

const maxBodyBytes = 8 << 20

var (
	ErrUnexpectedStatus = errors.New("catalog returned unexpected status")
	ErrInvalidPayload   = errors.New("catalog returned invalid json")
)

// StatusError reports a non-2xx catalog response.
type StatusError struct {
	Path       string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: GET %s: %d", ErrUnexpectedStatus, e.Path, e.StatusCode)
}

func (e *StatusError) Unwrap() error { return ErrUnexpectedStatus }

// Client fetches raw JSON from a fakestoreapi-compatible catalog.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

var _ ports.CatalogFetcher = (*Client)(nil)

func NewClient(cfg config.CatalogConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return NewClientWithHTTP(cfg.BaseURL, &http.Client{Timeout: timeout})
}

func NewClientWithHTTP(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		httpClient: httpClient,
	}
}

func (c *Client) Fetch(ctx context.Context, path string) (json.RawMessage, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}

	logCtx := logging.WithAttrs(ctx,
		slog.String("component", "infrastructure.catalogapi"),
		slog.String("path", path),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, errs.Wrap(err, "build catalog request")
	}
	req.Header.Set("Accept", "application/json")

	started := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		logging.Warn(logCtx, "catalog request failed", slog.Any("err", errs.Loggable(err)))
		return nil, errs.Wrapf(err, "GET %s", path)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, errs.Wrapf(err, "read catalog response %s", path)
	}

	logging.Debug(logCtx, "catalog response",
		slog.Int("status", resp.StatusCode),
		slog.Int("bytes", len(body)),
		slog.Duration("elapsed", time.Since(started)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Path: path, StatusCode: resp.StatusCode}
	}

	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		// the catalog answers unknown product ids with 200 and an empty body
		return json.RawMessage("null"), nil
	}
	if !json.Valid([]byte(trimmed)) {
		return nil, fmt.Errorf("%w: GET %s", ErrInvalidPayload, path)
	}
	return json.RawMessage(trimmed), nil
}
