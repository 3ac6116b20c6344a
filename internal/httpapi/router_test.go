package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"storefront/internal/infrastructure/catalogapi"
	"storefront/internal/usecase/cart"
	"storefront/internal/usecase/catalog"
	"storefront/internal/usecase/shopper"
)

type memoryKV struct {
	mu   sync.Mutex
	data map[string]string
}

func (m *memoryKV) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memoryKV) Set(_ context.Context, key string, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *memoryKV) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

type stubFetcher struct {
	responses map[string]string
	errs      map[string]error
}

func (f *stubFetcher) Fetch(_ context.Context, path string) (json.RawMessage, error) {
	if err := f.errs[path]; err != nil {
		return nil, err
	}
	body, ok := f.responses[path]
	if !ok {
		return nil, &catalogapi.StatusError{Path: path, StatusCode: http.StatusNotFound}
	}
	return json.RawMessage(body), nil
}

type testAPI struct {
	handler    http.Handler
	fetcher    *stubFetcher
	controller *cart.Controller
	kv         *memoryKV
}

func setupAPI(t *testing.T) *testAPI {
	t.Helper()
	ctx := context.Background()

	fetcher := &stubFetcher{
		responses: map[string]string{
			"/products":                   `[{"id":1,"title":"Backpack","price":109.95,"category":"men's clothing"},{"id":2,"title":"Ring","price":9.99,"category":"jewelery"}]`,
			"/products?limit=1":           `[{"id":1,"title":"Backpack","price":109.95,"category":"men's clothing"}]`,
			"/products/1":                 `{"id":1,"title":"Backpack","price":109.95,"category":"men's clothing"}`,
			"/products/2":                 `{"id":2,"title":"Ring","price":9.99,"category":"jewelery"}`,
			"/products/999":               ``,
			"/products/categories":        `["electronics","jewelery"]`,
			"/products/category/jewelery": `[{"id":2,"title":"Ring","price":9.99,"category":"jewelery"}]`,
		},
		errs: map[string]error{},
	}
	kv := &memoryKV{data: make(map[string]string)}
	store := cart.NewStore(ctx, cart.NewPersistence(kv, ""))
	controller := cart.NewController(store, cart.Delays{})

	handler := NewRouter(ctx, Dependencies{
		Catalog:        catalog.NewService(fetcher, nil),
		Controller:     controller,
		RecentlyViewed: shopper.NewRecentlyViewed(ctx, kv),
		Preferences:    shopper.NewPreferenceStore(ctx, kv),
	})
	return &testAPI{handler: handler, fetcher: fetcher, controller: controller, kv: kv}
}

func (a *testAPI) do(t *testing.T, method string, target string, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != "" {
		reader = bytes.NewReader([]byte(body))
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp := httptest.NewRecorder()
	a.handler.ServeHTTP(resp, req)
	return resp
}

func decodeInto(t *testing.T, resp *httptest.ResponseRecorder, out any) {
	t.Helper()
	if err := json.Unmarshal(resp.Body.Bytes(), out); err != nil {
		t.Fatalf("decode response: %v; body=%s", err, resp.Body.String())
	}
}

func expectStatus(t *testing.T, resp *httptest.ResponseRecorder, want int) {
	t.Helper()
	if resp.Code != want {
		t.Fatalf("status = %d, want %d; body=%s", resp.Code, want, resp.Body.String())
	}
}

func expectErrorCode(t *testing.T, resp *httptest.ResponseRecorder, want string) {
	t.Helper()
	var body errorResponse
	decodeInto(t, resp, &body)
	if body.Error != want {
		t.Fatalf("error code = %q, want %q; message=%q", body.Error, want, body.Message)
	}
}

func TestHealthz(t *testing.T) {
	api := setupAPI(t)

	resp := api.do(t, http.MethodGet, "/healthz", "")

	expectStatus(t, resp, http.StatusOK)
	if resp.Header().Get(traceHeader) == "" {
		t.Fatalf("missing %s header", traceHeader)
	}
}

func TestRequestIDIsEchoed(t *testing.T) {
	api := setupAPI(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(traceHeader, "trace-123")
	resp := httptest.NewRecorder()
	api.handler.ServeHTTP(resp, req)

	if got := resp.Header().Get(traceHeader); got != "trace-123" {
		t.Fatalf("%s = %q, want trace-123", traceHeader, got)
	}
}

func TestCartLifecycle(t *testing.T) {
	api := setupAPI(t)

	resp := api.do(t, http.MethodGet, "/api/cart", "")
	expectStatus(t, resp, http.StatusOK)
	var empty cartResponse
	decodeInto(t, resp, &empty)
	if len(empty.Items) != 0 || empty.Totals.Shipping != 5.99 {
		t.Fatalf("empty cart = %+v", empty)
	}

	resp = api.do(t, http.MethodPost, "/api/cart/items", `{"product_id":2,"quantity":3}`)
	expectStatus(t, resp, http.StatusOK)
	var added cartResponse
	decodeInto(t, resp, &added)
	if len(added.Items) != 1 || added.Items[0].ProductID != "2" || added.Items[0].Quantity != 3 {
		t.Fatalf("after add = %+v", added.Items)
	}
	if added.Totals.ItemCount != 3 || added.Totals.Subtotal != 29.97 {
		t.Fatalf("totals after add = %+v", added.Totals)
	}

	resp = api.do(t, http.MethodPatch, "/api/cart/items/2", `{"quantity":5}`)
	expectStatus(t, resp, http.StatusOK)
	if got := api.controller.Store().QuantityOf("2"); got != 5 {
		t.Fatalf("QuantityOf(2) = %d, want 5", got)
	}

	resp = api.do(t, http.MethodPost, "/api/cart/items", `{"product_id":1}`)
	expectStatus(t, resp, http.StatusOK)
	if got := api.controller.Store().QuantityOf("1"); got != 1 {
		t.Fatalf("QuantityOf(1) = %d, want 1", got)
	}

	resp = api.do(t, http.MethodDelete, "/api/cart/items/2", "")
	expectStatus(t, resp, http.StatusOK)
	if api.controller.Store().IsInCart("2") {
		t.Fatalf("product 2 still in cart after DELETE")
	}

	resp = api.do(t, http.MethodDelete, "/api/cart", "")
	expectStatus(t, resp, http.StatusOK)
	var cleared cartResponse
	decodeInto(t, resp, &cleared)
	if len(cleared.Items) != 0 || !api.controller.Store().IsEmpty() {
		t.Fatalf("after clear = %+v", cleared)
	}
	if got := api.kv.data[cart.DefaultStorageKey]; got != `{"items":[]}` {
		t.Fatalf("stored snapshot = %q", got)
	}
}

func TestAddItemErrors(t *testing.T) {
	testCases := []struct {
		name       string
		body       string
		wantStatus int
		wantCode   string
	}{
		{name: "malformed json", body: `{"product_id":`, wantStatus: http.StatusBadRequest, wantCode: "bad_request"},
		{name: "unknown field", body: `{"product_id":1,"qty":2}`, wantStatus: http.StatusBadRequest, wantCode: "bad_request"},
		{name: "missing product", body: `{"quantity":2}`, wantStatus: http.StatusBadRequest, wantCode: "bad_request"},
		{name: "empty catalog response", body: `{"product_id":999}`, wantStatus: http.StatusNotFound, wantCode: "not_found"},
		{name: "catalog 404", body: `{"product_id":42}`, wantStatus: http.StatusNotFound, wantCode: "not_found"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			api := setupAPI(t)

			resp := api.do(t, http.MethodPost, "/api/cart/items", tc.body)

			expectStatus(t, resp, tc.wantStatus)
			expectErrorCode(t, resp, tc.wantCode)
			if !api.controller.Store().IsEmpty() {
				t.Fatalf("cart changed on failed add")
			}
		})
	}
}

func TestUpdateItemValidation(t *testing.T) {
	api := setupAPI(t)

	resp := api.do(t, http.MethodPatch, "/api/cart/items/abc", `{"quantity":2}`)
	expectStatus(t, resp, http.StatusBadRequest)

	resp = api.do(t, http.MethodPatch, "/api/cart/items/1", `{}`)
	expectStatus(t, resp, http.StatusBadRequest)

	resp = api.do(t, http.MethodPatch, "/api/cart/items/7", `{"quantity":2}`)
	expectStatus(t, resp, http.StatusOK)
	if !api.controller.Store().IsEmpty() {
		t.Fatalf("update of unknown id should not add a line")
	}
}

func TestListProducts(t *testing.T) {
	api := setupAPI(t)

	testCases := []struct {
		target  string
		wantIDs []int64
	}{
		{target: "/api/products", wantIDs: []int64{1, 2}},
		{target: "/api/products?limit=1", wantIDs: []int64{1}},
		{target: "/api/products?category=jewelery", wantIDs: []int64{2}},
	}

	for _, tc := range testCases {
		resp := api.do(t, http.MethodGet, tc.target, "")
		expectStatus(t, resp, http.StatusOK)

		var products []struct {
			ID int64 `json:"id"`
		}
		decodeInto(t, resp, &products)
		if len(products) != len(tc.wantIDs) {
			t.Fatalf("GET %s returned %d products, want %d", tc.target, len(products), len(tc.wantIDs))
		}
		for i, p := range products {
			if p.ID != tc.wantIDs[i] {
				t.Fatalf("GET %s product[%d] = %d, want %d", tc.target, i, p.ID, tc.wantIDs[i])
			}
		}
	}

	resp := api.do(t, http.MethodGet, "/api/products?limit=-3", "")
	expectStatus(t, resp, http.StatusBadRequest)
}

func TestUpstreamFailureMapsToBadGateway(t *testing.T) {
	api := setupAPI(t)
	api.fetcher.errs["/products/categories"] = &catalogapi.StatusError{Path: "/products/categories", StatusCode: http.StatusServiceUnavailable}

	resp := api.do(t, http.MethodGet, "/api/categories", "")

	expectStatus(t, resp, http.StatusBadGateway)
	expectErrorCode(t, resp, "upstream_error")
}

func TestGetProductRecordsRecentlyViewed(t *testing.T) {
	api := setupAPI(t)

	expectStatus(t, api.do(t, http.MethodGet, "/api/products/1", ""), http.StatusOK)
	expectStatus(t, api.do(t, http.MethodGet, "/api/products/2", ""), http.StatusOK)
	expectStatus(t, api.do(t, http.MethodGet, "/api/products/1", ""), http.StatusOK)
	expectStatus(t, api.do(t, http.MethodGet, "/api/products/zero", ""), http.StatusBadRequest)

	resp := api.do(t, http.MethodGet, "/api/recently-viewed", "")
	expectStatus(t, resp, http.StatusOK)
	var recent recentlyViewedResponse
	decodeInto(t, resp, &recent)
	if len(recent.Items) != 2 || recent.Items[0].ID != 1 || recent.Items[1].ID != 2 {
		t.Fatalf("recently viewed = %+v", recent.Items)
	}

	resp = api.do(t, http.MethodDelete, "/api/recently-viewed", "")
	expectStatus(t, resp, http.StatusOK)
	if !strings.Contains(resp.Body.String(), `"items":[]`) {
		t.Fatalf("clear body = %s", resp.Body.String())
	}
}

func TestPreferencesEndpoints(t *testing.T) {
	api := setupAPI(t)

	resp := api.do(t, http.MethodGet, "/api/preferences", "")
	expectStatus(t, resp, http.StatusOK)
	var prefs shopper.Preferences
	decodeInto(t, resp, &prefs)
	if prefs != shopper.DefaultPreferences() {
		t.Fatalf("preferences = %+v", prefs)
	}

	resp = api.do(t, http.MethodPatch, "/api/preferences", `{"theme":"dark","itemsPerPage":40}`)
	expectStatus(t, resp, http.StatusOK)
	decodeInto(t, resp, &prefs)
	if prefs.Theme != "dark" || prefs.ItemsPerPage != 40 {
		t.Fatalf("patched preferences = %+v", prefs)
	}

	resp = api.do(t, http.MethodPatch, "/api/preferences", `{"theme":"neon"}`)
	expectStatus(t, resp, http.StatusBadRequest)
	expectErrorCode(t, resp, "bad_request")

	resp = api.do(t, http.MethodPatch, "/api/preferences", `{"theme":true}`)
	expectStatus(t, resp, http.StatusBadRequest)

	resp = api.do(t, http.MethodDelete, "/api/preferences", "")
	expectStatus(t, resp, http.StatusOK)
	decodeInto(t, resp, &prefs)
	if prefs != shopper.DefaultPreferences() {
		t.Fatalf("reset preferences = %+v", prefs)
	}
}

func TestUnknownRouteAndMethod(t *testing.T) {
	api := setupAPI(t)

	resp := api.do(t, http.MethodGet, "/api/nope", "")
	expectStatus(t, resp, http.StatusNotFound)
	expectErrorCode(t, resp, "not_found")

	resp = api.do(t, http.MethodPut, "/api/preferences", `{}`)
	expectStatus(t, resp, http.StatusMethodNotAllowed)
	expectErrorCode(t, resp, "method_not_allowed")
}

func TestClassify(t *testing.T) {
	testCases := []struct {
		err        error
		wantStatus int
	}{
		{err: catalog.ErrProductNotFound, wantStatus: http.StatusNotFound},
		{err: errors.Join(errBadRequest, errors.New("x")), wantStatus: http.StatusBadRequest},
		{err: shopper.ErrUnknownPreference, wantStatus: http.StatusBadRequest},
		{err: catalogapi.ErrInvalidPayload, wantStatus: http.StatusBadGateway},
		{err: catalog.ErrEmptyPayload, wantStatus: http.StatusBadGateway},
		{err: context.DeadlineExceeded, wantStatus: http.StatusGatewayTimeout},
		{err: errors.New("boom"), wantStatus: http.StatusInternalServerError},
	}

	for _, tc := range testCases {
		if got, _ := classify(tc.err); got != tc.wantStatus {
			t.Fatalf("classify(%v) = %d, want %d", tc.err, got, tc.wantStatus)
		}
	}
}

func TestInvalidateCatalogCache(t *testing.T) {
	api := setupAPI(t)

	expectStatus(t, api.do(t, http.MethodGet, "/api/categories", ""), http.StatusOK)
	api.fetcher.responses["/products/categories"] = `["books"]`

	resp := api.do(t, http.MethodGet, "/api/categories", "")
	if strings.Contains(resp.Body.String(), "books") {
		t.Fatalf("categories served fresh before invalidation: %s", resp.Body.String())
	}

	expectStatus(t, api.do(t, http.MethodDelete, "/api/catalog/cache", ""), http.StatusNoContent)

	resp = api.do(t, http.MethodGet, "/api/categories", "")
	if !strings.Contains(resp.Body.String(), "books") {
		t.Fatalf("categories after invalidation = %s", resp.Body.String())
	}
}
