package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/storefront/internal/cart"
	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/domain/domaintest"
	"github.com/utafrali/storefront/internal/session"
	"github.com/utafrali/storefront/internal/source"
	"github.com/utafrali/storefront/internal/storage"
	"github.com/utafrali/storefront/internal/storage/memory"
	"github.com/utafrali/storefront/pkg/health"
	"github.com/utafrali/storefront/pkg/logger"
	"github.com/utafrali/storefront/pkg/middleware"
)

// ============================================================================
// Test helpers
// ============================================================================

type testServer struct {
	router  http.Handler
	loader  *source.Loader
	backend *memory.Backend
}

func newTestServer(t *testing.T, fetch source.FetchFunc) *testServer {
	t.Helper()
	loader := source.NewLoader(fetch, logger.Discard())
	loader.Load(context.Background())
	return newServerWithLoader(t, loader)
}

func newServerWithLoader(t *testing.T, loader *source.Loader) *testServer {
	t.Helper()
	l := logger.Discard()
	b := memory.New()
	store := storage.New(b, "", l)
	registry := session.NewRegistry(loader, store, nil, session.Config{PageSize: 2}, l)

	hh := health.NewHandler()
	hh.RegisterCritical("storage", store.Ping)

	h := NewHandler(registry, loader, domain.DefaultTopRatedThreshold, l)
	return &testServer{
		router:  NewRouter(h, hh, middleware.DefaultCORSConfig(), l),
		loader:  loader,
		backend: b,
	}
}

func fixtures(context.Context) ([]domain.Product, error) {
	return domaintest.Products(), nil
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Fields  map[string]string `json:"fields"`
	} `json:"error"`
}

func (s *testServer) do(t *testing.T, method, path, sessionID string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if sessionID != "" {
		req.Header.Set(middleware.SessionHeader, sessionID)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	var env envelope
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec, env
}

func decode[T any](t *testing.T, env envelope) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(env.Data, &v))
	return v
}

// ============================================================================
// Session
// ============================================================================

func TestSession_GeneratedWhenMissing(t *testing.T) {
	s := newTestServer(t, fixtures)

	rec, _ := s.do(t, http.MethodGet, "/api/v1/cart", "", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(middleware.SessionHeader))
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
}

func TestSession_InvalidID(t *testing.T) {
	s := newTestServer(t, fixtures)

	rec, env := s.do(t, http.MethodGet, "/api/v1/cart", "bad id!", nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_SESSION", env.Error.Code)
}

// ============================================================================
// Catalogue
// ============================================================================

func TestCatalogue_Get(t *testing.T) {
	s := newTestServer(t, fixtures)

	rec, env := s.do(t, http.MethodGet, "/api/v1/catalogue", "s1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[CatalogueResponse](t, env)
	assert.Len(t, resp.Products, 2)
	assert.Equal(t, 5, resp.TotalCount)
	assert.True(t, resp.HasMore)
	assert.False(t, resp.Loading)
	assert.Equal(t, "£109.95", resp.Products[0].FormattedPrice)
	assert.False(t, resp.Products[0].TopRated)
	assert.Len(t, resp.Categories, 4)
}

func TestCatalogue_FilterSortAndMore(t *testing.T) {
	s := newTestServer(t, fixtures)

	_, env := s.do(t, http.MethodPut, "/api/v1/catalogue/sort", "s1", SetSortRequest{Sort: "price-asc"})
	resp := decode[CatalogueResponse](t, env)
	assert.Equal(t, 18, resp.Products[0].ID)

	_, env = s.do(t, http.MethodPost, "/api/v1/catalogue/more", "s1", nil)
	resp = decode[CatalogueResponse](t, env)
	assert.Len(t, resp.Products, 4)
	assert.Equal(t, 4, resp.Filters.VisibleLimit)

	_, env = s.do(t, http.MethodPut, "/api/v1/catalogue/category", "s1", SetCategoryRequest{Category: "men's clothing"})
	resp = decode[CatalogueResponse](t, env)
	assert.Equal(t, 2, resp.TotalCount)
	assert.Equal(t, 2, resp.Filters.VisibleLimit)
	assert.Equal(t, []int{2, 1}, []int{resp.Products[0].ID, resp.Products[1].ID})

	_, env = s.do(t, http.MethodPut, "/api/v1/catalogue/search", "s1", SetSearchRequest{Query: "BACKPACK"})
	resp = decode[CatalogueResponse](t, env)
	require.Len(t, resp.Products, 1)
	assert.Equal(t, 1, resp.Products[0].ID)

	_, env = s.do(t, http.MethodPost, "/api/v1/catalogue/reset", "s1", nil)
	resp = decode[CatalogueResponse](t, env)
	assert.Equal(t, 5, resp.TotalCount)
	assert.Equal(t, domain.CategoryAll, resp.Filters.Category)
}

func TestCatalogue_FiltersArePerSession(t *testing.T) {
	s := newTestServer(t, fixtures)

	s.do(t, http.MethodPut, "/api/v1/catalogue/category", "a", SetCategoryRequest{Category: "jewelery"})
	_, env := s.do(t, http.MethodGet, "/api/v1/catalogue", "b", nil)

	assert.Equal(t, 5, decode[CatalogueResponse](t, env).TotalCount)
}

func TestCatalogue_InvalidSort(t *testing.T) {
	s := newTestServer(t, fixtures)

	rec, env := s.do(t, http.MethodPut, "/api/v1/catalogue/sort", "s1", SetSortRequest{Sort: "newest"})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
	assert.Contains(t, env.Error.Fields, "sort")
}

func TestCatalogue_EmptyCategoryMatchesNothing(t *testing.T) {
	s := newTestServer(t, fixtures)

	rec, env := s.do(t, http.MethodPut, "/api/v1/catalogue/category", "s1", SetCategoryRequest{Category: ""})
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[CatalogueResponse](t, env)
	assert.Empty(t, resp.Products)
	assert.Equal(t, 0, resp.TotalCount)
	assert.Equal(t, "", resp.Filters.Category)
}

func TestCatalogue_RejectsNonJSONBody(t *testing.T) {
	s := newTestServer(t, fixtures)
	req := httptest.NewRequest(http.MethodPut, "/api/v1/catalogue/search", strings.NewReader("query=x"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()

	s.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}

func TestCatalogue_Categories(t *testing.T) {
	s := newTestServer(t, fixtures)

	_, env := s.do(t, http.MethodGet, "/api/v1/catalogue/categories", "s1", nil)

	assert.Equal(t, []string{"electronics", "jewelery", "men's clothing", "women's clothing"}, decode[[]string](t, env))
}

// ============================================================================
// Products
// ============================================================================

func TestProducts_GetByID(t *testing.T) {
	s := newTestServer(t, fixtures)

	rec, env := s.do(t, http.MethodGet, "/api/v1/products/11", "s1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "public, max-age=60", rec.Header().Get("Cache-Control"))

	p := decode[ProductDetail](t, env)
	assert.Equal(t, 11, p.ID)
	assert.True(t, p.TopRated)
	assert.Equal(t, "£109.00", p.FormattedPrice)
}

func TestProducts_GetByID_Errors(t *testing.T) {
	s := newTestServer(t, fixtures)

	rec, env := s.do(t, http.MethodGet, "/api/v1/products/404", "s1", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)

	rec, env = s.do(t, http.MethodGet, "/api/v1/products/abc", "s1", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_PARAMETER", env.Error.Code)
}

func TestProducts_LookupBeforeFirstLoad(t *testing.T) {
	s := newServerWithLoader(t, source.NewLoader(source.FetchFunc(fixtures), logger.Discard()))

	rec, env := s.do(t, http.MethodGet, "/api/v1/products/1", "s1", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "SERVICE_UNAVAILABLE", env.Error.Code)

	rec, _ = s.do(t, http.MethodPost, "/api/v1/cart/items", "s1", AddItemRequest{ProductID: 1})
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestProducts_FailureAndRetry(t *testing.T) {
	fail := true
	s := newTestServer(t, func(context.Context) ([]domain.Product, error) {
		if fail {
			return nil, errors.New("failed to fetch products: 500 Internal Server Error")
		}
		return domaintest.Products(), nil
	})

	_, env := s.do(t, http.MethodGet, "/api/v1/catalogue", "s1", nil)
	resp := decode[CatalogueResponse](t, env)
	assert.Equal(t, "failed to fetch products: 500 Internal Server Error", resp.Error)
	assert.Empty(t, resp.Products)

	fail = false
	_, env = s.do(t, http.MethodPost, "/api/v1/products/retry", "s1", nil)
	state := decode[source.State](t, env)
	assert.Empty(t, state.Error)
	assert.Len(t, state.Products, 5)

	_, env = s.do(t, http.MethodGet, "/api/v1/catalogue", "s1", nil)
	assert.Equal(t, 5, decode[CatalogueResponse](t, env).TotalCount)
}

// ============================================================================
// Cart
// ============================================================================

func TestCart_Lifecycle(t *testing.T) {
	s := newTestServer(t, fixtures)

	s.do(t, http.MethodPost, "/api/v1/cart/items", "s1", AddItemRequest{ProductID: 1})
	_, env := s.do(t, http.MethodPost, "/api/v1/cart/items", "s1", AddItemRequest{ProductID: 1})
	c := decode[CartResponse](t, env)
	require.Len(t, c.Items, 1)
	assert.Equal(t, 2, c.Items[0].Quantity)
	assert.Equal(t, "219.90", c.TotalPrice)
	assert.Equal(t, "£219.90", c.FormattedTotal)

	qty := 3
	_, env = s.do(t, http.MethodPut, "/api/v1/cart/items/1", "s1", UpdateQuantityRequest{Quantity: &qty})
	c = decode[CartResponse](t, env)
	assert.Equal(t, 3, c.TotalItems)

	_, env = s.do(t, http.MethodGet, "/api/v1/catalogue", "s1", nil)
	assert.Equal(t, 3, decode[CatalogueResponse](t, env).Products[0].CartQuantity)

	zero := 0
	_, env = s.do(t, http.MethodPut, "/api/v1/cart/items/1", "s1", UpdateQuantityRequest{Quantity: &zero})
	assert.Empty(t, decode[CartResponse](t, env).Items)

	raw, err := s.backend.Load(context.Background(), "ee-plp:s1:cart")
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(raw))
}

func TestCart_RemoveAndClear(t *testing.T) {
	s := newTestServer(t, fixtures)
	s.do(t, http.MethodPost, "/api/v1/cart/items", "s1", AddItemRequest{ProductID: 1})
	s.do(t, http.MethodPost, "/api/v1/cart/items", "s1", AddItemRequest{ProductID: 5})

	_, env := s.do(t, http.MethodDelete, "/api/v1/cart/items/1", "s1", nil)
	assert.Equal(t, 1, decode[CartResponse](t, env).TotalItems)

	_, env = s.do(t, http.MethodDelete, "/api/v1/cart", "s1", nil)
	c := decode[CartResponse](t, env)
	assert.Equal(t, 0, c.TotalItems)
	assert.Equal(t, "0.00", c.TotalPrice)
}

func TestCart_AddUnknownProduct(t *testing.T) {
	s := newTestServer(t, fixtures)

	rec, env := s.do(t, http.MethodPost, "/api/v1/cart/items", "s1", AddItemRequest{ProductID: 999})

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)
}

func TestCart_ValidationErrors(t *testing.T) {
	s := newTestServer(t, fixtures)

	rec, env := s.do(t, http.MethodPost, "/api/v1/cart/items", "s1", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)

	rec, env = s.do(t, http.MethodPut, "/api/v1/cart/items/1", "s1", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, env.Error.Fields, "quantity")

	over := 100
	rec, env = s.do(t, http.MethodPut, "/api/v1/cart/items/1", "s1", UpdateQuantityRequest{Quantity: &over})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
	assert.Contains(t, env.Error.Fields, "quantity")
}

func TestCart_UpdateQuantityAtMax(t *testing.T) {
	s := newTestServer(t, fixtures)
	s.do(t, http.MethodPost, "/api/v1/cart/items", "s1", AddItemRequest{ProductID: 1})

	maxQty := cart.MaxQuantity
	rec, env := s.do(t, http.MethodPut, "/api/v1/cart/items/1", "s1", UpdateQuantityRequest{Quantity: &maxQty})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, cart.MaxQuantity, decode[CartResponse](t, env).TotalItems)

	_, env = s.do(t, http.MethodPost, "/api/v1/cart/items", "s1", AddItemRequest{ProductID: 1})
	assert.Equal(t, cart.MaxQuantity, decode[CartResponse](t, env).TotalItems)
}

// ============================================================================
// Wishlist
// ============================================================================

func TestWishlist_ToggleRemoveClear(t *testing.T) {
	s := newTestServer(t, fixtures)

	_, env := s.do(t, http.MethodPost, "/api/v1/wishlist/toggle", "s1", ToggleRequest{ProductID: 5})
	tr := decode[ToggleResponse](t, env)
	assert.True(t, tr.Added)
	assert.Equal(t, 1, tr.Wishlist.TotalItems)
	assert.True(t, tr.Wishlist.Items[0].InWishlist)

	_, env = s.do(t, http.MethodPost, "/api/v1/wishlist/toggle", "s1", ToggleRequest{ProductID: 5})
	tr = decode[ToggleResponse](t, env)
	assert.False(t, tr.Added)
	assert.Equal(t, 0, tr.Wishlist.TotalItems)

	s.do(t, http.MethodPost, "/api/v1/wishlist/toggle", "s1", ToggleRequest{ProductID: 1})
	s.do(t, http.MethodPost, "/api/v1/wishlist/toggle", "s1", ToggleRequest{ProductID: 2})
	_, env = s.do(t, http.MethodDelete, "/api/v1/wishlist/items/1", "s1", nil)
	assert.Equal(t, 1, decode[WishlistResponse](t, env).TotalItems)

	_, env = s.do(t, http.MethodDelete, "/api/v1/wishlist", "s1", nil)
	assert.Equal(t, 0, decode[WishlistResponse](t, env).TotalItems)

	_, env = s.do(t, http.MethodGet, "/api/v1/wishlist", "s1", nil)
	assert.Empty(t, decode[WishlistResponse](t, env).Items)
}

// ============================================================================
// Health / metrics
// ============================================================================

func TestHealthAndMetrics(t *testing.T) {
	s := newTestServer(t, fixtures)

	rec, _ := s.do(t, http.MethodGet, "/health/live", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = s.do(t, http.MethodGet, "/health/ready", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	mrec := httptest.NewRecorder()
	s.router.ServeHTTP(mrec, req)
	assert.Equal(t, http.StatusOK, mrec.Code)
	assert.Contains(t, mrec.Body.String(), "http_requests_total")
}
