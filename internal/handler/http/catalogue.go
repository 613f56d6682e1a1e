package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/utafrali/storefront/internal/domain"
	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/httputil"
	"github.com/utafrali/storefront/pkg/validator"
)

// --- Request DTOs ---

func init() {
	validator.RegisterString("sort_option", "must be a supported sort option", func(s string) bool {
		return domain.SortOption(s).IsValid()
	})
}

// SetCategoryRequest selects a category, or "all". Unknown and empty
// categories are accepted and match nothing.
type SetCategoryRequest struct {
	Category string `json:"category" validate:"max=100"`
}

// SetSearchRequest sets the search query. An empty query clears it.
type SetSearchRequest struct {
	Query string `json:"query" validate:"max=200"`
}

// SetSortRequest selects the sort order.
type SetSortRequest struct {
	Sort string `json:"sort" validate:"required,sort_option"`
}

// --- Handlers ---

// GetCatalogue handles GET /api/v1/catalogue
func (h *Handler) GetCatalogue(w http.ResponseWriter, r *http.Request) {
	s := h.session(r)
	httputil.WriteData(w, http.StatusOK, h.catalogueResponse(s, s.Catalogue.View()))
}

// SetCategory handles PUT /api/v1/catalogue/category
func (h *Handler) SetCategory(w http.ResponseWriter, r *http.Request) {
	var req SetCategoryRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}
	s := h.session(r)
	s.Catalogue.SetCategory(req.Category)
	httputil.WriteData(w, http.StatusOK, h.catalogueResponse(s, s.Catalogue.View()))
}

// SetSearch handles PUT /api/v1/catalogue/search
func (h *Handler) SetSearch(w http.ResponseWriter, r *http.Request) {
	var req SetSearchRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}
	s := h.session(r)
	s.Catalogue.SetSearchQuery(req.Query)
	httputil.WriteData(w, http.StatusOK, h.catalogueResponse(s, s.Catalogue.View()))
}

// SetSort handles PUT /api/v1/catalogue/sort
func (h *Handler) SetSort(w http.ResponseWriter, r *http.Request) {
	var req SetSortRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}
	s := h.session(r)
	s.Catalogue.SetSortOption(domain.SortOption(req.Sort))
	httputil.WriteData(w, http.StatusOK, h.catalogueResponse(s, s.Catalogue.View()))
}

// LoadMore handles POST /api/v1/catalogue/more
func (h *Handler) LoadMore(w http.ResponseWriter, r *http.Request) {
	s := h.session(r)
	s.Catalogue.LoadMore()
	httputil.WriteData(w, http.StatusOK, h.catalogueResponse(s, s.Catalogue.View()))
}

// ResetFilters handles POST /api/v1/catalogue/reset
func (h *Handler) ResetFilters(w http.ResponseWriter, r *http.Request) {
	s := h.session(r)
	s.Catalogue.ResetFilters()
	httputil.WriteData(w, http.StatusOK, h.catalogueResponse(s, s.Catalogue.View()))
}

// GetCategories handles GET /api/v1/catalogue/categories
func (h *Handler) GetCategories(w http.ResponseWriter, r *http.Request) {
	httputil.WriteData(w, http.StatusOK, h.session(r).Catalogue.Categories())
}

// GetProduct handles GET /api/v1/products/{id}
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	p, err := h.product(h.session(r), id)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, h.productDetail(p))
}

// GetProducts handles GET /api/v1/products: the product feed status.
func (h *Handler) GetProducts(w http.ResponseWriter, r *http.Request) {
	httputil.WriteData(w, http.StatusOK, h.loader.State())
}

// RetryProducts handles POST /api/v1/products/retry
func (h *Handler) RetryProducts(w http.ResponseWriter, r *http.Request) {
	httputil.WriteData(w, http.StatusOK, h.loader.Retry(r.Context()))
}
