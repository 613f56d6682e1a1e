package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/utafrali/storefront/pkg/httputil"
	"github.com/utafrali/storefront/pkg/validator"
)

// AddItemRequest adds one unit of a loaded product to the cart.
type AddItemRequest struct {
	ProductID int `json:"product_id" validate:"required,gt=0"`
}

// UpdateQuantityRequest sets a cart quantity. Zero or less removes the line;
// the upper bound matches cart.MaxQuantity.
type UpdateQuantityRequest struct {
	Quantity *int `json:"quantity" validate:"required,lte=99"`
}

// GetCart handles GET /api/v1/cart
func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	httputil.WriteData(w, http.StatusOK, cartResponse(h.session(r)))
}

// AddItem handles POST /api/v1/cart/items
func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	s := h.session(r)
	p, err := h.product(s, req.ProductID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	s.Cart.AddItem(r.Context(), p)
	httputil.WriteData(w, http.StatusOK, cartResponse(s))
}

// UpdateItemQuantity handles PUT /api/v1/cart/items/{productId}
func (h *Handler) UpdateItemQuantity(w http.ResponseWriter, r *http.Request) {
	productID, ok := httputil.ParseID(w, chi.URLParam(r, "productId"))
	if !ok {
		return
	}

	var req UpdateQuantityRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	s := h.session(r)
	s.Cart.UpdateQuantity(r.Context(), productID, *req.Quantity)
	httputil.WriteData(w, http.StatusOK, cartResponse(s))
}

// RemoveItem handles DELETE /api/v1/cart/items/{productId}
func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	productID, ok := httputil.ParseID(w, chi.URLParam(r, "productId"))
	if !ok {
		return
	}

	s := h.session(r)
	s.Cart.RemoveItem(r.Context(), productID)
	httputil.WriteData(w, http.StatusOK, cartResponse(s))
}

// ClearCart handles DELETE /api/v1/cart
func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request) {
	s := h.session(r)
	s.Cart.ClearCart(r.Context())
	httputil.WriteData(w, http.StatusOK, cartResponse(s))
}
