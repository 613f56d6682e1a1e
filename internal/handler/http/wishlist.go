package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/utafrali/storefront/pkg/httputil"
	"github.com/utafrali/storefront/pkg/validator"
)

// ToggleRequest toggles a loaded product in the wishlist.
type ToggleRequest struct {
	ProductID int `json:"product_id" validate:"required,gt=0"`
}

// ToggleResponse reports the membership after a toggle.
type ToggleResponse struct {
	Added    bool             `json:"added"`
	Wishlist WishlistResponse `json:"wishlist"`
}

// GetWishlist handles GET /api/v1/wishlist
func (h *Handler) GetWishlist(w http.ResponseWriter, r *http.Request) {
	httputil.WriteData(w, http.StatusOK, h.wishlistResponse(h.session(r)))
}

// ToggleWishlist handles POST /api/v1/wishlist/toggle
func (h *Handler) ToggleWishlist(w http.ResponseWriter, r *http.Request) {
	var req ToggleRequest
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
	added := s.Wishlist.ToggleWishlistItem(r.Context(), p)
	httputil.WriteData(w, http.StatusOK, ToggleResponse{Added: added, Wishlist: h.wishlistResponse(s)})
}

// RemoveWishlistItem handles DELETE /api/v1/wishlist/items/{productId}
func (h *Handler) RemoveWishlistItem(w http.ResponseWriter, r *http.Request) {
	productID, ok := httputil.ParseID(w, chi.URLParam(r, "productId"))
	if !ok {
		return
	}

	s := h.session(r)
	s.Wishlist.RemoveWishlistItem(r.Context(), productID)
	httputil.WriteData(w, http.StatusOK, h.wishlistResponse(s))
}

// ClearWishlist handles DELETE /api/v1/wishlist
func (h *Handler) ClearWishlist(w http.ResponseWriter, r *http.Request) {
	s := h.session(r)
	s.Wishlist.ClearWishlist(r.Context())
	httputil.WriteData(w, http.StatusOK, h.wishlistResponse(s))
}
