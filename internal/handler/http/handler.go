package http

import (
	"log/slog"
	"net/http"

	"github.com/utafrali/storefront/internal/catalogue"
	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/session"
	"github.com/utafrali/storefront/internal/source"
	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/logger"
	"github.com/utafrali/storefront/pkg/money"
)

// Handler serves the storefront API for the session named by the request.
type Handler struct {
	sessions          *session.Registry
	loader            *source.Loader
	topRatedThreshold float64
	logger            *slog.Logger
}

// NewHandler creates the storefront HTTP handler.
func NewHandler(sessions *session.Registry, loader *source.Loader, topRatedThreshold float64, logger *slog.Logger) *Handler {
	return &Handler{
		sessions:          sessions,
		loader:            loader,
		topRatedThreshold: topRatedThreshold,
		logger:            logger,
	}
}

// session returns the session resolved by the Session middleware.
func (h *Handler) session(r *http.Request) *session.Session {
	return h.sessions.Get(r.Context(), logger.SessionIDFromContext(r.Context()))
}

// product looks id up in the loaded collection. Lookups made before the
// first load completes are reported as unavailable rather than missing.
func (h *Handler) product(s *session.Session, id int) (domain.Product, error) {
	if p, ok := s.Catalogue.ProductByID(id); ok {
		return p, nil
	}
	if st := h.loader.State(); st.Loading && len(st.Products) == 0 {
		return domain.Product{}, apperrors.Unavailable("products are still loading")
	}
	return domain.Product{}, apperrors.NotFound("product", id)
}

// --- Response DTOs ---

// ProductDetail is a product with its presentation fields.
type ProductDetail struct {
	domain.Product
	FormattedPrice string `json:"formatted_price"`
	TopRated       bool   `json:"top_rated"`
}

// ProductResponse is a product card: the detail plus per-session state.
type ProductResponse struct {
	ProductDetail
	CartQuantity int  `json:"cart_quantity"`
	InWishlist   bool `json:"in_wishlist"`
}

// CatalogueResponse is the catalogue view plus the product feed status.
type CatalogueResponse struct {
	Products     []ProductResponse  `json:"products"`
	TotalCount   int                `json:"total_count"`
	VisibleCount int                `json:"visible_count"`
	HasMore      bool               `json:"has_more"`
	Categories   []string           `json:"categories"`
	Filters      domain.FilterState `json:"filters"`
	Loading      bool               `json:"loading"`
	Error        string             `json:"error,omitempty"`
}

// CartEntryResponse is one cart line.
type CartEntryResponse struct {
	Product        domain.Product `json:"product"`
	Quantity       int            `json:"quantity"`
	LineTotal      string         `json:"line_total"`
	FormattedTotal string         `json:"formatted_total"`
}

// CartResponse is the cart with its aggregates.
type CartResponse struct {
	Items          []CartEntryResponse `json:"items"`
	TotalItems     int                 `json:"total_items"`
	TotalPrice     string              `json:"total_price"`
	FormattedTotal string              `json:"formatted_total"`
}

// WishlistResponse is the wishlist with its size.
type WishlistResponse struct {
	Items      []ProductResponse `json:"items"`
	TotalItems int               `json:"total_items"`
}

func (h *Handler) productDetail(p domain.Product) ProductDetail {
	return ProductDetail{
		Product:        p,
		FormattedPrice: money.FormatPrice(p.UnitPrice()),
		TopRated:       p.IsTopRated(h.topRatedThreshold),
	}
}

func (h *Handler) productCard(s *session.Session, p domain.Product) ProductResponse {
	return ProductResponse{
		ProductDetail: h.productDetail(p),
		CartQuantity:  s.Cart.GetItemQuantity(p.ID),
		InWishlist:    s.Wishlist.IsInWishlist(p.ID),
	}
}

func (h *Handler) catalogueResponse(s *session.Session, v catalogue.View) CatalogueResponse {
	cards := make([]ProductResponse, len(v.Products))
	for i, p := range v.Products {
		cards[i] = h.productCard(s, p)
	}
	state := h.loader.State()
	return CatalogueResponse{
		Products:     cards,
		TotalCount:   v.TotalCount,
		VisibleCount: v.VisibleCount,
		HasMore:      v.HasMore,
		Categories:   v.Categories,
		Filters:      v.Filters,
		Loading:      state.Loading,
		Error:        state.Error,
	}
}

func cartResponse(s *session.Session) CartResponse {
	entries := s.Cart.Items()
	items := make([]CartEntryResponse, len(entries))
	for i, e := range entries {
		line := e.LineTotal()
		items[i] = CartEntryResponse{
			Product:        e.Product,
			Quantity:       e.Quantity,
			LineTotal:      line.StringFixed(2),
			FormattedTotal: money.FormatPrice(line),
		}
	}
	total := domain.TotalAmount(entries)
	return CartResponse{
		Items:          items,
		TotalItems:     domain.ItemCount(entries),
		TotalPrice:     total.StringFixed(2),
		FormattedTotal: money.FormatPrice(total),
	}
}

func (h *Handler) wishlistResponse(s *session.Session) WishlistResponse {
	products := s.Wishlist.Items()
	cards := make([]ProductResponse, len(products))
	for i, p := range products {
		cards[i] = h.productCard(s, p)
	}
	return WishlistResponse{Items: cards, TotalItems: len(cards)}
}
