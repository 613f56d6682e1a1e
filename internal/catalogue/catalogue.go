// Package catalogue implements the catalogue view: category and search
// filters, sort order and a load-more window over a product collection.
// Every read is recomputed from the current products and filter state.
package catalogue

import (
	"cmp"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/pkg/logger"
	"github.com/utafrali/storefront/pkg/pagination"
)

// DefaultPageSize is the number of products revealed per page.
const DefaultPageSize = 8

// ProductSource supplies the raw collection. The engine never modifies it.
type ProductSource interface {
	Products() []domain.Product
}

// Static is a fixed product collection.
type Static []domain.Product

// Products returns the collection.
func (s Static) Products() []domain.Product { return s }

// View is a consistent snapshot of every derived read.
type View struct {
	Products     []domain.Product   `json:"products"`
	TotalCount   int                `json:"total_count"`
	VisibleCount int                `json:"visible_count"`
	HasMore      bool               `json:"has_more"`
	Categories   []string           `json:"categories"`
	Filters      domain.FilterState `json:"filters"`
}

// Option configures an Engine.
type Option func(*Engine)

// WithPageSize sets the load-more increment. Values below 1 become 1.
func WithPageSize(n int) Option {
	return func(e *Engine) { e.window = pagination.NewWindow(n) }
}

// WithLocale sets the language used for name ordering.
func WithLocale(tag language.Tag) Option {
	return func(e *Engine) { e.locale = tag }
}

// WithLogger sets the engine's logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// Engine owns the filter state of one catalogue view.
type Engine struct {
	mu       sync.RWMutex
	source   ProductSource
	category string
	query    string
	sort     domain.SortOption
	window   pagination.Window
	locale   language.Tag
	logger   *slog.Logger
}

// New creates an engine over source with default filters.
func New(source ProductSource, opts ...Option) *Engine {
	e := &Engine{
		source:   source,
		category: domain.CategoryAll,
		sort:     domain.SortDefault,
		window:   pagination.NewWindow(DefaultPageSize),
		locale:   language.English,
		logger:   logger.Discard(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// SetCategory filters by an exact category label, or clears the filter for
// domain.CategoryAll.
func (e *Engine) SetCategory(category string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.category = category
	e.window = e.window.Reset()
	e.logger.Debug("catalogue category set", slog.String("category", category))
}

// SetSearchQuery replaces the free-text query.
func (e *Engine) SetSearchQuery(query string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.query = query
	e.window = e.window.Reset()
	e.logger.Debug("catalogue search set", slog.String("query", query))
}

// SetSortOption replaces the sort order.
func (e *Engine) SetSortOption(option domain.SortOption) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.sort = option
	e.window = e.window.Reset()
	e.logger.Debug("catalogue sort set", slog.String("sort", string(option)))
}

// LoadMore reveals one more page.
func (e *Engine) LoadMore() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.window = e.window.Grow()
}

// ResetFilters restores every filter to its default.
func (e *Engine) ResetFilters() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.category = domain.CategoryAll
	e.query = ""
	e.sort = domain.SortDefault
	e.window = e.window.Reset()
	e.logger.Debug("catalogue filters reset")
}

// Filters returns the current filter state.
func (e *Engine) Filters() domain.FilterState {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.filters()
}

func (e *Engine) filters() domain.FilterState {
	return domain.FilterState{
		Category:     e.category,
		SearchQuery:  e.query,
		Sort:         e.sort,
		VisibleLimit: e.window.Limit(),
	}
}

// FilteredProducts returns every product passing the filters, sorted.
func (e *Engine) FilteredProducts() []domain.Product {
	e.mu.RLock()
	f := e.filters()
	e.mu.RUnlock()
	return Filter(e.source.Products(), f, e.locale)
}

// VisibleProducts returns the revealed prefix of FilteredProducts.
func (e *Engine) VisibleProducts() []domain.Product {
	return e.View().Products
}

// HasMore reports whether products remain beyond the window.
func (e *Engine) HasMore() bool {
	return e.View().HasMore
}

// TotalCount returns the number of filtered products.
func (e *Engine) TotalCount() int {
	return len(e.FilteredProducts())
}

// Categories returns the distinct categories of the raw collection.
func (e *Engine) Categories() []string {
	return Categories(e.source.Products())
}

// ProductByID looks up a product in the raw collection, ignoring filters.
func (e *Engine) ProductByID(id int) (domain.Product, bool) {
	return domain.FindProduct(e.source.Products(), id)
}

// View computes every derived read from a single filter snapshot.
func (e *Engine) View() View {
	e.mu.RLock()
	f := e.filters()
	w := e.window
	e.mu.RUnlock()

	raw := e.source.Products()
	filtered := Filter(raw, f, e.locale)
	visible := pagination.Apply(filtered, w)

	return View{
		Products:     visible,
		TotalCount:   len(filtered),
		VisibleCount: len(visible),
		HasMore:      w.HasMore(len(filtered)),
		Categories:   Categories(raw),
		Filters:      f,
	}
}

// Filter applies category, search and sort to products without modifying
// them. Unknown sort options keep source order.
func Filter(products []domain.Product, f domain.FilterState, locale language.Tag) []domain.Product {
	query := strings.ToLower(strings.TrimSpace(f.SearchQuery))

	out := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if f.Category != domain.CategoryAll && p.Category != f.Category {
			continue
		}
		if query != "" && !matches(p, query) {
			continue
		}
		out = append(out, p)
	}

	sortProducts(out, f.Sort, locale)
	return out
}

func matches(p domain.Product, query string) bool {
	return strings.Contains(strings.ToLower(p.Title), query) ||
		strings.Contains(strings.ToLower(p.Description), query)
}

// sortProducts orders products in place. The sort is stable.
func sortProducts(products []domain.Product, option domain.SortOption, locale language.Tag) {
	switch option {
	case domain.SortPriceAsc:
		slices.SortStableFunc(products, func(a, b domain.Product) int {
			return cmp.Compare(a.Price, b.Price)
		})
	case domain.SortPriceDesc:
		slices.SortStableFunc(products, func(a, b domain.Product) int {
			return cmp.Compare(b.Price, a.Price)
		})
	case domain.SortRatingDesc:
		slices.SortStableFunc(products, func(a, b domain.Product) int {
			return cmp.Compare(b.Rating.Rate, a.Rating.Rate)
		})
	case domain.SortNameAsc:
		// Collators keep internal buffers and are not safe to share.
		c := collate.New(locale)
		slices.SortStableFunc(products, func(a, b domain.Product) int {
			return c.CompareString(a.Title, b.Title)
		})
	default:
		// SortDefault or unknown: keep source order.
	}
}

// Categories returns the sorted distinct category labels of products.
func Categories(products []domain.Product) []string {
	seen := make(map[string]struct{}, len(products))
	out := make([]string, 0)
	for _, p := range products {
		if _, ok := seen[p.Category]; ok {
			continue
		}
		seen[p.Category] = struct{}{}
		out = append(out, p.Category)
	}
	slices.Sort(out)
	return out
}
