package domain

// CategoryAll is the sentinel category meaning "no category filter".
const CategoryAll = "all"

// SortOption selects the ordering of the filtered catalogue.
type SortOption string

// Sort options accepted by the catalogue.
const (
	SortDefault    SortOption = "default"
	SortPriceAsc   SortOption = "price-asc"
	SortPriceDesc  SortOption = "price-desc"
	SortRatingDesc SortOption = "rating-desc"
	SortNameAsc    SortOption = "name-asc"
)

// ValidSortOptions returns every accepted sort option.
func ValidSortOptions() []SortOption {
	return []SortOption{SortDefault, SortPriceAsc, SortPriceDesc, SortRatingDesc, SortNameAsc}
}

// IsValid reports whether s is one of the accepted sort options.
func (s SortOption) IsValid() bool {
	for _, o := range ValidSortOptions() {
		if o == s {
			return true
		}
	}
	return false
}

// FilterState is the user-controlled part of the catalogue view. It is never
// persisted.
type FilterState struct {
	Category     string     `json:"category"`
	SearchQuery  string     `json:"search_query"`
	Sort         SortOption `json:"sort"`
	VisibleLimit int        `json:"visible_limit"`
}
