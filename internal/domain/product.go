package domain

import (
	"github.com/shopspring/decimal"

	"github.com/utafrali/storefront/pkg/money"
)

// DefaultTopRatedThreshold is the rating at which a product earns the
// top-rated badge.
const DefaultTopRatedThreshold = 4.5

// Product is a catalogue record as supplied by the product source. The
// engines never modify one.
type Product struct {
	ID          int     `json:"id"`
	Title       string  `json:"title"`
	Price       float64 `json:"price"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Image       string  `json:"image"`
	Rating      Rating  `json:"rating"`
}

// Rating is the aggregated review score of a product.
type Rating struct {
	Rate  float64 `json:"rate"`
	Count int     `json:"count"`
}

// UnitPrice returns the price as an exact decimal.
func (p Product) UnitPrice() decimal.Decimal {
	return money.FromFloat(p.Price)
}

// IsTopRated reports whether the average rating reaches threshold.
func (p Product) IsTopRated(threshold float64) bool {
	return p.Rating.Rate >= threshold
}

// FindProduct returns the product with the given id and whether it exists.
func FindProduct(products []Product, id int) (Product, bool) {
	for i := range products {
		if products[i].ID == id {
			return products[i], true
		}
	}
	return Product{}, false
}
