// Package domaintest provides product fixtures for tests.
package domaintest

import "github.com/utafrali/storefront/internal/domain"

// Products returns a fresh copy of the five-product fixture set, in source
// order: a backpack, a t-shirt, a bracelet, an SSD and a top.
func Products() []domain.Product {
	return []domain.Product{
		{
			ID:          1,
			Title:       "Fjallraven - Foldsack No. 1 Backpack, Fits 15 Laptops",
			Price:       109.95,
			Description: "Your perfect pack for everyday use and walks in the forest.",
			Category:    "men's clothing",
			Image:       "https://fakestoreapi.com/img/81fPKd-2AYL._AC_SL1500_.jpg",
			Rating:      domain.Rating{Rate: 3.9, Count: 120},
		},
		{
			ID:          2,
			Title:       "Mens Casual Premium Slim Fit T-Shirts",
			Price:       22.3,
			Description: "Slim-fitting style, contrast raglan long sleeve, three-button henley placket.",
			Category:    "men's clothing",
			Image:       "https://fakestoreapi.com/img/71-3HjGNDUL._AC_SY879._SX._UX._SY._UY_.jpg",
			Rating:      domain.Rating{Rate: 4.1, Count: 259},
		},
		{
			ID:          5,
			Title:       "John Hardy Women's Legends Naga Gold & Silver Dragon Station Chain Bracelet",
			Price:       695,
			Description: "From our Legends Collection, the Naga was inspired by the mythical water dragon.",
			Category:    "jewelery",
			Image:       "https://fakestoreapi.com/img/71pWzhdJNwL._AC_UL640_QL65_ML3_.jpg",
			Rating:      domain.Rating{Rate: 4.6, Count: 400},
		},
		{
			ID:          11,
			Title:       "Silicon Power 256GB SSD 3D NAND A55 SLC Cache Performance Boost SATA III 2.5",
			Price:       109,
			Description: "3D NAND flash are applied to deliver high transfer speeds.",
			Category:    "electronics",
			Image:       "https://fakestoreapi.com/img/71kWymZ+c+L._AC_SX679_.jpg",
			Rating:      domain.Rating{Rate: 4.8, Count: 319},
		},
		{
			ID:          18,
			Title:       "MBJ Women's Solid Short Sleeve Boat Neck V",
			Price:       9.85,
			Description: "95% RAYON 5% SPANDEX, Made in USA or Imported, Do Not Bleach.",
			Category:    "women's clothing",
			Image:       "https://fakestoreapi.com/img/71z3kpMAYsL._AC_UY879_.jpg",
			Rating:      domain.Rating{Rate: 4.7, Count: 130},
		},
	}
}

// Generated returns n products with ids 1..n in category "misc", priced 1..n.
func Generated(n int) []domain.Product {
	out := make([]domain.Product, n)
	for i := range out {
		out[i] = domain.Product{
			ID:       i + 1,
			Title:    "Product",
			Price:    float64(i + 1),
			Category: "misc",
		}
	}
	return out
}
