package domain

import "github.com/shopspring/decimal"

// CartEntry is one line of the cart. Quantity is always at least 1.
type CartEntry struct {
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
}

// LineTotal returns unit price times quantity without rounding.
func (e CartEntry) LineTotal() decimal.Decimal {
	return e.Product.UnitPrice().Mul(decimal.NewFromInt(int64(e.Quantity)))
}

// ItemCount returns the sum of quantities across entries.
func ItemCount(entries []CartEntry) int {
	var count int
	for _, e := range entries {
		count += e.Quantity
	}
	return count
}

// TotalAmount sums the line totals of entries.
func TotalAmount(entries []CartEntry) decimal.Decimal {
	total := decimal.Zero
	for _, e := range entries {
		total = total.Add(e.LineTotal())
	}
	return total
}

// FindEntryIndex returns the index of the entry for productID, or -1.
func FindEntryIndex(entries []CartEntry, productID int) int {
	for i := range entries {
		if entries[i].Product.ID == productID {
			return i
		}
	}
	return -1
}
