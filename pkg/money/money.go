// Package money formats monetary amounts for display. Arithmetic is exact
// (decimal); rounding happens only here.
package money

import (
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// DefaultSymbol is the currency the catalogue is priced in.
const DefaultSymbol = "£"

var printer = message.NewPrinter(language.BritishEnglish)

// FormatPrice rounds amount half away from zero to two places and renders it
// with thousands separators, e.g. 1999.99 -> "£1,999.99".
func FormatPrice(amount decimal.Decimal) string {
	return Format(amount, DefaultSymbol)
}

// Format is FormatPrice with an explicit currency symbol.
func Format(amount decimal.Decimal, symbol string) string {
	rounded := amount.Round(2)
	sign := ""
	if rounded.IsNegative() {
		sign = "-"
		rounded = rounded.Neg()
	}

	whole := rounded.Truncate(0)
	cents := rounded.Sub(whole).Shift(2).IntPart()

	return sign + symbol + printer.Sprintf("%d", whole.IntPart()) + fmt.Sprintf(".%02d", cents)
}

// FromFloat converts a float price into a decimal, keeping the shortest
// decimal representation of f so 22.3 stays 22.3.
func FromFloat(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f)
}
