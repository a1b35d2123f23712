package domain

import "math"

// Totals is the cart/invoice money breakdown.
type Totals struct {
	Subtotal int64 `json:"subtotal"`
	Discount int64 `json:"discount"`
	Vat      int64 `json:"vat"`
	Total    int64 `json:"total"`
}

// ClampRate bounds a percentage to [0, 100].
func ClampRate(rate float64) float64 {
	if rate < 0 {
		return 0
	}
	if rate > 100 {
		return 100
	}
	return rate
}

// ComputeTotals derives discount, VAT and total from a subtotal. Each derived
// field is rounded independently: the discount from the raw subtotal, the VAT
// from the already-rounded discounted base.
func ComputeTotals(subtotal int64, discountRate float64, vatRate float64) Totals {
	discount := int64(math.Round(float64(subtotal) * discountRate / 100))
	vat := int64(math.Round(float64(subtotal-discount) * vatRate / 100))
	return Totals{
		Subtotal: subtotal,
		Discount: discount,
		Vat:      vat,
		Total:    subtotal - discount + vat,
	}
}

// LinesSubtotal sums price times quantity over the given cart lines.
func LinesSubtotal(lines []CartLine) int64 {
	subtotal := int64(0)
	for _, line := range lines {
		subtotal += line.Price * int64(line.Qty)
	}
	return subtotal
}
