package cart

import "math"

const (
	TaxRate               = 0.10
	FreeShippingThreshold = 50.0
	ShippingFee           = 5.99
)

// Totals is derived from the current lines and never stored.
type Totals struct {
	Subtotal  float64 `json:"subtotal"`
	Tax       float64 `json:"tax"`
	Shipping  float64 `json:"shipping"`
	Total     float64 `json:"total"`
	ItemCount int     `json:"itemCount"`
}

// ComputeTotals applies 10% tax and free shipping above FreeShippingThreshold.
// Shipping and total are derived from the unrounded subtotal; each figure is rounded
// to cents on the way out.
func ComputeTotals(lines []Line) Totals {
	subtotal := 0.0
	itemCount := 0
	for _, line := range lines {
		subtotal += line.LineTotal()
		itemCount += line.Quantity
	}

	tax := subtotal * TaxRate
	shipping := ShippingFee
	if subtotal > FreeShippingThreshold {
		shipping = 0
	}
	total := subtotal + tax + shipping

	return Totals{
		Subtotal:  RoundMoney(subtotal),
		Tax:       RoundMoney(tax),
		Shipping:  RoundMoney(shipping),
		Total:     RoundMoney(total),
		ItemCount: itemCount,
	}
}

// RoundMoney rounds to 2 decimal places, halves away from zero.
func RoundMoney(amount float64) float64 {
	return math.Round(amount*100) / 100
}
