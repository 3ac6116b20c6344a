package cart

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

const (
	MinQuantity = 1
	MaxQuantity = 10
)

// ProductID identifies a catalog product. The catalog serves numeric ids while
// older snapshots may carry strings, so both decode; it always encodes as a string.
type ProductID string

func (id *ProductID) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*id = ProductID(strings.TrimSpace(s))
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(trimmed, &n); err != nil {
		return fmt.Errorf("product id must be a string or number: %w", err)
	}
	*id = ProductID(n.String())
	return nil
}

func (id ProductID) String() string { return string(id) }

// Product is what a shopper adds; its price becomes the line's unit price.
type Product struct {
	ID       ProductID
	Title    string
	Price    float64
	Image    string
	Category string
}

// Line is one product entry in the cart. UnitPrice is captured when the product is
// first added and is never refreshed from the catalog.
type Line struct {
	ProductID ProductID `json:"id"`
	Title     string    `json:"title"`
	UnitPrice float64   `json:"price"`
	Image     string    `json:"image"`
	Category  string    `json:"category"`
	Quantity  int       `json:"quantity"`
}

func (l Line) LineTotal() float64 {
	return l.UnitPrice * float64(l.Quantity)
}

// ClampQuantity forces q into [MinQuantity, MaxQuantity].
func ClampQuantity(q int) int {
	if q < MinQuantity {
		return MinQuantity
	}
	if q > MaxQuantity {
		return MaxQuantity
	}
	return q
}

func newLine(p Product, quantity int) Line {
	return Line{
		ProductID: p.ID,
		Title:     p.Title,
		UnitPrice: p.Price,
		Image:     p.Image,
		Category:  p.Category,
		Quantity:  ClampQuantity(quantity),
	}
}
