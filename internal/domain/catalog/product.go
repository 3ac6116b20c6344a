package catalog

import (
	"strconv"

	domaincart "storefront/internal/domain/cart"
)

type Rating struct {
	Rate  float64 `json:"rate"`
	Count int     `json:"count"`
}

// Product is a catalog entry as served by the remote catalog.
type Product struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Price       float64 `json:"price"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Image       string  `json:"image"`
	Rating      Rating  `json:"rating"`
}

func (p Product) CartID() domaincart.ProductID {
	return domaincart.ProductID(strconv.FormatInt(p.ID, 10))
}

// CartProduct captures the fields a cart line keeps, including the current price.
func (p Product) CartProduct() domaincart.Product {
	return domaincart.Product{
		ID:       p.CartID(),
		Title:    p.Title,
		Price:    p.Price,
		Image:    p.Image,
		Category: p.Category,
	}
}
