package ports

import (
	"context"
	"time"
)

const (
	CartEventItemAdded       = "cart.item_added"
	CartEventItemRemoved     = "cart.item_removed"
	CartEventQuantityUpdated = "cart.quantity_updated"
	CartEventCleared         = "cart.cleared"
)

// CartEvent describes one committed cart mutation.
type CartEvent struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	ProductID  string    `json:"product_id,omitempty"`
	Quantity   int       `json:"quantity"`
	ItemCount  int       `json:"item_count"`
	OccurredAt time.Time `json:"occurred_at"`
}

type CartEventPublisher interface {
	Publish(ctx context.Context, event CartEvent) error
}
