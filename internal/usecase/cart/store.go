package cart

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"storefront/internal/bootstrap/logging"
	domaincart "storefront/internal/domain/cart"
	"storefront/internal/errs"
	"storefront/internal/ports"
)

// SnapshotStore is the durability side of the cart.
type SnapshotStore interface {
	Load(ctx context.Context) []domaincart.Line
	Save(ctx context.Context, lines []domaincart.Line) error
}

type StoreOption func(*Store)

func WithEventPublisher(publisher ports.CartEventPublisher) StoreOption {
	return func(s *Store) {
		if publisher != nil {
			s.events = publisher
		}
	}
}

func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// Store owns the shopper's cart. It is built once per process, loads the persisted
// snapshot at construction and rewrites it after every mutation.
//
// Mutations never fail: bad input is normalized and persistence or publish errors are
// logged while the in-memory cart stays authoritative.
type Store struct {
	mu          sync.Mutex
	cart        domaincart.Cart
	persistence SnapshotStore
	events      ports.CartEventPublisher
	now         func() time.Time
}

func NewStore(ctx context.Context, persistence SnapshotStore, opts ...StoreOption) *Store {
	s := &Store{
		persistence: persistence,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.cart = domaincart.New(persistence.Load(ctx))
	logging.Info(logging.WithComponent(ctx, "usecase.cart.store"), "cart store ready",
		slog.Int("lines", s.cart.Len()),
		slog.Int("item_count", s.cart.ItemCount()),
	)
	return s
}

func (s *Store) AddItem(ctx context.Context, product domaincart.Product, quantity int) {
	s.mutate(ctx, func(c *domaincart.Cart) (ports.CartEvent, bool) {
		line := c.Add(product, quantity)
		return ports.CartEvent{
			Type:      ports.CartEventItemAdded,
			ProductID: line.ProductID.String(),
			Quantity:  line.Quantity,
		}, true
	})
}

// RemoveItem is a no-op for ids not in the cart.
func (s *Store) RemoveItem(ctx context.Context, id domaincart.ProductID) {
	s.mutate(ctx, func(c *domaincart.Cart) (ports.CartEvent, bool) {
		if !c.Remove(id) {
			return ports.CartEvent{}, false
		}
		return ports.CartEvent{Type: ports.CartEventItemRemoved, ProductID: id.String()}, true
	})
}

// UpdateQuantity removes the line when quantity <= 0, otherwise clamps it into
// [1, 10]. Unknown ids are ignored.
func (s *Store) UpdateQuantity(ctx context.Context, id domaincart.ProductID, quantity int) {
	s.mutate(ctx, func(c *domaincart.Cart) (ports.CartEvent, bool) {
		line, ok := c.SetQuantity(id, quantity)
		if !ok {
			return ports.CartEvent{}, false
		}
		eventType := ports.CartEventQuantityUpdated
		if quantity <= 0 {
			eventType = ports.CartEventItemRemoved
		}
		return ports.CartEvent{Type: eventType, ProductID: id.String(), Quantity: line.Quantity}, true
	})
}

func (s *Store) ClearCart(ctx context.Context) {
	s.mutate(ctx, func(c *domaincart.Cart) (ports.CartEvent, bool) {
		c.Clear()
		return ports.CartEvent{Type: ports.CartEventCleared}, true
	})
}

// mutate applies fn and persists the full snapshot under the lock so the stored
// order of writes matches the order of mutations. Persisting happens even when fn
// reports no change. The write ignores caller cancellation since the in-memory
// change has already been applied.
func (s *Store) mutate(ctx context.Context, fn func(c *domaincart.Cart) (ports.CartEvent, bool)) {
	logCtx := logging.WithComponent(ctx, "usecase.cart.store")

	s.mu.Lock()
	event, changed := fn(&s.cart)
	lines := s.cart.Lines()
	itemCount := s.cart.ItemCount()
	if err := s.persistence.Save(context.WithoutCancel(ctx), lines); err != nil {
		logging.Warn(logCtx, "persist cart snapshot failed, keeping in-memory cart", slog.Any("err", errs.Loggable(err)))
	}
	s.mu.Unlock()

	if !changed {
		return
	}

	event.ID = uuid.NewString()
	event.ItemCount = itemCount
	event.OccurredAt = s.now().UTC()
	logging.Debug(logCtx, "cart mutated",
		slog.String("event", event.Type),
		slog.String("product_id", event.ProductID),
		slog.Int("quantity", event.Quantity),
		slog.Int("item_count", itemCount),
	)

	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, event); err != nil {
		logging.Warn(logCtx, "publish cart event failed", slog.String("event", event.Type), slog.Any("err", errs.Loggable(err)))
	}
}

// Lines returns the cart lines in insertion order.
func (s *Store) Lines() []domaincart.Line {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.Lines()
}

// Totals is recomputed from the current lines on every call.
func (s *Store) Totals() domaincart.Totals {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.Totals()
}

func (s *Store) IsInCart(id domaincart.ProductID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.Contains(id)
}

func (s *Store) QuantityOf(id domaincart.ProductID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.QuantityOf(id)
}

func (s *Store) ItemCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.ItemCount()
}

func (s *Store) IsEmpty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.Len() == 0
}
