package cart

import (
	"context"
	"sync/atomic"
	"time"

	"storefront/internal/bootstrap/config"
	domaincart "storefront/internal/domain/cart"
)

// Delays is the simulated latency held after each command so the UI can show progress.
type Delays struct {
	Add    time.Duration
	Remove time.Duration
	Update time.Duration
	Clear  time.Duration
}

var DefaultDelays = Delays{
	Add:    300 * time.Millisecond,
	Remove: 200 * time.Millisecond,
	Update: 200 * time.Millisecond,
	Clear:  300 * time.Millisecond,
}

func DelaysFromConfig(cfg config.DelayConfig) Delays {
	return Delays{
		Add:    cfg.Add,
		Remove: cfg.Remove,
		Update: cfg.Update,
		Clear:  cfg.Clear,
	}
}

type ControllerOption func(*Controller)

// WithSleep replaces the delay implementation, mainly for tests.
func WithSleep(sleep func(ctx context.Context, d time.Duration) error) ControllerOption {
	return func(c *Controller) {
		if sleep != nil {
			c.sleep = sleep
		}
	}
}

// Controller fronts a Store with a busy indicator for UI affordance. The mutation is
// committed synchronously before the delay starts; the indicator stays on while any
// command is still in its delay.
type Controller struct {
	store    *Store
	delays   Delays
	sleep    func(ctx context.Context, d time.Duration) error
	inFlight atomic.Int32
}

func NewController(store *Store, delays Delays, opts ...ControllerOption) *Controller {
	c := &Controller{
		store:  store,
		delays: delays,
		sleep:  sleepContext,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Controller) Store() *Store {
	return c.store
}

// IsBusy reports whether any command is still pending.
func (c *Controller) IsBusy() bool {
	return c.inFlight.Load() > 0
}

func (c *Controller) InFlight() int {
	return int(c.inFlight.Load())
}

func (c *Controller) AddToCart(ctx context.Context, product domaincart.Product, quantity int) error {
	return c.run(ctx, c.delays.Add, func() {
		c.store.AddItem(ctx, product, quantity)
	})
}

func (c *Controller) RemoveFromCart(ctx context.Context, id domaincart.ProductID) error {
	return c.run(ctx, c.delays.Remove, func() {
		c.store.RemoveItem(ctx, id)
	})
}

func (c *Controller) UpdateItemQuantity(ctx context.Context, id domaincart.ProductID, quantity int) error {
	return c.run(ctx, c.delays.Update, func() {
		c.store.UpdateQuantity(ctx, id, quantity)
	})
}

func (c *Controller) ClearAllItems(ctx context.Context) error {
	return c.run(ctx, c.delays.Clear, func() {
		c.store.ClearCart(ctx)
	})
}

// run returns only ctx errors from the delay; the mutation has already been applied.
func (c *Controller) run(ctx context.Context, delay time.Duration, mutation func()) error {
	c.inFlight.Add(1)
	defer c.inFlight.Add(-1)

	mutation()
	return c.sleep(ctx, delay)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
