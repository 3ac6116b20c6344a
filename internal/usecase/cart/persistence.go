package cart

import (
	"context"
	"log/slog"
	"strings"

	"storefront/internal/bootstrap/logging"
	domaincart "storefront/internal/domain/cart"
	"storefront/internal/errs"
	"storefront/internal/ports"
)

// DefaultStorageKey is the key the cart snapshot lives under.
const DefaultStorageKey = "cart-storage"

// Persistence reads and writes whole cart snapshots through a key/value store.
// Reads fail open: anything unreadable becomes an empty cart.
type Persistence struct {
	store ports.KeyValueStore
	key   string
}

func NewPersistence(store ports.KeyValueStore, key string) *Persistence {
	key = strings.TrimSpace(key)
	if key == "" {
		key = DefaultStorageKey
	}
	return &Persistence{store: store, key: key}
}

func (p *Persistence) Load(ctx context.Context) []domaincart.Line {
	logCtx := logging.WithAttrs(ctx,
		slog.String("component", "usecase.cart.persistence"),
		slog.String("key", p.key),
	)

	raw, found, err := p.store.Get(ctx, p.key)
	if err != nil {
		logging.Warn(logCtx, "read cart snapshot failed, starting empty", slog.Any("err", errs.Loggable(err)))
		return nil
	}
	if !found || strings.TrimSpace(raw) == "" {
		return nil
	}

	result, err := domaincart.DecodeSnapshot([]byte(raw))
	if err != nil {
		logging.Warn(logCtx, "parse cart snapshot failed, starting empty", slog.Any("err", errs.Loggable(err)))
		return nil
	}
	if result.Dropped > 0 {
		logging.Warn(logCtx, "dropped malformed cart lines", slog.Int("dropped", result.Dropped))
	}

	logging.Debug(logCtx, "cart snapshot loaded", slog.Int("lines", len(result.Lines)))
	return result.Lines
}

func (p *Persistence) Save(ctx context.Context, lines []domaincart.Line) error {
	data, err := domaincart.EncodeSnapshot(lines)
	if err != nil {
		return err
	}
	if err := p.store.Set(ctx, p.key, string(data)); err != nil {
		return errs.Wrapf(err, "write cart snapshot %q", p.key)
	}
	return nil
}

// Clear removes the snapshot entirely.
func (p *Persistence) Clear(ctx context.Context) error {
	if err := p.store.Delete(ctx, p.key); err != nil {
		return errs.Wrapf(err, "delete cart snapshot %q", p.key)
	}
	return nil
}
