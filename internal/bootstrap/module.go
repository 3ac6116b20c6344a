package bootstrap

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"go.uber.org/fx"
	"gorm.io/gorm"

	"storefront/internal/bootstrap/config"
	"storefront/internal/bootstrap/database"
	"storefront/internal/bootstrap/logging"
	"storefront/internal/errs"
	"storefront/internal/infrastructure/cache"
	"storefront/internal/infrastructure/catalogapi"
	"storefront/internal/infrastructure/events"
	"storefront/internal/infrastructure/kvstore"
	"storefront/internal/ports"
	"storefront/internal/usecase/cart"
	"storefront/internal/usecase/catalog"
	"storefront/internal/usecase/shopper"
)

var Module = fx.Options(
	fx.Provide(provideConfig),
	fx.Provide(provideDatabase),
	fx.Provide(
		fx.Annotate(
			kvstore.NewSQLiteStore,
			fx.As(new(ports.KeyValueStore)),
		),
	),
	fx.Provide(provideCatalogFetcher),
	fx.Provide(provideCatalogCache),
	fx.Provide(catalog.NewService),
	fx.Provide(provideEventPublisher),
	fx.Provide(provideCartPersistence),
	fx.Provide(provideCartStore),
	fx.Provide(provideCartController),
	fx.Provide(shopper.NewRecentlyViewed),
	fx.Provide(shopper.NewPreferenceStore),
	fx.Provide(provideApp),
)

type configParams struct {
	fx.In

	Ctx        context.Context
	ConfigFile string `name:"configFile"`
}

func provideConfig(p configParams) (config.Config, error) {
	ctx := logging.WithComponent(p.Ctx, "bootstrap.fx")
	return config.Load(ctx, p.ConfigFile)
}

// provideDatabase opens the database and brings the schema up to date, since the cart
// and shopper state load from it during construction.
func provideDatabase(lc fx.Lifecycle, ctx context.Context, cfg config.Config) (*gorm.DB, error) {
	logCtx := logging.WithComponent(ctx, "bootstrap.fx")

	db, err := database.Open(logCtx, cfg.Database)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(logCtx, db); err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		},
	})

	return db, nil
}

func provideCatalogFetcher(cfg config.Config) ports.CatalogFetcher {
	return catalogapi.NewClient(cfg.Catalog)
}

func provideCatalogCache(cfg config.Config) *cache.Cache[json.RawMessage] {
	return cache.New[json.RawMessage](
		cache.WithTTL(cfg.Catalog.CacheTTL),
		cache.WithCoalescing(cfg.Catalog.Coalesce),
	)
}

// provideEventPublisher connects to NATS when configured. A failed connection falls
// back to the no-op publisher because events are best-effort.
func provideEventPublisher(lc fx.Lifecycle, ctx context.Context, cfg config.Config) ports.CartEventPublisher {
	logCtx := logging.WithComponent(ctx, "bootstrap.fx")
	if strings.TrimSpace(cfg.Events.NATSURL) == "" {
		return events.Noop{}
	}

	publisher, err := events.ConnectNATS(logCtx, cfg.Events)
	if err != nil {
		logging.Warn(logCtx, "nats unavailable, cart events disabled", slog.Any("err", errs.Loggable(err)))
		return events.Noop{}
	}

	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			return publisher.Close()
		},
	})
	return publisher
}

func provideCartPersistence(store ports.KeyValueStore, cfg config.Config) *cart.Persistence {
	return cart.NewPersistence(store, cfg.Cart.StorageKey)
}

func provideCartStore(ctx context.Context, persistence *cart.Persistence, publisher ports.CartEventPublisher) *cart.Store {
	return cart.NewStore(ctx, persistence, cart.WithEventPublisher(publisher))
}

func provideCartController(store *cart.Store, cfg config.Config) *cart.Controller {
	return cart.NewController(store, cart.DelaysFromConfig(cfg.Cart.Delays))
}

type appParams struct {
	fx.In

	Config         config.Config
	DB             *gorm.DB
	Catalog        *catalog.Service
	Controller     *cart.Controller
	RecentlyViewed *shopper.RecentlyViewed
	Preferences    *shopper.PreferenceStore
}

func provideApp(p appParams) *App {
	return &App{
		Config:         p.Config,
		DB:             p.DB,
		Catalog:        p.Catalog,
		Controller:     p.Controller,
		RecentlyViewed: p.RecentlyViewed,
		Preferences:    p.Preferences,
	}
}
