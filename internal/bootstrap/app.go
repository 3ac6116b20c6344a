package bootstrap

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"storefront/internal/bootstrap/config"
	"storefront/internal/bootstrap/database"
	"storefront/internal/bootstrap/logging"
	"storefront/internal/errs"
	"storefront/internal/usecase/cart"
	"storefront/internal/usecase/catalog"
	"storefront/internal/usecase/shopper"
)

// App is the wired storefront handed to each command.
type App struct {
	Config         config.Config
	DB             *gorm.DB
	Catalog        *catalog.Service
	Controller     *cart.Controller
	RecentlyViewed *shopper.RecentlyViewed
	Preferences    *shopper.PreferenceStore
}

func (a *App) Store() *cart.Store {
	return a.Controller.Store()
}

func (a *App) InitSchema(ctx context.Context) error {
	if ctx == nil {
		return errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return errs.Wrap(err, "check context")
	}

	logCtx := logging.WithComponent(ctx, "bootstrap.app")
	logging.Info(logCtx, "start schema migration")

	if err := database.Migrate(ctx, a.DB); err != nil {
		return err
	}

	logging.Info(logCtx, "schema migration completed")
	return nil
}
