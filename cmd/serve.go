package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"storefront/internal/bootstrap"
	"storefront/internal/bootstrap/logging"
	"storefront/internal/errs"
	"storefront/internal/httpapi"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the storefront JSON API",
	RunE: withApp(func(cmd *cobra.Command, app *bootstrap.App) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		addr, _ := cmd.Flags().GetString("addr")
		addr = strings.TrimSpace(addr)
		if addr == "" {
			addr = app.Config.Server.Addr
		}
		shutdownTimeout := app.Config.Server.ShutdownTimeout
		if shutdownTimeout <= 0 {
			shutdownTimeout = 10 * time.Second
		}

		server := &http.Server{
			Addr: addr,
			Handler: httpapi.NewRouter(ctx, httpapi.Dependencies{
				Catalog:        app.Catalog,
				Controller:     app.Controller,
				RecentlyViewed: app.RecentlyViewed,
				Preferences:    app.Preferences,
			}),
			ReadHeaderTimeout: 5 * time.Second,
		}

		group, groupCtx := errgroup.WithContext(ctx)
		group.Go(func() error {
			logging.Info(ctx, "storefront api started", slog.String("addr", addr))
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return errs.Wrap(err, "serve http")
			}
			return nil
		})
		group.Go(func() error {
			<-groupCtx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			logging.Info(ctx, "storefront api shutting down")
			if err := server.Shutdown(shutdownCtx); err != nil {
				return errs.Wrap(err, "shutdown http")
			}
			return nil
		})

		if err := group.Wait(); err != nil {
			logging.Error(ctx, "storefront api failed", slog.Any("err", errs.Loggable(err)))
			return err
		}
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", "", "Listen address (default: server.addr from config)")
}
