package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"storefront/internal/bootstrap"
	"storefront/internal/errs"
)

var recentCmd = &cobra.Command{
	Use:   "recent",
	Short: "Recently viewed products",
}

var recentShowCmd = &cobra.Command{
	Use:   "show",
	Short: "List recently viewed products, newest first",
	RunE: withApp(func(cmd *cobra.Command, app *bootstrap.App) error {
		products := app.RecentlyViewed.List()
		if len(products) == 0 {
			if _, err := fmt.Fprintln(cmd.OutOrStdout(), "nothing viewed yet"); err != nil {
				return errs.Wrap(err, "write recent output")
			}
			return nil
		}
		for _, product := range products {
			if err := writeProductLine(cmd.OutOrStdout(), product); err != nil {
				return err
			}
		}
		return nil
	}),
}

var recentClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Forget recently viewed products",
	RunE: withApp(func(cmd *cobra.Command, app *bootstrap.App) error {
		app.RecentlyViewed.Clear(cmd.Context())
		if _, err := fmt.Fprintln(cmd.OutOrStdout(), "recently viewed cleared"); err != nil {
			return errs.Wrap(err, "write recent output")
		}
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(recentCmd)
	recentCmd.AddCommand(recentShowCmd, recentClearCmd)
}
