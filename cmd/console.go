package cmd

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"storefront/internal/bootstrap"
	"storefront/internal/errs"
	"storefront/internal/usecase/cartconsole"
)

var consoleCmd = &cobra.Command{
	Use:   "console",
	Short: "Interactive terminal consoles",
}

var consoleCartCmd = &cobra.Command{
	Use:   "cart",
	Short: "Start the interactive cart console",
	RunE: withApp(func(cmd *cobra.Command, app *bootstrap.App) error {
		category, _ := cmd.Flags().GetString("category")
		limit, _ := cmd.Flags().GetInt("limit")
		pollInterval, _ := cmd.Flags().GetDuration("poll-interval")

		model := cartconsole.NewCartModel(cmd.Context(), app.Catalog, app.Controller, cartconsole.Options{
			Category:     category,
			Limit:        limit,
			PollInterval: pollInterval,
		})

		program := tea.NewProgram(model, tea.WithAltScreen())
		if _, err := program.Run(); err != nil {
			return errs.Wrap(err, "run cart console")
		}
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(consoleCmd)
	consoleCmd.AddCommand(consoleCartCmd)
	consoleCartCmd.Flags().String("category", "", "Only offer products of this category")
	consoleCartCmd.Flags().Int("limit", 0, "Only offer the first N products")
	consoleCartCmd.Flags().Duration("poll-interval", 100*time.Millisecond, "Busy indicator refresh interval")
}
