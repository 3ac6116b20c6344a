package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"storefront/internal/bootstrap"
	"storefront/internal/errs"
	"storefront/internal/usecase/shopper"
)

var prefsCmd = &cobra.Command{
	Use:   "prefs",
	Short: "Shopper display preferences",
}

var prefsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current preferences",
	RunE: withApp(func(cmd *cobra.Command, app *bootstrap.App) error {
		return writePreferences(cmd.OutOrStdout(), app.Preferences.Get())
	}),
}

var prefsSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Set preferences, e.g. --set theme=dark --set itemsPerPage=40",
	RunE: withApp(func(cmd *cobra.Command, app *bootstrap.App) error {
		pairs, _ := cmd.Flags().GetStringArray("set")
		changes, err := parsePreferencePairs(pairs)
		if err != nil {
			return err
		}

		prefs, err := app.Preferences.Apply(cmd.Context(), changes)
		if err != nil {
			return errs.Wrap(err, "update preferences")
		}
		return writePreferences(cmd.OutOrStdout(), prefs)
	}),
}

var prefsResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Restore default preferences",
	RunE: withApp(func(cmd *cobra.Command, app *bootstrap.App) error {
		return writePreferences(cmd.OutOrStdout(), app.Preferences.Reset(cmd.Context()))
	}),
}

func init() {
	rootCmd.AddCommand(prefsCmd)
	prefsCmd.AddCommand(prefsShowCmd, prefsSetCmd, prefsResetCmd)

	prefsSetCmd.Flags().StringArray("set", nil, "Preference assignment name=value (repeatable)")
}

func parsePreferencePairs(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, fmt.Errorf("at least one --set name=value is required")
	}
	changes := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		name, value, ok := strings.Cut(pair, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid --set %q (expected name=value)", pair)
		}
		changes[name] = strings.TrimSpace(value)
	}
	return changes, nil
}

func writePreferences(w io.Writer, prefs shopper.Preferences) error {
	if _, err := fmt.Fprintf(
		w,
		"theme=%s currency=%s itemsPerPage=%d defaultView=%s\n",
		prefs.Theme,
		prefs.Currency,
		prefs.ItemsPerPage,
		prefs.DefaultView,
	); err != nil {
		return errs.Wrap(err, "write preferences")
	}
	return nil
}
