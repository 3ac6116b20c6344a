package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"storefront/internal/bootstrap"
	"storefront/internal/bootstrap/logging"
	domaincart "storefront/internal/domain/cart"
	"storefront/internal/errs"
)

var cartCmd = &cobra.Command{
	Use:   "cart",
	Short: "Inspect and change the shopping cart",
}

var cartShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show cart lines and totals",
	RunE: withApp(func(cmd *cobra.Command, app *bootstrap.App) error {
		format, _ := cmd.Flags().GetString("format")
		return writeCart(cmd.OutOrStdout(), format, app.Store())
	}),
}

var cartAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a catalog product to the cart",
	RunE: withApp(func(cmd *cobra.Command, app *bootstrap.App) error {
		ctx := cmd.Context()

		productID, _ := cmd.Flags().GetInt64("product")
		quantity, _ := cmd.Flags().GetInt("quantity")
		if productID <= 0 {
			return fmt.Errorf("--product must be a positive catalog id")
		}

		product, err := app.Catalog.Product(ctx, productID)
		if err != nil {
			logging.Error(ctx, "resolve product failed", slog.Int64("product_id", productID), slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "resolve product")
		}

		if err := app.Controller.AddToCart(ctx, product.CartProduct(), quantity); err != nil {
			return errs.Wrap(err, "add to cart")
		}
		if err := writeAdded(cmd.OutOrStdout(), product.Title, product.CartProduct().ID, app.Store()); err != nil {
			return err
		}
		return writeCart(cmd.OutOrStdout(), "table", app.Store())
	}),
}

var cartRemoveCmd = &cobra.Command{
	Use:   "remove",
	Short: "Remove a product line from the cart",
	RunE: withApp(func(cmd *cobra.Command, app *bootstrap.App) error {
		id, err := cartProductFlag(cmd)
		if err != nil {
			return err
		}
		if err := app.Controller.RemoveFromCart(cmd.Context(), id); err != nil {
			return errs.Wrap(err, "remove from cart")
		}
		return writeCart(cmd.OutOrStdout(), "table", app.Store())
	}),
}

var cartUpdateCmd = &cobra.Command{
	Use:   "update",
	Short: "Set the quantity of a cart line (0 removes it)",
	RunE: withApp(func(cmd *cobra.Command, app *bootstrap.App) error {
		id, err := cartProductFlag(cmd)
		if err != nil {
			return err
		}
		quantity, _ := cmd.Flags().GetInt("quantity")
		if err := app.Controller.UpdateItemQuantity(cmd.Context(), id, quantity); err != nil {
			return errs.Wrap(err, "update cart quantity")
		}
		return writeCart(cmd.OutOrStdout(), "table", app.Store())
	}),
}

var cartClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every line from the cart",
	RunE: withApp(func(cmd *cobra.Command, app *bootstrap.App) error {
		if err := app.Controller.ClearAllItems(cmd.Context()); err != nil {
			return errs.Wrap(err, "clear cart")
		}
		if _, err := fmt.Fprintln(cmd.OutOrStdout(), "cart cleared"); err != nil {
			return errs.Wrap(err, "write clear output")
		}
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(cartCmd)
	cartCmd.AddCommand(cartShowCmd, cartAddCmd, cartRemoveCmd, cartUpdateCmd, cartClearCmd)

	cartShowCmd.Flags().String("format", "table", "Output format (table|json|yaml|toml)")

	cartAddCmd.Flags().Int64("product", 0, "Catalog product id")
	cartAddCmd.Flags().Int("quantity", 1, "Quantity to add (lines are capped at 10)")

	cartRemoveCmd.Flags().String("product", "", "Product id of the cart line")

	cartUpdateCmd.Flags().String("product", "", "Product id of the cart line")
	cartUpdateCmd.Flags().Int("quantity", 1, "New quantity; 0 or less removes the line")
}

func cartProductFlag(cmd *cobra.Command) (domaincart.ProductID, error) {
	raw, _ := cmd.Flags().GetString("product")
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("--product is required")
	}
	return domaincart.ProductID(raw), nil
}

type cartLineView struct {
	ID        string  `json:"id" yaml:"id" toml:"id"`
	Title     string  `json:"title" yaml:"title" toml:"title"`
	UnitPrice float64 `json:"price" yaml:"price" toml:"price"`
	Quantity  int     `json:"quantity" yaml:"quantity" toml:"quantity"`
	LineTotal float64 `json:"lineTotal" yaml:"lineTotal" toml:"lineTotal"`
}

type cartTotalsView struct {
	Subtotal  float64 `json:"subtotal" yaml:"subtotal" toml:"subtotal"`
	Tax       float64 `json:"tax" yaml:"tax" toml:"tax"`
	Shipping  float64 `json:"shipping" yaml:"shipping" toml:"shipping"`
	Total     float64 `json:"total" yaml:"total" toml:"total"`
	ItemCount int     `json:"itemCount" yaml:"itemCount" toml:"itemCount"`
}

type cartView struct {
	Items  []cartLineView `json:"items" yaml:"items" toml:"items"`
	Totals cartTotalsView `json:"totals" yaml:"totals" toml:"totals"`
}

// writeAdded reports the line quantity after the add, which may be lower than
// requested once the per-line cap applies.
func writeAdded(w io.Writer, title string, id domaincart.ProductID, store interface {
	QuantityOf(id domaincart.ProductID) int
}) error {
	if _, err := fmt.Fprintf(w, "added: %s x%d\n", title, store.QuantityOf(id)); err != nil {
		return errs.Wrap(err, "write add output")
	}
	return nil
}

type cartReader interface {
	Lines() []domaincart.Line
	Totals() domaincart.Totals
}

func newCartView(store cartReader) cartView {
	lines := store.Lines()
	totals := store.Totals()

	view := cartView{
		Items: make([]cartLineView, 0, len(lines)),
		Totals: cartTotalsView{
			Subtotal:  totals.Subtotal,
			Tax:       totals.Tax,
			Shipping:  totals.Shipping,
			Total:     totals.Total,
			ItemCount: totals.ItemCount,
		},
	}
	for _, line := range lines {
		view.Items = append(view.Items, cartLineView{
			ID:        line.ProductID.String(),
			Title:     line.Title,
			UnitPrice: line.UnitPrice,
			Quantity:  line.Quantity,
			LineTotal: domaincart.RoundMoney(line.LineTotal()),
		})
	}
	return view
}

func writeCart(w io.Writer, format string, store cartReader) error {
	view := newCartView(store)

	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "table":
		return writeCartTable(w, view)
	case "json":
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(view); err != nil {
			return errs.Wrap(err, "encode cart json")
		}
		return nil
	case "yaml":
		data, err := yaml.Marshal(view)
		if err != nil {
			return errs.Wrap(err, "encode cart yaml")
		}
		_, err = w.Write(data)
		return err
	case "toml":
		data, err := toml.Marshal(view)
		if err != nil {
			return errs.Wrap(err, "encode cart toml")
		}
		_, err = w.Write(data)
		return err
	default:
		return fmt.Errorf("unsupported format %q (expected: table, json, yaml or toml)", format)
	}
}

func writeCartTable(w io.Writer, view cartView) error {
	if len(view.Items) == 0 {
		if _, err := fmt.Fprintln(w, "cart is empty"); err != nil {
			return errs.Wrap(err, "write cart output")
		}
	}
	for _, item := range view.Items {
		if _, err := fmt.Fprintf(
			w,
			"%s %s x%d @ %.2f = %.2f\n",
			item.ID,
			item.Title,
			item.Quantity,
			item.UnitPrice,
			item.LineTotal,
		); err != nil {
			return errs.Wrap(err, "write cart line")
		}
	}

	shipping := fmt.Sprintf("%.2f", view.Totals.Shipping)
	if view.Totals.Shipping == 0 {
		shipping = "free"
	}
	if _, err := fmt.Fprintf(
		w,
		"items=%d subtotal=%.2f tax=%.2f shipping=%s total=%.2f\n",
		view.Totals.ItemCount,
		view.Totals.Subtotal,
		view.Totals.Tax,
		shipping,
		view.Totals.Total,
	); err != nil {
		return errs.Wrap(err, "write cart totals")
	}
	return nil
}
