package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"storefront/internal/bootstrap"
	"storefront/internal/bootstrap/logging"
	domaincatalog "storefront/internal/domain/catalog"
	"storefront/internal/errs"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Browse the remote product catalog",
}

var catalogProductsCmd = &cobra.Command{
	Use:   "products",
	Short: "List catalog products",
	RunE: withApp(func(cmd *cobra.Command, app *bootstrap.App) error {
		ctx := cmd.Context()

		category, _ := cmd.Flags().GetString("category")
		limit, _ := cmd.Flags().GetInt("limit")
		category = strings.TrimSpace(category)

		var (
			products []domaincatalog.Product
			err      error
		)
		switch {
		case category != "":
			products, err = app.Catalog.ProductsByCategory(ctx, category)
		case limit > 0:
			products, err = app.Catalog.LimitedProducts(ctx, limit)
		default:
			products, err = app.Catalog.Products(ctx)
		}
		if err != nil {
			logging.Error(ctx, "list catalog products failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "list catalog products")
		}

		if len(products) == 0 {
			if _, err := fmt.Fprintln(cmd.OutOrStdout(), "no products"); err != nil {
				return errs.Wrap(err, "write products output")
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

var catalogProductCmd = &cobra.Command{
	Use:   "product",
	Short: "Show one catalog product and record it as recently viewed",
	RunE: withApp(func(cmd *cobra.Command, app *bootstrap.App) error {
		ctx := cmd.Context()

		id, _ := cmd.Flags().GetInt64("id")
		if id <= 0 {
			return fmt.Errorf("--id must be a positive catalog id")
		}

		product, err := app.Catalog.Product(ctx, id)
		if err != nil {
			logging.Error(ctx, "get catalog product failed", slog.Int64("product_id", id), slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "get catalog product")
		}
		app.RecentlyViewed.Add(ctx, product)

		out := cmd.OutOrStdout()
		lines := []string{
			fmt.Sprintf("ID: %d", product.ID),
			fmt.Sprintf("Title: %s", product.Title),
			fmt.Sprintf("Price: %.2f", product.Price),
			fmt.Sprintf("Category: %s", product.Category),
			fmt.Sprintf("Rating: %.1f (%d)", product.Rating.Rate, product.Rating.Count),
			fmt.Sprintf("InCart: %d", app.Store().QuantityOf(product.CartID())),
			"",
			product.Description,
		}
		for _, line := range lines {
			if _, err := fmt.Fprintln(out, line); err != nil {
				return errs.Wrap(err, "write product output")
			}
		}
		return nil
	}),
}

var catalogCategoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List catalog categories",
	RunE: withApp(func(cmd *cobra.Command, app *bootstrap.App) error {
		categories, err := app.Catalog.Categories(cmd.Context())
		if err != nil {
			logging.Error(cmd.Context(), "list categories failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "list categories")
		}
		for _, category := range categories {
			if _, err := fmt.Fprintln(cmd.OutOrStdout(), category); err != nil {
				return errs.Wrap(err, "write categories output")
			}
		}
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(catalogCmd)
	catalogCmd.AddCommand(catalogProductsCmd, catalogProductCmd, catalogCategoriesCmd)

	catalogProductsCmd.Flags().String("category", "", "Only list products of this category")
	catalogProductsCmd.Flags().Int("limit", 0, "Only list the first N products")

	catalogProductCmd.Flags().Int64("id", 0, "Catalog product id")
}

func writeProductLine(w io.Writer, product domaincatalog.Product) error {
	if _, err := fmt.Fprintf(
		w,
		"%d [%s] %.2f %s\n",
		product.ID,
		product.Category,
		product.Price,
		product.Title,
	); err != nil {
		return errs.Wrap(err, "write product line")
	}
	return nil
}
