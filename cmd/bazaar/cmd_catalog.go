package main

import (
	"context"
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/bazaar/internal/kernel"
)

// bazaar catalog:low-stock
var lowStockCmd = &cobra.Command{
	Use:   "catalog:low-stock",
	Short: "List active products at or below the low-stock threshold",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withKernel(cmd, func(ctx context.Context, k *kernel.Kernel) error {
			products, err := k.Catalog.LowStock(ctx)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tSKU\tNAME\tSTOCK")
			for _, p := range products {
				fmt.Fprintf(w, "%d\t%s\t%s\t%d\n", p.ID, p.SKU, p.Name, p.Stock)
			}
			return w.Flush()
		})
	},
}

// bazaar catalog:restock 3 20
var restockCmd = &cobra.Command{
	Use:   "catalog:restock <product-id> <qty>",
	Short: "Add stock to a product",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		qty, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid quantity %q", args[1])
		}
		return withKernel(cmd, func(ctx context.Context, k *kernel.Kernel) error {
			p, err := k.Catalog.Restock(ctx, id, qty)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "product %d stock %d available=%v\n", p.ID, p.Stock, p.Available)
			return nil
		})
	},
}
