package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/bazaar/app/models"
	"github.com/shashiranjanraj/bazaar/app/services"
	"github.com/shashiranjanraj/bazaar/internal/kernel"
)

// withKernel boots the kernel for one command and closes it afterwards.
func withKernel(cmd *cobra.Command, fn func(ctx context.Context, k *kernel.Kernel) error) error {
	ctx := cmd.Context()
	k, err := kernel.Boot(ctx)
	if err != nil {
		return err
	}
	runErr := fn(ctx, k)
	if err := k.Close(ctx); err != nil && runErr == nil {
		return err
	}
	return runErr
}

func parseID(s string) (uint, error) {
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil || n == 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return uint(n), nil
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

var cartFlags struct {
	user    uint
	product uint
	variant uint
	qty     int
	attrs   []string
}

// bazaar cart:add --user 2 --product 1 --qty 2 --attr size=XL
var cartAddCmd = &cobra.Command{
	Use:   "cart:add",
	Short: "Add a product to a user's cart",
	RunE: func(cmd *cobra.Command, args []string) error {
		selection := models.Attributes{}
		for _, kv := range cartFlags.attrs {
			k, v, ok := strings.Cut(kv, "=")
			if !ok {
				return fmt.Errorf("--attr wants key=value, got %q", kv)
			}
			selection = selection.With(k, v)
		}
		var variant *uint
		if cartFlags.variant != 0 {
			variant = &cartFlags.variant
		}
		return withKernel(cmd, func(ctx context.Context, k *kernel.Kernel) error {
			line, err := k.Carts.Add(ctx, cartFlags.user, cartFlags.product, cartFlags.qty, variant, selection)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "cart line %d: product %d × %d\n", line.ID, line.ProductID, line.Quantity)
			return nil
		})
	},
}

// bazaar cart:show --user 2
var cartShowCmd = &cobra.Command{
	Use:   "cart:show",
	Short: "Show a user's cart at current prices",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withKernel(cmd, func(ctx context.Context, k *kernel.Kernel) error {
			items, err := k.Carts.Items(ctx, cartFlags.user)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "LINE\tPRODUCT\tSELECTION\tQTY\tUNIT\tSUBTOTAL")
			for _, it := range items {
				fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%s\t%s\n", it.Line.ID, it.Product.Name, it.Line.Selection,
					it.Line.Quantity, it.UnitPrice.StringFixed(models.CurrencyScale), it.Subtotal.StringFixed(models.CurrencyScale))
			}
			return w.Flush()
		})
	},
}

var checkoutFlags services.CheckoutRequest

// bazaar checkout --user 2 --address "..." --phone "+1555..." --payment card
var checkoutCmd = &cobra.Command{
	Use:   "checkout",
	Short: "Place an order from a user's cart",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withKernel(cmd, func(ctx context.Context, k *kernel.Kernel) error {
			o, err := k.Checkout.Checkout(ctx, checkoutFlags)
			if err != nil {
				return err
			}
			return printJSON(cmd, o)
		})
	},
}

// bazaar order:show 7
var orderShowCmd = &cobra.Command{
	Use:   "order:show <id>",
	Short: "Print an order with its lines",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		return withKernel(cmd, func(ctx context.Context, k *kernel.Kernel) error {
			o, err := k.Orders.Find(ctx, id)
			if err != nil {
				return err
			}
			return printJSON(cmd, o)
		})
	},
}

// bazaar order:status 7 SHIPPED
var orderStatusCmd = &cobra.Command{
	Use:   "order:status <id> <status>",
	Short: "Move an order to a new status",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		to := models.OrderStatus(strings.ToUpper(args[1]))
		return withKernel(cmd, func(ctx context.Context, k *kernel.Kernel) error {
			o, err := k.Orders.Transition(ctx, id, to)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "order %d is now %s\n", o.ID, o.Status)
			return nil
		})
	},
}

func init() {
	for _, c := range []*cobra.Command{cartAddCmd, cartShowCmd} {
		c.Flags().UintVar(&cartFlags.user, "user", 0, "user id")
		_ = c.MarkFlagRequired("user")
	}
	cartAddCmd.Flags().UintVar(&cartFlags.product, "product", 0, "product id")
	cartAddCmd.Flags().UintVar(&cartFlags.variant, "variant", 0, "variant id")
	cartAddCmd.Flags().IntVar(&cartFlags.qty, "qty", 1, "quantity")
	cartAddCmd.Flags().StringArrayVar(&cartFlags.attrs, "attr", nil, "selected attribute as key=value (repeatable)")
	_ = cartAddCmd.MarkFlagRequired("product")

	checkoutCmd.Flags().UintVar(&checkoutFlags.UserID, "user", 0, "user id")
	checkoutCmd.Flags().StringVar(&checkoutFlags.DeliveryAddress, "address", "", "delivery address")
	checkoutCmd.Flags().StringVar(&checkoutFlags.DeliveryPhone, "phone", "", "delivery phone")
	checkoutCmd.Flags().StringVar(&checkoutFlags.PaymentMethod, "payment", "", "payment method; empty skips the payment record")
	_ = checkoutCmd.MarkFlagRequired("user")
}
