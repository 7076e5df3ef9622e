package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/bazaar/config"
	"github.com/shashiranjanraj/bazaar/pkg/logger"
	"github.com/shashiranjanraj/bazaar/pkg/metrics"

	// Import migrations and seeders so their init() funcs register them.
	_ "github.com/shashiranjanraj/bazaar/database/migrations"
	_ "github.com/shashiranjanraj/bazaar/database/seeders"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var (
	dumpMetrics bool
	quiet       bool
)

var rootCmd = &cobra.Command{
	Use:           "bazaar",
	Short:         "Bazaar: marketplace order core",
	Long:          "Manage the marketplace database, carts, checkout and order lifecycle from the command line.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if quiet {
			logger.SetOutput(logger.New(config.AppEnv(), io.Discard))
		}
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if !dumpMetrics {
			return nil
		}
		return metrics.Dump(cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress log output")
	rootCmd.PersistentFlags().BoolVar(&dumpMetrics, "metrics", false, "print Prometheus metrics after the command")

	// Database
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(migrateRollbackCmd)
	rootCmd.AddCommand(migrateStatusCmd)
	rootCmd.AddCommand(seedCmd)

	// Catalog
	rootCmd.AddCommand(lowStockCmd)
	rootCmd.AddCommand(restockCmd)

	// Cart and orders
	rootCmd.AddCommand(cartAddCmd)
	rootCmd.AddCommand(cartShowCmd)
	rootCmd.AddCommand(checkoutCmd)
	rootCmd.AddCommand(orderShowCmd)
	rootCmd.AddCommand(orderStatusCmd)

	// Workers
	rootCmd.AddCommand(queueWorkCmd)
	rootCmd.AddCommand(queueFailedCmd)
}
