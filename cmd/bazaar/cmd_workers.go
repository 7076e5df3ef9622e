package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/bazaar/internal/kernel"
	"github.com/shashiranjanraj/bazaar/pkg/logger"
	"github.com/shashiranjanraj/bazaar/pkg/schedule"
)

var (
	queueWorkersFlag int
	lowStockEvery    time.Duration
	lowStockCron     string
)

// bazaar queue:work
var queueWorkCmd = &cobra.Command{
	Use:   "queue:work",
	Short: "Run queue workers and the periodic low-stock sweep until interrupted",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		return withKernel(cmd, func(_ context.Context, k *kernel.Kernel) error {
			workers := queueWorkersFlag
			if workers < 1 {
				workers = 1
			}
			k.Queue.Start(ctx, workers)
			defer k.Queue.Stop()

			s := schedule.New()
			err := scheduleLowStock(s, lowStockEvery, lowStockCron, func(ctx context.Context) error {
				products, err := k.Catalog.LowStock(ctx)
				if err != nil {
					return err
				}
				for _, p := range products {
					logger.WithCtx(ctx).Warn("product stock is low", "product_id", p.ID, "sku", p.SKU, "stock", p.Stock)
				}
				return nil
			})
			if err != nil {
				return err
			}
			for _, line := range s.List() {
				fmt.Fprintln(cmd.OutOrStdout(), "scheduled:", line)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "queue worker started (%d workers), Ctrl+C to stop\n", workers)
			s.Run(ctx)
			return nil
		})
	},
}

// scheduleLowStock registers the sweep on cron when given, otherwise every
// interval.
func scheduleLowStock(s *schedule.Scheduler, every time.Duration, cron string, task schedule.Task) error {
	if cron != "" {
		return s.Cron(cron, "low-stock-sweep", task)
	}
	s.Every(every, "low-stock-sweep", task)
	return nil
}

// bazaar queue:failed
var queueFailedCmd = &cobra.Command{
	Use:   "queue:failed",
	Short: "List jobs that exhausted their retries",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withKernel(cmd, func(ctx context.Context, k *kernel.Kernel) error {
			failed, err := k.Queue.Failed(ctx)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTYPE\tATTEMPTS\tFAILED AT\tERROR")
			for _, f := range failed {
				fmt.Fprintf(w, "%d\t%s\t%d\t%s\t%s\n", f.ID, f.JobType, f.Attempts, f.FailedAt.Format(time.RFC3339), f.Error)
			}
			return w.Flush()
		})
	},
}

func init() {
	queueWorkCmd.Flags().IntVarP(&queueWorkersFlag, "workers", "w", 2, "number of concurrent workers")
	queueWorkCmd.Flags().DurationVar(&lowStockEvery, "low-stock-every", time.Hour, "interval of the low-stock sweep")
	queueWorkCmd.Flags().StringVar(&lowStockCron, "low-stock-cron", "", `cron expression for the low-stock sweep, e.g. "0 */6 * * *" (overrides --low-stock-every)`)
}
