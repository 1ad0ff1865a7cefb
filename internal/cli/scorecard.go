package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sadopc/routine/internal/scorecard"
)

func newScorecardCmd(a *app) *cobra.Command {
	var (
		driver   string
		headless bool
		out      string
		query    string
		schedule string
	)
	cmd := &cobra.Command{
		Use:   "scorecard",
		Short: "Search for a match scorecard and save a full-page screenshot",
		Long: `Opens a browser, searches for the configured query, clicks the first
result matching one of the configured phrases and saves a screenshot.

With --schedule (a cron spec such as "*/30 * * * *") captures repeat until
interrupted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := a.cfg.Scorecard
			flags := cmd.Flags()
			if flags.Changed("driver") {
				cfg.Driver = driver
			}
			if flags.Changed("headless") {
				cfg.Headless = headless
			}
			if flags.Changed("out") {
				cfg.Output = out
			}
			if flags.Changed("query") {
				cfg.Query = query
			}
			if flags.Changed("schedule") {
				cfg.Schedule = schedule
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			capture := func(ctx context.Context) error {
				runCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
				defer cancel()
				path, err := scorecard.Capture(runCtx, cfg, a.logger)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Screenshot saved to %s\n", path)
				return nil
			}

			if cfg.Schedule == "" {
				return capture(ctx)
			}
			return scorecard.Schedule(ctx, cfg.Schedule, func(ctx context.Context) {
				if err := capture(ctx); err != nil {
					a.logger.Error("scheduled capture failed", zap.Error(err))
				}
			}, a.logger)
		},
	}
	cmd.Flags().StringVar(&driver, "driver", "", "browser driver: chromedp or rod")
	cmd.Flags().BoolVar(&headless, "headless", false, "run the browser without a window")
	cmd.Flags().StringVarP(&out, "out", "o", "", "screenshot file")
	cmd.Flags().StringVar(&query, "query", "", "search query")
	cmd.Flags().StringVar(&schedule, "schedule", "", "cron spec for repeated captures")
	return cmd
}
