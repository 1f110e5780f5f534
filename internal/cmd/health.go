package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Dallionking/quantdesk/internal/config"
	"github.com/Dallionking/quantdesk/internal/health"
)

var healthCategory string

var healthCmd = &cobra.Command{
	Use:         "health",
	Annotations: lenientConfig,
	Short:       "Check configuration and service reachability",
	Long: `Run diagnostic checks and print a report.

Checks are grouped into categories:
  config    - config file and values
  services  - backtest and valuation service reachability
  runtime   - strategy registry, log file

Use --category to run only one group. The command exits non-zero when any
check fails.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Get()
		checker := health.NewChecker(cfg, config.File(), backtestClient(), valuationClient())

		ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Timeout)
		defer cancel()

		var report *health.Report
		if healthCategory != "" {
			report = checker.RunCategory(ctx, healthCategory)
		} else {
			report = checker.RunAll(ctx)
		}
		fmt.Print(health.FormatReport(report))

		if report.Total == 0 {
			return fmt.Errorf("no checks in category %q", healthCategory)
		}
		if !report.Healthy {
			return errors.New("health check failed")
		}
		return nil
	},
}

func init() {
	healthCmd.Flags().StringVar(&healthCategory, "category", "", "run checks in a category: config, services or runtime")
	rootCmd.AddCommand(healthCmd)
}
