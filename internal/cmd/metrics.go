package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Dallionking/quantdesk/internal/normalize"
	"github.com/Dallionking/quantdesk/internal/render"
)

var metricsJSON bool

var metricsCmd = &cobra.Command{
	Use:   "metrics <ticker>",
	Short: "Show key valuation metrics and yearly history",
	Long: `Fetch key metrics for ticker from the valuation service: average P/E,
growth rates and cash flow ratios as cards, followed by the yearly P/E,
revenue, net income, free cash flow and share count tables.

A metric the service cannot compute is shown as N/A.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ticker := strings.ToUpper(strings.TrimSpace(args[0]))
		c := valuationClient()
		bundle, err := submit(cmd.Context(), "key_metrics", func(ctx context.Context) (*normalize.MetricsBundle, error) {
			return c.KeyMetrics(ctx, ticker)
		})
		if err != nil {
			fmt.Println(render.Failure(err.Error()))
			return err
		}
		if metricsJSON {
			return printMetricsJSON(bundle)
		}
		fmt.Println(render.KeyMetrics(ticker, bundle))
		return nil
	},
}

// printMetricsJSON writes the normalized bundle. NaN has no JSON form, so
// unavailable scalars are written as null.
func printMetricsJSON(b *normalize.MetricsBundle) error {
	scalars := make(map[string]*float64, len(b.Scalars))
	for k, v := range b.Scalars {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			scalars[k] = nil
			continue
		}
		scalars[k] = &v
	}
	series := make(map[string]map[string]*float64, len(b.Series))
	for k, s := range b.Series {
		m := make(map[string]*float64, s.Len())
		for i, y := range s.Years {
			v := s.Values[i]
			if math.IsNaN(v) || math.IsInf(v, 0) {
				m[y] = nil
				continue
			}
			m[y] = &v
		}
		series[k] = m
	}
	out, err := json.MarshalIndent(map[string]any{"scalars": scalars, "series": series}, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding metrics: %w", err)
	}
	fmt.Println(string(out))
	return nil
}

func init() {
	metricsCmd.Flags().BoolVar(&metricsJSON, "json", false, "print normalized metrics as JSON")
	rootCmd.AddCommand(metricsCmd)
}
