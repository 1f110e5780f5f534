package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Dallionking/quantdesk/internal/config"
	"github.com/Dallionking/quantdesk/internal/encode"
	"github.com/Dallionking/quantdesk/internal/normalize"
	"github.com/Dallionking/quantdesk/internal/render"
	"github.com/Dallionking/quantdesk/internal/schema"
	"github.com/Dallionking/quantdesk/internal/tui/views"
)

var mcInteractive bool

var monteCarloCmd = &cobra.Command{
	Use:     "montecarlo [ticker]",
	Aliases: []string{"mc"},
	Short:   "Run a Monte Carlo DCF simulation",
	Long: `Run a Monte Carlo discounted cash flow simulation of ticker on the
valuation service and print the mean, median, 10th and 90th percentile
intrinsic values. When the service returns the simulated values their spread
is shown as well.

Rates here are fractions (--revenue-growth-mean 0.08).`,
	Example: `  quantdesk montecarlo GOOGL --iterations 5000
  quantdesk mc -i`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ticker := ""
		if len(args) == 1 {
			ticker = args[0]
		}
		if mcInteractive {
			return views.RunMonteCarloForm(valuationClient(), config.Get().Timeout, ticker)
		}
		if ticker == "" {
			return errors.New("ticker is required unless -i is given")
		}

		form, err := formFromFlags(cmd, schema.MonteCarloFields, ticker)
		if err != nil {
			return err
		}
		req, err := encode.MonteCarloRequest(form)
		if err != nil {
			return err
		}

		c := valuationClient()
		res, err := submit(cmd.Context(), "monte_carlo", func(ctx context.Context) (*normalize.MonteCarloSummary, error) {
			return c.MonteCarlo(ctx, req)
		})
		if err != nil {
			fmt.Println(render.Failure(err.Error()))
			return err
		}
		fmt.Println(render.MonteCarlo(req.Ticker, res))
		return nil
	},
}

func init() {
	addFieldFlags(monteCarloCmd, schema.MonteCarloFields)
	monteCarloCmd.Flags().BoolVarP(&mcInteractive, "interactive", "i", false, "open the interactive form")
	rootCmd.AddCommand(monteCarloCmd)
}
