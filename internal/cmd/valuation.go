package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Dallionking/quantdesk/internal/config"
	"github.com/Dallionking/quantdesk/internal/dcf"
	"github.com/Dallionking/quantdesk/internal/encode"
	"github.com/Dallionking/quantdesk/internal/normalize"
	"github.com/Dallionking/quantdesk/internal/render"
	"github.com/Dallionking/quantdesk/internal/schema"
	"github.com/Dallionking/quantdesk/internal/tui/styles"
	"github.com/Dallionking/quantdesk/internal/tui/views"
)

var (
	valFCF         float64
	valShares      float64
	valEPS         float64
	valPeerPE      float64
	valWithMetrics bool
	valInteractive bool
)

var valuationCmd = &cobra.Command{
	Use:   "valuation [ticker]",
	Short: "Request a DCF valuation",
	Long: `Request a discounted cash flow valuation of ticker from the valuation service.

Rates are entered in percent (--growth 8 means 8%) and sent as fractions.

With --fcf and --shares a local DCF preview is printed next to the service's
answer; with --eps the Graham number and, given --peer-pe, a peer P/E
valuation are added.`,
	Example: `  quantdesk valuation AAPL --growth 6 --discount 9
  quantdesk valuation MSFT --metrics
  quantdesk valuation AAPL --fcf 99.6e9 --shares 15.2e9 --eps 6.1 --peer-pe 24`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ticker := ""
		if len(args) == 1 {
			ticker = args[0]
		}
		if valInteractive {
			return views.RunValuationForm(valuationClient(), config.Get().Timeout, ticker)
		}
		if ticker == "" {
			return errors.New("ticker is required unless -i is given")
		}

		form, err := formFromFlags(cmd, schema.ValuationFields, ticker)
		if err != nil {
			return err
		}
		req, err := encode.ValuationRequest(form)
		if err != nil {
			return err
		}

		c := valuationClient()
		res, err := submit(cmd.Context(), "valuation", func(ctx context.Context) (*normalize.ValuationResult, error) {
			return c.Valuate(ctx, req)
		})
		if err != nil {
			fmt.Println(render.Failure(err.Error()))
			return err
		}
		fmt.Println(render.Valuation(req.Ticker, res))

		if preview := localPreview(req); preview != "" {
			fmt.Println()
			fmt.Println(preview)
		}

		if valWithMetrics {
			bundle, err := submit(cmd.Context(), "key_metrics", func(ctx context.Context) (*normalize.MetricsBundle, error) {
				return c.KeyMetrics(ctx, req.Ticker)
			})
			fmt.Println()
			if err != nil {
				fmt.Println(render.Failure("key metrics: " + err.Error()))
				return err
			}
			fmt.Println(render.KeyMetrics(req.Ticker, bundle))
		}
		return nil
	},
}

// localPreview values the company with the closed-form models when the
// needed flags are given.
func localPreview(req encode.ValuationBody) string {
	var lines []string
	if valFCF != 0 && valShares > 0 {
		in := dcf.Inputs{
			FreeCashFlow:   valFCF,
			Growth:         req.Growth,
			Discount:       req.Discount,
			Years:          req.Years,
			TerminalGrowth: req.TerminalGrowth,
		}
		if v, err := dcf.PerShare(in, valShares); err != nil {
			lines = append(lines, render.Failure("local DCF: "+err.Error()))
		} else {
			lines = append(lines, render.Row("Local DCF", render.Money(v)+" / share"))
		}
	}
	if valEPS != 0 {
		lines = append(lines, render.Row("Graham Number", render.Money(dcf.Graham(valEPS, req.Growth))))
		if valPeerPE > 0 {
			lines = append(lines, render.Row("Peer P/E", render.Money(dcf.PEMultiple(valEPS, valPeerPE))))
		}
	}
	if len(lines) == 0 {
		return ""
	}
	out := styles.Subtitle.Render("Local Preview")
	for _, l := range lines {
		out += "\n" + l
	}
	return out
}

func init() {
	addFieldFlags(valuationCmd, schema.ValuationFields)
	f := valuationCmd.Flags()
	f.Float64Var(&valFCF, "fcf", 0, "latest free cash flow for the local preview")
	f.Float64Var(&valShares, "shares", 0, "shares outstanding for the local preview")
	f.Float64Var(&valEPS, "eps", 0, "earnings per share for the Graham and P/E previews")
	f.Float64Var(&valPeerPE, "peer-pe", 0, "peer P/E multiple")
	f.BoolVar(&valWithMetrics, "metrics", false, "also fetch key metrics")
	f.BoolVarP(&valInteractive, "interactive", "i", false, "open the interactive form")
	rootCmd.AddCommand(valuationCmd)
}
