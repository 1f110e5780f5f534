package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Dallionking/quantdesk/internal/client"
	"github.com/Dallionking/quantdesk/internal/config"
	"github.com/Dallionking/quantdesk/internal/encode"
	"github.com/Dallionking/quantdesk/internal/lifecycle"
	"github.com/Dallionking/quantdesk/internal/logger"
	"github.com/Dallionking/quantdesk/internal/normalize"
	"github.com/Dallionking/quantdesk/internal/params"
	"github.com/Dallionking/quantdesk/internal/render"
	"github.com/Dallionking/quantdesk/internal/schema"
	"github.com/Dallionking/quantdesk/internal/tui/styles"
	"github.com/Dallionking/quantdesk/internal/tui/views"
	"github.com/Dallionking/quantdesk/internal/watch"
)

var (
	btStrategy    string
	btSymbol      string
	btStart       string
	btEnd         string
	btCapital     float64
	btParams      []string
	btFile        string
	btJSON        bool
	btDryRun      bool
	btWatch       bool
	btInteractive bool
)

// backtestOutcome keeps the raw body next to the normalized result so --json
// can print exactly what the engine returned.
type backtestOutcome struct {
	raw    []byte
	result *normalize.BacktestResult
}

var backtestCmd = &cobra.Command{
	Use:   "backtest",
	Short: "Run a strategy backtest",
	Long: `Build a backtest request from flags and submit it to the backtest engine.

Strategy parameters are set with --param name=value and must belong to the
selected strategy (see 'quantdesk strategies'). With --file the engine takes
prices from the CSV and symbol/dates are informational only.

  --watch   resubmit every time the CSV file changes
  -i        open the interactive form instead`,
	Example: `  quantdesk backtest --strategy rsi --symbol QQQ --param period=10
  quantdesk backtest --file prices.csv --watch
  quantdesk backtest -i`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Get()

		pm, err := backtestModel(cmd, cfg)
		if err != nil {
			return err
		}

		if btInteractive {
			return runBacktestForm(cmd.Context(), cfg, pm)
		}

		if pm.Attachment() != nil && (cmd.Flags().Changed("symbol") || cmd.Flags().Changed("start") || cmd.Flags().Changed("end")) {
			fmt.Fprintln(os.Stderr, styles.Gold("note: prices come from "+pm.Attachment().Name+"; symbol and dates are informational only"))
		}

		if err := encode.Validate(pm); err != nil {
			return err
		}
		if btDryRun {
			return printPayload(pm)
		}

		if btWatch {
			return watchBacktest(cmd.Context(), cfg, pm)
		}

		p, err := encode.Encode(pm)
		if err != nil {
			return err
		}
		ctrl := lifecycle.New[backtestOutcome](cfg.Timeout)
		snap, _ := submitBacktest(cmd.Context(), ctrl, backtestClient(), p)
		return printBacktest(snap)
	},
}

// backtestModel builds the parameter model from config defaults and flags.
func backtestModel(cmd *cobra.Command, cfg *config.Config) (*params.Model, error) {
	pm := params.NewModel(schema.Builtin)

	strategy := btStrategy
	if strategy == "" {
		strategy = cfg.Defaults.Strategy
	}
	if strategy != "" {
		if err := pm.SwitchStrategy(strategy); err != nil {
			return nil, err
		}
	}

	symbol := btSymbol
	if !cmd.Flags().Changed("symbol") && cfg.Defaults.Symbol != "" {
		symbol = cfg.Defaults.Symbol
	}
	set := map[string]any{}
	if symbol != "" {
		set[schema.FieldSymbol] = symbol
	}
	if cmd.Flags().Changed("start") {
		set[schema.FieldStartDate] = btStart
	}
	if cmd.Flags().Changed("end") {
		set[schema.FieldEndDate] = btEnd
	}
	if cmd.Flags().Changed("capital") {
		set[schema.FieldInitialCapital] = btCapital
	}
	for name, v := range set {
		if err := pm.SetField(name, v); err != nil {
			return nil, err
		}
	}

	for _, kv := range btParams {
		name, value, ok := strings.Cut(kv, "=")
		if !ok {
			return nil, fmt.Errorf("--param %q: expected name=value", kv)
		}
		if err := pm.SetField(strings.TrimSpace(name), strings.TrimSpace(value)); err != nil {
			return nil, err
		}
	}

	if btFile != "" && !btInteractive {
		a, err := params.LoadAttachment(btFile)
		if err != nil {
			return nil, err
		}
		pm.SetAttachment(a)
	}
	return pm, nil
}

// submitBacktest submits p through ctrl and normalizes the response.
func submitBacktest(ctx context.Context, ctrl *lifecycle.Controller[backtestOutcome], c *client.BacktestClient, p encode.Payload) (lifecycle.Snapshot[backtestOutcome], bool) {
	return ctrl.Submit(ctx, func(ctx context.Context) (backtestOutcome, error) {
		raw, err := c.Run(ctx, p)
		if err != nil {
			return backtestOutcome{}, err
		}
		res, err := normalize.Backtest(raw)
		if err != nil {
			return backtestOutcome{}, err
		}
		return backtestOutcome{raw: raw, result: res}, nil
	})
}

// printBacktest writes the outcome of snap to stdout and returns its error.
func printBacktest(snap lifecycle.Snapshot[backtestOutcome]) error {
	if snap.State == lifecycle.Failed {
		fmt.Println(render.Failure(snap.Message()))
		return snap.Err
	}
	if btJSON {
		var out bytes.Buffer
		if err := json.Indent(&out, snap.Result.raw, "", "  "); err != nil {
			os.Stdout.Write(snap.Result.raw)
			fmt.Println()
			return nil
		}
		fmt.Println(out.String())
		return nil
	}
	fmt.Println(render.Backtest(snap.Result.result, 80))
	return nil
}

func printPayload(pm *params.Model) error {
	p, err := encode.Encode(pm)
	if err != nil {
		return err
	}
	js, err := p.JSON()
	if err != nil {
		return err
	}
	var out bytes.Buffer
	_ = json.Indent(&out, js, "", "  ")
	fmt.Println(styles.Label.Render("SOURCE") + "  " + styles.Value.Render(string(p.Source)))
	if p.Attachment != nil {
		fmt.Println(styles.Label.Render("FILE") + "    " + styles.Value.Render(p.Attachment.Name))
	}
	fmt.Println(out.String())
	return nil
}

// watchBacktest submits once, then again on every change of the CSV. A slow
// response that arrives after a newer submission started is dropped.
func watchBacktest(ctx context.Context, cfg *config.Config, pm *params.Model) error {
	if btFile == "" {
		return errors.New("--watch needs --file")
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	w, err := watch.New(btFile, watch.WithDebounce(cfg.Watch.Debounce), watch.WithLogger(logger.S()))
	if err != nil {
		return err
	}
	defer w.Close()

	c := backtestClient()
	ctrl := lifecycle.New[backtestOutcome](cfg.Timeout)

	var mu sync.Mutex
	ctrl.OnChange(func(s lifecycle.Snapshot[backtestOutcome]) {
		mu.Lock()
		defer mu.Unlock()
		switch s.State {
		case lifecycle.Submitting:
			fmt.Println(styles.Dim(fmt.Sprintf("#%d submitting...", s.Seq)))
		case lifecycle.Succeeded, lifecycle.Failed:
			_ = printBacktest(s)
		}
	})

	var wg sync.WaitGroup
	submit := func() {
		if err := encode.Validate(pm); err != nil {
			fmt.Println(render.Failure(err.Error()))
			return
		}
		p, err := encode.Encode(pm)
		if err != nil {
			fmt.Println(render.Failure(err.Error()))
			return
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, applied := submitBacktest(ctx, ctrl, c, p); !applied {
				logger.S().Debugw("stale backtest response dropped")
			}
		}()
	}

	fmt.Println(styles.Cyan("watching " + w.Path() + " (ctrl+c to stop)"))
	submit()
	for change := range w.Watch(ctx) {
		if change.Err != nil {
			fmt.Println(render.Failure("reload: " + change.Err.Error()))
			continue
		}
		pm.SetAttachment(change.Attachment)
		submit()
	}
	wg.Wait()
	return nil
}

func runBacktestForm(ctx context.Context, cfg *config.Config, pm *params.Model) error {
	var changes <-chan watch.Change
	if btWatch && btFile != "" {
		w, err := watch.New(btFile, watch.WithDebounce(cfg.Watch.Debounce), watch.WithLogger(logger.S()))
		if err != nil {
			return err
		}
		defer w.Close()
		ctx, cancel := context.WithCancel(ctx)
		defer cancel()
		changes = w.Watch(ctx)
	}
	return views.RunBacktestForm(pm, backtestClient(), cfg.Timeout, btFile, changes)
}

func init() {
	f := backtestCmd.Flags()
	f.StringVarP(&btStrategy, "strategy", "s", "", "strategy id: "+strings.Join(schema.Builtin.IDs(), ", "))
	f.StringVar(&btSymbol, "symbol", "", "ticker symbol")
	f.StringVar(&btStart, "start", "", "start date (YYYY-MM-DD)")
	f.StringVar(&btEnd, "end", "", "end date (YYYY-MM-DD)")
	f.Float64Var(&btCapital, "capital", 0, "initial capital")
	f.StringArrayVarP(&btParams, "param", "p", nil, "strategy parameter name=value (repeatable)")
	f.StringVarP(&btFile, "file", "f", "", "CSV of prices with date and close columns")
	f.BoolVar(&btJSON, "json", false, "print the raw service response")
	f.BoolVar(&btDryRun, "dry-run", false, "print the encoded request without sending it")
	f.BoolVarP(&btWatch, "watch", "w", false, "resubmit when --file changes")
	f.BoolVarP(&btInteractive, "interactive", "i", false, "open the interactive form")
	rootCmd.AddCommand(backtestCmd)
}
