package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Dallionking/quantdesk/internal/client"
	"github.com/Dallionking/quantdesk/internal/config"
	"github.com/Dallionking/quantdesk/internal/logger"
	"github.com/Dallionking/quantdesk/internal/tui/styles"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "quantdesk",
	Short: "Terminal client for backtests, DCF valuations and Monte Carlo runs",
	Long: `quantdesk: configure strategy backtests and company valuations from the
terminal and submit them to the remote computation services.

The backtest engine and the valuation service run elsewhere; quantdesk
builds the requests from typed forms, tracks each submission, and renders
the results.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setup(cmd, viper.GetViper())
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Sync()
	},
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Print(styles.Logo())
		fmt.Println()
		fmt.Println("Run 'quantdesk --help' for available commands")
	},
}

// annotationLenientConfig marks commands that run on an invalid config so
// they can report on it.
const annotationLenientConfig = "quantdesk/lenient-config"

var lenientConfig = map[string]string{annotationLenientConfig: "true"}

// setup loads the config into v, refuses an invalid one unless cmd or one
// of its parents is lenient, and starts the logger.
func setup(cmd *cobra.Command, v *viper.Viper) error {
	cfg, err := config.Load(v, cfgFile)
	if err != nil {
		return err
	}
	if verbose {
		cfg.Log.Level = "debug"
	}
	if !isLenient(cmd) {
		if err := config.Check(cfg); err != nil {
			return fmt.Errorf("invalid configuration (see 'quantdesk config validate'):\n%w", err)
		}
	}
	if err := config.EnsureDirectories(cfg); err != nil {
		fmt.Fprintln(os.Stderr, styles.Gold("warning: "+err.Error()))
	}
	logger.Init(cfg.Log)
	logger.S().Debugw("config loaded", "file", config.File(), "backtest", cfg.Services.Backtest, "valuation", cfg.Services.Valuation)
	return nil
}

func isLenient(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		switch c.Name() {
		case "help", "completion", cobra.ShellCompRequestCmd, cobra.ShellCompNoDescRequestCmd:
			return true
		}
		if c.Annotations[annotationLenientConfig] == "true" {
			return true
		}
	}
	return false
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./quantdesk.yaml or "+config.DefaultConfigFile()+")")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().String("backtest-url", "", "backtest service base URL")
	rootCmd.PersistentFlags().String("valuation-url", "", "valuation service base URL")
	rootCmd.PersistentFlags().Duration("timeout", 0, "request timeout")

	_ = viper.BindPFlag("services.backtest", rootCmd.PersistentFlags().Lookup("backtest-url"))
	_ = viper.BindPFlag("services.valuation", rootCmd.PersistentFlags().Lookup("valuation-url"))
	_ = viper.BindPFlag("timeout", rootCmd.PersistentFlags().Lookup("timeout"))
}

// clientOptions builds the transport options shared by both service clients.
func clientOptions(cfg *config.Config) []client.Option {
	return []client.Option{
		client.WithTimeout(cfg.Timeout),
		client.WithLogger(logger.S()),
	}
}

func backtestClient() *client.BacktestClient {
	cfg := config.Get()
	return client.NewBacktestClient(cfg.Services.Backtest, clientOptions(cfg)...)
}

func valuationClient() *client.ValuationClient {
	cfg := config.Get()
	return client.NewValuationClient(cfg.Services.Valuation, clientOptions(cfg)...)
}
