package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Dallionking/quantdesk/internal/config"
	"github.com/Dallionking/quantdesk/internal/tui/styles"
)

// --- config (parent) ---

var configCmd = &cobra.Command{
	Use:         "config",
	Annotations: lenientConfig,
	Short:       "Configuration management",
	Long: `View and manage quantdesk configuration.

When run without subcommands, displays the effective configuration: the
config file, then QUANTDESK_* environment variables and flags on top.

Subcommands:
  init       Write a config file with the defaults
  validate   Check the effective configuration`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Get()

		file := config.File()
		if file == "" {
			file = "(none, defaults)"
		}

		fmt.Println(styles.Title.Render("Configuration"))
		fmt.Println()
		fmt.Println(styles.Label.Render("FILE") + "       " + styles.Value.Render(file))
		fmt.Println(styles.Label.Render("TIMEOUT") + "    " + styles.Value.Render(cfg.Timeout.String()))
		fmt.Println()

		fmt.Println(styles.Subtitle.Render("Services"))
		fmt.Println(styles.Label.Render("  BACKTEST") + "   " + styles.Value.Render(cfg.Services.Backtest))
		fmt.Println(styles.Label.Render("  VALUATION") + "  " + styles.Value.Render(cfg.Services.Valuation))
		fmt.Println()

		fmt.Println(styles.Subtitle.Render("Logging"))
		fmt.Println(styles.Label.Render("  LEVEL") + "      " + styles.Value.Render(cfg.Log.Level))
		fmt.Println(styles.Label.Render("  OUTPUT") + "     " + styles.Value.Render(cfg.Log.Output))
		fmt.Println(styles.Label.Render("  FILE") + "       " + styles.Value.Render(cfg.Log.File))
		fmt.Println()

		fmt.Println(styles.Subtitle.Render("Defaults"))
		fmt.Println(styles.Label.Render("  STRATEGY") + "   " + styles.Value.Render(orDash(cfg.Defaults.Strategy)))
		fmt.Println(styles.Label.Render("  SYMBOL") + "     " + styles.Value.Render(orDash(cfg.Defaults.Symbol)))
		fmt.Println(styles.Label.Render("  DEBOUNCE") + "   " + styles.Value.Render(cfg.Watch.Debounce.String()))
		return nil
	},
}

// --- config init ---

var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write a config file with the defaults",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := config.DefaultConfigFile()
		if len(args) == 1 {
			path = args[0]
		}
		if err := config.WriteDefault(path); err != nil {
			return err
		}
		fmt.Println(styles.Green("Wrote") + " " + styles.Value.Render(path))
		return nil
	},
}

// --- config validate ---

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		errs := config.Validate(config.Get())
		if len(errs) == 0 {
			fmt.Println(styles.Green("Configuration is valid"))
			return nil
		}
		for _, e := range errs {
			fmt.Println("  " + styles.Red("✗") + " " + styles.Bold(e.Field) + "  " + styles.Dim(e.Message))
		}
		return errors.New("invalid configuration")
	},
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func init() {
	configCmd.AddCommand(configInitCmd, configValidateCmd)
	rootCmd.AddCommand(configCmd)
}
