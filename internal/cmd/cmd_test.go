package cmd

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dallionking/quantdesk/internal/config"
	"github.com/Dallionking/quantdesk/internal/encode"
	"github.com/Dallionking/quantdesk/internal/schema"
)

// isolate points config discovery at empty directories and silences logging.
func isolate(t *testing.T) {
	t.Helper()
	t.Chdir(t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())
	t.Setenv("QUANTDESK_LOG_OUTPUT", "none")
}

func TestSetupRefusesInvalidConfig(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
		want  string
	}{
		{"zero timeout", "QUANTDESK_TIMEOUT", "0s", "timeout: must be > 0"},
		{"negative timeout", "QUANTDESK_TIMEOUT", "-5s", "timeout: must be > 0"},
		{"bad backtest url", "QUANTDESK_SERVICES_BACKTEST", "ftp://engine:8000", "services.backtest"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			t.Setenv(tt.key, tt.value)

			for _, c := range []*cobra.Command{backtestCmd, valuationCmd, metricsCmd, monteCarloCmd, strategiesCmd} {
				err := setup(c, viper.New())
				require.Error(t, err, c.Name())
				assert.Contains(t, err.Error(), tt.want)
			}

			for _, c := range []*cobra.Command{healthCmd, configCmd, configValidateCmd, configInitCmd, versionCmd} {
				assert.NoError(t, setup(c, viper.New()), c.Name())
			}
		})
	}
}

func TestSetupAcceptsDefaults(t *testing.T) {
	isolate(t)
	require.NoError(t, setup(backtestCmd, viper.New()))
	assert.Positive(t, int64(config.Get().Timeout))
}

func TestFlagName(t *testing.T) {
	tests := map[string]string{
		"ticker":              "ticker",
		"terminalGrowth":      "terminal-growth",
		"revenue_growth_mean": "revenue-growth-mean",
		"stdDev":              "std-dev",
	}
	for in, want := range tests {
		assert.Equal(t, want, flagName(in), in)
	}
}

// parseBacktestFlags resets the backtest flags to their defaults and parses
// args.
func parseBacktestFlags(t *testing.T, args ...string) {
	t.Helper()
	btParams = nil
	backtestCmd.Flags().VisitAll(func(f *pflag.Flag) {
		if f.Value.Type() != "stringArray" {
			require.NoError(t, f.Value.Set(f.DefValue))
		}
		f.Changed = false
	})
	require.NoError(t, backtestCmd.Flags().Parse(args))
	t.Cleanup(func() { btParams = nil })
}

func TestBacktestModel(t *testing.T) {
	defaults := &config.Config{Defaults: config.Defaults{Strategy: schema.StrategyRSI, Symbol: "QQQ"}}

	tests := []struct {
		name     string
		cfg      *config.Config
		args     []string
		strategy string
		symbol   string
		values   map[string]any
	}{
		{
			name:     "built-in defaults",
			cfg:      &config.Config{},
			strategy: schema.StrategyMACrossover,
			symbol:   "SPY",
			values:   map[string]any{"short_window": 10.0, "long_window": 50.0},
		},
		{
			name:     "config defaults",
			cfg:      defaults,
			strategy: schema.StrategyRSI,
			symbol:   "QQQ",
			values:   map[string]any{"period": 14.0},
		},
		{
			name:     "params apply to the config default strategy",
			cfg:      defaults,
			args:     []string{"--param", "period=10", "-p", " oversold = 25 "},
			strategy: schema.StrategyRSI,
			symbol:   "QQQ",
			values:   map[string]any{"period": 10.0, "oversold": 25.0, "overbought": 70.0},
		},
		{
			name:     "flags win over config",
			cfg:      defaults,
			args:     []string{"--strategy", schema.StrategyBollinger, "--symbol", "AAPL", "--capital", "5000"},
			strategy: schema.StrategyBollinger,
			symbol:   "AAPL",
			values:   map[string]any{"period": 20.0, schema.FieldInitialCapital: 5000.0},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parseBacktestFlags(t, tt.args...)

			pm, err := backtestModel(backtestCmd, tt.cfg)
			require.NoError(t, err)
			assert.Equal(t, tt.strategy, pm.StrategyID())
			sym, _ := pm.Value(schema.FieldSymbol)
			assert.Equal(t, tt.symbol, sym)
			for name, want := range tt.values {
				got, ok := pm.Value(name)
				require.True(t, ok, name)
				assert.Equal(t, want, got, name)
			}

			require.NoError(t, encode.Validate(pm))
			p, err := encode.Encode(pm)
			require.NoError(t, err)
			assert.Equal(t, encode.SourceSymbol, p.Source)
		})
	}
}

func TestBacktestModelRejectsBadParams(t *testing.T) {
	tests := map[string][]string{
		"missing equals":            {"--param", "period"},
		"field of another strategy": {"--strategy", schema.StrategyRSI, "--param", "short_window=5"},
		"unknown strategy":          {"--strategy", "momentum"},
		"unreadable file":           {"--file", "/no/such/prices.csv"},
	}
	for name, args := range tests {
		t.Run(name, func(t *testing.T) {
			parseBacktestFlags(t, args...)
			_, err := backtestModel(backtestCmd, &config.Config{})
			assert.Error(t, err)
		})
	}
}

func TestFormFromFlags(t *testing.T) {
	cmd := &cobra.Command{Use: "valuation"}
	addFieldFlags(cmd, schema.ValuationFields)
	assert.Nil(t, cmd.Flags().Lookup("ticker"))
	require.NoError(t, cmd.Flags().Parse([]string{"--growth", "6", "--terminal-growth", "2.5"}))

	form, err := formFromFlags(cmd, schema.ValuationFields, "aapl")
	require.NoError(t, err)

	req, err := encode.ValuationRequest(form)
	require.NoError(t, err)
	assert.Equal(t, "AAPL", req.Ticker)
	assert.InDelta(t, 0.06, req.Growth, 1e-12)
	assert.InDelta(t, 0.025, req.TerminalGrowth, 1e-12)
	assert.InDelta(t, 0.10, req.Discount, 1e-12)
}
