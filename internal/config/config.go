package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g.
// QUANTDESK_SERVICES_BACKTEST.
const EnvPrefix = "QUANTDESK"

// Config represents the quantdesk.yaml schema.
type Config struct {
	Services Services      `json:"services" mapstructure:"services"`
	Timeout  time.Duration `json:"timeout" mapstructure:"timeout"`
	Log      LogConfig     `json:"log" mapstructure:"log"`
	Defaults Defaults      `json:"defaults" mapstructure:"defaults"`
	Watch    WatchConfig   `json:"watch" mapstructure:"watch"`
}

// Services holds the base URLs of the remote computation services.
type Services struct {
	Backtest  string `json:"backtest" mapstructure:"backtest"`
	Valuation string `json:"valuation" mapstructure:"valuation"`
}

// LogConfig controls where and how much is logged.
type LogConfig struct {
	Level      string `json:"level" mapstructure:"level"`
	Output     string `json:"output" mapstructure:"output"` // console, file, both, none
	File       string `json:"file" mapstructure:"file"`
	MaxSize    int    `json:"maxSize" mapstructure:"maxSize"`
	MaxBackups int    `json:"maxBackups" mapstructure:"maxBackups"`
	MaxAge     int    `json:"maxAge" mapstructure:"maxAge"`
	Compress   bool   `json:"compress" mapstructure:"compress"`
}

// Defaults pre-fill the backtest form.
type Defaults struct {
	Strategy string `json:"strategy" mapstructure:"strategy"`
	Symbol   string `json:"symbol" mapstructure:"symbol"`
}

// WatchConfig tunes the attachment watcher.
type WatchConfig struct {
	Debounce time.Duration `json:"debounce" mapstructure:"debounce"`
}

// SetDefaults registers the built-in values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("services.backtest", "http://localhost:8000")
	v.SetDefault("services.valuation", "http://localhost:5000")
	v.SetDefault("timeout", 60*time.Second)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.output", "file")
	v.SetDefault("log.file", DefaultLogFile())
	v.SetDefault("log.maxSize", 10)
	v.SetDefault("log.maxBackups", 3)
	v.SetDefault("log.maxAge", 28)
	v.SetDefault("log.compress", false)
	v.SetDefault("defaults.strategy", "")
	v.SetDefault("defaults.symbol", "")
	v.SetDefault("watch.debounce", 500*time.Millisecond)
}

// singleton holds the loaded config and the file it came from.
var (
	globalCfg  *Config
	globalFile string
	mu         sync.RWMutex
)

// Load reads configuration into v. A .env file in the working directory is
// loaded first so its values can act as environment overrides. cfgFile, when
// set, replaces the search for quantdesk.{yaml,json}. A missing config file is
// not an error; defaults apply.
func Load(v *viper.Viper, cfgFile string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	SetDefaults(v)
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName(ConfigName)
		for _, dir := range SearchPaths() {
			v.AddConfigPath(dir)
		}
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var nf viper.ConfigFileNotFoundError
		if !errors.As(err, &nf) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	mu.Lock()
	globalCfg = &cfg
	globalFile = v.ConfigFileUsed()
	mu.Unlock()

	return &cfg, nil
}

// Get returns the loaded config. It panics if Load has not been called.
func Get() *Config {
	mu.RLock()
	defer mu.RUnlock()

	if globalCfg == nil {
		panic("config.Get() called before config.Load()")
	}
	return globalCfg
}

// File returns the config file used by Load, or "" when only defaults and
// environment were used.
func File() string {
	mu.RLock()
	defer mu.RUnlock()
	return globalFile
}

// WriteDefault writes a config file holding the built-in defaults to path. It
// refuses to overwrite an existing file.
func WriteDefault(path string) error {
	v := viper.New()
	SetDefaults(v)
	if err := v.SafeWriteConfigAs(path); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
