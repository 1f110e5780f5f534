package config

import (
	"os"
	"path/filepath"
)

// ConfigName is the config file base name, without extension.
const ConfigName = "quantdesk"

// Dir returns the per-user config directory, $XDG_CONFIG_HOME/quantdesk or
// its platform equivalent. It falls back to ".quantdesk" in the working
// directory when no user config dir is known.
func Dir() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return ".quantdesk"
	}
	return filepath.Join(base, ConfigName)
}

// SearchPaths lists the directories searched for quantdesk.{yaml,json}, in
// priority order.
func SearchPaths() []string {
	return []string{".", Dir()}
}

// DefaultLogFile is where logs go when log.output includes a file.
func DefaultLogFile() string {
	return filepath.Join(Dir(), "logs", "quantdesk.log")
}

// DefaultConfigFile is where `quantdesk config init` writes.
func DefaultConfigFile() string {
	return filepath.Join(Dir(), ConfigName+".yaml")
}

// EnsureDirectories creates the config and log directories for cfg.
func EnsureDirectories(cfg *Config) error {
	dirs := []string{Dir()}
	if cfg.Log.File != "" {
		dirs = append(dirs, filepath.Dir(cfg.Log.File))
	}
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return err
		}
	}
	return nil
}
