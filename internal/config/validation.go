package config

import (
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strings"

	"github.com/Dallionking/quantdesk/internal/schema"
)

// ValidationError describes a single config validation failure.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface for a single validation error.
func (ve ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", ve.Field, ve.Message)
}

var logOutputs = []string{"console", "file", "both", "none"}

// Validate checks the Config for completeness and consistency. It returns a
// slice of all discovered issues rather than stopping at the first one.
func Validate(cfg *Config) []ValidationError {
	var errs []ValidationError

	// --- Services ---
	for field, raw := range map[string]string{
		"services.backtest":  cfg.Services.Backtest,
		"services.valuation": cfg.Services.Valuation,
	} {
		if msg := checkURL(raw); msg != "" {
			errs = append(errs, ValidationError{Field: field, Message: msg})
		}
	}

	if cfg.Timeout <= 0 {
		errs = append(errs, ValidationError{
			Field:   "timeout",
			Message: fmt.Sprintf("must be > 0, got %s", cfg.Timeout),
		})
	}

	// --- Log ---
	if !slices.Contains(logOutputs, strings.ToLower(cfg.Log.Output)) {
		errs = append(errs, ValidationError{
			Field:   "log.output",
			Message: fmt.Sprintf("must be one of %s, got %q", strings.Join(logOutputs, ", "), cfg.Log.Output),
		})
	}
	if out := strings.ToLower(cfg.Log.Output); (out == "file" || out == "both") && cfg.Log.File == "" {
		errs = append(errs, ValidationError{Field: "log.file", Message: "required when logging to a file"})
	}
	if cfg.Log.MaxSize < 0 || cfg.Log.MaxBackups < 0 || cfg.Log.MaxAge < 0 {
		errs = append(errs, ValidationError{Field: "log", Message: "rotation limits must not be negative"})
	}

	// --- Defaults ---
	if cfg.Defaults.Strategy != "" {
		if _, err := schema.Builtin.Get(cfg.Defaults.Strategy); err != nil {
			errs = append(errs, ValidationError{
				Field:   "defaults.strategy",
				Message: fmt.Sprintf("unknown strategy %q (known: %s)", cfg.Defaults.Strategy, strings.Join(schema.Builtin.IDs(), ", ")),
			})
		}
	}

	if cfg.Watch.Debounce < 0 {
		errs = append(errs, ValidationError{Field: "watch.debounce", Message: "must not be negative"})
	}

	slices.SortFunc(errs, func(a, b ValidationError) int { return strings.Compare(a.Field, b.Field) })
	return errs
}

func checkURL(raw string) string {
	if raw == "" {
		return "required field is empty"
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Sprintf("invalid URL: %v", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Sprintf("scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return "missing host"
	}
	return ""
}

// Check returns Validate's findings as one error, or nil when cfg is valid.
// Commands that talk to the services refuse to start on a non-nil result.
func Check(cfg *Config) error {
	issues := Validate(cfg)
	if len(issues) == 0 {
		return nil
	}
	errs := make([]error, len(issues))
	for i, ve := range issues {
		errs[i] = ve
	}
	return errors.Join(errs...)
}
