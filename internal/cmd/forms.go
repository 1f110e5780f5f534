package cmd

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/spf13/cobra"

	"github.com/Dallionking/quantdesk/internal/config"
	"github.com/Dallionking/quantdesk/internal/lifecycle"
	"github.com/Dallionking/quantdesk/internal/logger"
	"github.com/Dallionking/quantdesk/internal/params"
	"github.com/Dallionking/quantdesk/internal/schema"
)

// flagName turns a field name into a flag name: terminalGrowth and
// terminal_growth both become terminal-growth.
func flagName(field string) string {
	var b strings.Builder
	for i, r := range field {
		switch {
		case r == '_':
			b.WriteRune('-')
		case unicode.IsUpper(r):
			if i > 0 {
				b.WriteRune('-')
			}
			b.WriteRune(unicode.ToLower(r))
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// addFieldFlags registers one string flag per field except ticker, which is
// a positional argument. Values go through the same coercion as the forms.
func addFieldFlags(cmd *cobra.Command, fields []schema.Field) {
	for _, f := range fields {
		if f.Name == "ticker" {
			continue
		}
		cmd.Flags().String(flagName(f.Name), "", fmt.Sprintf("%s (default %s)", f.Label, schema.Text(f.Default)))
	}
}

// formFromFlags builds a form over fields with ticker and every changed flag
// applied.
func formFromFlags(cmd *cobra.Command, fields []schema.Field, ticker string) (*params.Form, error) {
	form := params.NewForm(fields)
	if err := form.SetField("ticker", ticker); err != nil {
		return nil, err
	}
	for _, f := range fields {
		name := flagName(f.Name)
		if cmd.Flags().Lookup(name) == nil || !cmd.Flags().Changed(name) {
			continue
		}
		v, _ := cmd.Flags().GetString(name)
		if err := form.SetField(f.Name, v); err != nil {
			return nil, err
		}
	}
	return form, nil
}

// submit runs call as one tracked submission under the configured timeout.
func submit[T any](ctx context.Context, what string, call func(context.Context) (T, error)) (T, error) {
	ctrl := lifecycle.New[T](config.Get().Timeout)
	ctrl.OnChange(func(s lifecycle.Snapshot[T]) {
		logger.S().Debugw("request state", "request", what, "seq", s.Seq, "state", s.State, "error", s.Message())
	})
	snap, _ := ctrl.Submit(ctx, call)
	if snap.State == lifecycle.Failed {
		var zero T
		return zero, snap.Err
	}
	return snap.Result, nil
}
