package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Dallionking/quantdesk/internal/lifecycle"
	"github.com/Dallionking/quantdesk/internal/tui/styles"
)

// ProgressStep shows a multi-step progress indicator.
type ProgressStep struct {
	Steps   []string // step labels
	Current int      // 0-indexed current step
	Failed  bool     // current step is drawn in the error color
}

// LifecycleSteps maps a request lifecycle state onto Edit, Submit and Result.
func LifecycleSteps(s lifecycle.State) ProgressStep {
	p := ProgressStep{Steps: []string{"Edit", "Submit", "Result"}}
	switch s {
	case lifecycle.Submitting:
		p.Current = 1
	case lifecycle.Succeeded:
		p.Current = 3
	case lifecycle.Failed:
		p.Current = 2
		p.Failed = true
	}
	return p
}

// Render returns the styled progress indicator.
// Completed steps get a filled green dot, the current step gets a cyan bold
// dot, and future steps get an empty muted circle.
func (p ProgressStep) Render() string {
	if len(p.Steps) == 0 {
		return ""
	}

	parts := make([]string, 0, len(p.Steps))
	for i, label := range p.Steps {
		var st lipgloss.Style
		dot := "●"

		switch {
		case i < p.Current:
			st = lipgloss.NewStyle().Foreground(styles.StatusOK)
		case i == p.Current && p.Failed:
			st = lipgloss.NewStyle().Foreground(styles.StatusError).Bold(true)
			dot = "✗"
		case i == p.Current:
			st = lipgloss.NewStyle().Foreground(styles.AccentPrimary).Bold(true)
		default:
			st = lipgloss.NewStyle().Foreground(styles.TextMuted)
			dot = "○"
		}

		parts = append(parts, st.Render(dot)+" "+st.Render(label))
	}

	return strings.Join(parts, "  ")
}
