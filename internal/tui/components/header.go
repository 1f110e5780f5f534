package components

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/Dallionking/quantdesk/internal/lifecycle"
	"github.com/Dallionking/quantdesk/internal/tui/styles"
)

// Header renders the app header bar.
type Header struct {
	Screen   string // "BACKTEST", "VALUATION", ...
	Endpoint string // service base URL
	State    lifecycle.State
	Width    int
}

// Render returns the styled header string.
func (h Header) Render() string {
	width := h.Width
	if width <= 0 {
		width = 80
	}

	logo := lipgloss.NewStyle().
		Foreground(styles.AccentPrimary).
		Bold(true).
		Render(styles.CompactLogo)

	sep := lipgloss.NewStyle().Foreground(styles.TextMuted).Render("  │  ")

	content := logo + sep + lipgloss.NewStyle().Foreground(styles.AccentGold).Bold(true).Render(h.Screen)
	if h.Endpoint != "" {
		content += sep + styles.Label.Render("Service: ") + styles.Value.Render(h.Endpoint)
	}
	if h.State != "" {
		content += sep + StateBadge(h.State)
	}

	return lipgloss.NewStyle().
		Background(styles.BgDeep).
		Foreground(styles.TextPrimary).
		Width(width).
		PaddingLeft(1).
		PaddingRight(1).
		Render(content)
}

// StateBadge renders a lifecycle state as a colored badge.
func StateBadge(s lifecycle.State) string {
	switch s {
	case lifecycle.Submitting:
		return styles.Badge("RUNNING", styles.StatusInfo)
	case lifecycle.Succeeded:
		return styles.Badge("DONE", styles.StatusOK)
	case lifecycle.Failed:
		return styles.Badge("FAILED", styles.StatusError)
	default:
		return styles.Badge("IDLE", styles.TextMuted)
	}
}
