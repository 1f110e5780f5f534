package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Dallionking/quantdesk/internal/tui/styles"
)

// KeyHint is one key and what it does.
type KeyHint struct {
	Key  string
	Desc string
}

// Footer is the key hint line at the bottom of every screen. Hints that do
// not fit in Width are dropped from the end.
type Footer struct {
	Hints []KeyHint
	Width int
}

// Render returns the styled footer string.
func (f Footer) Render() string {
	width := f.Width
	if width <= 0 {
		width = 80
	}

	keyStyle := lipgloss.NewStyle().Foreground(styles.AccentPrimary).Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(styles.TextMuted)

	sep := descStyle.Render(" • ")
	var parts []string
	used := 2
	for _, h := range f.Hints {
		hint := keyStyle.Render(h.Key) + " " + descStyle.Render(h.Desc)
		w := lipgloss.Width(hint)
		if len(parts) > 0 {
			w += lipgloss.Width(sep)
		}
		if used+w > width {
			break
		}
		parts = append(parts, hint)
		used += w
	}

	return lipgloss.NewStyle().
		Background(styles.BgDeep).
		Foreground(styles.TextMuted).
		Width(width).
		PaddingLeft(1).
		PaddingRight(1).
		Render(strings.Join(parts, sep))
}

// BacktestFooter is shown on the backtest form, which has strategy tabs.
func BacktestFooter(width int) Footer {
	return Footer{
		Hints: []KeyHint{
			{Key: "enter", Desc: "run"},
			{Key: "tab", Desc: "field"},
			{Key: "ctrl+←→", Desc: "strategy"},
			{Key: "ctrl+r", Desc: "reset"},
			{Key: "esc", Desc: "quit"},
		},
		Width: width,
	}
}

// FormFooter is shown on single-form screens.
func FormFooter(width int) Footer {
	return Footer{
		Hints: []KeyHint{
			{Key: "tab", Desc: "next field"},
			{Key: "shift+tab", Desc: "prev field"},
			{Key: "enter", Desc: "submit"},
			{Key: "esc", Desc: "quit"},
		},
		Width: width,
	}
}

// BrowserFooter is shown on the strategy browser.
func BrowserFooter(width int) Footer {
	return Footer{
		Hints: []KeyHint{
			{Key: "↑↓", Desc: "navigate"},
			{Key: "enter", Desc: "details"},
			{Key: "q", Desc: "quit"},
		},
		Width: width,
	}
}
