package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Dallionking/quantdesk/internal/tui/styles"
)

// TabBar is the strategy selector above the backtest form.
type TabBar struct {
	Tabs      []string
	ActiveTab int
	Width     int
}

// Next moves the selection right, wrapping around.
func (t *TabBar) Next() {
	if len(t.Tabs) == 0 {
		return
	}
	t.ActiveTab = (t.ActiveTab + 1) % len(t.Tabs)
}

// Prev moves the selection left, wrapping around.
func (t *TabBar) Prev() {
	if len(t.Tabs) == 0 {
		return
	}
	t.ActiveTab = (t.ActiveTab - 1 + len(t.Tabs)) % len(t.Tabs)
}

// Render draws the tabs on one line. The active tab is underlined and
// marked with a caret so it stays visible without color.
func (t TabBar) Render() string {
	if len(t.Tabs) == 0 {
		return ""
	}

	base := lipgloss.NewStyle().Padding(0, 1)
	active := base.Foreground(styles.AccentPrimary).Bold(true).Underline(true)
	idle := base.Foreground(styles.TextSecondary)

	var b strings.Builder
	for i, tab := range t.Tabs {
		if i > 0 {
			b.WriteString(styles.Dim("│"))
		}
		if i == t.ActiveTab {
			b.WriteString(active.Render("▸ " + tab))
			continue
		}
		b.WriteString(idle.Render("  " + tab))
	}
	return lipgloss.NewStyle().Background(styles.BgDeep).Width(t.Width).Render(b.String())
}
