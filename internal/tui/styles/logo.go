package styles

import "github.com/charmbracelet/lipgloss"

// CompactLogo is the single-line mark used in headers and version output.
const CompactLogo = "◆ quantdesk"

const banner = `  ┌─┐ ┬ ┬ ┌─┐ ┌┐┌ ┌┬┐ ┌┬┐ ┌─┐ ┌─┐ ┬┌─
  │─┼┐│ │ ├─┤ │││  │   ││ ├┤  └─┐ ├┴┐
  └─┘└└─┘ ┴ ┴ ┘└┘  ┴  ─┴┘ └─┘ └─┘ ┴ ┴`

// Logo returns the full banner with a tagline.
func Logo() string {
	mark := lipgloss.NewStyle().Foreground(AccentPrimary).Bold(true).Render(banner)
	tag := lipgloss.NewStyle().Foreground(TextSecondary).PaddingLeft(2).
		Render("backtests, valuations and Monte Carlo runs from the terminal")
	return mark + "\n" + tag + "\n"
}
