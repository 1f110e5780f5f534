package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// RoundedBorder frames dialogs.
var RoundedBorder = lipgloss.RoundedBorder()

// Card frames one metric: a raised surface with a thin border.
var Card = lipgloss.NewStyle().
	Background(BgSurface).
	Border(lipgloss.NormalBorder()).
	BorderForeground(BorderNormal).
	Padding(0, 1)

var (
	Title    = lipgloss.NewStyle().Foreground(AccentPrimary).Bold(true)
	Subtitle = lipgloss.NewStyle().Foreground(TextSecondary)
	// Label is meant for upper-case field names.
	Label = lipgloss.NewStyle().Foreground(TextMuted)
	Value = lipgloss.NewStyle().Foreground(TextPrimary).Bold(true)

	ProfitText = lipgloss.NewStyle().Foreground(StatusOK).Bold(true)
	LossText   = lipgloss.NewStyle().Foreground(StatusError).Bold(true)

	TableHeader = lipgloss.NewStyle().Foreground(TextSecondary).Bold(true).Underline(true)
)

// Badge renders "● TEXT" in color.
func Badge(text string, color lipgloss.Color) string {
	st := lipgloss.NewStyle().Foreground(color)
	return st.Render("●") + " " + st.Bold(true).Render(text)
}

// TableRow alternates row backgrounds.
func TableRow(even bool) lipgloss.Style {
	bg := BgSurface
	if even {
		bg = BgPanel
	}
	return lipgloss.NewStyle().Foreground(TextPrimary).Background(bg)
}

// Divider is a horizontal rule width cells wide.
func Divider(width int) string {
	if width <= 0 {
		return ""
	}
	return lipgloss.NewStyle().Foreground(BorderNormal).Render(strings.Repeat("─", width))
}
