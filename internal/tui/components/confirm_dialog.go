package components

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Dallionking/quantdesk/internal/tui/styles"
)

// ConfirmDialog is a modal yes/no prompt. It is shown when quitting while a
// request is still in flight.
type ConfirmDialog struct {
	Title     string
	Message   string
	Confirmed bool
	Done      bool
	yes       bool
}

// NewConfirmDialog creates a dialog with No selected.
func NewConfirmDialog(title, message string) ConfirmDialog {
	return ConfirmDialog{Title: title, Message: message}
}

// Update handles y/n, arrows and enter.
func (d ConfirmDialog) Update(msg tea.Msg) (ConfirmDialog, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return d, nil
	}
	switch key.String() {
	case "y", "Y":
		d.Confirmed, d.Done = true, true
	case "n", "N", "esc":
		d.Confirmed, d.Done = false, true
	case "enter":
		d.Confirmed, d.Done = d.yes, true
	case "left", "h", "tab":
		d.yes = true
	case "right", "l", "shift+tab":
		d.yes = false
	}
	return d, nil
}

// View returns the styled dialog.
func (d ConfirmDialog) View() string {
	on := lipgloss.NewStyle().
		Background(styles.AccentPrimary).
		Foreground(styles.BgDeep).
		Bold(true).
		Padding(0, 1)
	off := lipgloss.NewStyle().
		Background(styles.BgSurface).
		Foreground(styles.TextSecondary).
		Padding(0, 1)

	yesBtn, noBtn := off.Render("Yes"), on.Render("No")
	if d.yes {
		yesBtn, noBtn = on.Render("Yes"), off.Render("No")
	}

	content := lipgloss.JoinVertical(lipgloss.Center,
		styles.Title.Render(d.Title),
		"",
		lipgloss.NewStyle().Foreground(styles.TextSecondary).Render(d.Message),
		"",
		lipgloss.JoinHorizontal(lipgloss.Center, yesBtn, "  ", noBtn),
		"",
		styles.Dim("y/n or ←→ + enter"),
	)

	return lipgloss.NewStyle().
		Background(styles.BgPanel).
		Border(styles.RoundedBorder).
		BorderForeground(styles.AccentTertiary).
		Padding(1, 2).
		Width(48).
		Align(lipgloss.Center).
		Render(content)
}
