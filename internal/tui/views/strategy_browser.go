package views

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Dallionking/quantdesk/internal/schema"
	"github.com/Dallionking/quantdesk/internal/tui/models"
)

// RunStrategyBrowser launches the interactive strategy browser. A non-empty
// selected opens the parameter sheet of that strategy directly.
func RunStrategyBrowser(reg *schema.Registry, selected string) error {
	p := tea.NewProgram(models.NewStrategiesModel(reg, selected), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running strategy browser: %w", err)
	}
	return nil
}
