package views

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Dallionking/quantdesk/internal/params"
	"github.com/Dallionking/quantdesk/internal/tui/models"
	"github.com/Dallionking/quantdesk/internal/watch"
)

// RunBacktestForm launches the interactive backtest form over pm. It blocks
// until the user quits.
func RunBacktestForm(pm *params.Model, client models.Backtester, timeout time.Duration, filePath string, changes <-chan watch.Change) error {
	model := models.NewBacktestModel(pm, client, timeout, filePath, changes)
	if _, err := tea.NewProgram(model, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("running backtest form: %w", err)
	}
	return nil
}

// RunValuationForm launches the DCF valuation form.
func RunValuationForm(svc models.Valuator, timeout time.Duration, ticker string) error {
	if _, err := tea.NewProgram(models.NewValuationModel(svc, timeout, ticker), tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("running valuation form: %w", err)
	}
	return nil
}

// RunMonteCarloForm launches the Monte Carlo DCF form.
func RunMonteCarloForm(svc models.Valuator, timeout time.Duration, ticker string) error {
	if _, err := tea.NewProgram(models.NewMonteCarloModel(svc, timeout, ticker), tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("running Monte Carlo form: %w", err)
	}
	return nil
}
