package components

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/Dallionking/quantdesk/internal/render"
	"github.com/Dallionking/quantdesk/internal/tui/styles"
)

// MetricGauge displays a single backtest metric colored against thresholds.
// A nil Value renders as N/A.
type MetricGauge struct {
	Label      string
	Value      *float64
	Format     func(float64) string
	Thresholds [2]float64 // [warn, critical]
	HighIsGood bool       // true for Sharpe and returns
}

// SharpeGauge colors Sharpe below 1 amber and below 0 red.
func SharpeGauge(v *float64) MetricGauge {
	return MetricGauge{
		Label:      "Sharpe Ratio",
		Value:      v,
		Format:     func(f float64) string { return render.Number(f, 2) },
		Thresholds: [2]float64{1, 0},
		HighIsGood: true,
	}
}

// ReturnGauge shows a fractional total return as a percentage.
func ReturnGauge(v *float64) MetricGauge {
	return MetricGauge{
		Label:      "Total Return",
		Value:      v,
		Format:     render.Percent,
		Thresholds: [2]float64{0.05, 0},
		HighIsGood: true,
	}
}

func (m MetricGauge) gaugeColor() lipgloss.Color {
	if m.Value == nil {
		return styles.TextMuted
	}
	v := *m.Value
	warn, critical := m.Thresholds[0], m.Thresholds[1]

	if m.HighIsGood {
		if v <= critical {
			return styles.StatusError
		}
		if v <= warn {
			return styles.StatusWarn
		}
		return styles.StatusOK
	}

	if v >= critical {
		return styles.StatusError
	}
	if v >= warn {
		return styles.StatusWarn
	}
	return styles.StatusOK
}

// Render returns the value above its label.
func (m MetricGauge) Render() string {
	text := render.NA
	if m.Value != nil {
		format := m.Format
		if format == nil {
			format = func(f float64) string { return render.Number(f, 2) }
		}
		text = format(*m.Value)
	}

	return styles.Card.Render(lipgloss.JoinVertical(
		lipgloss.Center,
		lipgloss.NewStyle().Foreground(m.gaugeColor()).Bold(true).Render(text),
		lipgloss.NewStyle().Foreground(styles.TextMuted).Render(m.Label),
	))
}
