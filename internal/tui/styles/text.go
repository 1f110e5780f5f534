package styles

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Cyan renders s in AccentPrimary.
func Cyan(s string) string {
	return lipgloss.NewStyle().Foreground(AccentPrimary).Render(s)
}

// Gold renders s in AccentGold.
func Gold(s string) string {
	return lipgloss.NewStyle().Foreground(AccentGold).Render(s)
}

// Green renders s in StatusOK.
func Green(s string) string {
	return lipgloss.NewStyle().Foreground(StatusOK).Render(s)
}

// Red renders s in StatusError.
func Red(s string) string {
	return lipgloss.NewStyle().Foreground(StatusError).Render(s)
}

// Dim renders s in TextMuted.
func Dim(s string) string {
	return lipgloss.NewStyle().Foreground(TextMuted).Render(s)
}

// Bold renders s in bold TextPrimary.
func Bold(s string) string {
	return lipgloss.NewStyle().Bold(true).Foreground(TextPrimary).Render(s)
}

// brailleRamp maps normalized 0..7 buckets to braille bar characters.
var brailleRamp = []rune{'⡀', '⡄', '⡆', '⡇', '⣇', '⣧', '⣷', '⣿'}

// Sparkline draws values as a braille bar chart width columns wide. Each
// column is the mean of the values that fall in it; NaN and infinite values
// are skipped, and a column left with no finite value is drawn blank.
func Sparkline(values []float64, width int) string {
	if len(values) == 0 || width <= 0 {
		return ""
	}
	if width > len(values) {
		width = len(values)
	}

	cols := make([]float64, width)
	have := make([]bool, width)
	lo, hi := math.Inf(1), math.Inf(-1)
	for c := range width {
		from, to := c*len(values)/width, (c+1)*len(values)/width
		var sum float64
		var n int
		for _, v := range values[from:to] {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				continue
			}
			sum += v
			n++
		}
		if n == 0 {
			continue
		}
		cols[c], have[c] = sum/float64(n), true
		lo, hi = math.Min(lo, cols[c]), math.Max(hi, cols[c])
	}

	top := len(brailleRamp) - 1
	var b strings.Builder
	for c := range width {
		switch {
		case !have[c]:
			b.WriteRune(' ')
		case hi == lo:
			b.WriteRune(brailleRamp[top/2])
		default:
			b.WriteRune(brailleRamp[int(math.Round((cols[c]-lo)/(hi-lo)*float64(top)))])
		}
	}
	return lipgloss.NewStyle().Foreground(AccentPrimary).Render(b.String())
}
