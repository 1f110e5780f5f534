package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/Dallionking/quantdesk/internal/normalize"
	"github.com/Dallionking/quantdesk/internal/tui/styles"
)

type metricCard struct {
	key    string
	label  string
	format func(float64) string
}

func twoDecimals(v float64) string { return Number(v, 2) }

var metricCards = []metricCard{
	{normalize.AvgPERatio, "Avg P/E Ratio", twoDecimals},
	{normalize.RevenueGrowth, "Revenue Growth", PercentValue},
	{normalize.ProfitGrowth, "Profit Growth", PercentValue},
	{normalize.FCFGrowth, "FCF Growth", PercentValue},
	{normalize.LTLFCFRatio, "LTL / FCF", twoDecimals},
	{normalize.AvgPFCFRatio, "Avg P/FCF Ratio", twoDecimals},
}

type historyTable struct {
	key    string
	title  string
	format func(float64) string
}

var historyTables = []historyTable{
	{normalize.PERatioSeries, "P/E Ratio", twoDecimals},
	{normalize.RevenueSeries, "Revenue", Billions},
	{normalize.NetIncomeSeries, "Net Income", Billions},
	{normalize.FreeCashFlowSeries, "Free Cash Flow", Billions},
	{normalize.SharesOutstandingSeries, "Shares Outstanding", Count},
}

// MetricCard renders one labeled metric box. Each card formats only its own
// value, so a bad value never affects its neighbours.
func MetricCard(label, value string) string {
	v := styles.Value.Render(value)
	if value == NA {
		v = styles.Dim(NA)
	}
	return styles.Card.Width(20).Render(styles.Label.Render(label) + "\n" + v)
}

// MetricCards renders the key metric cards in rows of three.
func MetricCards(b *normalize.MetricsBundle) string {
	cards := make([]string, 0, len(metricCards))
	for _, c := range metricCards {
		cards = append(cards, MetricCard(c.label, c.format(b.Scalar(c.key))))
	}
	var rows []string
	for i := 0; i < len(cards); i += 3 {
		end := min(i+3, len(cards))
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cards[i:end]...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

// History renders one table per yearly series present in b, in display order.
func History(b *normalize.MetricsBundle) string {
	var sections []string
	for _, h := range historyTables {
		s, ok := b.Series[h.key]
		if !ok || s.Len() == 0 {
			continue
		}
		t := newTable()
		t.SetTitle(h.title)
		t.AppendHeader(table.Row{"Year", "Value"})
		for i := range s.Years {
			t.AppendRow(table.Row{s.Years[i], h.format(s.Values[i])})
		}
		sections = append(sections, t.Render())
	}
	if len(sections) == 0 {
		return styles.Dim("No history available.")
	}
	return strings.Join(sections, "\n\n")
}

// KeyMetrics renders the cards and history tables for ticker.
func KeyMetrics(ticker string, b *normalize.MetricsBundle) string {
	if b == nil {
		return styles.Dim(NoResults)
	}
	return styles.Title.Render("Key Metrics: "+ticker) + "\n\n" +
		MetricCards(b) + "\n\n" + History(b)
}

// MonteCarloLabels are the summary lines in display order.
var MonteCarloLabels = [4]string{"Mean", "Median", "10th Percentile", "90th Percentile"}

// MonteCarlo renders the four summary statistics as dollars with two
// decimals, followed by the spread of the raw values when any were returned.
func MonteCarlo(ticker string, m *normalize.MonteCarloSummary) string {
	if m == nil {
		return styles.Dim("Run a simulation to see results.")
	}
	var b strings.Builder
	b.WriteString(styles.Title.Render("Simulation Results: "+ticker) + "\n\n")
	values := [4]float64{m.Mean, m.Median, m.Percentile10, m.Percentile90}
	for i, label := range MonteCarloLabels {
		b.WriteString(labelValue(label+":", Money(values[i])) + "\n")
	}

	if len(m.Values) > 0 {
		sp := m.Spread()
		b.WriteString("\n" + styles.Subtitle.Render(fmt.Sprintf("Distribution (%d runs)", sp.Count)) + "\n")
		b.WriteString(styles.Sparkline(histogram(m.Values, 30), 30) + "\n")
		b.WriteString(labelValue("Std Dev", Money(sp.StdDev)) + "\n")
		b.WriteString(labelValue("Min", Money(sp.Min)) + "\n")
		b.WriteString(labelValue("Max", Money(sp.Max)) + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// histogram counts finite values into n equal-width buckets.
func histogram(values []float64, n int) []float64 {
	lo, hi := 0.0, 0.0
	seen := false
	for _, v := range values {
		if !finite(v) {
			continue
		}
		if !seen || v < lo {
			lo = v
		}
		if !seen || v > hi {
			hi = v
		}
		seen = true
	}
	out := make([]float64, n)
	if !seen {
		return out
	}
	span := hi - lo
	for _, v := range values {
		if !finite(v) {
			continue
		}
		i := 0
		if span > 0 {
			i = int((v - lo) / span * float64(n-1))
		}
		out[i]++
	}
	return out
}

// Valuation renders a DCF valuation result.
func Valuation(ticker string, v *normalize.ValuationResult) string {
	if v == nil {
		return styles.Dim(NoResults)
	}
	return styles.Title.Render("DCF Valuation: "+ticker) + "\n\n" +
		labelValue("Intrinsic Value", Money(v.IntrinsicValuePerShare)+" / share")
}
