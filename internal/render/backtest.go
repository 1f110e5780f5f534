package render

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/Dallionking/quantdesk/internal/normalize"
	"github.com/Dallionking/quantdesk/internal/tui/styles"
)

// Backtest renders the full backtest report: metrics, equity curve and the
// trade ledger.
func Backtest(res *normalize.BacktestResult, width int) string {
	if res == nil {
		return styles.Dim(NoResults)
	}
	var b strings.Builder
	b.WriteString(styles.Title.Render("Backtest Results"))
	if res.ID != "" {
		b.WriteString("  " + styles.Dim(res.ID))
	}
	b.WriteString("\n" + styles.Divider(width) + "\n")
	b.WriteString(BacktestMetrics(res.Metrics))
	b.WriteString("\n\n")
	b.WriteString(EquityCurve(res.EquityCurve, width))
	b.WriteString("\n\n")
	b.WriteString(styles.Subtitle.Render("Trades") + "\n")
	b.WriteString(Trades(res.Trades))
	return b.String()
}

// BacktestMetrics renders the Sharpe ratio and total return lines. A metric
// the service did not report is shown as N/A.
func BacktestMetrics(m normalize.Metrics) string {
	sharpe, total := NA, NA
	if m.SharpeRatio != nil {
		sharpe = Number(*m.SharpeRatio, 2)
	}
	if m.TotalReturn != nil {
		total = Percent(*m.TotalReturn)
	}

	lines := []string{
		labelValue("Sharpe Ratio", sharpe),
		labelValue("Total Return", total),
	}
	for _, k := range sortedKeys(m.Extra) {
		lines = append(lines, labelValue(humanize(k), Number(m.Extra[k], 4)))
	}
	return strings.Join(lines, "\n")
}

// EquityCurve renders a sparkline of the equity curve with its first and last
// values.
func EquityCurve(points []normalize.EquityPoint, width int) string {
	if len(points) == 0 {
		return styles.Subtitle.Render("Equity Curve") + "\n" + styles.Dim("No equity data.")
	}
	values := make([]float64, 0, len(points))
	for _, p := range points {
		if finite(p.Equity) {
			values = append(values, p.Equity)
		}
	}
	first, last := points[0], points[len(points)-1]
	sparkWidth := width - 2
	if sparkWidth > 60 {
		sparkWidth = 60
	}

	var b strings.Builder
	b.WriteString(styles.Subtitle.Render("Equity Curve") + "\n")
	b.WriteString(styles.Sparkline(values, sparkWidth) + "\n")
	b.WriteString(fmt.Sprintf("%s %s  →  %s %s",
		styles.Dim(first.Timestamp), Money(first.Equity),
		styles.Dim(last.Timestamp), colorMoney(last.Equity, first.Equity)))
	return b.String()
}

// Trades renders the trade ledger as a table, or NoTrades when empty.
func Trades(trades []normalize.Trade) string {
	if len(trades) == 0 {
		return styles.Dim(NoTrades)
	}
	t := newTable()
	t.AppendHeader(table.Row{"#", "Timestamp", "Action", "Price"})
	for i, tr := range trades {
		t.AppendRow(table.Row{i + 1, tr.Timestamp, action(tr.Action), Money(tr.Price)})
	}
	return t.Render()
}

func action(a string) string {
	switch strings.ToUpper(a) {
	case "BUY":
		return styles.Green("BUY")
	case "SELL":
		return styles.Red("SELL")
	default:
		return a
	}
}

func colorMoney(v, ref float64) string {
	s := Money(v)
	switch {
	case !finite(v) || !finite(ref):
		return s
	case v > ref:
		return styles.ProfitText.Render(s)
	case v < ref:
		return styles.LossText.Render(s)
	}
	return s
}
