package health

import (
	"fmt"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/Dallionking/quantdesk/internal/tui/styles"
)

var categoryTitles = map[string]string{
	CategoryConfig:   "Configuration",
	CategoryServices: "Remote Services",
	CategoryRuntime:  "Runtime",
}

const maxMessage = 48

// FormatReport renders r as one table per category followed by a summary
// line and the overall verdict.
func FormatReport(r *Report) string {
	var b strings.Builder
	b.WriteString("\n" + styles.Title.Render("quantdesk health") + "\n")

	for _, cat := range categories {
		t := table.NewWriter()
		t.SetStyle(table.StyleLight)
		t.Style().Options.DrawBorder = false
		t.Style().Options.SeparateColumns = false
		t.Style().Options.SeparateHeader = false
		t.SetColumnConfigs([]table.ColumnConfig{
			{Number: 4, Align: text.AlignRight},
		})
		for _, res := range r.Results {
			if res.Category != cat {
				continue
			}
			t.AppendRow(table.Row{statusMark(res.Status), res.Name, shorten(res.Message), duration(res.Duration)})
		}
		if t.Length() == 0 {
			continue
		}
		b.WriteString("\n" + styles.Subtitle.Render(categoryTitles[cat]) + "\n")
		b.WriteString(t.Render() + "\n")
	}

	summary := fmt.Sprintf("%d/%d passed", r.Passed, r.Total)
	if r.Warned > 0 {
		summary += fmt.Sprintf(", %d warning(s)", r.Warned)
	}
	if r.Failed > 0 {
		summary += fmt.Sprintf(", %d failed", r.Failed)
	}
	b.WriteString("\n" + styles.Divider(56) + "\n")
	b.WriteString(styles.Dim(summary) + "  " + verdict(r) + "\n")
	b.WriteString(styles.Dim("completed in "+duration(r.Duration)) + "\n")
	return b.String()
}

func statusMark(s Status) string {
	switch s {
	case StatusPass:
		return styles.Green("✓")
	case StatusWarn:
		return styles.Gold("!")
	default:
		return styles.Red("✗")
	}
}

func verdict(r *Report) string {
	switch {
	case r.Failed > 0:
		return styles.Badge("UNHEALTHY", styles.StatusError)
	case r.Warned > 0:
		return styles.Badge("DEGRADED", styles.StatusWarn)
	default:
		return styles.Badge("HEALTHY", styles.StatusOK)
	}
}

func duration(d time.Duration) string {
	switch {
	case d < time.Millisecond:
		return "<1ms"
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	default:
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
}

func shorten(s string) string {
	runes := []rune(s)
	if len(runes) <= maxMessage {
		return s
	}
	return string(runes[:maxMessage-1]) + "…"
}
