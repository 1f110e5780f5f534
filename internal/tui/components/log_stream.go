package components

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"

	"github.com/Dallionking/quantdesk/internal/lifecycle"
	"github.com/Dallionking/quantdesk/internal/tui/styles"
)

// LogLine is one entry of the submission history.
type LogLine struct {
	Time    time.Time
	Seq     lifecycle.Ticket
	State   lifecycle.State
	Message string
}

// LogStream is a scrolling history of submissions and their outcomes.
type LogStream struct {
	lines    []LogLine
	viewport viewport.Model
	maxLines int
}

// NewLogStream creates a LogStream with the given dimensions.
func NewLogStream(width, height int) LogStream {
	vp := viewport.New(width, height)
	vp.Style = lipgloss.NewStyle().Background(styles.BgPanel)
	return LogStream{
		viewport: vp,
		maxLines: 200,
	}
}

// SetSize resizes the viewport.
func (l *LogStream) SetSize(width, height int) {
	l.viewport.Width = width
	l.viewport.Height = height
	l.viewport.SetContent(l.renderLines())
	l.viewport.GotoBottom()
}

// AddLine appends an entry and scrolls to it.
func (l *LogStream) AddLine(line LogLine) {
	l.lines = append(l.lines, line)
	if over := len(l.lines) - l.maxLines; over > 0 {
		l.lines = l.lines[over:]
	}
	l.viewport.SetContent(l.renderLines())
	l.viewport.GotoBottom()
}

// Len returns the number of entries kept.
func (l LogStream) Len() int {
	return len(l.lines)
}

// View returns the titled viewport.
func (l LogStream) View() string {
	title := lipgloss.NewStyle().Foreground(styles.TextSecondary).Bold(true).Render("History")
	return title + "\n" + l.viewport.View()
}

func stateColor(s lifecycle.State) lipgloss.Color {
	switch s {
	case lifecycle.Succeeded:
		return styles.StatusOK
	case lifecycle.Failed:
		return styles.StatusError
	case lifecycle.Submitting:
		return styles.StatusInfo
	default:
		return styles.TextMuted
	}
}

func (l *LogStream) renderLines() string {
	var b strings.Builder
	for _, line := range l.lines {
		color := stateColor(line.State)

		ts := lipgloss.NewStyle().Foreground(styles.TextMuted).Render(line.Time.Format("15:04:05"))
		seq := lipgloss.NewStyle().Foreground(styles.AccentSecondary).Render(fmt.Sprintf("#%-3d", line.Seq))
		st := lipgloss.NewStyle().Foreground(color).Bold(true).Render(fmt.Sprintf("%-10s", strings.ToUpper(string(line.State))))
		msg := lipgloss.NewStyle().Foreground(color).Render(line.Message)

		b.WriteString(ts + " " + seq + " " + st + " " + msg + "\n")
	}
	return b.String()
}
