package models

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/Dallionking/quantdesk/internal/schema"
	"github.com/Dallionking/quantdesk/internal/tui/components"
	"github.com/Dallionking/quantdesk/internal/tui/styles"
)

// StrategiesModel browses the strategy registry. Enter opens the parameter
// sheet of the selected strategy rendered as markdown.
type StrategiesModel struct {
	strategies []schema.Strategy
	cursor     int
	detailView bool
	detail     viewport.Model

	header components.Header
	footer components.Footer

	width  int
	height int
}

// NewStrategiesModel creates a browser over reg. When selected names a known
// strategy the detail view opens on it.
func NewStrategiesModel(reg *schema.Registry, selected string) StrategiesModel {
	m := StrategiesModel{
		strategies: reg.List(),
		header:     components.Header{Screen: "STRATEGIES", Width: 100},
		footer:     components.BrowserFooter(100),
		detail:     viewport.New(96, 24),
		width:      100,
		height:     30,
	}
	for i, s := range m.strategies {
		if s.ID == selected {
			m.cursor = i
			m.openDetail()
		}
	}
	return m
}

// Init satisfies tea.Model.
func (m StrategiesModel) Init() tea.Cmd {
	return nil
}

// Update handles keypresses and resizes.
func (m StrategiesModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.header.Width = m.width
		m.footer.Width = m.width
		m.detail.Width = clampWidth(m.width-4, 120)
		m.detail.Height = max(m.height-4, 5)
		if m.detailView {
			m.openDetail()
		}
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.detailView {
			return m.handleDetailKey(msg)
		}
		return m.handleListKey(msg)
	}
	return m, nil
}

func (m StrategiesModel) handleDetailKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "backspace", "esc":
		m.detailView = false
		m.footer = components.BrowserFooter(m.width)
		return m, nil
	}
	var cmd tea.Cmd
	m.detail, cmd = m.detail.Update(msg)
	return m, cmd
}

func (m StrategiesModel) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.strategies)-1 {
			m.cursor++
		}
	case "enter":
		if len(m.strategies) > 0 {
			m.openDetail()
		}
	}
	return m, nil
}

// openDetail renders the selected strategy sheet into the viewport.
func (m *StrategiesModel) openDetail() {
	s := m.strategies[m.cursor]
	md := schema.Markdown(s)

	out := md
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(m.detail.Width),
	)
	if err == nil {
		if rendered, err := r.Render(md); err == nil {
			out = rendered
		}
	}

	m.detail.SetContent(out)
	m.detail.GotoTop()
	m.detailView = true
	m.footer = components.Footer{
		Hints: []components.KeyHint{
			{Key: "↑↓", Desc: "scroll"},
			{Key: "esc", Desc: "back to list"},
			{Key: "q", Desc: "quit"},
		},
		Width: m.width,
	}
}

// View renders the list or the detail sheet.
func (m StrategiesModel) View() string {
	if m.detailView {
		return lipgloss.JoinVertical(lipgloss.Left, m.header.Render(), m.detail.View(), m.footer.Render())
	}

	sections := []string{m.header.Render(), ""}

	hdr := fmt.Sprintf("  %-16s %-24s %s", "ID", "NAME", "PARAMETERS")
	sections = append(sections,
		lipgloss.NewStyle().Foreground(styles.TextSecondary).Bold(true).Render(hdr),
		styles.Divider(m.width),
	)

	for i, s := range m.strategies {
		line := fmt.Sprintf("  %-16s %-24s %s", s.ID, s.DisplayName, strings.Join(schema.Names(s.Fields), ", "))
		st := styles.TableRow(i%2 == 0)
		if i == m.cursor {
			st = lipgloss.NewStyle().Background(styles.BgHover).Foreground(styles.AccentPrimary).Bold(true)
		}
		sections = append(sections, st.Width(m.width).Render(line))
	}

	sections = append(sections,
		"",
		lipgloss.NewStyle().Foreground(styles.TextMuted).PaddingLeft(2).
			Render(fmt.Sprintf("%d strategies", len(m.strategies))),
		m.footer.Render(),
	)
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}
