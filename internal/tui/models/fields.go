package models

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Dallionking/quantdesk/internal/schema"
	"github.com/Dallionking/quantdesk/internal/tui/styles"
)

// fieldInputs is one textinput per schema field with a single focus cursor.
type fieldInputs struct {
	fields []schema.Field
	inputs []textinput.Model
	focus  int
}

// newFieldInputs builds inputs for fields. text supplies each initial value.
func newFieldInputs(fields []schema.Field, text func(schema.Field) string) fieldInputs {
	fi := fieldInputs{fields: fields, inputs: make([]textinput.Model, len(fields))}
	for i, f := range fields {
		ti := textinput.New()
		ti.Prompt = "› "
		ti.CharLimit = 256
		ti.Width = 32
		ti.PromptStyle = lipgloss.NewStyle().Foreground(styles.AccentPrimary)
		ti.TextStyle = lipgloss.NewStyle().Foreground(styles.TextPrimary)
		ti.Cursor.Style = lipgloss.NewStyle().Foreground(styles.AccentPrimary)
		switch f.Kind {
		case schema.KindFile:
			ti.Placeholder = "path/to/prices.csv"
		case schema.KindDate:
			ti.Placeholder = "YYYY-MM-DD"
			ti.CharLimit = 10
		}
		ti.SetValue(text(f))
		fi.inputs[i] = ti
	}
	if len(fi.inputs) > 0 {
		fi.inputs[0].Focus()
	}
	return fi
}

// values returns the raw text of every input keyed by field name.
func (fi fieldInputs) values() map[string]string {
	out := make(map[string]string, len(fi.inputs))
	for i, f := range fi.fields {
		out[f.Name] = fi.inputs[i].Value()
	}
	return out
}

// set replaces the text of the named input.
func (fi *fieldInputs) set(name, value string) {
	for i, f := range fi.fields {
		if f.Name == name {
			fi.inputs[i].SetValue(value)
			return
		}
	}
}

func (fi *fieldInputs) move(delta int) tea.Cmd {
	if len(fi.inputs) == 0 {
		return nil
	}
	fi.inputs[fi.focus].Blur()
	fi.focus = (fi.focus + delta + len(fi.inputs)) % len(fi.inputs)
	return fi.inputs[fi.focus].Focus()
}

func (fi *fieldInputs) next() tea.Cmd { return fi.move(1) }
func (fi *fieldInputs) prev() tea.Cmd { return fi.move(-1) }

// update forwards msg to the focused input.
func (fi *fieldInputs) update(msg tea.Msg) tea.Cmd {
	if len(fi.inputs) == 0 {
		return nil
	}
	var cmd tea.Cmd
	fi.inputs[fi.focus], cmd = fi.inputs[fi.focus].Update(msg)
	return cmd
}

// view renders labeled inputs. invalid names the field of the current
// validation error, if any.
func (fi fieldInputs) view(invalid string) string {
	width := 0
	for _, f := range fi.fields {
		width = max(width, lipgloss.Width(f.Label))
	}

	var b strings.Builder
	for i, f := range fi.fields {
		label := lipgloss.NewStyle().Width(width + 2).Foreground(styles.TextSecondary)
		if i == fi.focus {
			label = label.Foreground(styles.AccentPrimary).Bold(true)
		}
		if f.Name == invalid {
			label = label.Foreground(styles.StatusError)
		}
		b.WriteString(label.Render(f.Label) + fi.inputs[i].View() + "\n")
		if i == fi.focus && f.Help != "" {
			b.WriteString(strings.Repeat(" ", width+2) + styles.Dim(f.Help) + "\n")
		}
	}
	return b.String()
}

func clampWidth(val, limit int) int {
	if val > limit {
		return limit
	}
	if val < 10 {
		return 10
	}
	return val
}
