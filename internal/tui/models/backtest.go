package models

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Dallionking/quantdesk/internal/encode"
	"github.com/Dallionking/quantdesk/internal/lifecycle"
	"github.com/Dallionking/quantdesk/internal/logger"
	"github.com/Dallionking/quantdesk/internal/normalize"
	"github.com/Dallionking/quantdesk/internal/params"
	"github.com/Dallionking/quantdesk/internal/render"
	"github.com/Dallionking/quantdesk/internal/schema"
	"github.com/Dallionking/quantdesk/internal/tui/components"
	"github.com/Dallionking/quantdesk/internal/tui/styles"
	"github.com/Dallionking/quantdesk/internal/watch"
)

// Backtester runs a backtest against the remote engine.
type Backtester interface {
	Endpoint() string
	Backtest(ctx context.Context, p encode.Payload) (*normalize.BacktestResult, error)
}

// ---------------------------------------------------------------------------
// Messages
// ---------------------------------------------------------------------------

// backtestDoneMsg carries the outcome of one submission back to Update.
type backtestDoneMsg struct {
	ticket lifecycle.Ticket
	result *normalize.BacktestResult
	err    error
}

// fileChangedMsg is sent when the watched CSV changes on disk.
type fileChangedMsg struct {
	change watch.Change
	ok     bool
}

// ---------------------------------------------------------------------------
// Model
// ---------------------------------------------------------------------------

// BacktestModel is the interactive backtest form: strategy tabs, one input per
// active field, and the results of the latest applied submission.
type BacktestModel struct {
	params     *params.Model
	client     Backtester
	ctrl       *lifecycle.Controller[*normalize.BacktestResult]
	strategies []schema.Strategy
	changes    <-chan watch.Change

	inputs  fieldInputs
	tabBar  components.TabBar
	header  components.Header
	footer  components.Footer
	spin    spinner.Model
	history components.LogStream
	confirm *components.ConfirmDialog

	formErr error
	width   int
	height  int
}

// NewBacktestModel creates the form over pm. filePath prefills the upload
// field; changes, when non-nil, triggers a resubmission for every reload.
func NewBacktestModel(pm *params.Model, client Backtester, timeout time.Duration, filePath string, changes <-chan watch.Change) BacktestModel {
	strategies := pm.Registry().List()
	active := 0
	tabs := make([]string, len(strategies))
	for i, s := range strategies {
		tabs[i] = s.DisplayName
		if s.ID == pm.StrategyID() {
			active = i
		}
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(styles.AccentPrimary)

	m := BacktestModel{
		params:     pm,
		client:     client,
		ctrl:       lifecycle.New[*normalize.BacktestResult](timeout),
		strategies: strategies,
		changes:    changes,
		tabBar:     components.TabBar{Tabs: tabs, ActiveTab: active, Width: 100},
		header:     components.Header{Screen: "BACKTEST", Endpoint: client.Endpoint(), State: lifecycle.Idle, Width: 100},
		footer:     components.BacktestFooter(100),
		spin:       sp,
		history:    components.NewLogStream(96, 5),
		width:      100,
		height:     40,
	}
	m.inputs = m.buildInputs(map[string]string{schema.FieldFile: filePath})
	return m
}

// buildInputs creates inputs for the active fields. Base fields take their
// text from keep when present; everything else shows the model value.
func (m BacktestModel) buildInputs(keep map[string]string) fieldInputs {
	return newFieldInputs(m.params.ActiveFields(), func(f schema.Field) string {
		if _, base := schema.Find(schema.BacktestBaseFields, f.Name); base {
			if v, ok := keep[f.Name]; ok {
				return v
			}
		}
		v, _ := m.params.Value(f.Name)
		return schema.Text(v)
	})
}

// ---------------------------------------------------------------------------
// Bubble Tea interface
// ---------------------------------------------------------------------------

// Init starts listening for file changes when watching.
func (m BacktestModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, waitForChange(m.changes))
}

// Update handles keypresses and messages.
func (m BacktestModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.tabBar.Width = m.width
		m.header.Width = m.width
		m.footer.Width = m.width
		m.history.SetSize(clampWidth(m.width-4, 160), 5)
		return m, nil

	case spinner.TickMsg:
		if m.ctrl.Snapshot().State != lifecycle.Submitting {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case backtestDoneMsg:
		return m.resolve(msg), nil

	case fileChangedMsg:
		if !msg.ok {
			return m, nil
		}
		next := waitForChange(m.changes)
		if msg.change.Err != nil {
			m.formErr = msg.change.Err
			m.history.AddLine(components.LogLine{
				Time: msg.change.Time, Seq: m.ctrl.Snapshot().Seq, State: lifecycle.Failed,
				Message: "reload: " + msg.change.Err.Error(),
			})
			return m, next
		}
		m.params.SetAttachment(msg.change.Attachment)
		model, cmd := m.submit(false)
		return model, tea.Batch(cmd, next)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, m.inputs.update(msg)
}

func (m BacktestModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.confirm != nil {
		d, _ := m.confirm.Update(msg)
		if d.Done {
			if d.Confirmed {
				return m, tea.Quit
			}
			m.confirm = nil
			return m, nil
		}
		m.confirm = &d
		return m, nil
	}

	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc":
		if m.ctrl.Snapshot().State == lifecycle.Submitting {
			d := components.NewConfirmDialog("Quit?", "A backtest is still running.")
			m.confirm = &d
			return m, nil
		}
		return m, tea.Quit
	case "tab", "down":
		return m, m.inputs.next()
	case "shift+tab", "up":
		return m, m.inputs.prev()
	case "ctrl+right", "ctrl+n":
		return m.switchStrategy(1)
	case "ctrl+left", "ctrl+p":
		return m.switchStrategy(-1)
	case "ctrl+r":
		return m.reset()
	case "enter":
		return m.submit(true)
	}

	return m, m.inputs.update(msg)
}

// ---------------------------------------------------------------------------
// Actions
// ---------------------------------------------------------------------------

func (m BacktestModel) switchStrategy(delta int) (tea.Model, tea.Cmd) {
	if len(m.strategies) < 2 {
		return m, nil
	}
	keep := m.inputs.values()
	if delta > 0 {
		m.tabBar.Next()
	} else {
		m.tabBar.Prev()
	}
	if err := m.params.SwitchStrategy(m.strategies[m.tabBar.ActiveTab].ID); err != nil {
		m.formErr = err
		return m, nil
	}
	m.formErr = nil
	m.inputs = m.buildInputs(keep)
	return m, textinput.Blink
}

// reset puts every field of the current strategy back to its default.
func (m BacktestModel) reset() (tea.Model, tea.Cmd) {
	if err := m.params.SwitchStrategy(m.params.StrategyID()); err != nil {
		m.formErr = err
		return m, nil
	}
	for _, f := range schema.BacktestBaseFields {
		if f.Kind != schema.KindFile {
			_ = m.params.SetField(f.Name, f.Default)
		}
	}
	m.params.SetAttachment(nil)
	m.formErr = nil
	m.inputs = m.buildInputs(nil)
	return m, nil
}

// apply copies the input text into the parameter model. With reload set the
// upload is read again from the path in the file field.
func (m BacktestModel) apply(reload bool) error {
	for name, text := range m.inputs.values() {
		if name != schema.FieldFile {
			if err := m.params.SetField(name, text); err != nil {
				return err
			}
			continue
		}
		if !reload {
			continue
		}
		path := strings.TrimSpace(text)
		if path == "" {
			m.params.SetAttachment(nil)
			continue
		}
		a, err := params.LoadAttachment(path)
		if err != nil {
			return &schema.ValidationError{Field: schema.FieldFile, Message: "cannot be read", Err: err}
		}
		m.params.SetAttachment(a)
	}
	return nil
}

// submit validates locally and, when valid, starts a new submission.
func (m BacktestModel) submit(reload bool) (tea.Model, tea.Cmd) {
	if err := m.apply(reload); err != nil {
		m.formErr = err
		return m, nil
	}
	if err := encode.Validate(m.params); err != nil {
		m.formErr = err
		return m, nil
	}
	p, err := encode.Encode(m.params)
	if err != nil {
		m.formErr = err
		return m, nil
	}
	m.formErr = nil

	t := m.ctrl.Begin()
	m.header.State = lifecycle.Submitting
	m.history.AddLine(components.LogLine{
		Time: time.Now(), Seq: t, State: lifecycle.Submitting,
		Message: fmt.Sprintf("%s (%s)", m.params.Strategy().DisplayName, p.Source),
	})
	logger.S().Debugw("backtest submitted", "seq", t, "strategy", m.params.StrategyID(), "source", p.Source)

	ctrl, client := m.ctrl, m.client
	run := func() tea.Msg {
		res, err := ctrl.Call(context.Background(), func(ctx context.Context) (*normalize.BacktestResult, error) {
			return client.Backtest(ctx, p)
		})
		return backtestDoneMsg{ticket: t, result: res, err: err}
	}
	return m, tea.Batch(m.spin.Tick, run)
}

// resolve applies a finished submission unless a newer one superseded it.
func (m BacktestModel) resolve(msg backtestDoneMsg) BacktestModel {
	if !m.ctrl.Resolve(msg.ticket, msg.result, msg.err) {
		logger.S().Debugw("stale backtest response dropped", "seq", msg.ticket)
		return m
	}
	snap := m.ctrl.Snapshot()
	m.header.State = snap.State

	line := components.LogLine{Time: time.Now(), Seq: msg.ticket, State: snap.State, Message: "ok"}
	if snap.State == lifecycle.Failed {
		line.Message = snap.Message()
		logger.S().Warnw("backtest failed", "seq", msg.ticket, "error", msg.err)
	}
	m.history.AddLine(line)
	return m
}

func waitForChange(ch <-chan watch.Change) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		c, ok := <-ch
		return fileChangedMsg{change: c, ok: ok}
	}
}

// ---------------------------------------------------------------------------
// View
// ---------------------------------------------------------------------------

// View renders the full TUI.
func (m BacktestModel) View() string {
	if m.confirm != nil {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, m.confirm.View())
	}

	snap := m.ctrl.Snapshot()
	inner := clampWidth(m.width-4, 160)

	sections := []string{
		m.header.Render(),
		m.tabBar.Render(),
		"",
		lipgloss.NewStyle().PaddingLeft(2).Render(components.LifecycleSteps(snap.State).Render()),
		"",
		lipgloss.NewStyle().PaddingLeft(2).Render(m.inputs.view(invalidField(m.formErr))),
	}

	if m.formErr != nil {
		sections = append(sections, lipgloss.NewStyle().PaddingLeft(2).Render(render.Failure(m.formErr.Error())))
	}

	sections = append(sections, styles.Divider(m.width), m.resultsView(snap, inner))
	if m.history.Len() > 0 {
		sections = append(sections, lipgloss.NewStyle().PaddingLeft(2).Render(m.history.View()))
	}
	sections = append(sections, m.footer.Render())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// resultsView shows the retained result with the latest error or spinner
// above it.
func (m BacktestModel) resultsView(snap lifecycle.Snapshot[*normalize.BacktestResult], width int) string {
	var b strings.Builder

	switch snap.State {
	case lifecycle.Submitting:
		b.WriteString(m.spin.View() + " " + styles.Dim(fmt.Sprintf("Running backtest #%d...", snap.Seq)) + "\n\n")
	case lifecycle.Failed:
		b.WriteString(render.Failure(snap.Message()) + "\n\n")
	}

	if !snap.HasValue {
		b.WriteString(styles.Dim(render.NoResults))
	} else {
		met := snap.Result.Metrics
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
			components.SharpeGauge(met.SharpeRatio).Render(), " ",
			components.ReturnGauge(met.TotalReturn).Render(),
		) + "\n\n")
		b.WriteString(render.Backtest(snap.Result, width))
	}

	return lipgloss.NewStyle().PaddingLeft(2).Render(b.String())
}

func invalidField(err error) string {
	var ve *schema.ValidationError
	if errors.As(err, &ve) {
		return ve.Field
	}
	return ""
}
