package models

import (
	"context"
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
)

// Valuator is the valuation service as seen by the forms.
type Valuator interface {
	Endpoint() string
	Valuate(ctx context.Context, req encode.ValuationBody) (*normalize.ValuationResult, error)
	KeyMetrics(ctx context.Context, ticker string) (*normalize.MetricsBundle, error)
	MonteCarlo(ctx context.Context, req encode.MonteCarloBody) (*normalize.MonteCarloSummary, error)
}

// prepareFunc validates the form and returns the call to submit.
type prepareFunc func(f *params.Form) (func(ctx context.Context) (string, error), error)

type analysisDoneMsg struct {
	ticket lifecycle.Ticket
	view   string
	err    error
}

// AnalysisModel is a single form without strategy selection. The rendered
// result of the latest applied submission is kept as text.
type AnalysisModel struct {
	form    *params.Form
	prepare prepareFunc
	ctrl    *lifecycle.Controller[string]

	inputs fieldInputs
	header components.Header
	footer components.Footer
	spin   spinner.Model

	formErr error
	width   int
	height  int
}

func newAnalysisModel(screen, endpoint string, fields []schema.Field, timeout time.Duration, prepare prepareFunc) AnalysisModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(styles.AccentPrimary)

	form := params.NewForm(fields)
	return AnalysisModel{
		form:    form,
		prepare: prepare,
		ctrl:    lifecycle.New[string](timeout),
		inputs: newFieldInputs(fields, func(f schema.Field) string {
			v, _ := form.Value(f.Name)
			return schema.Text(v)
		}),
		header: components.Header{Screen: screen, Endpoint: endpoint, State: lifecycle.Idle, Width: 100},
		footer: components.FormFooter(100),
		spin:   sp,
		width:  100,
		height: 40,
	}
}

// NewValuationModel creates the DCF valuation form. A successful valuation is
// followed by the key metrics of the same ticker.
func NewValuationModel(svc Valuator, timeout time.Duration, ticker string) AnalysisModel {
	m := newAnalysisModel("VALUATION", svc.Endpoint(), schema.ValuationFields, timeout,
		func(f *params.Form) (func(ctx context.Context) (string, error), error) {
			req, err := encode.ValuationRequest(f)
			if err != nil {
				return nil, err
			}
			return func(ctx context.Context) (string, error) {
				res, err := svc.Valuate(ctx, req)
				if err != nil {
					return "", err
				}
				out := render.Valuation(req.Ticker, res)
				metrics, err := svc.KeyMetrics(ctx, req.Ticker)
				if err != nil {
					return out + "\n" + render.Failure("key metrics: "+err.Error()), nil
				}
				return out + "\n" + render.KeyMetrics(req.Ticker, metrics), nil
			}, nil
		})
	if ticker != "" {
		m.inputs.set("ticker", ticker)
	}
	return m
}

// NewMonteCarloModel creates the Monte Carlo DCF form.
func NewMonteCarloModel(svc Valuator, timeout time.Duration, ticker string) AnalysisModel {
	m := newAnalysisModel("MONTE CARLO", svc.Endpoint(), schema.MonteCarloFields, timeout,
		func(f *params.Form) (func(ctx context.Context) (string, error), error) {
			req, err := encode.MonteCarloRequest(f)
			if err != nil {
				return nil, err
			}
			return func(ctx context.Context) (string, error) {
				res, err := svc.MonteCarlo(ctx, req)
				if err != nil {
					return "", err
				}
				return render.MonteCarlo(req.Ticker, res), nil
			}, nil
		})
	if ticker != "" {
		m.inputs.set("ticker", ticker)
	}
	return m
}

// Init starts the cursor blinking.
func (m AnalysisModel) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles keypresses and messages.
func (m AnalysisModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.header.Width = m.width
		m.footer.Width = m.width
		return m, nil

	case spinner.TickMsg:
		if m.ctrl.Snapshot().State != lifecycle.Submitting {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case analysisDoneMsg:
		if m.ctrl.Resolve(msg.ticket, msg.view, msg.err) {
			m.header.State = m.ctrl.Snapshot().State
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "tab", "down":
			return m, m.inputs.next()
		case "shift+tab", "up":
			return m, m.inputs.prev()
		case "enter":
			return m.submit()
		}
	}

	return m, m.inputs.update(msg)
}

func (m AnalysisModel) submit() (tea.Model, tea.Cmd) {
	for name, text := range m.inputs.values() {
		if err := m.form.SetField(name, text); err != nil {
			m.formErr = err
			return m, nil
		}
	}
	call, err := m.prepare(m.form)
	if err != nil {
		m.formErr = err
		return m, nil
	}
	m.formErr = nil

	t := m.ctrl.Begin()
	m.header.State = lifecycle.Submitting
	logger.S().Debugw("form submitted", "screen", m.header.Screen, "seq", t)

	ctrl := m.ctrl
	run := func() tea.Msg {
		view, err := ctrl.Call(context.Background(), call)
		return analysisDoneMsg{ticket: t, view: view, err: err}
	}
	return m, tea.Batch(m.spin.Tick, run)
}

// View renders the form and the retained result.
func (m AnalysisModel) View() string {
	snap := m.ctrl.Snapshot()

	var body strings.Builder
	body.WriteString(m.inputs.view(invalidField(m.formErr)))
	if m.formErr != nil {
		body.WriteString(render.Failure(m.formErr.Error()) + "\n")
	}
	body.WriteString("\n")

	switch snap.State {
	case lifecycle.Submitting:
		body.WriteString(m.spin.View() + " " + styles.Dim(fmt.Sprintf("Request #%d in flight...", snap.Seq)) + "\n\n")
	case lifecycle.Failed:
		body.WriteString(render.Failure(snap.Message()) + "\n\n")
	}
	if snap.HasValue {
		body.WriteString(snap.Result)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.header.Render(),
		"",
		lipgloss.NewStyle().PaddingLeft(2).Render(components.LifecycleSteps(snap.State).Render()),
		"",
		lipgloss.NewStyle().PaddingLeft(2).Render(body.String()),
		m.footer.Render(),
	)
}
