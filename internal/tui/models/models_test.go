package models

import (
	"context"
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dallionking/quantdesk/internal/encode"
	"github.com/Dallionking/quantdesk/internal/lifecycle"
	"github.com/Dallionking/quantdesk/internal/normalize"
	"github.com/Dallionking/quantdesk/internal/params"
	"github.com/Dallionking/quantdesk/internal/render"
	"github.com/Dallionking/quantdesk/internal/schema"
	"github.com/Dallionking/quantdesk/internal/watch"
)

type fakeBacktester struct{ calls int }

func (f *fakeBacktester) Endpoint() string { return "http://backtest.test" }

func (f *fakeBacktester) Backtest(context.Context, encode.Payload) (*normalize.BacktestResult, error) {
	f.calls++
	return &normalize.BacktestResult{}, nil
}

type fakeValuator struct {
	metricsErr error
}

func (fakeValuator) Endpoint() string { return "http://valuation.test" }

func (fakeValuator) Valuate(_ context.Context, req encode.ValuationBody) (*normalize.ValuationResult, error) {
	return &normalize.ValuationResult{IntrinsicValuePerShare: 187.345}, nil
}

func (f fakeValuator) KeyMetrics(context.Context, string) (*normalize.MetricsBundle, error) {
	return nil, f.metricsErr
}

func (fakeValuator) MonteCarlo(context.Context, encode.MonteCarloBody) (*normalize.MonteCarloSummary, error) {
	return &normalize.MonteCarloSummary{Mean: 105.2, Median: 102, Percentile10: 80.1, Percentile90: 135.7}, nil
}

var (
	enter     = tea.KeyMsg{Type: tea.KeyEnter}
	nextTab   = tea.KeyMsg{Type: tea.KeyCtrlRight}
	resetKeys = tea.KeyMsg{Type: tea.KeyCtrlR}
)

func newBacktest(t *testing.T) (BacktestModel, *fakeBacktester) {
	t.Helper()
	fb := &fakeBacktester{}
	return NewBacktestModel(params.NewModel(schema.Builtin), fb, time.Second, "", nil), fb
}

func step(t *testing.T, m tea.Model, msg tea.Msg) BacktestModel {
	t.Helper()
	next, _ := m.Update(msg)
	bm, ok := next.(BacktestModel)
	require.True(t, ok)
	return bm
}

func TestBacktestLateResponseIsDropped(t *testing.T) {
	m, _ := newBacktest(t)

	m = step(t, m, enter)
	m = step(t, m, enter)
	require.Equal(t, lifecycle.Submitting, m.ctrl.Snapshot().State)
	require.Equal(t, lifecycle.Ticket(2), m.ctrl.Snapshot().Seq)

	second := &normalize.BacktestResult{ID: "second"}
	m = step(t, m, backtestDoneMsg{ticket: 2, result: second})
	m = step(t, m, backtestDoneMsg{ticket: 1, result: &normalize.BacktestResult{ID: "first"}})

	snap := m.ctrl.Snapshot()
	assert.Equal(t, lifecycle.Succeeded, snap.State)
	assert.Equal(t, "second", snap.Result.ID)
	assert.Equal(t, lifecycle.Succeeded, m.header.State)
	assert.Equal(t, 3, m.history.Len())
}

func TestBacktestFailureKeepsResult(t *testing.T) {
	m, _ := newBacktest(t)

	m = step(t, m, enter)
	m = step(t, m, backtestDoneMsg{ticket: 1, result: &normalize.BacktestResult{ID: "ok"}})
	m = step(t, m, enter)
	m = step(t, m, backtestDoneMsg{ticket: 2, err: errors.New("engine down")})

	snap := m.ctrl.Snapshot()
	assert.Equal(t, lifecycle.Failed, snap.State)
	assert.Equal(t, "ok", snap.Result.ID)
	assert.Contains(t, m.View(), "engine down")
}

func TestBacktestInvalidInputNeverSubmits(t *testing.T) {
	m, fb := newBacktest(t)
	m.inputs.set(schema.FieldInitialCapital, "-5")

	m = step(t, m, enter)

	assert.Equal(t, lifecycle.Idle, m.ctrl.Snapshot().State)
	assert.Zero(t, fb.calls)
	require.Error(t, m.formErr)
	assert.Equal(t, schema.FieldInitialCapital, invalidField(m.formErr))
}

func TestBacktestUnreadableFile(t *testing.T) {
	m, _ := newBacktest(t)
	m.inputs.set(schema.FieldFile, "/no/such/prices.csv")

	m = step(t, m, enter)

	assert.Equal(t, lifecycle.Idle, m.ctrl.Snapshot().State)
	assert.Equal(t, schema.FieldFile, invalidField(m.formErr))
}

func TestBacktestSwitchStrategyKeepsBaseInputs(t *testing.T) {
	m, _ := newBacktest(t)
	m.inputs.set(schema.FieldSymbol, "QQQ")
	m.inputs.set("short_window", "5")

	m = step(t, m, nextTab)

	assert.Equal(t, schema.StrategyRSI, m.params.StrategyID())
	assert.Equal(t, 1, m.tabBar.ActiveTab)
	vals := m.inputs.values()
	assert.Equal(t, "QQQ", vals[schema.FieldSymbol])
	assert.Equal(t, "14", vals["period"])
	assert.NotContains(t, vals, "short_window")
	assert.Equal(t, schema.Names(m.params.ActiveFields()), schema.Names(m.inputs.fields))
}

func TestBacktestReset(t *testing.T) {
	m, _ := newBacktest(t)
	m.inputs.set(schema.FieldSymbol, "QQQ")
	m.inputs.set("long_window", "200")

	m = step(t, m, resetKeys)

	vals := m.inputs.values()
	assert.Equal(t, "SPY", vals[schema.FieldSymbol])
	assert.Equal(t, "50", vals["long_window"])
}

func TestBacktestWatchChangeResubmits(t *testing.T) {
	m, _ := newBacktest(t)
	a := &params.Attachment{Name: "prices.csv", Data: []byte("date,close\n2024-01-02,1\n")}

	m = step(t, m, fileChangedMsg{change: watch.Change{Attachment: a, Time: time.Now()}, ok: true})

	assert.Equal(t, lifecycle.Submitting, m.ctrl.Snapshot().State)
	assert.Same(t, a, m.params.Attachment())
}

func TestBacktestEscWhileRunningAsks(t *testing.T) {
	m, _ := newBacktest(t)
	m = step(t, m, enter)

	m = step(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, m.confirm)

	m = step(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'n'}})
	assert.Nil(t, m.confirm)
}

func TestValuationPrepare(t *testing.T) {
	m := NewValuationModel(fakeValuator{metricsErr: errors.New("no data")}, time.Second, "aapl")
	for name, text := range m.inputs.values() {
		require.NoError(t, m.form.SetField(name, text))
	}

	call, err := m.prepare(m.form)
	require.NoError(t, err)
	out, err := call(context.Background())
	require.NoError(t, err)
	assert.Contains(t, out, "AAPL")
	assert.Contains(t, out, "$187.35")
	assert.Contains(t, out, "key metrics: no data")
}

func TestValuationRequiresTicker(t *testing.T) {
	m := NewValuationModel(fakeValuator{}, time.Second, "")

	next, _ := m.Update(enter)
	am := next.(AnalysisModel)

	assert.Equal(t, "ticker", invalidField(am.formErr))
	assert.Equal(t, lifecycle.Idle, am.ctrl.Snapshot().State)
}

func TestMonteCarloResult(t *testing.T) {
	m := NewMonteCarloModel(fakeValuator{}, time.Second, "")

	next, _ := m.Update(enter)
	am := next.(AnalysisModel)
	require.NoError(t, am.formErr)
	require.Equal(t, lifecycle.Submitting, am.ctrl.Snapshot().State)

	call, err := am.prepare(am.form)
	require.NoError(t, err)
	view, err := call(context.Background())
	require.NoError(t, err)

	next, _ = am.Update(analysisDoneMsg{ticket: 1, view: view})
	am = next.(AnalysisModel)
	out := am.View()
	for _, label := range render.MonteCarloLabels {
		assert.Contains(t, out, label+":")
	}
	assert.Contains(t, out, "$105.20")
}

func TestStrategiesBrowser(t *testing.T) {
	m := NewStrategiesModel(schema.Builtin, "")
	assert.False(t, m.detailView)
	assert.Contains(t, m.View(), schema.StrategyBollinger)

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyDown})
	next, _ = next.Update(enter)
	sm := next.(StrategiesModel)
	assert.True(t, sm.detailView)
	assert.Contains(t, sm.View(), "RSI")

	direct := NewStrategiesModel(schema.Builtin, schema.StrategyBollinger)
	assert.True(t, direct.detailView)
	assert.Equal(t, 2, direct.cursor)
}
