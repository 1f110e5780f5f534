package components

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"

	"github.com/Dallionking/quantdesk/internal/lifecycle"
	"github.com/Dallionking/quantdesk/internal/render"
)

func TestTabBarWraps(t *testing.T) {
	tb := TabBar{Tabs: []string{"sma", "rsi", "bollinger"}}

	tb.Prev()
	assert.Equal(t, 2, tb.ActiveTab)
	tb.Next()
	assert.Equal(t, 0, tb.ActiveTab)

	var empty TabBar
	empty.Next()
	assert.Zero(t, empty.ActiveTab)
	assert.Empty(t, empty.Render())
}

func TestLifecycleSteps(t *testing.T) {
	tests := []struct {
		state   lifecycle.State
		current int
		failed  bool
	}{
		{lifecycle.Idle, 0, false},
		{lifecycle.Submitting, 1, false},
		{lifecycle.Succeeded, 3, false},
		{lifecycle.Failed, 2, true},
	}
	for _, tt := range tests {
		t.Run(string(tt.state), func(t *testing.T) {
			p := LifecycleSteps(tt.state)
			assert.Equal(t, tt.current, p.Current)
			assert.Equal(t, tt.failed, p.Failed)
		})
	}
}

func TestMetricGauge(t *testing.T) {
	assert.Contains(t, SharpeGauge(nil).Render(), render.NA)

	low, mid, high := -0.2, 0.5, 1.8
	assert.NotEqual(t, SharpeGauge(&low).gaugeColor(), SharpeGauge(&mid).gaugeColor())
	assert.NotEqual(t, SharpeGauge(&mid).gaugeColor(), SharpeGauge(&high).gaugeColor())
	assert.Contains(t, SharpeGauge(&high).Render(), "1.80")
}

func TestConfirmDialog(t *testing.T) {
	key := func(s string) tea.KeyMsg {
		switch s {
		case "enter":
			return tea.KeyMsg{Type: tea.KeyEnter}
		case "left":
			return tea.KeyMsg{Type: tea.KeyLeft}
		}
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}

	d := NewConfirmDialog("Quit?", "A request is still running.")
	d, _ = d.Update(key("enter"))
	assert.True(t, d.Done)
	assert.False(t, d.Confirmed)

	d = NewConfirmDialog("Quit?", "")
	d, _ = d.Update(key("left"))
	d, _ = d.Update(key("enter"))
	assert.True(t, d.Confirmed)

	d = NewConfirmDialog("Quit?", "")
	d, _ = d.Update(key("y"))
	assert.True(t, d.Confirmed)
}

func TestLogStreamKeepsLatest(t *testing.T) {
	l := NewLogStream(60, 5)
	l.maxLines = 3
	for i := 1; i <= 5; i++ {
		l.AddLine(LogLine{Time: time.Now(), Seq: lifecycle.Ticket(i), State: lifecycle.Succeeded, Message: "ok"})
	}
	assert.Equal(t, 3, l.Len())
	assert.Equal(t, lifecycle.Ticket(3), l.lines[0].Seq)
	assert.Contains(t, l.View(), "History")
}

func TestFooterDropsHintsThatDoNotFit(t *testing.T) {
	wide := BacktestFooter(120).Render()
	assert.Contains(t, wide, "strategy")
	assert.Contains(t, wide, "quit")

	narrow := BacktestFooter(24).Render()
	assert.Contains(t, narrow, "run")
	assert.NotContains(t, narrow, "quit")
}

func TestTabBarMarksActive(t *testing.T) {
	tb := TabBar{Tabs: []string{"SMA", "RSI"}, ActiveTab: 1}
	out := tb.Render()
	assert.Contains(t, out, "▸ RSI")
	assert.NotContains(t, out, "▸ SMA")
}
