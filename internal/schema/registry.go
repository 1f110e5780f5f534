package schema

import (
	"fmt"
	"strings"
)

// Strategy identifiers understood by the backtest service.
const (
	StrategyMACrossover = "ma_crossover"
	StrategyRSI         = "rsi"
	StrategyBollinger   = "bollinger"
)

// Strategy is a named, parameterized backtest variant with its own field set.
type Strategy struct {
	ID          string
	DisplayName string
	Description string
	Fields      []Field
}

// Registry maps strategy ids to their specs. Order is registration order and
// the first entry is the default selection.
type Registry struct {
	strategies []Strategy
	index      map[string]int
}

// NewRegistry validates and indexes the given strategies. Ids must be unique,
// and field names must be unique within a strategy and must not collide with
// the backtest base fields.
func NewRegistry(strategies ...Strategy) (*Registry, error) {
	if len(strategies) == 0 {
		return nil, fmt.Errorf("registry needs at least one strategy")
	}

	r := &Registry{index: make(map[string]int, len(strategies))}
	for i, s := range strategies {
		if s.ID == "" {
			return nil, fmt.Errorf("strategy %d: empty id", i)
		}
		if _, dup := r.index[s.ID]; dup {
			return nil, fmt.Errorf("strategy %q registered twice", s.ID)
		}

		seen := make(map[string]bool, len(s.Fields))
		for _, f := range s.Fields {
			if seen[f.Name] {
				return nil, fmt.Errorf("strategy %q: duplicate field %q", s.ID, f.Name)
			}
			if _, clash := Find(BacktestBaseFields, f.Name); clash {
				return nil, fmt.Errorf("strategy %q: field %q shadows a base field", s.ID, f.Name)
			}
			seen[f.Name] = true
		}

		r.index[s.ID] = i
		r.strategies = append(r.strategies, s)
	}
	return r, nil
}

// MustRegistry is NewRegistry for package-level declarations.
func MustRegistry(strategies ...Strategy) *Registry {
	r, err := NewRegistry(strategies...)
	if err != nil {
		panic(err)
	}
	return r
}

// List returns every strategy in registry order.
func (r *Registry) List() []Strategy {
	out := make([]Strategy, len(r.strategies))
	copy(out, r.strategies)
	return out
}

// Get returns the strategy registered under id.
func (r *Registry) Get(id string) (Strategy, error) {
	i, ok := r.index[id]
	if !ok {
		return Strategy{}, NotFound("strategy", id)
	}
	return r.strategies[i], nil
}

// Default returns the initial selection.
func (r *Registry) Default() Strategy {
	return r.strategies[0]
}

// IDs returns the registered ids in order.
func (r *Registry) IDs() []string {
	ids := make([]string, len(r.strategies))
	for i, s := range r.strategies {
		ids[i] = s.ID
	}
	return ids
}

// Markdown renders a parameter sheet for s.
func Markdown(s Strategy) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", s.DisplayName)
	fmt.Fprintf(&b, "`%s`\n\n", s.ID)
	if s.Description != "" {
		b.WriteString(s.Description + "\n\n")
	}
	b.WriteString("| Parameter | Label | Type | Default |\n")
	b.WriteString("|---|---|---|---|\n")
	for _, f := range s.Fields {
		fmt.Fprintf(&b, "| `%s` | %s | %s | %s |\n", f.Name, f.Label, f.Kind, Text(f.Default))
	}
	return b.String()
}

// Builtin is the registry shipped with the client.
var Builtin = MustRegistry(
	Strategy{
		ID:          StrategyMACrossover,
		DisplayName: "Moving Average Crossover",
		Description: "Long when the short moving average is above the long one, short when below.",
		Fields: []Field{
			{Name: "short_window", Label: "Short Window", Kind: KindNumber, Default: 10.0},
			{Name: "long_window", Label: "Long Window", Kind: KindNumber, Default: 50.0},
		},
	},
	Strategy{
		ID:          StrategyRSI,
		DisplayName: "RSI Strategy",
		Description: "Enters long when RSI crosses below the oversold level and short when it crosses above overbought.",
		Fields: []Field{
			{Name: "period", Label: "RSI Period", Kind: KindNumber, Default: 14.0},
			{Name: "overbought", Label: "Overbought Level", Kind: KindNumber, Default: 70.0},
			{Name: "oversold", Label: "Oversold Level", Kind: KindNumber, Default: 30.0},
		},
	},
	Strategy{
		ID:          StrategyBollinger,
		DisplayName: "Bollinger Bands",
		Description: "Mean reversion against a moving average band of period and standard deviation multiplier.",
		Fields: []Field{
			{Name: "period", Label: "Period", Kind: KindNumber, Default: 20.0},
			{Name: "stdDev", Label: "Standard Deviation", Kind: KindNumber, Default: 2.0},
		},
	},
)
