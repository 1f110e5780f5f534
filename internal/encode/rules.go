package encode

import (
	"fmt"
	"math"

	"github.com/Dallionking/quantdesk/internal/schema"
)

// rule turns the values of one strategy into its wire object and checks the
// values the engine would reject.
type rule struct {
	encode func(values map[string]any) map[string]any
	check  func(values map[string]any) error
}

// rules must hold an entry for every registered strategy id. A registry
// strategy missing here is an encode error, never a silent passthrough.
var rules = map[string]rule{
	schema.StrategyMACrossover: {
		encode: numeric,
		check: func(v map[string]any) error {
			short, err := positiveInt(v, "short_window")
			if err != nil {
				return err
			}
			long, err := positiveInt(v, "long_window")
			if err != nil {
				return err
			}
			if short >= long {
				return &schema.ValidationError{Field: "short_window", Message: "must be smaller than long_window"}
			}
			return nil
		},
	},
	schema.StrategyRSI: {
		encode: numeric,
		check: func(v map[string]any) error {
			if _, err := positiveInt(v, "period"); err != nil {
				return err
			}
			over, err := number(v, "overbought")
			if err != nil {
				return err
			}
			under, err := number(v, "oversold")
			if err != nil {
				return err
			}
			if under >= over {
				return &schema.ValidationError{Field: "oversold", Message: "must be below overbought"}
			}
			return nil
		},
	},
	schema.StrategyBollinger: {
		encode: numeric,
		check: func(v map[string]any) error {
			if _, err := positiveInt(v, "period"); err != nil {
				return err
			}
			sd, err := number(v, "stdDev")
			if err != nil {
				return err
			}
			if sd <= 0 {
				return &schema.ValidationError{Field: "stdDev", Message: "must be positive"}
			}
			return nil
		},
	},
}

func lookup(id string) (rule, error) {
	r, ok := rules[id]
	if !ok {
		return rule{}, fmt.Errorf("no encoding rule for strategy %q", id)
	}
	return r, nil
}

// numeric copies values, turning every numeric-parseable entry into a float64
// and leaving the rest as they are.
func numeric(values map[string]any) map[string]any {
	out := make(map[string]any, len(values))
	for k, v := range values {
		if n, ok := schema.ParseNumber(v); ok {
			out[k] = n
			continue
		}
		out[k] = v
	}
	return out
}

func number(values map[string]any, name string) (float64, error) {
	n, ok := schema.ParseNumber(values[name])
	if !ok {
		return 0, &schema.ValidationError{Field: name, Message: fmt.Sprintf("%q is not a number", schema.Text(values[name]))}
	}
	return n, nil
}

func positiveInt(values map[string]any, name string) (int, error) {
	n, err := number(values, name)
	if err != nil {
		return 0, err
	}
	if n <= 0 || n != math.Trunc(n) {
		return 0, &schema.ValidationError{Field: name, Message: "must be a positive whole number"}
	}
	return int(n), nil
}
