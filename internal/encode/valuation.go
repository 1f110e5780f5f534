package encode

import (
	"fmt"
	"math"
	"strings"

	"github.com/Dallionking/quantdesk/internal/params"
	"github.com/Dallionking/quantdesk/internal/schema"
)

// ValuationBody is the DCF valuation request. Rates are fractions.
type ValuationBody struct {
	Ticker         string  `json:"ticker"`
	Years          int     `json:"years"`
	Growth         float64 `json:"growth"`
	Discount       float64 `json:"discount"`
	TerminalGrowth float64 `json:"terminalGrowth"`
}

// MonteCarloBody is the Monte Carlo DCF request.
type MonteCarloBody struct {
	Ticker            string  `json:"ticker"`
	Iterations        int     `json:"iterations"`
	RevenueGrowthMean float64 `json:"revenue_growth_mean"`
	RevenueGrowthStd  float64 `json:"revenue_growth_std"`
	MarginStd         float64 `json:"margin_std"`
	DiscountRateMean  float64 `json:"discount_rate_mean"`
	DiscountRateStd   float64 `json:"discount_rate_std"`
	Years             int     `json:"years"`
}

// ValuationRequest encodes the valuation form. Fields marked as percent are
// divided by 100.
func ValuationRequest(f *params.Form) (ValuationBody, error) {
	r := formReader{form: f}
	body := ValuationBody{
		Ticker:         r.ticker(),
		Years:          r.count("years"),
		Growth:         r.rate("growth"),
		Discount:       r.rate("discount"),
		TerminalGrowth: r.rate("terminalGrowth"),
	}
	if r.err != nil {
		return ValuationBody{}, r.err
	}
	if body.Discount <= body.TerminalGrowth {
		return ValuationBody{}, &schema.ValidationError{Field: "discount", Message: "must exceed the terminal growth rate"}
	}
	return body, nil
}

// MonteCarloRequest encodes the Monte Carlo form. Its rates are already
// fractions.
func MonteCarloRequest(f *params.Form) (MonteCarloBody, error) {
	r := formReader{form: f}
	body := MonteCarloBody{
		Ticker:            r.ticker(),
		Iterations:        r.count("iterations"),
		RevenueGrowthMean: r.rate("revenue_growth_mean"),
		RevenueGrowthStd:  r.rate("revenue_growth_std"),
		MarginStd:         r.rate("margin_std"),
		DiscountRateMean:  r.rate("discount_rate_mean"),
		DiscountRateStd:   r.rate("discount_rate_std"),
		Years:             r.count("years"),
	}
	if r.err != nil {
		return MonteCarloBody{}, r.err
	}
	return body, nil
}

// formReader reads typed values from a form, keeping the first error.
type formReader struct {
	form *params.Form
	err  error
}

func (r *formReader) fail(field, msg string) {
	if r.err == nil {
		r.err = &schema.ValidationError{Field: field, Message: msg}
	}
}

func (r *formReader) ticker() string {
	v, _ := r.form.Value("ticker")
	t := strings.ToUpper(strings.TrimSpace(schema.Text(v)))
	if t == "" {
		r.fail("ticker", "is required")
	}
	return t
}

func (r *formReader) number(name string) float64 {
	v, _ := r.form.Value(name)
	n, ok := schema.ParseNumber(v)
	if !ok {
		r.fail(name, fmt.Sprintf("%q is not a number", schema.Text(v)))
	}
	return n
}

func (r *formReader) count(name string) int {
	n := r.number(name)
	if r.err == nil && (n <= 0 || n != math.Trunc(n)) {
		r.fail(name, "must be a positive whole number")
	}
	return int(n)
}

func (r *formReader) rate(name string) float64 {
	n := r.number(name)
	if f, ok := schema.Find(r.form.Fields(), name); ok && f.Percent {
		return n / 100
	}
	return n
}
