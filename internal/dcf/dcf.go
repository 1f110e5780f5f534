// Package dcf holds the closed-form valuation models used for local previews
// next to the service's own valuation.
package dcf

import (
	"errors"
	"math"
)

// ErrRates is returned when the discount rate does not exceed the terminal
// growth rate, which makes the terminal value undefined.
var ErrRates = errors.New("discount rate must exceed terminal growth rate")

// Inputs are the DCF parameters. Rates are fractions.
type Inputs struct {
	FreeCashFlow   float64
	Growth         float64
	Discount       float64
	Years          int
	TerminalGrowth float64
}

// Intrinsic returns the present value of Years of growing free cash flow plus
// a Gordon-growth terminal value. The first projected year already includes
// one year of growth.
func Intrinsic(in Inputs) (float64, error) {
	if in.Discount <= in.TerminalGrowth {
		return 0, ErrRates
	}
	if in.Years <= 0 {
		return 0, errors.New("years must be positive")
	}

	fcf := in.FreeCashFlow * (1 + in.Growth)
	npv := 0.0
	for t := 1; t <= in.Years; t++ {
		npv += fcf / math.Pow(1+in.Discount, float64(t))
		fcf *= 1 + in.Growth
	}
	terminal := fcf * (1 + in.TerminalGrowth) / (in.Discount - in.TerminalGrowth)
	return npv + terminal/math.Pow(1+in.Discount, float64(in.Years)), nil
}

// PerShare divides Intrinsic by shares outstanding.
func PerShare(in Inputs, shares float64) (float64, error) {
	if shares <= 0 {
		return 0, errors.New("shares outstanding must be positive")
	}
	v, err := Intrinsic(in)
	if err != nil {
		return 0, err
	}
	return v / shares, nil
}

// Graham is Benjamin Graham's growth formula, eps * (8.5 + 2g) with g in
// percent.
func Graham(eps, growth float64) float64 {
	return eps * (8.5 + 2*(growth*100))
}

// PEMultiple values earnings at a peer multiple.
func PEMultiple(eps, peerPE float64) float64 {
	return eps * peerPE
}
