// Package normalize validates service responses and converts them into the
// structures the renderers consume. Structural problems are errors; individual
// non-numeric values become NaN.
package normalize

import (
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/montanaflynn/stats"
)

// Response kinds used in MalformedResponseError.
const (
	KindBacktest   = "backtest"
	KindMetrics    = "key metrics"
	KindMonteCarlo = "monte carlo"
	KindValuation  = "valuation"
)

func decodeObject(kind string, raw []byte) (map[string]json.RawMessage, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(sanitize(raw), &obj); err != nil {
		return nil, &MalformedResponseError{Kind: kind, Reason: "is not a JSON object", Err: err}
	}
	if obj == nil {
		return nil, &MalformedResponseError{Kind: kind, Reason: "is empty"}
	}
	return obj, nil
}

func decodeField(kind, field string, msg json.RawMessage, dst any) error {
	if err := json.Unmarshal(msg, dst); err != nil {
		return &MalformedResponseError{Kind: kind, Field: field, Reason: "has the wrong shape", Err: err}
	}
	return nil
}

// Metrics are the backtest summary statistics. Nil means the service did not
// report the value.
type Metrics struct {
	SharpeRatio *float64
	TotalReturn *float64
	Extra       map[string]float64
}

// EquityPoint is one sample of the equity curve.
type EquityPoint struct {
	Timestamp string
	Equity    float64
}

// Trade actions.
const (
	ActionBuy  = "buy"
	ActionSell = "sell"
)

// Trade is one executed order. Action is ActionBuy or ActionSell.
type Trade struct {
	Timestamp string
	Action    string
	Price     float64
}

// BacktestResult is a normalized backtest response.
type BacktestResult struct {
	ID          string
	Metrics     Metrics
	EquityCurve []EquityPoint
	Trades      []Trade
}

// Backtest normalizes a backtest response. metrics, equity_curve and trades
// are required.
func Backtest(raw []byte) (*BacktestResult, error) {
	obj, err := decodeObject(KindBacktest, raw)
	if err != nil {
		return nil, err
	}
	for _, k := range []string{"metrics", "equity_curve", "trades"} {
		if v, ok := obj[k]; !ok || string(v) == "null" {
			return nil, missing(KindBacktest, k)
		}
	}

	var metrics map[string]Float
	if err := decodeField(KindBacktest, "metrics", obj["metrics"], &metrics); err != nil {
		return nil, err
	}
	var curve []struct {
		Timestamp Label `json:"timestamp"`
		Equity    Float `json:"equity"`
	}
	if err := decodeField(KindBacktest, "equity_curve", obj["equity_curve"], &curve); err != nil {
		return nil, err
	}
	var trades []struct {
		Timestamp Label  `json:"timestamp"`
		Action    string `json:"action"`
		Price     Float  `json:"price"`
	}
	if err := decodeField(KindBacktest, "trades", obj["trades"], &trades); err != nil {
		return nil, err
	}

	res := &BacktestResult{
		Metrics:     Metrics{Extra: map[string]float64{}},
		EquityCurve: make([]EquityPoint, 0, len(curve)),
		Trades:      make([]Trade, 0, len(trades)),
	}
	if id, ok := obj["backtest_id"]; ok {
		var label Label
		if err := label.UnmarshalJSON(id); err == nil {
			res.ID = string(label)
		}
	}
	for k, v := range metrics {
		f := v.Value()
		switch k {
		case "sharpe_ratio":
			res.Metrics.SharpeRatio = &f
		case "total_return":
			res.Metrics.TotalReturn = &f
		default:
			res.Metrics.Extra[k] = f
		}
	}
	for _, p := range curve {
		res.EquityCurve = append(res.EquityCurve, EquityPoint{Timestamp: string(p.Timestamp), Equity: p.Equity.Value()})
	}
	for i, t := range trades {
		act := strings.ToLower(strings.TrimSpace(t.Action))
		if act != ActionBuy && act != ActionSell {
			return nil, &MalformedResponseError{
				Kind:   KindBacktest,
				Field:  fmt.Sprintf("trades[%d].action", i),
				Reason: fmt.Sprintf("is %q, want buy or sell", t.Action),
			}
		}
		res.Trades = append(res.Trades, Trade{Timestamp: string(t.Timestamp), Action: act, Price: t.Price.Value()})
	}
	return res, nil
}

// Series is a yearly sequence. Years and Values always have equal length.
type Series struct {
	Years  []string
	Values []float64
}

// Len returns the number of points.
func (s Series) Len() int {
	return len(s.Years)
}

// Metric scalar keys reported by the key metrics endpoint.
const (
	AvgPERatio    = "avg_pe_ratio"
	RevenueGrowth = "revenue_growth"
	ProfitGrowth  = "profit_growth"
	FCFGrowth     = "fcf_growth"
	LTLFCFRatio   = "ltl_fcf_ratio"
	AvgPFCFRatio  = "avg_p_fcf_ratio"
)

// Series keys reported by the key metrics endpoint.
const (
	PERatioSeries           = "pe_ratio_series"
	RevenueSeries           = "revenue_series"
	NetIncomeSeries         = "net_income_series"
	FreeCashFlowSeries      = "free_cash_flow_series"
	SharesOutstandingSeries = "shares_outstanding_series"
)

// ScalarKeys lists the metric cards in display order.
var ScalarKeys = []string{AvgPERatio, RevenueGrowth, ProfitGrowth, FCFGrowth, LTLFCFRatio, AvgPFCFRatio}

// SeriesKeys lists the history tables in display order.
var SeriesKeys = []string{PERatioSeries, RevenueSeries, NetIncomeSeries, FreeCashFlowSeries, SharesOutstandingSeries}

// MetricsBundle is a normalized key metrics response.
type MetricsBundle struct {
	Scalars map[string]float64
	Series  map[string]Series
}

// Scalar returns the named scalar, NaN when absent.
func (b *MetricsBundle) Scalar(key string) float64 {
	if v, ok := b.Scalars[key]; ok {
		return v
	}
	return math.NaN()
}

// KeyMetrics normalizes a key metrics response. Every known scalar is present
// in the result, NaN when missing or not numeric. A series object must carry
// years and values of equal length.
func KeyMetrics(raw []byte) (*MetricsBundle, error) {
	obj, err := decodeObject(KindMetrics, raw)
	if err != nil {
		return nil, err
	}

	b := &MetricsBundle{Scalars: map[string]float64{}, Series: map[string]Series{}}
	for _, k := range ScalarKeys {
		b.Scalars[k] = math.NaN()
	}

	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	for _, k := range keys {
		msg := obj[k]
		if strings.HasSuffix(k, "_series") {
			s, err := decodeSeries(k, msg)
			if err != nil {
				return nil, err
			}
			b.Series[k] = s
			continue
		}
		var f Float
		if err := json.Unmarshal(msg, &f); err != nil {
			continue
		}
		if slices.Contains(ScalarKeys, k) || isNumber(msg) {
			b.Scalars[k] = f.Value()
		}
	}
	return b, nil
}

func isNumber(msg json.RawMessage) bool {
	var n json.Number
	return json.Unmarshal(msg, &n) == nil
}

func decodeSeries(key string, msg json.RawMessage) (Series, error) {
	var parts map[string]json.RawMessage
	if err := decodeField(KindMetrics, key, msg, &parts); err != nil {
		return Series{}, err
	}
	yearsRaw, ok := parts["years"]
	if !ok {
		return Series{}, missing(KindMetrics, key+".years")
	}
	valuesRaw, ok := parts["values"]
	if !ok {
		return Series{}, missing(KindMetrics, key+".values")
	}

	var years []Label
	if err := decodeField(KindMetrics, key+".years", yearsRaw, &years); err != nil {
		return Series{}, err
	}
	var values []Float
	if err := decodeField(KindMetrics, key+".values", valuesRaw, &values); err != nil {
		return Series{}, err
	}
	if len(years) != len(values) {
		return Series{}, &MalformedResponseError{
			Kind:   KindMetrics,
			Field:  key,
			Reason: "has years and values of different length",
		}
	}

	s := Series{Years: make([]string, len(years)), Values: make([]float64, len(values))}
	for i := range years {
		s.Years[i] = string(years[i])
		s.Values[i] = values[i].Value()
	}
	return s, nil
}

// MonteCarloSummary is a normalized Monte Carlo response.
type MonteCarloSummary struct {
	Mean         float64
	Median       float64
	Percentile10 float64
	Percentile90 float64
	Values       []float64
}

// Spread describes the raw simulated values.
type Spread struct {
	Count  int
	StdDev float64
	Min    float64
	Max    float64
}

// Spread computes distribution statistics over the finite raw values. With no
// values every statistic is NaN.
func (m *MonteCarloSummary) Spread() Spread {
	data := make(stats.Float64Data, 0, len(m.Values))
	for _, v := range m.Values {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			data = append(data, v)
		}
	}
	s := Spread{Count: len(data), StdDev: math.NaN(), Min: math.NaN(), Max: math.NaN()}
	if len(data) == 0 {
		return s
	}
	if v, err := data.StandardDeviation(); err == nil {
		s.StdDev = v
	}
	if v, err := data.Min(); err == nil {
		s.Min = v
	}
	if v, err := data.Max(); err == nil {
		s.Max = v
	}
	return s
}

// MonteCarlo normalizes a Monte Carlo response. The four summary statistics
// are read from a summary object, or from the top level when there is none.
// A missing values list yields an empty slice.
func MonteCarlo(raw []byte) (*MonteCarloSummary, error) {
	obj, err := decodeObject(KindMonteCarlo, raw)
	if err != nil {
		return nil, err
	}

	source := obj
	if s, ok := obj["summary"]; ok {
		var nested map[string]json.RawMessage
		if err := decodeField(KindMonteCarlo, "summary", s, &nested); err != nil {
			return nil, err
		}
		if nested == nil {
			return nil, missing(KindMonteCarlo, "summary")
		}
		source = nested
	}

	var stat [4]float64
	for i, k := range []string{"mean", "median", "percentile10", "percentile90"} {
		msg, ok := source[k]
		if !ok {
			return nil, missing(KindMonteCarlo, k)
		}
		stat[i] = parseLenient(msg)
	}

	res := &MonteCarloSummary{
		Mean:         stat[0],
		Median:       stat[1],
		Percentile10: stat[2],
		Percentile90: stat[3],
		Values:       []float64{},
	}
	if msg, ok := obj["values"]; ok && string(msg) != "null" {
		var values []Float
		if err := decodeField(KindMonteCarlo, "values", msg, &values); err != nil {
			return nil, err
		}
		for _, v := range values {
			res.Values = append(res.Values, v.Value())
		}
	}
	return res, nil
}

// ValuationResult is a normalized DCF valuation response.
type ValuationResult struct {
	IntrinsicValuePerShare float64
}

// Valuation normalizes a valuation response.
func Valuation(raw []byte) (*ValuationResult, error) {
	obj, err := decodeObject(KindValuation, raw)
	if err != nil {
		return nil, err
	}
	msg, ok := obj["intrinsicValuePerShare"]
	if !ok {
		return nil, missing(KindValuation, "intrinsicValuePerShare")
	}
	return &ValuationResult{IntrinsicValuePerShare: parseLenient(msg)}, nil
}
