package schema

// Base field names shared by every backtest request.
const (
	FieldSymbol         = "symbol"
	FieldStartDate      = "start_date"
	FieldEndDate        = "end_date"
	FieldInitialCapital = "initial_capital"
	FieldFile           = "file"
)

// BacktestBaseFields are shown above the strategy-specific fields.
var BacktestBaseFields = []Field{
	{Name: FieldSymbol, Label: "Symbol", Kind: KindText, Default: "SPY"},
	{Name: FieldStartDate, Label: "Start Date", Kind: KindDate, Default: "2020-08-11"},
	{Name: FieldEndDate, Label: "End Date", Kind: KindDate, Default: "2025-07-31"},
	{Name: FieldInitialCapital, Label: "Initial Capital", Kind: KindNumber, Default: 100000.0},
	{Name: FieldFile, Label: "Upload CSV (optional)", Kind: KindFile,
		Help: "When set, prices come from the file and symbol/dates are informational only."},
}

// ValuationFields drive the DCF valuation form.
var ValuationFields = []Field{
	{Name: "ticker", Label: "Ticker", Kind: KindText, Default: ""},
	{Name: "years", Label: "Years of Projection", Kind: KindNumber, Default: 5.0},
	{Name: "growth", Label: "FCF Growth Rate (%)", Kind: KindNumber, Default: 8.0, Percent: true},
	{Name: "discount", Label: "Discount Rate (%)", Kind: KindNumber, Default: 10.0, Percent: true},
	{Name: "terminalGrowth", Label: "Terminal Growth Rate (%)", Kind: KindNumber, Default: 2.0, Percent: true},
}

// MonteCarloFields drive the Monte Carlo DCF form. Rates are entered as
// fractions already.
var MonteCarloFields = []Field{
	{Name: "ticker", Label: "Ticker", Kind: KindText, Default: "GOOGL"},
	{Name: "iterations", Label: "Iterations", Kind: KindNumber, Default: 1000.0},
	{Name: "revenue_growth_mean", Label: "Revenue Growth Mean", Kind: KindNumber, Default: 0.08},
	{Name: "revenue_growth_std", Label: "Revenue Growth Std", Kind: KindNumber, Default: 0.02},
	{Name: "margin_std", Label: "Margin Std", Kind: KindNumber, Default: 0.03},
	{Name: "discount_rate_mean", Label: "Discount Rate Mean", Kind: KindNumber, Default: 0.10},
	{Name: "discount_rate_std", Label: "Discount Rate Std", Kind: KindNumber, Default: 0.02},
	{Name: "years", Label: "Years", Kind: KindNumber, Default: 5.0},
}
