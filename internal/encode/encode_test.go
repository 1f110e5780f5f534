package encode

import (
	"bytes"
	"encoding/json"
	"io"
	"mime"
	"mime/multipart"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dallionking/quantdesk/internal/params"
	"github.com/Dallionking/quantdesk/internal/schema"
)

func TestEveryStrategyHasARule(t *testing.T) {
	for _, id := range schema.Builtin.IDs() {
		_, ok := rules[id]
		assert.True(t, ok, "missing encoding rule for %s", id)
	}
}

func TestEncodeUnknownStrategy(t *testing.T) {
	reg := schema.MustRegistry(schema.Strategy{ID: "momentum", Fields: []schema.Field{
		{Name: "lookback", Kind: schema.KindNumber, Default: 20.0},
	}})
	_, err := Encode(params.NewModel(reg))
	assert.ErrorContains(t, err, `no encoding rule for strategy "momentum"`)
}

func TestEncodeScenarioA(t *testing.T) {
	m := params.NewModel(schema.Builtin)
	require.NoError(t, m.SetField("short_window", "50"))
	require.NoError(t, m.SetField("long_window", "200"))

	p, err := Encode(m)
	require.NoError(t, err)
	assert.Equal(t, SourceSymbol, p.Source)
	assert.Nil(t, p.Attachment)

	ct, body, err := p.Body()
	require.NoError(t, err)
	assert.Equal(t, ContentJSON, ct)

	var got map[string]any
	require.NoError(t, json.Unmarshal(body, &got))
	want := map[string]any{
		"symbol":          "SPY",
		"start_date":      "2020-08-11",
		"end_date":        "2025-07-31",
		"initial_capital": 100000.0,
		"strategy": map[string]any{
			"type":         "ma_crossover",
			"short_window": 50.0,
			"long_window":  200.0,
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("body mismatch (-want +got):\n%s", diff)
	}
	assert.NotContains(t, string(body), `"50"`)
}

func TestEncodeIsPure(t *testing.T) {
	m := params.NewModel(schema.Builtin)
	require.NoError(t, m.SwitchStrategy(schema.StrategyRSI))
	require.NoError(t, m.SetField("period", "21"))
	before := m.StrategyValues()

	a, err := Encode(m)
	require.NoError(t, err)
	b, err := Encode(m)
	require.NoError(t, err)

	ja, err := a.JSON()
	require.NoError(t, err)
	jb, err := b.JSON()
	require.NoError(t, err)
	assert.Equal(t, ja, jb)
	assert.Equal(t, before, m.StrategyValues())
	_, hasType := m.StrategyValues()["type"]
	assert.False(t, hasType)
}

func TestEncodeLeavesNonNumericValues(t *testing.T) {
	m := params.NewModel(schema.Builtin)
	require.NoError(t, m.SetField("short_window", "fast"))

	p, err := Encode(m)
	require.NoError(t, err)
	strategy := p.Params["strategy"].(map[string]any)
	assert.Equal(t, "fast", strategy["short_window"])

	var ve *schema.ValidationError
	require.ErrorAs(t, Validate(m), &ve)
	assert.Equal(t, "short_window", ve.Field)
}

func TestEncodeWithAttachmentIsMultipart(t *testing.T) {
	m := params.NewModel(schema.Builtin)
	csv := []byte("date,close\n2024-01-02,10\n")
	require.NoError(t, m.SetField(schema.FieldFile, &params.Attachment{Name: "prices.csv", Data: csv}))

	p, err := Encode(m)
	require.NoError(t, err)
	assert.Equal(t, SourceUpload, p.Source)

	ct, body, err := p.Body()
	require.NoError(t, err)
	mediaType, mp, err := mime.ParseMediaType(ct)
	require.NoError(t, err)
	assert.Equal(t, "multipart/form-data", mediaType)

	r := multipart.NewReader(bytes.NewReader(body), mp["boundary"])
	parts := map[string][]byte{}
	var filename string
	for {
		part, err := r.NextPart()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		data, err := io.ReadAll(part)
		require.NoError(t, err)
		parts[part.FormName()] = data
		if part.FormName() == "file" {
			filename = part.FileName()
		}
	}

	require.Contains(t, parts, "params")
	require.Contains(t, parts, "file")
	assert.Equal(t, csv, parts["file"])
	assert.Equal(t, "prices.csv", filename)

	js, err := p.JSON()
	require.NoError(t, err)
	assert.JSONEq(t, string(js), string(parts["params"]))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		strategy string
		set      map[string]any
		field    string
	}{
		{"windows out of order", schema.StrategyMACrossover, map[string]any{"short_window": 60, "long_window": 50}, "short_window"},
		{"fractional window", schema.StrategyMACrossover, map[string]any{"short_window": 2.5}, "short_window"},
		{"thresholds inverted", schema.StrategyRSI, map[string]any{"oversold": 80}, "oversold"},
		{"zero std dev", schema.StrategyBollinger, map[string]any{"stdDev": 0}, "stdDev"},
		{"negative capital", schema.StrategyBollinger, map[string]any{schema.FieldInitialCapital: -1}, schema.FieldInitialCapital},
		{"blank symbol", schema.StrategyRSI, map[string]any{schema.FieldSymbol: ""}, schema.FieldSymbol},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := params.NewModel(schema.Builtin)
			require.NoError(t, m.SwitchStrategy(tt.strategy))
			for k, v := range tt.set {
				require.NoError(t, m.SetField(k, v))
			}
			var ve *schema.ValidationError
			require.ErrorAs(t, Validate(m), &ve)
			assert.Equal(t, tt.field, ve.Field)
		})
	}

	t.Run("defaults pass", func(t *testing.T) {
		m := params.NewModel(schema.Builtin)
		for _, id := range schema.Builtin.IDs() {
			require.NoError(t, m.SwitchStrategy(id))
			assert.NoError(t, Validate(m), id)
		}
	})
}

func TestValuationRequestDividesPercents(t *testing.T) {
	f := params.NewForm(schema.ValuationFields)
	require.NoError(t, f.SetField("ticker", " aapl "))
	require.NoError(t, f.SetField("growth", "12"))

	got, err := ValuationRequest(f)
	require.NoError(t, err)
	want := ValuationBody{Ticker: "AAPL", Years: 5, Growth: 0.12, Discount: 0.10, TerminalGrowth: 0.02}
	if diff := cmp.Diff(want, got, cmpopts.EquateApprox(0, 1e-12)); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}

	t.Run("ticker required", func(t *testing.T) {
		_, err := ValuationRequest(params.NewForm(schema.ValuationFields))
		var ve *schema.ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, "ticker", ve.Field)
	})

	t.Run("discount must exceed terminal growth", func(t *testing.T) {
		f := params.NewForm(schema.ValuationFields)
		require.NoError(t, f.SetField("ticker", "AAPL"))
		require.NoError(t, f.SetField("discount", "2"))
		_, err := ValuationRequest(f)
		assert.ErrorContains(t, err, "terminal growth")
	})
}

func TestMonteCarloRequest(t *testing.T) {
	f := params.NewForm(schema.MonteCarloFields)
	got, err := MonteCarloRequest(f)
	require.NoError(t, err)

	b, err := json.Marshal(got)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"ticker": "GOOGL",
		"iterations": 1000,
		"revenue_growth_mean": 0.08,
		"revenue_growth_std": 0.02,
		"margin_std": 0.03,
		"discount_rate_mean": 0.1,
		"discount_rate_std": 0.02,
		"years": 5
	}`, string(b))

	require.NoError(t, f.SetField("iterations", "many"))
	_, err = MonteCarloRequest(f)
	assert.ErrorContains(t, err, "iterations")
}
