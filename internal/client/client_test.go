package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dallionking/quantdesk/internal/encode"
	"github.com/Dallionking/quantdesk/internal/normalize"
	"github.com/Dallionking/quantdesk/internal/params"
	"github.com/Dallionking/quantdesk/internal/schema"
)

func TestBacktestJSONBody(t *testing.T) {
	var gotCT, gotID string
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/backtest", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		gotCT = r.Header.Get("Content-Type")
		gotID = r.Header.Get(RequestIDHeader)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		io.WriteString(w, `{"backtest_id":"x","metrics":{"sharpe_ratio":1.1,"total_return":0.2},"equity_curve":[],"trades":[]}`)
	}))
	defer srv.Close()

	m := params.NewModel(schema.Builtin)
	require.NoError(t, m.SetField("short_window", "50"))
	p, err := encode.Encode(m)
	require.NoError(t, err)

	c := NewBacktestClient(srv.URL + "/")
	res, err := c.Backtest(context.Background(), p)
	require.NoError(t, err)

	assert.Equal(t, "application/json", gotCT)
	assert.NotEmpty(t, gotID)
	assert.Equal(t, 50.0, gotBody["strategy"].(map[string]any)["short_window"])
	assert.Equal(t, "x", res.ID)
	assert.Empty(t, res.Trades)
}

func TestBacktestMultipartBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Contains(t, r.FormValue("params"), `"type":"rsi"`)
		f, hdr, err := r.FormFile("file")
		require.NoError(t, err)
		defer f.Close()
		data, _ := io.ReadAll(f)
		assert.Equal(t, "prices.csv", hdr.Filename)
		assert.Equal(t, "date,close\n2024-01-02,1\n", string(data))
		io.WriteString(w, `{"metrics":{},"equity_curve":[],"trades":[]}`)
	}))
	defer srv.Close()

	m := params.NewModel(schema.Builtin)
	require.NoError(t, m.SwitchStrategy(schema.StrategyRSI))
	m.SetAttachment(&params.Attachment{Name: "prices.csv", Data: []byte("date,close\n2024-01-02,1\n")})
	p, err := encode.Encode(m)
	require.NoError(t, err)

	_, err = NewBacktestClient(srv.URL).Backtest(context.Background(), p)
	require.NoError(t, err)
}

func TestTransportErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"fastapi detail", 400, `{"detail":"Invalid input: Period must be positive"}`, "Invalid input: Period must be positive"},
		{"fastapi validation list", 422, `{"detail":[{"loc":["body","initial_capital"],"msg":"field required"}]}`, "initial_capital: field required"},
		{"flask error", 500, `{"error":"'Free Cash Flow'"}`, "'Free Cash Flow'"},
		{"plain text", 502, "Bad Gateway", "Bad Gateway"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			_, err := NewValuationClient(srv.URL).KeyMetrics(context.Background(), "AAPL")
			var te *TransportError
			require.ErrorAs(t, err, &te)
			assert.Equal(t, tt.status, te.Status)
			assert.Equal(t, tt.want, te.Message)
		})
	}
}

func TestNetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewValuationClient(url).Valuate(context.Background(), encode.ValuationBody{Ticker: "AAPL"})
	var te *TransportError
	require.ErrorAs(t, err, &te)
	assert.Zero(t, te.Status)
	assert.Error(t, te.Err)
}

func TestTimeoutOption(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	_, err := NewValuationClient(srv.URL, WithTimeout(20*time.Millisecond)).KeyMetrics(context.Background(), "AAPL")
	var te *TransportError
	require.ErrorAs(t, err, &te)
	assert.Zero(t, te.Status)
}

func TestValuationEndpoints(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/api/valuation":
			var body encode.ValuationBody
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, 0.08, body.Growth)
			io.WriteString(w, `{"intrinsicValuePerShare": 150.25}`)
		case r.Method == http.MethodGet && r.URL.Path == "/api/key_metrics/BRK.B":
			io.WriteString(w, `{"avg_pe_ratio": 20, "revenue_growth": NaN}`)
		case r.Method == http.MethodPost && r.URL.Path == "/api/dcf_monte_carlo":
			body, _ := io.ReadAll(r.Body)
			assert.True(t, strings.Contains(string(body), `"iterations":1000`))
			io.WriteString(w, `{"summary":{"mean":105.2,"median":102.0,"percentile10":80.1,"percentile90":135.7}}`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := NewValuationClient(srv.URL)
	ctx := context.Background()

	v, err := c.Valuate(ctx, encode.ValuationBody{Ticker: "AAPL", Years: 5, Growth: 0.08, Discount: 0.1, TerminalGrowth: 0.02})
	require.NoError(t, err)
	assert.Equal(t, 150.25, v.IntrinsicValuePerShare)

	km, err := c.KeyMetrics(ctx, "BRK.B")
	require.NoError(t, err)
	assert.Equal(t, 20.0, km.Scalar(normalize.AvgPERatio))

	mc, err := c.MonteCarlo(ctx, encode.MonteCarloBody{Ticker: "GOOGL", Iterations: 1000, Years: 5})
	require.NoError(t, err)
	assert.Equal(t, 105.2, mc.Mean)
	assert.Empty(t, mc.Values)
}

func TestMalformedResponseIsNotTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"metrics":{}}`)
	}))
	defer srv.Close()

	m := params.NewModel(schema.Builtin)
	p, err := encode.Encode(m)
	require.NoError(t, err)

	_, err = NewBacktestClient(srv.URL).Backtest(context.Background(), p)
	var me *normalize.MalformedResponseError
	require.ErrorAs(t, err, &me)
	assert.False(t, errors.As(err, new(*TransportError)))
}

func TestPing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	status, err := NewBacktestClient(srv.URL).Ping(context.Background())
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, status)
}
