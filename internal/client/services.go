package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/Dallionking/quantdesk/internal/encode"
	"github.com/Dallionking/quantdesk/internal/normalize"
)

// BacktestClient calls the backtest service.
type BacktestClient struct {
	base
}

// NewBacktestClient creates a client for the backtest service at endpoint.
func NewBacktestClient(endpoint string, opts ...Option) *BacktestClient {
	return &BacktestClient{base: newBase(endpoint, opts)}
}

// Run posts an encoded backtest and returns the raw response body.
func (c *BacktestClient) Run(ctx context.Context, p encode.Payload) ([]byte, error) {
	ct, body, err := p.Body()
	if err != nil {
		return nil, err
	}
	c.log.Infow("submitting backtest", "source", p.Source, "strategy", p.Params["strategy"])
	return c.do(ctx, http.MethodPost, "/backtest", ct, body)
}

// Backtest runs p and normalizes the response.
func (c *BacktestClient) Backtest(ctx context.Context, p encode.Payload) (*normalize.BacktestResult, error) {
	raw, err := c.Run(ctx, p)
	if err != nil {
		return nil, err
	}
	return normalize.Backtest(raw)
}

// ValuationClient calls the valuation service.
type ValuationClient struct {
	base
}

// NewValuationClient creates a client for the valuation service at endpoint.
func NewValuationClient(endpoint string, opts ...Option) *ValuationClient {
	return &ValuationClient{base: newBase(endpoint, opts)}
}

// Valuate requests a DCF valuation.
func (c *ValuationClient) Valuate(ctx context.Context, req encode.ValuationBody) (*normalize.ValuationResult, error) {
	raw, err := c.postJSON(ctx, "/api/valuation", req)
	if err != nil {
		return nil, err
	}
	return normalize.Valuation(raw)
}

// KeyMetrics fetches the metric cards and yearly series for ticker.
func (c *ValuationClient) KeyMetrics(ctx context.Context, ticker string) (*normalize.MetricsBundle, error) {
	raw, err := c.do(ctx, http.MethodGet, "/api/key_metrics/"+url.PathEscape(ticker), "", nil)
	if err != nil {
		return nil, err
	}
	return normalize.KeyMetrics(raw)
}

// MonteCarlo runs a Monte Carlo DCF simulation.
func (c *ValuationClient) MonteCarlo(ctx context.Context, req encode.MonteCarloBody) (*normalize.MonteCarloSummary, error) {
	raw, err := c.postJSON(ctx, "/api/dcf_monte_carlo", req)
	if err != nil {
		return nil, err
	}
	return normalize.MonteCarlo(raw)
}
