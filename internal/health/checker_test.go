package health

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dallionking/quantdesk/internal/config"
)

type fakePinger struct {
	endpoint string
	status   int
	err      error
}

func (f fakePinger) Endpoint() string                  { return f.endpoint }
func (f fakePinger) Ping(context.Context) (int, error) { return f.status, f.err }

// writeConfigFile creates an empty config file to report as the loaded one.
func writeConfigFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "quantdesk.yaml")
	require.NoError(t, os.WriteFile(path, []byte("timeout: 1m\n"), 0o644))
	return path
}

func validConfig(t *testing.T) *config.Config {
	return &config.Config{
		Services: config.Services{Backtest: "http://localhost:8000", Valuation: "http://localhost:5000"},
		Timeout:  time.Minute,
		Log:      config.LogConfig{Output: "file", File: filepath.Join(t.TempDir(), "q.log")},
	}
}

func TestRunAllHealthy(t *testing.T) {
	c := NewChecker(validConfig(t), writeConfigFile(t),
		fakePinger{endpoint: "http://localhost:8000", status: http.StatusOK},
		fakePinger{endpoint: "http://localhost:5000", status: http.StatusNotFound},
	)

	r := c.RunCategory(context.Background(), "services")
	assert.Equal(t, 2, r.Total)
	assert.True(t, r.Healthy)

	all := c.RunAll(context.Background())
	assert.Zero(t, all.Failed)
	assert.Zero(t, all.Warned)
	assert.Contains(t, FormatReport(all), "HEALTHY")
}

func TestConfigFile(t *testing.T) {
	tests := []struct {
		name   string
		file   string
		status Status
		badge  string
	}{
		{"loaded", writeConfigFile(t), StatusPass, "HEALTHY"},
		{"defaults only", "", StatusWarn, "DEGRADED"},
		{"gone", filepath.Join(t.TempDir(), "missing.yaml"), StatusFail, "UNHEALTHY"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewChecker(validConfig(t), tt.file, nil, nil).RunAll(context.Background())
			require.Equal(t, "config-file", r.Results[0].Name)
			assert.Equal(t, tt.status, r.Results[0].Status)
			assert.Contains(t, FormatReport(r), tt.badge)
			assert.Equal(t, tt.status == StatusPass, r.Healthy && r.Warned == 0)
		})
	}
}

func TestUnreachableService(t *testing.T) {
	c := NewChecker(validConfig(t), writeConfigFile(t),
		fakePinger{endpoint: "http://localhost:8000", err: errors.New("connection refused")},
		fakePinger{endpoint: "http://localhost:5000", status: http.StatusBadGateway},
	)

	r := c.RunCategory(context.Background(), "services")
	require.Len(t, r.Results, 2)
	assert.Equal(t, StatusFail, r.Results[0].Status)
	assert.Contains(t, r.Results[0].Message, "unreachable")
	assert.Equal(t, StatusWarn, r.Results[1].Status)
	assert.False(t, r.Healthy)
	assert.Contains(t, FormatReport(r), "UNHEALTHY")
}

func TestInvalidConfig(t *testing.T) {
	cfg := validConfig(t)
	cfg.Timeout = 0
	cfg.Defaults.Strategy = "momentum"

	r := NewChecker(cfg, writeConfigFile(t), nil, nil).RunAll(context.Background())
	byName := map[string]CheckResult{}
	for _, res := range r.Results {
		byName[res.Name] = res
	}
	assert.Equal(t, StatusFail, byName["config-values"].Status)
	assert.Contains(t, byName["config-values"].Message, "timeout")
	assert.Equal(t, StatusFail, byName["strategy-registry"].Status)
	assert.Equal(t, StatusPass, byName["log-file"].Status)
}

func TestCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r := NewChecker(validConfig(t), "", nil, nil).RunAll(ctx)
	assert.Equal(t, r.Total, r.Failed)
}

func TestUnknownCategory(t *testing.T) {
	r := NewChecker(validConfig(t), "", nil, nil).RunCategory(context.Background(), "network")
	assert.Zero(t, r.Total)
	assert.True(t, r.Healthy)
}

func TestFormatReportGroupsCategories(t *testing.T) {
	c := NewChecker(validConfig(t), writeConfigFile(t), fakePinger{endpoint: "http://localhost:8000", status: http.StatusOK}, nil)
	out := FormatReport(c.RunAll(context.Background()))

	for _, title := range []string{"Configuration", "Remote Services", "Runtime"} {
		assert.Contains(t, out, title)
	}
	assert.Less(t, strings.Index(out, "Configuration"), strings.Index(out, "Runtime"))
	assert.Contains(t, out, "backtest-service")
	assert.NotContains(t, out, "valuation-service")
}

func TestShorten(t *testing.T) {
	long := strings.Repeat("x", 60)
	assert.Len(t, []rune(shorten(long)), maxMessage)
	assert.Equal(t, "short", shorten("short"))
}
