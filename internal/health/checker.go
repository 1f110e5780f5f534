// Package health runs diagnostic checks over the loaded configuration, the
// two remote services and the local runtime.
package health

import (
	"context"
	"sync"
	"time"

	"github.com/Dallionking/quantdesk/internal/config"
)

// Status is the outcome of one check.
type Status int

const (
	StatusPass Status = iota
	StatusWarn
	StatusFail
)

func (s Status) String() string {
	switch s {
	case StatusPass:
		return "pass"
	case StatusWarn:
		return "warn"
	case StatusFail:
		return "fail"
	}
	return "unknown"
}

// Check categories, in report order.
const (
	CategoryConfig   = "config"
	CategoryServices = "services"
	CategoryRuntime  = "runtime"
)

var categories = []string{CategoryConfig, CategoryServices, CategoryRuntime}

// CheckResult is the outcome of one check.
type CheckResult struct {
	Name     string
	Category string
	Status   Status
	Message  string
	Duration time.Duration
}

// Report aggregates the results of one run, in registration order.
type Report struct {
	Results  []CheckResult
	Passed   int
	Warned   int
	Failed   int
	Total    int
	Duration time.Duration
	Healthy  bool
}

// Pinger is a remote service that can be pinged for reachability.
type Pinger interface {
	Endpoint() string
	Ping(ctx context.Context) (int, error)
}

type check struct {
	name     string
	category string
	run      func(ctx context.Context) CheckResult
}

// Checker runs the registered checks against one config.
type Checker struct {
	cfg     *config.Config
	cfgFile string
	checks  []check
}

// NewChecker creates a checker for cfg loaded from cfgFile, which is empty
// when no config file was found. A nil service is not pinged.
func NewChecker(cfg *config.Config, cfgFile string, backtest, valuation Pinger) *Checker {
	c := &Checker{cfg: cfg, cfgFile: cfgFile}
	c.add("config-file", CategoryConfig, c.checkConfigFile)
	c.add("config-values", CategoryConfig, c.checkConfigValues)
	if backtest != nil {
		c.add("backtest-service", CategoryServices, pingCheck(backtest))
	}
	if valuation != nil {
		c.add("valuation-service", CategoryServices, pingCheck(valuation))
	}
	c.add("strategy-registry", CategoryRuntime, c.checkRegistry)
	c.add("log-file", CategoryRuntime, c.checkLogFile)
	return c
}

func (c *Checker) add(name, category string, run func(ctx context.Context) CheckResult) {
	c.checks = append(c.checks, check{name: name, category: category, run: run})
}

// RunAll runs every check.
func (c *Checker) RunAll(ctx context.Context) *Report {
	return c.run(ctx, "")
}

// RunCategory runs the checks of one category. An unknown category yields an
// empty report.
func (c *Checker) RunCategory(ctx context.Context, category string) *Report {
	return c.run(ctx, category)
}

// run executes the selected checks concurrently. The service pings are
// network bound, so the run takes as long as the slowest check.
func (c *Checker) run(ctx context.Context, category string) *Report {
	start := time.Now()

	var selected []check
	for _, ch := range c.checks {
		if category == "" || ch.category == category {
			selected = append(selected, ch)
		}
	}

	results := make([]CheckResult, len(selected))
	var wg sync.WaitGroup
	for i, ch := range selected {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var r CheckResult
			if err := ctx.Err(); err != nil {
				r = CheckResult{Status: StatusFail, Message: "skipped: " + err.Error()}
			} else {
				t := time.Now()
				r = ch.run(ctx)
				r.Duration = time.Since(t)
			}
			r.Name, r.Category = ch.name, ch.category
			results[i] = r
		}()
	}
	wg.Wait()

	r := &Report{Results: results, Total: len(results), Duration: time.Since(start)}
	for _, res := range results {
		switch res.Status {
		case StatusPass:
			r.Passed++
		case StatusWarn:
			r.Warned++
		default:
			r.Failed++
		}
	}
	r.Healthy = r.Failed == 0
	return r
}
