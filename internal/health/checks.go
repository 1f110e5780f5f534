package health

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/Dallionking/quantdesk/internal/config"
	"github.com/Dallionking/quantdesk/internal/schema"
)

func (c *Checker) checkConfigFile(ctx context.Context) CheckResult {
	if c.cfgFile == "" {
		return CheckResult{Status: StatusWarn, Message: "no quantdesk.yaml found, using defaults"}
	}
	if _, err := os.Stat(c.cfgFile); err != nil {
		return CheckResult{Status: StatusFail, Message: fmt.Sprintf("%s not readable", c.cfgFile)}
	}
	return CheckResult{Status: StatusPass, Message: c.cfgFile}
}

func (c *Checker) checkConfigValues(ctx context.Context) CheckResult {
	errs := config.Validate(c.cfg)
	if len(errs) == 0 {
		return CheckResult{Status: StatusPass, Message: "all values valid"}
	}
	msgs := make([]string, 0, len(errs))
	for _, e := range errs {
		msgs = append(msgs, e.Error())
	}
	return CheckResult{Status: StatusFail, Message: strings.Join(msgs, "; ")}
}

// pingCheck fails when the service cannot be reached and warns on a 5xx. Any
// other status means something is listening.
func pingCheck(p Pinger) func(ctx context.Context) CheckResult {
	return func(ctx context.Context) CheckResult {
		status, err := p.Ping(ctx)
		if err != nil {
			return CheckResult{Status: StatusFail, Message: fmt.Sprintf("%s unreachable", p.Endpoint())}
		}
		if status >= http.StatusInternalServerError {
			return CheckResult{Status: StatusWarn, Message: fmt.Sprintf("%s answered %d", p.Endpoint(), status)}
		}
		return CheckResult{Status: StatusPass, Message: p.Endpoint()}
	}
}

func (c *Checker) checkRegistry(ctx context.Context) CheckResult {
	ids := schema.Builtin.IDs()
	if c.cfg.Defaults.Strategy != "" {
		if _, err := schema.Builtin.Get(c.cfg.Defaults.Strategy); err != nil {
			return CheckResult{Status: StatusFail, Message: err.Error()}
		}
	}
	return CheckResult{Status: StatusPass, Message: fmt.Sprintf("%d strategies: %s", len(ids), strings.Join(ids, ", "))}
}

// checkLogFile checks that the log directory is writable when logging to a
// file.
func (c *Checker) checkLogFile(ctx context.Context) CheckResult {
	out := strings.ToLower(c.cfg.Log.Output)
	if out != "file" && out != "both" {
		return CheckResult{Status: StatusPass, Message: fmt.Sprintf("logging to %s", out)}
	}
	dir := filepath.Dir(c.cfg.Log.File)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return CheckResult{Status: StatusFail, Message: fmt.Sprintf("cannot create %s", dir)}
	}
	f, err := os.CreateTemp(dir, ".quantdesk-write-*")
	if err != nil {
		return CheckResult{Status: StatusFail, Message: fmt.Sprintf("%s not writable", dir)}
	}
	name := f.Name()
	f.Close()
	os.Remove(name)
	return CheckResult{Status: StatusPass, Message: c.cfg.Log.File}
}
