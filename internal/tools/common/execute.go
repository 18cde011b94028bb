package common

import (
	"context"
	"os"
	"time"

	"github.com/campusconnect/campus-connect-api/internal/observability"
	"github.com/campusconnect/campus-connect-api/internal/tools/ui"
)

// Command describes one campusctl invocation.
type Command struct {
	Tool     string
	Action   string
	CI       bool
	Timeout  time.Duration
	ExitCode int
}

func (c Command) Title() string { return c.Tool + " " + c.Action }

// Run executes fn with the interactive view, or directly in CI mode, and
// records the tool metrics for the outcome.
func Run(c Command, fn func(context.Context) ([]string, error)) ([]string, time.Duration, error) {
	start := time.Now()
	var (
		details []string
		err     error
	)
	if c.CI {
		ctx, cancel := context.WithTimeout(context.Background(), c.Timeout)
		details, err = fn(ctx)
		cancel()
	} else {
		details, err = ui.Run(c.Title(), c.Timeout, fn)
	}
	elapsed := time.Since(start)
	status := "success"
	if err != nil {
		status = "failure"
	}
	observability.RecordToolCommandRun(context.Background(), c.Tool, c.Action, status)
	observability.RecordToolCommandDuration(context.Background(), c.Tool, c.Action, status, elapsed)
	return details, elapsed, err
}

// Execute is Run followed by CI output and a non-zero exit on failure.
func Execute(c Command, fn func(context.Context) ([]string, error)) error {
	details, elapsed, err := Run(c, fn)
	if c.CI {
		PrintCIResult(c.Title(), details, elapsed, err)
	}
	if err != nil {
		code := c.ExitCode
		if code == 0 {
			code = 1
		}
		os.Exit(code)
	}
	return nil
}
