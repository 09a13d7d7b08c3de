package toolexec

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os/exec"
	"syscall"
	"time"
)

// ExitNotFound is the reserved exit sentinel reported when the named
// program cannot be located or started.
const ExitNotFound = 127

// DefaultGraceWindow is how long a timed-out child gets to exit after
// SIGTERM before it is killed.
const DefaultGraceWindow = 5 * time.Second

// Invocation describes one external tool call.
type Invocation struct {
	Program string
	Args    []string
	Dir     string
	Stdin   []byte
	Timeout time.Duration
}

// Result is the immutable record of one tool invocation. It is always
// produced, whatever the child process did: a non-zero exit, a missing
// binary, or a timeout all yield a Result rather than an error.
type Result struct {
	Program  string
	Args     []string
	ExitCode int
	Stdout   string
	Stderr   string
	Elapsed  time.Duration
	TimedOut bool
}

// Runner launches external tools. The production implementation is
// ExecRunner; tests substitute a recording fake.
type Runner interface {
	Run(ctx context.Context, inv Invocation) Result
}

// ExecRunner runs one short-lived child process per invocation.
type ExecRunner struct {
	// GraceWindow overrides DefaultGraceWindow when positive.
	GraceWindow time.Duration
}

func (r *ExecRunner) Run(ctx context.Context, inv Invocation) Result {
	start := time.Now()
	res := Result{Program: inv.Program, Args: inv.Args}

	if _, err := exec.LookPath(inv.Program); err != nil {
		slog.Warn("tool not found in PATH", "program", inv.Program)
		res.ExitCode = ExitNotFound
		res.Stderr = err.Error()
		res.Elapsed = time.Since(start)
		return res
	}

	runCtx := ctx
	if inv.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, inv.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(runCtx, inv.Program, inv.Args...)
	cmd.Dir = inv.Dir
	if inv.Stdin != nil {
		cmd.Stdin = bytes.NewReader(inv.Stdin)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	// On cancellation try SIGTERM first; WaitDelay escalates to SIGKILL
	// if the child does not exit within the grace window.
	cmd.Cancel = func() error {
		return cmd.Process.Signal(syscall.SIGTERM)
	}
	cmd.WaitDelay = r.GraceWindow
	if cmd.WaitDelay <= 0 {
		cmd.WaitDelay = DefaultGraceWindow
	}

	slog.Debug("running tool", "program", inv.Program, "args", inv.Args)

	err := cmd.Run()
	res.Elapsed = time.Since(start)
	res.Stdout = stdout.String()
	res.Stderr = stderr.String()
	res.TimedOut = inv.Timeout > 0 && errors.Is(runCtx.Err(), context.DeadlineExceeded)

	switch {
	case err == nil:
		res.ExitCode = 0
	default:
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			res.ExitCode = exitErr.ExitCode()
		} else {
			// Start failure after a successful LookPath (permissions,
			// bad working directory). Treat like a missing tool.
			res.ExitCode = ExitNotFound
			if res.Stderr == "" {
				res.Stderr = err.Error()
			}
		}
	}

	if res.TimedOut {
		slog.Warn("tool timed out", "program", inv.Program, "timeout", inv.Timeout)
	}

	return res
}
