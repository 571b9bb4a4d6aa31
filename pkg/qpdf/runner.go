// Package qpdf runs the external qpdf engine as a subprocess.
// It exposes a Runner interface so callers can substitute the engine in tests,
// and a ShellRunner implementation that executes the configured binary with a
// bounded invocation time.
package qpdf

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"
)

// Engine exit statuses.
const (
	StatusOK      = 0
	StatusError   = 2
	StatusWarning = 3
)

// waitDelay bounds how long a killed engine may hold its output pipes open.
const waitDelay = 2 * time.Second

// Runner invokes the engine with an argument vector and blocks until it exits.
type Runner interface {
	// Run executes the engine. A non-zero exit returns an *ExitError.
	Run(ctx context.Context, args []string) error

	// RunWithOutput executes the engine and returns its captured standard output.
	RunWithOutput(ctx context.Context, args []string) (string, error)
}

// ShellRunner executes the qpdf binary with os/exec.
type ShellRunner struct {
	binary        string
	timeout       time.Duration
	allowWarnings bool
	logger        *slog.Logger
}

// New creates a ShellRunner from a finalized configuration.
func New(cfg *Config, logger *slog.Logger) *ShellRunner {
	return &ShellRunner{
		binary:        cfg.Binary,
		timeout:       cfg.TimeoutDuration(),
		allowWarnings: cfg.AllowWarnings,
		logger:        logger.With("system", "qpdf"),
	}
}

// Binary returns the executable the runner invokes.
func (r *ShellRunner) Binary() string {
	return r.binary
}

func (r *ShellRunner) Run(ctx context.Context, args []string) error {
	_, err := r.exec(ctx, args)
	return err
}

func (r *ShellRunner) RunWithOutput(ctx context.Context, args []string) (string, error) {
	return r.exec(ctx, args)
}

func (r *ShellRunner) exec(ctx context.Context, args []string) (string, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, r.binary, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = waitDelay

	start := time.Now()
	err := cmd.Run()
	duration := time.Since(start)

	if err == nil {
		r.logger.Debug("engine run", "args", Redact(args), "duration", duration)
		return stdout.String(), nil
	}

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		r.logger.Warn("engine timed out", "args", Redact(args), "timeout", r.timeout)
		return "", fmt.Errorf("%w after %s", ErrTimeout, r.timeout)
	}
	if ctx.Err() != nil {
		return "", ctx.Err()
	}

	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return "", fmt.Errorf("run %s: %w", r.binary, err)
	}

	status := exitErr.ExitCode()
	if status == StatusWarning && r.allowWarnings {
		r.logger.Debug("engine succeeded with warnings",
			"args", Redact(args),
			"stderr", strings.TrimSpace(stderr.String()),
			"duration", duration,
		)
		return stdout.String(), nil
	}

	r.logger.Warn("engine failed",
		"args", Redact(args),
		"status", status,
		"stderr", strings.TrimSpace(stderr.String()),
		"duration", duration,
	)

	return "", &ExitError{
		Args:   args,
		Status: status,
		Stderr: stderr.String(),
		Err:    exitErr,
	}
}

// Redact returns a copy of args with credentials masked for logging.
// Masks --password=<pw> values and the two passwords following --encrypt.
func Redact(args []string) []string {
	out := make([]string, len(args))
	copy(out, args)

	for i := 0; i < len(out); i++ {
		switch {
		case strings.HasPrefix(out[i], "--password="):
			out[i] = "--password=***"
		case out[i] == "--encrypt":
			for j := i + 1; j < len(out) && j <= i+2; j++ {
				out[j] = "***"
			}
			i += 2
		}
	}

	return out
}
