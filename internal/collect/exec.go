package collect

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"
)

const defaultTimeout = 10 * time.Minute

// ExecCollector runs the collection pipeline as an isolated external
// process: the request goes in as JSON on stdin, the result comes back as
// JSON on stdout, narrative output stays on stderr. A crashing or runaway
// pipeline cannot corrupt the invoking process.
type ExecCollector struct {
	command []string
	timeout time.Duration
	logger  *slog.Logger
}

// Compile-time interface check.
var _ Collector = (*ExecCollector)(nil)

// NewExecCollector creates a subprocess collector. command is the program
// and its fixed arguments; a zero timeout falls back to 10 minutes.
func NewExecCollector(command []string, timeout time.Duration, logger *slog.Logger) (*ExecCollector, error) {
	if len(command) == 0 {
		return nil, errors.New("collect: empty collector command")
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ExecCollector{command: command, timeout: timeout, logger: logger}, nil
}

// Collect spawns the pipeline process and waits for it, bounded by the
// configured timeout. On expiry the process is killed and ErrTimeout is
// returned so callers can tell "it failed" from "it hung".
func (c *ExecCollector) Collect(ctx context.Context, req Request) (Result, error) {
	input, err := json.Marshal(req)
	if err != nil {
		return Result{}, fmt.Errorf("collect: marshal request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	//nolint:gosec // command comes from the operator's configuration file.
	cmd := exec.CommandContext(ctx, c.command[0], c.command[1:]...)
	cmd.Stdin = bytes.NewReader(input)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	runErr := cmd.Run()
	elapsed := time.Since(start).Round(time.Second)

	if ctx.Err() == context.DeadlineExceeded {
		return Result{}, fmt.Errorf("%w after %s", ErrTimeout, elapsed)
	}
	if runErr != nil {
		if msg := lastLine(stderr.String()); msg != "" {
			return Result{}, fmt.Errorf("collect: pipeline failed: %s: %w", msg, runErr)
		}
		return Result{}, fmt.Errorf("collect: pipeline failed: %w", runErr)
	}

	var result Result
	if err := json.Unmarshal(stdout.Bytes(), &result); err != nil {
		return Result{}, fmt.Errorf("collect: decode pipeline output: %w", err)
	}

	c.logger.Debug("collect: pipeline finished",
		"job", req.JobName,
		"reports", result.ReportsFound,
		"documents", result.DocumentsProcessed,
		"elapsed", elapsed,
	)
	return result, nil
}

// lastLine returns the final non-empty line of s, the most likely place for
// an error summary in pipeline stderr.
func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return line
		}
	}
	return ""
}
