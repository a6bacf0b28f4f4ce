// Package crontab reconciles enabled job declarations against the invoking
// user's crontab. All generated lines live inside a marker-delimited managed
// section; content outside the markers is foreign and preserved byte for
// byte across every install and uninstall.
package crontab

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// Crontab reads and replaces the full scheduler configuration of the
// invoking user. Write replaces the whole document in one operation; the
// managed section is never edited line by line.
type Crontab interface {
	// Read returns the current crontab text. A missing crontab is not an
	// error and yields an empty string.
	Read(ctx context.Context) (string, error)

	// Write replaces the crontab with content atomically.
	Write(ctx context.Context, content string) error
}

// System talks to the real crontab binary.
type System struct{}

// Compile-time interface check.
var _ Crontab = System{}

// Read shells out to `crontab -l`. A non-zero exit means the user has no
// crontab yet, which is reported as empty content.
func (System) Read(ctx context.Context) (string, error) {
	var stdout bytes.Buffer
	cmd := exec.CommandContext(ctx, "crontab", "-l")
	cmd.Stdout = &stdout

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return "", nil
		}
		return "", fmt.Errorf("crontab: read: %w", err)
	}
	return stdout.String(), nil
}

// Write shells out to `crontab -` feeding content on stdin.
func (System) Write(ctx context.Context, content string) error {
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, "crontab", "-")
	cmd.Stdin = strings.NewReader(content)
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("crontab: write: %s: %w", msg, err)
		}
		return fmt.Errorf("crontab: write: %w", err)
	}
	return nil
}
