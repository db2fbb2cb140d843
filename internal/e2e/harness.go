// Package e2e provides testing infrastructure for end-to-end CLI tests.
// It includes test harness for running CLI commands, fixture management,
// and utilities for setting up isolated test environments.
package e2e

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauern/lexmerge/internal/cli"
)

// Result contains the outcome of running a CLI command.
type Result struct {
	// Stdout contains the captured standard output.
	Stdout string
	// Stderr contains the captured standard error: reports printed next to a
	// merged document on stdout, skipped files and logs.
	Stderr string
	// Err is the error returned by the CLI command, if any.
	Err error
	// ExitCode is the exit code main would use (0 for success, 1 for error).
	ExitCode int
}

// Success returns true if the command completed without error.
func (r *Result) Success() bool {
	return r.Err == nil
}

// Harness provides a test harness for running E2E CLI tests.
// It manages environment isolation, temp directories, and output capture.
type Harness struct {
	t       *testing.T
	homeDir string
	env     map[string]string
}

// NewHarness creates a new E2E test harness.
// Config and backups resolve under an isolated home directory, and progress
// bars are switched off so stderr stays deterministic.
func NewHarness(t *testing.T) *Harness {
	t.Helper()

	homeDir := t.TempDir()

	h := &Harness{
		t:       t,
		homeDir: homeDir,
		env:     make(map[string]string),
	}

	h.SetEnv("HOME", homeDir)
	h.SetEnv("XDG_CONFIG_HOME", filepath.Join(homeDir, ".config"))
	h.SetEnv("XDG_DATA_HOME", filepath.Join(homeDir, ".local", "share"))
	h.SetEnv("LEXMERGE_BATCH_PROGRESS", "false")
	h.SetEnv("NO_COLOR", "1")

	return h
}

// SetEnv sets an environment variable for CLI commands run through this harness.
// The environment will be restored after the test completes.
func (h *Harness) SetEnv(key, value string) {
	h.t.Helper()
	h.env[key] = value
	h.t.Setenv(key, value)
}

// HomeDir returns the isolated home directory for this test harness.
func (h *Harness) HomeDir() string {
	return h.homeDir
}

// ConfigPath returns the config file location inside the isolated home.
func (h *Harness) ConfigPath() string {
	return filepath.Join(h.env["XDG_CONFIG_HOME"], "lexmerge", "config.yaml")
}

// BackupDir returns the backup directory inside the isolated home.
func (h *Harness) BackupDir() string {
	return filepath.Join(h.env["XDG_DATA_HOME"], "lexmerge", "backups")
}

// WriteConfig writes a config file that subsequent runs will load.
func (h *Harness) WriteConfig(yaml string) {
	h.t.Helper()
	path := h.ConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		h.t.Fatalf("failed to create config directory: %v", err)
	}
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		h.t.Fatalf("failed to write config: %v", err)
	}
}

// Run executes a CLI command with the given arguments and captures the output.
func (h *Harness) Run(args ...string) *Result {
	h.t.Helper()

	// Prepend "lexmerge" as the program name if not provided
	if len(args) == 0 || args[0] != "lexmerge" {
		args = append([]string{"lexmerge"}, args...)
	}

	stdout := h.capture(&os.Stdout)
	stderr := h.capture(&os.Stderr)

	cmdErr := cli.Run(context.Background(), args)

	result := &Result{
		Stdout: stdout(),
		Stderr: stderr(),
		Err:    cmdErr,
	}
	if cmdErr != nil {
		result.ExitCode = 1
	}
	return result
}

// capture redirects *f into a pipe and returns a function that restores it
// and yields everything written in between.
//
// The pipe is drained concurrently: a command writing more than the pipe
// buffer (~64KB) would otherwise block forever.
func (h *Harness) capture(f **os.File) func() string {
	h.t.Helper()

	old := *f
	r, w, err := os.Pipe()
	if err != nil {
		h.t.Fatalf("failed to create pipe: %v", err)
	}
	*f = w

	var buf bytes.Buffer
	var copyErr error
	done := make(chan struct{})
	go func() {
		defer close(done)
		_, copyErr = io.Copy(&buf, r)
	}()

	return func() string {
		if err := w.Close(); err != nil {
			h.t.Fatalf("failed to close pipe writer: %v", err)
		}
		*f = old
		<-done
		if copyErr != nil {
			h.t.Fatalf("failed to read captured output: %v", copyErr)
		}
		return buf.String()
	}
}
