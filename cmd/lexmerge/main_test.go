package main

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauern/lexmerge/internal/cli"
)

// run invokes the CLI and returns its standard output.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	old := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("failed to create pipe: %v", err)
	}
	os.Stdout = w
	done := make(chan string)
	go func() {
		var buf bytes.Buffer
		_, _ = io.Copy(&buf, r)
		done <- buf.String()
	}()

	runErr := cli.Run(context.Background(), append([]string{"lexmerge"}, args...))

	if closeErr := w.Close(); closeErr != nil {
		t.Fatalf("failed to close pipe writer: %v", closeErr)
	}
	os.Stdout = old
	return <-done, runErr
}

func TestCLIInitialization(t *testing.T) {
	output, err := run(t, "--help")
	if err != nil {
		t.Fatalf("CLI initialization failed: %v", err)
	}
	if !strings.Contains(output, "lexmerge") {
		t.Errorf("expected help output to contain 'lexmerge', got: %q", output)
	}
	if !strings.Contains(output, "USAGE") || !strings.Contains(output, "COMMANDS") {
		t.Errorf("expected help output to contain USAGE and COMMANDS sections, got: %q", output)
	}
}

func TestVersionFlag(t *testing.T) {
	output, err := run(t, "--version")
	if err != nil {
		t.Fatalf("--version flag failed: %v", err)
	}
	if !strings.Contains(output, "lexmerge") {
		t.Errorf("expected version output to contain 'lexmerge', got: %q", output)
	}
}

func TestGlobalFlagsRecognized(t *testing.T) {
	tests := map[string]struct {
		args    []string
		wantErr bool
	}{
		"verbose flag":   {args: []string{"--verbose", "version"}},
		"debug flag":     {args: []string{"--debug", "version"}},
		"no-color flag":  {args: []string{"--no-color", "version"}},
		"combined flags": {args: []string{"--verbose", "--no-color", "version"}},
		"unknown flag":   {args: []string{"--bogus", "version"}, wantErr: true},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := run(t, tt.args...)
			if (err != nil) != tt.wantErr {
				t.Errorf("Run() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestAllCommandsRegistered(t *testing.T) {
	output, err := run(t, "--help")
	if err != nil {
		t.Fatalf("help command failed: %v", err)
	}

	for _, cmd := range []string{"version", "config", "merge", "batch", "check", "strategies", "backup"} {
		if !strings.Contains(output, cmd) {
			t.Errorf("expected command %q to be registered, help output: %q", cmd, output)
		}
	}
}

func TestMergeEndToEnd(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) string {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatal(err)
		}
		return path
	}
	ancestor := write("base.lift", `<lift><entry id="a"><trait name="status" value="draft"/></entry></lift>`)
	ours := write("ours.lift", `<lift><entry id="a"><trait name="status" value="draft"/><trait name="pos" value="noun"/></entry></lift>`)
	theirs := write("theirs.lift", `<lift><entry id="a" dateModified="2024-05-01"><trait name="status" value="draft"/></entry></lift>`)
	output := filepath.Join(dir, "merged.lift")

	out, err := run(t, "merge", "--output", output, ancestor, ours, theirs)
	if err != nil {
		t.Fatalf("merge failed: %v", err)
	}
	if !strings.Contains(out, "0 conflicts, 0 warnings") {
		t.Errorf("unexpected report: %q", out)
	}

	data, err := os.ReadFile(output) //nolint:gosec // G304 - test path
	if err != nil {
		t.Fatal(err)
	}
	merged := string(data)
	for _, want := range []string{`dateModified="2024-05-01"`, `<trait name="pos" value="noun"/>`} {
		if !strings.Contains(merged, want) {
			t.Errorf("merged document missing %q:\n%s", want, merged)
		}
	}
}
