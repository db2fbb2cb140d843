// Package util provides tests for utility functions.
//
//nolint:revive // var-naming - package name is meaningful
package util

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCreateTempDir(t *testing.T) {
	dir := CreateTempDir(t)

	// Verify directory exists
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		t.Errorf("CreateTempDir() did not create directory: %s", dir)
	}

	// Directory should be cleaned up after test automatically
}

func TestWriteFile(t *testing.T) {
	dir := CreateTempDir(t)
	path := filepath.Join(dir, "subdir", "test.txt")
	content := "test content"

	WriteFile(t, path, content)

	// Verify file exists and has correct content
	got, err := os.ReadFile(path) //nolint:gosec // G304 - safe in test code using temp directory
	if err != nil {
		t.Fatalf("failed to read file: %v", err)
	}

	if string(got) != content {
		t.Errorf("file content = %q, want %q", got, content)
	}
}

func TestReadFile(t *testing.T) {
	path := filepath.Join(CreateTempDir(t), "a.xml")
	WriteFile(t, path, "<a/>")

	if got := ReadFile(t, path); got != "<a/>" {
		t.Errorf("ReadFile() = %q", got)
	}
}

func TestAssertNoError(t *testing.T) {
	t.Run("passes with nil error", func(t *testing.T) {
		// AssertNoError should not fail when given nil error
		// We can't directly test that it doesn't call t.Fatalf,
		// but we can verify it completes without issue
		AssertNoError(t, nil)
	})

	// Note: We cannot easily test the failure case since t.Fatalf
	// would terminate the test. The behavior is validated by usage
	// throughout the codebase.
}

func TestAssertEqual(t *testing.T) {
	t.Run("passes with equal strings", func(t *testing.T) {
		AssertEqual(t, "hello", "hello")
	})

	t.Run("passes with equal integers", func(t *testing.T) {
		AssertEqual(t, 42, 42)
	})

	t.Run("passes with equal booleans", func(t *testing.T) {
		AssertEqual(t, true, true)
	})

	// Note: We cannot easily test the failure case since t.Errorf
	// would fail the test. The behavior is validated by usage
	// throughout the codebase.
}

func TestGoldenFile(t *testing.T) {
	dir := filepath.Join(CreateTempDir(t), "testdata")

	GoldenFile(t, dir, "notes", "<merge-notes/>\n", true)
	if got := ReadFile(t, filepath.Join(dir, "notes.golden")); got != "<merge-notes/>\n" {
		t.Errorf("update mode wrote %q", got)
	}

	GoldenFile(t, dir, "notes", "<merge-notes/>\n", false)
}
