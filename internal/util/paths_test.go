package util

import (
	"path/filepath"
	"testing"
)

func TestHomeDir(t *testing.T) {
	home := HomeDir()
	if home == "" {
		t.Error("HomeDir() returned empty string")
	}

	// Verify it's an absolute path
	if !filepath.IsAbs(home) {
		t.Errorf("HomeDir() returned relative path: %s", home)
	}
}

func TestConfigDir(t *testing.T) {
	t.Run("xdg", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", "/xdg/config")
		if got := ConfigDir(); got != "/xdg/config/lexmerge" {
			t.Errorf("ConfigDir() = %q", got)
		}
	})

	t.Run("home", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", "")
		expected := filepath.Join(HomeDir(), ".config", "lexmerge")
		if got := ConfigDir(); got != expected {
			t.Errorf("ConfigDir() = %q, want %q", got, expected)
		}
	})
}

func TestBackupDir(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/xdg/data")
	if got := BackupDir(); got != "/xdg/data/lexmerge/backups" {
		t.Errorf("BackupDir() = %q", got)
	}
}

func TestNotesPath(t *testing.T) {
	tests := map[string]string{
		"out/dict.lift": "out/dict.merge-notes.lift",
		"merged.xml":    "merged.merge-notes.xml",
		"noext":         "noext.merge-notes",
	}
	for in, want := range tests {
		if got := NotesPath(in); got != want {
			t.Errorf("NotesPath(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestExpandHome(t *testing.T) {
	home := HomeDir()
	tests := map[string]string{
		"~":            home,
		"~/backups":    filepath.Join(home, "backups"),
		"/abs/path":    "/abs/path",
		"relative/~/x": "relative/~/x",
	}
	for in, want := range tests {
		if got := ExpandHome(in); got != want {
			t.Errorf("ExpandHome(%q) = %q, want %q", in, got, want)
		}
	}
}
