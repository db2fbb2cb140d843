//nolint:revive // var-naming - package name is meaningful
package util

import (
	"os"
	"path/filepath"
	"strings"
)

// HomeDir returns the user's home directory
func HomeDir() string {
	home, _ := os.UserHomeDir()
	return home
}

// ConfigDir returns the lexmerge configuration directory, honouring
// XDG_CONFIG_HOME.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "lexmerge")
	}
	return filepath.Join(HomeDir(), ".config", "lexmerge")
}

// BackupDir returns the default directory for copies of overwritten files.
func BackupDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "lexmerge", "backups")
	}
	return filepath.Join(HomeDir(), ".local", "share", "lexmerge", "backups")
}

// NotesPath returns the conflict notes file written next to a merged file:
// the same name with ".merge-notes" inserted before the extension.
func NotesPath(output string) string {
	ext := filepath.Ext(output)
	return strings.TrimSuffix(output, ext) + ".merge-notes" + ext
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(path string) string {
	if path == "~" {
		return HomeDir()
	}
	if rest, ok := strings.CutPrefix(path, "~/"); ok {
		return filepath.Join(HomeDir(), rest)
	}
	return path
}
