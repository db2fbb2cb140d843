package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestMain(m *testing.M) {
	tempHome, err := os.MkdirTemp("", "lexmerge-cmd-test-")
	if err != nil {
		panic(err)
	}

	setEnvOrPanic := func(key, value string) {
		if err := os.Setenv(key, value); err != nil {
			panic(err)
		}
	}

	setEnvOrPanic("HOME", tempHome)
	setEnvOrPanic("XDG_CONFIG_HOME", filepath.Join(tempHome, ".config"))
	setEnvOrPanic("XDG_DATA_HOME", filepath.Join(tempHome, ".local", "share"))
	setEnvOrPanic("LEXMERGE_BATCH_PROGRESS", "false")

	code := m.Run()
	_ = os.RemoveAll(tempHome)
	os.Exit(code)
}
