package ui

import (
	"os"
	"strings"
	"testing"

	"github.com/mattn/go-runewidth"
)

func TestSideBySide(t *testing.T) {
	DisableColors()
	defer EnableColors()

	out := SideBySide(60,
		Panel{Title: "OURS", Body: "hound"},
		Panel{Title: "THEIRS", Body: "puppy"},
		Panel{Title: "ANCESTOR"},
	)
	lines := strings.Split(out, "\n")
	if len(lines) < 4 {
		t.Fatalf("expected a bordered block, got %q", out)
	}
	for _, want := range []string{"OURS", "THEIRS", "ANCESTOR", "hound", "puppy", "(empty)", "╭"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if !strings.Contains(lines[1], "OURS") || !strings.Contains(lines[1], "THEIRS") {
		t.Errorf("panels should share rows, first content row is %q", lines[1])
	}
	for _, l := range lines {
		if w := runewidth.StringWidth(l); w > 60 {
			t.Errorf("line is %d cells wide, want at most 60: %q", w, l)
		}
	}

	if got := SideBySide(60); got != "" {
		t.Errorf("no panels should render nothing, got %q", got)
	}
}

func TestTerminalWidth(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "out")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	if got := TerminalWidth(f, 100); got != 100 {
		t.Errorf("TerminalWidth(regular file) = %d, want fallback 100", got)
	}
	if got := TerminalWidth(nil, 80); got != 80 {
		t.Errorf("TerminalWidth(nil) = %d, want fallback 80", got)
	}
}
