package progress

import (
	"bytes"
	"sync"
	"testing"

	"github.com/klauern/lexmerge/internal/logging"
	"github.com/klauern/lexmerge/internal/ui"
)

func TestNew_DisabledForNonTerminal(t *testing.T) {
	prev := ui.IsColorEnabled()
	ui.EnableColors()
	defer func() {
		if !prev {
			ui.DisableColors()
		}
	}()

	var buf bytes.Buffer
	b := New(Options{Max: 3, Description: "Merging", Writer: &buf, Logger: logging.Discard()})
	if b.Enabled() {
		t.Error("bar should be hidden when writing to a buffer")
	}
	for range 3 {
		if err := b.Increment(); err != nil {
			t.Fatal(err)
		}
	}
	if err := b.Finish(); err != nil {
		t.Fatal(err)
	}
	if buf.Len() != 0 {
		t.Errorf("hidden bar wrote %q", buf.String())
	}
	if !b.IsFinished() || b.Current() != 3 {
		t.Errorf("Current() = %d, IsFinished() = %v", b.Current(), b.IsFinished())
	}
}

func TestBar_LogsWhenHidden(t *testing.T) {
	var logs bytes.Buffer
	logger := logging.New(logging.Options{Level: logging.LevelDebug, Output: &logs})

	b := New(Options{Max: 2, Description: "Merging", Writer: &bytes.Buffer{}, Disabled: true, Logger: logger})
	_ = b.Add(2)
	b.Describe("Merged")
	_ = b.Finish()

	for _, want := range []string{"Merging started", "Merged completed", "count=2"} {
		if !bytes.Contains(logs.Bytes(), []byte(want)) {
			t.Errorf("logs missing %q:\n%s", want, logs.String())
		}
	}
}

func TestBar_ConcurrentIncrement(t *testing.T) {
	b := New(Options{Max: 50, Writer: &bytes.Buffer{}, Disabled: true, Logger: logging.Discard()})

	var wg sync.WaitGroup
	for range 50 {
		wg.Go(func() {
			_ = b.Increment()
		})
	}
	wg.Wait()

	if b.Current() != 50 {
		t.Errorf("Current() = %d, want 50", b.Current())
	}
}

func TestBarWidth(t *testing.T) {
	if got := barWidth(&bytes.Buffer{}); got != 10 {
		t.Errorf("barWidth() for a buffer = %d, want 10", got)
	}
}
