// Package progress provides progress indicators for long-running operations.
package progress

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/term"

	"github.com/klauern/lexmerge/internal/logging"
	"github.com/klauern/lexmerge/internal/ui"
)

// Bar wraps progressbar with lexmerge's UI and logging. It is safe for
// concurrent use, so batch workers can report completion directly.
type Bar struct {
	mu      sync.Mutex
	bar     *progressbar.ProgressBar
	enabled bool
	desc    string
	done    int64
	max     int64
	logger  *slog.Logger
}

// Options configures the progress bar behavior.
type Options struct {
	// Max is the maximum value for the progress bar (total steps).
	Max int64
	// Description is the prefix text shown before the progress bar.
	Description string
	// Writer is the output destination. Defaults to os.Stderr.
	Writer io.Writer
	// Disabled suppresses the bar, e.g. for --quiet or JSON output.
	Disabled bool
	// Logger receives start and completion messages when the bar is hidden.
	Logger *slog.Logger
}

// DefaultOptions returns sensible defaults for CLI progress bars.
func DefaultOptions() Options {
	return Options{
		Max:         100,
		Description: "Merging",
		Writer:      os.Stderr,
	}
}

// New creates a new progress bar with the given options.
// The bar is only shown if:
//   - Colors are enabled (respects NO_COLOR and --no-color)
//   - Output is a terminal
//   - Not in debug mode (to avoid interfering with logs)
func New(opts Options) *Bar {
	if opts.Writer == nil {
		opts.Writer = os.Stderr
	}
	logger := logging.Or(opts.Logger)

	b := &Bar{
		enabled: !opts.Disabled && shouldShowProgress(opts.Writer, logger),
		desc:    opts.Description,
		max:     opts.Max,
		logger:  logger,
	}

	if !b.enabled {
		// Log start at debug level instead
		logger.Debug(fmt.Sprintf("%s started", opts.Description), logging.Count(int(opts.Max)))
		return b
	}

	b.bar = progressbar.NewOptions64(
		opts.Max,
		progressbar.OptionSetDescription(opts.Description),
		progressbar.OptionSetWriter(opts.Writer),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("docs"),
		progressbar.OptionSetWidth(barWidth(opts.Writer)),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionOnCompletion(func() {
			_, _ = fmt.Fprint(opts.Writer, "\n")
		}),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionSetRenderBlankState(true),
		progressbar.OptionEnableColorCodes(ui.IsColorEnabled()),
	)

	return b
}

// Increment advances the bar by one step.
func (b *Bar) Increment() error {
	return b.Add(1)
}

// Add increments the progress bar by n steps.
func (b *Bar) Add(n int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.done += int64(n)
	if !b.enabled {
		return nil
	}
	return b.bar.Add(n)
}

// Current returns the number of completed steps.
func (b *Bar) Current() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.done
}

// Describe updates the progress bar description.
func (b *Bar) Describe(desc string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.desc = desc
	if !b.enabled {
		return
	}
	b.bar.Describe(desc)
}

// Finish completes the progress bar and logs completion.
func (b *Bar) Finish() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.enabled {
		b.logger.Debug(fmt.Sprintf("%s completed", b.desc), logging.Count(int(b.done)))
		return nil
	}
	return b.bar.Finish()
}

// Clear removes the progress bar from the terminal.
func (b *Bar) Clear() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.enabled {
		return nil
	}
	return b.bar.Clear()
}

// Enabled reports whether the bar is drawn.
func (b *Bar) Enabled() bool {
	return b.enabled
}

// IsFinished returns true if the progress bar has reached its max value.
func (b *Bar) IsFinished() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.max > 0 && b.done >= b.max
}

// shouldShowProgress determines if progress bars should be displayed.
// Progress is disabled if:
//   - Not outputting to a terminal
//   - Colors are disabled (NO_COLOR, --no-color)
//   - Logger is at debug level (to avoid interfering with debug output)
func shouldShowProgress(w io.Writer, logger *slog.Logger) bool {
	if !ui.IsColorEnabled() {
		return false
	}

	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) { //nolint:gosec // G115 - fd fits in int
		return false
	}

	return !logger.Enabled(context.Background(), logging.LevelDebug)
}

// barWidth sizes the bar to a third of the terminal, within limits.
func barWidth(w io.Writer) int {
	const minWidth, maxWidth = 10, 40
	f, ok := w.(*os.File)
	if !ok {
		return minWidth
	}
	cols, _, err := term.GetSize(int(f.Fd())) //nolint:gosec // G115 - fd fits in int
	if err != nil {
		return minWidth
	}
	return min(max(cols/3, minWidth), maxWidth)
}
