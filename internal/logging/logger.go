// Package logging provides structured logging for lexmerge using slog.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"
)

// Level aliases for convenience.
const (
	LevelDebug = slog.LevelDebug
	LevelInfo  = slog.LevelInfo
	LevelWarn  = slog.LevelWarn
	LevelError = slog.LevelError
)

var (
	mu            sync.RWMutex
	defaultLogger *slog.Logger
)

// Options configures the logger behavior.
type Options struct {
	// Level sets the minimum log level. Defaults to LevelInfo.
	Level slog.Level
	// Output sets the output destination. Defaults to os.Stderr.
	Output io.Writer
	// JSON enables JSON output format.
	JSON bool
	// AddSource includes source file and line in log output.
	AddSource bool
}

// DefaultOptions returns options suitable for CLI usage.
func DefaultOptions() Options {
	return Options{
		Level:  LevelWarn,
		Output: os.Stderr,
	}
}

// New creates a new logger with the given options.
func New(opts Options) *slog.Logger {
	if opts.Output == nil {
		opts.Output = os.Stderr
	}

	handlerOpts := &slog.HandlerOptions{
		Level:     opts.Level,
		AddSource: opts.AddSource,
	}

	var handler slog.Handler
	if opts.JSON {
		handler = slog.NewJSONHandler(opts.Output, handlerOpts)
	} else {
		handler = slog.NewTextHandler(opts.Output, handlerOpts)
	}

	return slog.New(handler)
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// Default returns the process logger, creating it if necessary. It writes
// text to stderr at warn level until SetDefault is called.
func Default() *slog.Logger {
	mu.RLock()
	l := defaultLogger
	mu.RUnlock()
	if l != nil {
		return l
	}

	mu.Lock()
	defer mu.Unlock()
	if defaultLogger == nil {
		defaultLogger = New(DefaultOptions())
	}
	return defaultLogger
}

// SetDefault replaces the process logger and slog's default.
func SetDefault(logger *slog.Logger) {
	mu.Lock()
	defaultLogger = logger
	mu.Unlock()
	slog.SetDefault(logger)
}

// Or returns l, or the default logger when l is nil.
func Or(l *slog.Logger) *slog.Logger {
	if l != nil {
		return l
	}
	return Default()
}

// With returns a logger that includes the given attributes in every output.
func With(args ...any) *slog.Logger {
	return Default().With(args...)
}

// ParseLevel maps a level name (debug, info, warn, error) to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, nil
	case "info", "":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}

type loggerKey struct{}

// NewContext returns a context with the logger attached.
func NewContext(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// FromContext retrieves the logger from context, falling back to the default
// logger.
func FromContext(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok && l != nil {
		return l
	}
	return Default()
}

// Common attribute keys for consistent logging across the codebase.
const (
	// KeyPath identifies a file path.
	KeyPath = "path"
	// KeyNode identifies a node by its tree path.
	KeyNode = "node"
	// KeyDocument names the document being merged.
	KeyDocument = "document"
	// KeyRole identifies a revision (ancestor, ours, theirs).
	KeyRole = "role"
	// KeyTag identifies an element tag.
	KeyTag = "tag"
	// KeyKind identifies a conflict or warning kind.
	KeyKind = "kind"
	// KeyOperation identifies the operation being performed.
	KeyOperation = "operation"
	// KeyCount provides a count of items.
	KeyCount = "count"
	// KeyError attaches an error value.
	KeyError = "error"
	// KeyDuration records operation duration.
	KeyDuration = "duration"
)

// Path returns a slog attribute for file path logging.
func Path(p string) slog.Attr {
	return slog.String(KeyPath, p)
}

// Node returns a slog attribute for a tree path. Any fmt.Stringer works.
func Node(p fmt.Stringer) slog.Attr {
	return slog.String(KeyNode, p.String())
}

// Document returns a slog attribute naming a document.
func Document(name string) slog.Attr {
	return slog.String(KeyDocument, name)
}

// Role returns a slog attribute for a revision role.
func Role(r fmt.Stringer) slog.Attr {
	return slog.String(KeyRole, r.String())
}

// Tag returns a slog attribute for an element tag.
func Tag(tag string) slog.Attr {
	return slog.String(KeyTag, tag)
}

// Kind returns a slog attribute for a record kind.
func Kind(k fmt.Stringer) slog.Attr {
	return slog.String(KeyKind, k.String())
}

// Operation returns a slog attribute for operation logging.
func Operation(op string) slog.Attr {
	return slog.String(KeyOperation, op)
}

// Err returns a slog attribute for error logging.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any(KeyError, err)
}

// Count returns a slog attribute for item counts.
func Count(n int) slog.Attr {
	return slog.Int(KeyCount, n)
}

// Timer measures an operation and logs its duration when stopped.
type Timer struct {
	logger *slog.Logger
	op     string
	start  time.Time
}

// StartTimer starts timing op. A nil logger uses the default logger.
func StartTimer(logger *slog.Logger, op string) *Timer {
	return &Timer{logger: Or(logger), op: op, start: time.Now()}
}

// Stop logs the elapsed time at debug level with any extra attributes and
// returns it.
func (t *Timer) Stop(attrs ...slog.Attr) time.Duration {
	elapsed := time.Since(t.start)
	args := make([]any, 0, len(attrs)+2)
	args = append(args, Operation(t.op), slog.Duration(KeyDuration, elapsed))
	for _, a := range attrs {
		args = append(args, a)
	}
	t.logger.Debug("operation complete", args...)
	return elapsed
}
