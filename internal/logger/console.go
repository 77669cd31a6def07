// Package logger provides the diagnostic logger for scour runs.
//
// Diagnostics (per-entry traversal failures, history write problems, debug
// traces) go through this logger to stderr. User-facing program output, the
// match lines and summaries that cleanup and aggregation print, is written
// to stdout by the engines themselves and never passes through here, so
// piping scour's output stays safe at any log level.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// Log level constants for filtering.
const (
	levelTrace int = 0
	levelDebug int = 1
	levelInfo  int = 2
	levelWarn  int = 3
	levelError int = 4
)

// Console writes level-filtered, timestamped messages to a writer. All
// output is prefixed with [HH:MM:SS] timestamps. Level tags are colored
// when the writer is a terminal. Safe for concurrent use.
type Console struct {
	writer      io.Writer
	level       int
	mu          sync.Mutex
	colorOutput bool
}

// New creates a Console writing to w. If w is nil, messages are silently
// discarded. Valid levels: trace, debug, info, warn, error
// (case-insensitive); empty or unknown levels default to info.
func New(w io.Writer, level string) *Console {
	return &Console{
		writer:      w,
		level:       parseLevel(level),
		colorOutput: isTerminal(w),
	}
}

// NewStderr creates a Console writing to os.Stderr, which is where scour
// diagnostics belong.
func NewStderr(level string) *Console {
	return New(os.Stderr, level)
}

// isTerminal reports whether w is a TTY that can take ANSI colors.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// parseLevel maps a level name to its numeric value, defaulting to info.
func parseLevel(level string) int {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return levelTrace
	case "debug":
		return levelDebug
	case "info", "":
		return levelInfo
	case "warn":
		return levelWarn
	case "error":
		return levelError
	default:
		return levelInfo
	}
}

// Tracef logs at trace level (most verbose).
func (c *Console) Tracef(format string, args ...interface{}) {
	c.logf(levelTrace, "TRACE", format, args...)
}

// Debugf logs at debug level.
func (c *Console) Debugf(format string, args ...interface{}) {
	c.logf(levelDebug, "DEBUG", format, args...)
}

// Infof logs at info level.
func (c *Console) Infof(format string, args ...interface{}) {
	c.logf(levelInfo, "INFO", format, args...)
}

// Warnf logs at warn level.
func (c *Console) Warnf(format string, args ...interface{}) {
	c.logf(levelWarn, "WARN", format, args...)
}

// Errorf logs at error level.
func (c *Console) Errorf(format string, args ...interface{}) {
	c.logf(levelError, "ERROR", format, args...)
}

func (c *Console) logf(level int, tag, format string, args ...interface{}) {
	if c == nil || c.writer == nil || level < c.level {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	ts := time.Now().Format("15:04:05")
	if c.colorOutput {
		tag = colorTag(tag)
	}
	fmt.Fprintf(c.writer, "[%s] [%s] %s\n", ts, tag, fmt.Sprintf(format, args...))
}

// colorTag colors a level tag with ANSI codes.
func colorTag(tag string) string {
	switch tag {
	case "TRACE":
		return color.New(color.FgHiBlack).Sprint(tag)
	case "DEBUG":
		return color.New(color.FgCyan).Sprint(tag)
	case "INFO":
		return color.New(color.FgBlue).Sprint(tag)
	case "WARN":
		return color.New(color.FgYellow).Sprint(tag)
	case "ERROR":
		return color.New(color.FgRed).Sprint(tag)
	default:
		return tag
	}
}
