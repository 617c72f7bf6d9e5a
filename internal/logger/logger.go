// Package logger provides the leveled console logger used by the server,
// the CLI and the services.
//
// Output lines look like "[HH:MM:SS] [LEVEL] message". Level tags are colored
// when writing to a terminal.
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

const (
	levelTrace = iota
	levelDebug
	levelInfo
	levelWarn
	levelError
)

// Logger is the logging surface the services depend on
type Logger interface {
	Tracef(format string, args ...any)
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

// ConsoleLogger writes leveled, timestamped lines to a writer.
// It is safe for concurrent use.
type ConsoleLogger struct {
	writer      io.Writer
	level       int
	mutex       sync.Mutex
	colorOutput bool
	now         func() time.Time
}

// New creates a ConsoleLogger. Valid levels are trace, debug, info, warn and
// error (case-insensitive); anything else means info. A nil writer discards.
func New(w io.Writer, level string) *ConsoleLogger {
	return &ConsoleLogger{
		writer:      w,
		level:       levelFromString(level),
		colorOutput: isTerminal(w),
		now:         time.Now,
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok || f == nil {
		return false
	}
	// color.NoColor honours NO_COLOR
	return !color.NoColor && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
}

// NormalizeLevel lower-cases a level name, defaulting unknown names to "info"
func NormalizeLevel(level string) string {
	switch l := strings.ToLower(strings.TrimSpace(level)); l {
	case "trace", "debug", "info", "warn", "error":
		return l
	}
	return "info"
}

func levelFromString(level string) int {
	switch NormalizeLevel(level) {
	case "trace":
		return levelTrace
	case "debug":
		return levelDebug
	case "warn":
		return levelWarn
	case "error":
		return levelError
	default:
		return levelInfo
	}
}

func (l *ConsoleLogger) Tracef(format string, args ...any) { l.log(levelTrace, "TRACE", format, args) }
func (l *ConsoleLogger) Debugf(format string, args ...any) { l.log(levelDebug, "DEBUG", format, args) }
func (l *ConsoleLogger) Infof(format string, args ...any)  { l.log(levelInfo, "INFO", format, args) }
func (l *ConsoleLogger) Warnf(format string, args ...any)  { l.log(levelWarn, "WARN", format, args) }
func (l *ConsoleLogger) Errorf(format string, args ...any) { l.log(levelError, "ERROR", format, args) }

func (l *ConsoleLogger) log(level int, tag, format string, args []any) {
	if l.writer == nil || level < l.level {
		return
	}

	message := fmt.Sprintf(format, args...)

	l.mutex.Lock()
	defer l.mutex.Unlock()

	ts := l.now().Format("15:04:05")
	if l.colorOutput {
		tag = colorize(tag)
	}
	fmt.Fprintf(l.writer, "[%s] [%s] %s\n", ts, tag, message)
}

func colorize(tag string) string {
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
	}
	return tag
}

type nopLogger struct{}

func (nopLogger) Tracef(string, ...any) {}
func (nopLogger) Debugf(string, ...any) {}
func (nopLogger) Infof(string, ...any)  {}
func (nopLogger) Warnf(string, ...any)  {}
func (nopLogger) Errorf(string, ...any) {}

// Nop returns a Logger that discards everything
func Nop() Logger { return nopLogger{} }
