// Package logger holds the process-wide hclog logger and the printf-style
// helpers used by the command line tools.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/hashicorp/go-hclog"
)

// Options configures a logger built by New.
type Options struct {
	Name   string
	Level  string // trace, debug, info, warn, error
	Format string // "json" or "text"
	Output io.Writer
}

var (
	mu   sync.RWMutex
	base hclog.Logger = New(Options{})
)

// New builds an hclog logger. Unknown levels fall back to info.
func New(opts Options) hclog.Logger {
	name := opts.Name
	if name == "" {
		name = "moviedb"
	}

	level := hclog.LevelFromString(opts.Level)
	if level == hclog.NoLevel {
		level = hclog.Info
	}

	out := opts.Output
	if out == nil {
		out = os.Stderr
	}

	return hclog.New(&hclog.LoggerOptions{
		Name:       name,
		Level:      level,
		Output:     out,
		JSONFormat: strings.EqualFold(opts.Format, "json"),
	})
}

// SetDefault replaces the process-wide logger.
func SetDefault(l hclog.Logger) {
	mu.Lock()
	defer mu.Unlock()
	base = l
}

// Default returns the process-wide logger.
func Default() hclog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return base
}

// Named returns a sub-logger of the default logger.
func Named(name string) hclog.Logger {
	return Default().Named(name)
}

// Info logs informational messages
func Info(format string, args ...interface{}) {
	Default().Info(fmt.Sprintf(format, args...))
}

// Warn logs warning messages
func Warn(format string, args ...interface{}) {
	Default().Warn(fmt.Sprintf(format, args...))
}

// Error logs error messages
func Error(format string, args ...interface{}) {
	Default().Error(fmt.Sprintf(format, args...))
}

// Debug logs debug messages
func Debug(format string, args ...interface{}) {
	Default().Debug(fmt.Sprintf(format, args...))
}
