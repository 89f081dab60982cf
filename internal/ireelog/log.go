// Package ireelog wraps logrus the way go-ublk's internal/logging wraps
// the standard library logger: a process-wide default instance, a small
// Config, and level control. Every package in this module logs through
// here rather than calling fmt.Println directly; trace lines are
// formatted text (Infof/Debugf/Tracef) with no structured fields attached.
package ireelog

import (
	"io"
	"os"
	"sync"

	"github.com/sirupsen/logrus"
)

// Config configures the default logger.
type Config struct {
	Level  logrus.Level
	Output io.Writer
}

// DefaultConfig mirrors the teacher pack's "sensible default" pattern:
// info level, stderr output, so stdout stays clean for program output.
func DefaultConfig() *Config {
	return &Config{Level: logrus.InfoLevel, Output: os.Stderr}
}

// TracingBuildSupported reports whether this build carries the
// optional fine-grained opcode/dispatch tracing sink. It is a constant
// false here since no WTF/Tracy-equivalent emitter is wired; kept as a
// named value rather than inlining the bool so cmd/ireevm's tracing
// flag reads the same way a build with the sink wired in would.
const TracingBuildSupported = false

var (
	mu      sync.RWMutex
	logger  *logrus.Logger
	tracing bool
)

func init() {
	logger = newLogger(DefaultConfig())
}

func newLogger(cfg *Config) *logrus.Logger {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	l := logrus.New()
	l.SetLevel(cfg.Level)
	l.SetOutput(cfg.Output)
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return l
}

// SetDefault replaces the process-wide logger.
func SetDefault(cfg *Config) {
	mu.Lock()
	defer mu.Unlock()
	logger = newLogger(cfg)
}

// Default returns the process-wide logger.
func Default() *logrus.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

// EnableTracing turns on debug-level opcode/dispatch tracing. It
// corresponds to the one operator flag §6 allows: "enables tracing
// output; its presence when tracing is disabled emits a warning and is
// otherwise ignored."
func EnableTracing() {
	mu.Lock()
	defer mu.Unlock()
	tracing = true
	logger.SetLevel(logrus.DebugLevel)
}

// TracingEnabled reports whether EnableTracing has been called.
func TracingEnabled() bool {
	mu.RLock()
	defer mu.RUnlock()
	return tracing
}

// WarnTracingIgnored logs the required warning when a caller requests
// tracing output while it is disabled.
func WarnTracingIgnored() {
	Default().Warn("tracing output requested but tracing is disabled; ignoring")
}
