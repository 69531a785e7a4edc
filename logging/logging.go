// Package logging provides the single thread-safe logging interface §7
// requires every shading-pipeline error path to route through. It wraps
// the standard library's *log.Logger, which already serializes concurrent
// writes internally, so no additional locking is needed.
package logging

import (
	"log"
	"os"
)

// Logger is a leveled wrapper over *log.Logger.
type Logger struct {
	l *log.Logger
}

// New builds a Logger writing to os.Stderr with a microsecond timestamp,
// matching the teacher's convention of a single process-wide logger.
func New() *Logger {
	return &Logger{l: log.New(os.Stderr, "", log.Lmicroseconds)}
}

// NewWithLogger wraps an existing *log.Logger (for tests that want to
// capture output into a bytes.Buffer).
func NewWithLogger(l *log.Logger) *Logger {
	return &Logger{l: l}
}

func (lg *Logger) Warnf(format string, args ...any) {
	lg.l.Printf("WARN "+format, args...)
}

func (lg *Logger) Errorf(format string, args ...any) {
	lg.l.Printf("ERROR "+format, args...)
}

func (lg *Logger) Infof(format string, args ...any) {
	lg.l.Printf("INFO "+format, args...)
}

// Default is the package-level logger most of rtshade's components fall
// back to when no explicit *Logger is threaded through.
var Default = New()
