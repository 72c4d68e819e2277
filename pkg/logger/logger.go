// Package logger is a small leveled logger. Debug lines are only written
// in verbose mode.
package logger

import (
	"io"
	"log"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"
)

type Logger struct {
	verbose bool
	logger  *log.Logger
	closer  io.Closer
}

func New(verbose bool) *Logger {
	return NewWithWriter(os.Stdout, verbose)
}

// NewWithWriter returns a Logger that writes to w instead of stdout.
func NewWithWriter(w io.Writer, verbose bool) *Logger {
	return &Logger{
		verbose: verbose,
		logger:  log.New(w, "", log.LstdFlags),
	}
}

// NewRotating writes to a size-rotated log file at path. The file is opened
// on the first write.
func NewRotating(path string, verbose bool) *Logger {
	sink := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    10, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
	}
	l := NewWithWriter(sink, verbose)
	l.closer = sink
	return l
}

// Discard returns a Logger that drops everything.
func Discard() *Logger {
	return NewWithWriter(io.Discard, false)
}

// Close releases the log file of a rotating Logger. It is a no-op otherwise.
func (l *Logger) Close() error {
	if l.closer == nil {
		return nil
	}
	return l.closer.Close()
}

func (l *Logger) Verbose() bool {
	return l.verbose
}

func (l *Logger) Info(format string, args ...interface{}) {
	l.logger.Printf("[INFO] "+format, args...)
}

func (l *Logger) Warn(format string, args ...interface{}) {
	l.logger.Printf("[WARN] "+format, args...)
}

func (l *Logger) Debug(format string, args ...interface{}) {
	if l.verbose {
		l.logger.Printf("[DEBUG] "+format, args...)
	}
}

func (l *Logger) Error(format string, args ...interface{}) {
	l.logger.Printf("[ERROR] "+format, args...)
}
