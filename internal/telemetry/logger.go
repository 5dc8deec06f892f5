package telemetry

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Logger provides structured logging backed by log/slog.
type Logger struct {
	inner   *slog.Logger
	level   slog.Level
	format  string
	mu      sync.Mutex
	writers []io.Writer
}

// NewLogger creates a new structured logger writing to stderr.
// Format is "text" or "json"; anything else falls back to text.
func NewLogger(level, format string) *Logger {
	l := &Logger{
		level:   parseLevel(level),
		format:  format,
		writers: []io.Writer{os.Stderr},
	}
	l.inner = slog.New(l.newHandler(os.Stderr))
	return l
}

// NewVerboseLogger creates a text logger at debug (verbose) or info level.
func NewVerboseLogger(verbose bool) *Logger {
	if verbose {
		return NewLogger("debug", "text")
	}
	return NewLogger("info", "text")
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func (l *Logger) newHandler(w io.Writer) slog.Handler {
	opts := &slog.HandlerOptions{Level: l.level}
	if l.format == "json" {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}

// WithFile adds file output to the logger.
func (l *Logger) WithFile(path string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}

	l.writers = append(l.writers, file)
	l.inner = slog.New(l.newHandler(io.MultiWriter(l.writers...)))
	return nil
}

// WithFields returns a new logger with additional key-value fields.
func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	l.mu.Lock()
	defer l.mu.Unlock()

	args := make([]any, 0, len(fields)*2)
	for k, v := range fields {
		args = append(args, k, v)
	}

	writersCopy := make([]io.Writer, len(l.writers))
	copy(writersCopy, l.writers)

	return &Logger{
		inner:   l.inner.With(args...),
		level:   l.level,
		format:  l.format,
		writers: writersCopy,
	}
}

// Close closes all file writers opened via WithFile.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	var firstErr error
	for _, w := range l.writers {
		if f, ok := w.(*os.File); ok && f != os.Stderr && f != os.Stdout {
			if err := f.Close(); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// Slog returns the underlying *slog.Logger.
func (l *Logger) Slog() *slog.Logger {
	return l.inner
}

// Debug logs at debug level.
func (l *Logger) Debug(msg string, keyvals ...interface{}) {
	l.inner.Debug(msg, keyvals...)
}

// Info logs at info level.
func (l *Logger) Info(msg string, keyvals ...interface{}) {
	l.inner.Info(msg, keyvals...)
}

// Warn logs at warn level.
func (l *Logger) Warn(msg string, keyvals ...interface{}) {
	l.inner.Warn(msg, keyvals...)
}

// Error logs at error level.
func (l *Logger) Error(msg string, keyvals ...interface{}) {
	l.inner.Error(msg, keyvals...)
}
