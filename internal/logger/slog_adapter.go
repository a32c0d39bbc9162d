package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"
)

// SlogLogger implements Logger on top of log/slog
type SlogLogger struct {
	logger    *slog.Logger
	sanitizer *Sanitizer
	writers   []io.WriteCloser // writers that need closing on shutdown
}

// NewSlogLogger creates a logger writing to stderr and, if configured,
// to a lumberjack-rotated file.
func NewSlogLogger(config Config) (*SlogLogger, error) {
	writers := []io.Writer{os.Stderr}
	var closeable []io.WriteCloser

	if config.File.Path != "" {
		fileWriter, err := createFileWriter(config.File)
		if err != nil {
			return nil, fmt.Errorf("failed to create file writer: %w", err)
		}
		writers = append(writers, fileWriter)
		closeable = append(closeable, fileWriter)
	}

	multiWriter := io.MultiWriter(writers...)
	opts := &slog.HandlerOptions{Level: convertLevel(config.Level)}

	var handler slog.Handler
	switch config.Format {
	case FormatJSON:
		handler = slog.NewJSONHandler(multiWriter, opts)
	default:
		handler = slog.NewTextHandler(multiWriter, opts)
	}

	return &SlogLogger{
		logger:    slog.New(handler),
		sanitizer: NewSanitizer(),
		writers:   closeable,
	}, nil
}

// createFileWriter builds the rotated file writer
func createFileWriter(config FileConfig) (io.WriteCloser, error) {
	if err := os.MkdirAll(filepath.Dir(config.Path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	return &lumberjack.Logger{
		Filename:   config.Path,
		MaxSize:    config.MaxSizeMB,
		MaxAge:     config.MaxAgeDays,
		MaxBackups: config.MaxBackups,
		Compress:   config.Compress,
	}, nil
}

func convertLevel(level Level) slog.Level {
	switch level {
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func (l *SlogLogger) Debug(msg string, args ...any) {
	l.logger.Debug(l.sanitizer.Sanitize(msg), l.sanitizer.SanitizeArgs(args)...)
}

func (l *SlogLogger) Info(msg string, args ...any) {
	l.logger.Info(l.sanitizer.Sanitize(msg), l.sanitizer.SanitizeArgs(args)...)
}

func (l *SlogLogger) Warn(msg string, args ...any) {
	l.logger.Warn(l.sanitizer.Sanitize(msg), l.sanitizer.SanitizeArgs(args)...)
}

func (l *SlogLogger) Error(msg string, args ...any) {
	l.logger.Error(l.sanitizer.Sanitize(msg), l.sanitizer.SanitizeArgs(args)...)
}

// With creates a child logger. Children do not own the writers, so
// shutting one down never double-closes the file.
func (l *SlogLogger) With(args ...any) Logger {
	return &childLogger{
		logger:    l.logger.With(l.sanitizer.SanitizeArgs(args)...),
		sanitizer: l.sanitizer,
	}
}

// Shutdown closes all owned writers
func (l *SlogLogger) Shutdown() error {
	var lastErr error
	for _, w := range l.writers {
		if err := w.Close(); err != nil {
			lastErr = err
		}
	}
	return lastErr
}

type childLogger struct {
	logger    *slog.Logger
	sanitizer *Sanitizer
}

func (c *childLogger) Debug(msg string, args ...any) {
	c.logger.Debug(c.sanitizer.Sanitize(msg), c.sanitizer.SanitizeArgs(args)...)
}

func (c *childLogger) Info(msg string, args ...any) {
	c.logger.Info(c.sanitizer.Sanitize(msg), c.sanitizer.SanitizeArgs(args)...)
}

func (c *childLogger) Warn(msg string, args ...any) {
	c.logger.Warn(c.sanitizer.Sanitize(msg), c.sanitizer.SanitizeArgs(args)...)
}

func (c *childLogger) Error(msg string, args ...any) {
	c.logger.Error(c.sanitizer.Sanitize(msg), c.sanitizer.SanitizeArgs(args)...)
}

func (c *childLogger) With(args ...any) Logger {
	return &childLogger{
		logger:    c.logger.With(c.sanitizer.SanitizeArgs(args)...),
		sanitizer: c.sanitizer,
	}
}

func (c *childLogger) Shutdown() error {
	return nil
}
