// Package logging provides the leveled console logger used by every
// command, with an optional append-only log file.
//
// Console output goes through tint (colored when [term] enables colors);
// ERROR lines go to stderr, everything else to stdout. The log file, when
// configured, receives every line through slog's text handler.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/lmittmann/tint"

	"github.com/backmassage/texanim/internal/config"
	"github.com/backmassage/texanim/internal/term"
)

const timeFormat = "2006-01-02 15:04:05"

// Logger provides leveled, optionally colored logging with optional file sink.
type Logger struct {
	mu      sync.Mutex
	stdout  *slog.Logger
	stderr  *slog.Logger
	file    *os.File
	fileLog *slog.Logger
}

// NewLogger configures terminal colors from cfg and optionally opens
// cfg.LogFile. Call Close() when done if LogFile was set.
func NewLogger(cfg *config.Config) (*Logger, error) {
	term.Configure(cfg.ColorMode)

	l := &Logger{
		stdout: slog.New(newConsoleHandler(os.Stdout)),
		stderr: slog.New(newConsoleHandler(os.Stderr)),
	}

	if cfg.LogFile != "" {
		dir := filepath.Dir(cfg.LogFile)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, err
		}
		l.file = f
		l.fileLog = slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	return l, nil
}

func newConsoleHandler(w io.Writer) slog.Handler {
	return tint.NewHandler(w, &tint.Options{
		Level:      slog.LevelDebug,
		TimeFormat: timeFormat,
		NoColor:    !term.Enabled(),
	})
}

// Close closes the log file if one was opened.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file != nil {
		err := l.file.Close()
		l.file = nil
		l.fileLog = nil
		return err
	}
	return nil
}

func (l *Logger) line(level slog.Level, msg string) {
	l.marked(level, "", "", msg)
}

// marked writes msg with an optional marker prefix. The console gets the
// colored marker, the log file the plain one.
func (l *Logger) marked(level slog.Level, colored, plain, msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	ctx := context.Background()
	console := msg
	if colored != "" {
		console = colored + " " + msg
	}
	if level >= slog.LevelError {
		l.stderr.Log(ctx, level, console)
	} else {
		l.stdout.Log(ctx, level, console)
	}
	if l.fileLog != nil {
		if plain != "" {
			msg = plain + " " + msg
		}
		l.fileLog.Log(ctx, level, msg)
	}
}

// Info logs at INFO level.
func (l *Logger) Info(format string, args ...interface{}) {
	l.line(slog.LevelInfo, fmt.Sprintf(format, args...))
}

// Success logs at INFO level with a green "OK" marker.
func (l *Logger) Success(format string, args ...interface{}) {
	l.marked(slog.LevelInfo, term.Green+"OK"+term.NC, "OK", fmt.Sprintf(format, args...))
}

// Warn logs at WARN level.
func (l *Logger) Warn(format string, args ...interface{}) {
	l.line(slog.LevelWarn, fmt.Sprintf(format, args...))
}

// Error logs at ERROR level, to stderr.
func (l *Logger) Error(format string, args ...interface{}) {
	l.line(slog.LevelError, fmt.Sprintf(format, args...))
}

// Debug logs at DEBUG level only when verbose; no-op otherwise.
func (l *Logger) Debug(verbose bool, format string, args ...interface{}) {
	if !verbose {
		return
	}
	l.line(slog.LevelDebug, fmt.Sprintf(format, args...))
}
