// Package logging owns the process-wide slog logger: a stderr bootstrap
// handler that is swapped for a stderr plus rotating-file fanout once
// configuration is loaded.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	slogmulti "github.com/samber/slog-multi"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Rotation settings for the log file.
const (
	MaxFileSizeMB = 10
	MaxBackups    = 3
	MaxAgeDays    = 28
)

// Manager handles logger lifecycle including bootstrap-to-full mode transitions.
// Components should obtain a logger via Logger() and use it for all logging.
type Manager struct {
	handler *SwappableHandler
	logger  *slog.Logger
	logFile *lumberjack.Logger
	level   *slog.LevelVar
	stderr  io.Writer
	mu      sync.Mutex
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithStderr replaces os.Stderr as the console destination.
func WithStderr(w io.Writer) ManagerOption {
	return func(m *Manager) {
		if w != nil {
			m.stderr = w
		}
	}
}

// NewManager creates a logging manager in bootstrap mode.
// Bootstrap mode writes text to stderr at DefaultLevel so that rendered
// output on stdout stays clean.
// Call Upgrade() after config is available to enable file logging.
func NewManager(opts ...ManagerOption) *Manager {
	m := &Manager{
		level:  new(slog.LevelVar),
		stderr: os.Stderr,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.level.Set(DefaultLevel)

	bootstrap := slog.NewTextHandler(m.stderr, &slog.HandlerOptions{Level: m.level})
	m.handler = NewSwappableHandler(bootstrap)
	m.logger = slog.New(m.handler)

	return m
}

// Logger returns the current logger instance.
// The returned logger is stable across Upgrade calls.
func (m *Manager) Logger() *slog.Logger {
	return m.logger
}

// Upgrade transitions from bootstrap mode to full mode: text to stderr
// plus JSON to a rotating log file. An empty logFilePath keeps stderr as
// the only destination and only applies level.
func (m *Manager) Upgrade(logFilePath string, level slog.Level) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.level.Set(level)
	opts := &slog.HandlerOptions{Level: m.level}

	if logFilePath == "" {
		m.closeFile()
		m.handler.Swap(slog.NewTextHandler(m.stderr, opts))
		return nil
	}

	dir := filepath.Dir(logFilePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create log directory %q; %w", dir, err)
	}

	// lumberjack opens lazily; probe now so a bad path fails here.
	probe, err := os.OpenFile(logFilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file %q; %w", logFilePath, err)
	}
	_ = probe.Close()

	m.closeFile()
	m.logFile = &lumberjack.Logger{
		Filename:   logFilePath,
		MaxSize:    MaxFileSizeMB,
		MaxBackups: MaxBackups,
		MaxAge:     MaxAgeDays,
	}

	fullHandler := slogmulti.Fanout(
		slog.NewTextHandler(m.stderr, opts),
		slog.NewJSONHandler(m.logFile, opts),
	)

	// Atomic swap - all future log calls use the new handler
	m.handler.Swap(fullHandler)

	return nil
}

// SetLevel changes the log level at runtime.
func (m *Manager) SetLevel(level slog.Level) {
	m.level.Set(level)
}

// Close cleanly shuts down the logger, closing any open file handles.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.closeFile()
}

func (m *Manager) closeFile() error {
	if m.logFile == nil {
		return nil
	}
	err := m.logFile.Close()
	m.logFile = nil
	return err
}
