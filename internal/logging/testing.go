package logging

import (
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// NopLogger returns a logger that discards all output.
func NopLogger() *ScopedLogger {
	return &ScopedLogger{}
}

// TestLogManager records entries in memory so tests can assert on them.
type TestLogManager struct {
	baseZap *zap.Logger
	logs    *observer.ObservedLogs

	mu      sync.Mutex
	loggers map[string]*ScopedLogger
}

// NewTestLogManager creates a manager that keeps every entry at debug level and up.
func NewTestLogManager() *TestLogManager {
	core, logs := observer.New(zapcore.DebugLevel)
	return &TestLogManager{
		baseZap: zap.New(core),
		logs:    logs,
		loggers: make(map[string]*ScopedLogger),
	}
}

// For returns a scoped logger. Named For to match Manager.
func (m *TestLogManager) For(scope string) *ScopedLogger {
	m.mu.Lock()
	defer m.mu.Unlock()
	if logger, ok := m.loggers[scope]; ok {
		return logger
	}
	logger := newScoped(m.baseZap.Named(scope), zapcore.DebugLevel, scope)
	m.loggers[scope] = logger
	return logger
}

// Messages returns the messages logged so far at or above level.
func (m *TestLogManager) Messages(level zapcore.Level) []string {
	var out []string
	for _, entry := range m.logs.AllUntimed() {
		if entry.Level >= level {
			out = append(out, entry.Message)
		}
	}
	return out
}

// Count returns how many entries carry msg.
func (m *TestLogManager) Count(msg string) int {
	return m.logs.FilterMessage(msg).Len()
}
