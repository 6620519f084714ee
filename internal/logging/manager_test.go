package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestNewManager_RequiresFilePath(t *testing.T) {
	if _, err := NewManager(Config{}); err == nil {
		t.Fatal("expected error for empty FilePath")
	}
}

func TestManager_WritesScopedJSON(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "logs", "deskwin.log")
	mgr, err := NewManager(Config{FilePath: logFile, Level: "debug"})
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}

	logger := mgr.For("store")
	if logger.Scope() != "store" {
		t.Fatalf("Scope() = %q, want store", logger.Scope())
	}
	if mgr.For("store") != logger {
		t.Fatal("expected cached logger for same scope")
	}
	logger.With("key", "cyberpodolia_windows_v1").Info("layout saved", "windows", 3)

	if err := mgr.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	data, err := os.ReadFile(logFile)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	out := string(data)
	for _, want := range []string{`"logger":"store"`, `"msg":"layout saved"`, `"windows":3`, `"key":"cyberpodolia_windows_v1"`} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %s: %s", want, out)
		}
	}
}

func TestManager_LevelFilters(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "deskwin.log")
	mgr, err := NewManager(Config{FilePath: logFile, Level: "warn"})
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}
	mgr.For("x").Info("hidden")
	mgr.For("x").Warn("shown")
	_ = mgr.Close()

	data, _ := os.ReadFile(logFile)
	if strings.Contains(string(data), "hidden") {
		t.Errorf("info entry should be filtered at warn level")
	}
	if !strings.Contains(string(data), "shown") {
		t.Errorf("warn entry missing")
	}
}

func TestNopLogger_IsSafe(t *testing.T) {
	l := NopLogger()
	l.Info("a")
	l.With("k", "v").Error("b")
	var nilLogger *ScopedLogger
	nilLogger.Warn("c")
}

func TestTestLogManager_Records(t *testing.T) {
	m := NewTestLogManager()
	m.For("share").Warn("decode failed", "error", "bad token")
	m.For("share").Debug("noise")

	if got := m.Count("decode failed"); got != 1 {
		t.Fatalf("Count() = %d, want 1", got)
	}
	warns := m.Messages(zapcore.WarnLevel)
	if len(warns) != 1 || warns[0] != "decode failed" {
		t.Fatalf("Messages(warn) = %v", warns)
	}
}
