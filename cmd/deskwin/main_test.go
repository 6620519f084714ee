package main

import (
	"bytes"
	"encoding/base64"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cyberpodolia/deskwin/internal/ipc"
)

const sharedRecord = `{"windows":{"about":{"left":"50px","top":"40px","width":"300px","height":"200px","zIndex":"120"}},"topZIndex":120}`

func writeConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := "storage:\n  backend: file\n  path: " + filepath.Join(dir, "layouts.json") + "\n" +
		"logging:\n  file: " + filepath.Join(dir, "deskwin.log") + "\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func stubReload(t *testing.T) *[]string {
	t.Helper()
	var reasons []string
	prev := reloadTabs
	reloadTabs = func(reason string) (*ipc.ReloadData, error) {
		reasons = append(reasons, reason)
		return &ipc.ReloadData{Sessions: 1}, nil
	}
	t.Cleanup(func() { reloadTabs = prev })
	return &reasons
}

func run(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := runLayout(args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestLayout_ApplyShareShow(t *testing.T) {
	cfgPath := writeConfig(t)
	reasons := stubReload(t)

	if code, _, stderr := run(t, "share", "--config", cfgPath); code != 1 || !strings.Contains(stderr, "no custom layout") {
		t.Fatalf("share on empty store = %d %q", code, stderr)
	}

	token := base64.StdEncoding.EncodeToString([]byte(sharedRecord))
	code, stdout, stderr := run(t, "apply", "--config", cfgPath, token)
	if code != 0 || !strings.Contains(stdout, "1 window(s)") {
		t.Fatalf("apply = %d %q %q", code, stdout, stderr)
	}
	if len(*reasons) != 1 {
		t.Fatalf("reload not requested: %v", *reasons)
	}

	code, stdout, _ = run(t, "show", "--config", cfgPath, "--raw")
	if code != 0 || strings.TrimSpace(stdout) != sharedRecord {
		t.Fatalf("show --raw = %d %q", code, stdout)
	}

	code, stdout, _ = run(t, "show", "--config", cfgPath, "--width", "40")
	if code != 0 || !strings.Contains(stdout, "about") || !strings.Contains(stdout, "top z 120") {
		t.Fatalf("show = %d %q", code, stdout)
	}

	code, stdout, _ = run(t, "share", "--config", cfgPath)
	if code != 0 || strings.TrimSpace(stdout) != token {
		t.Fatalf("share = %d %q", code, stdout)
	}

	var copied string
	prevCopy := copyToClipboard
	copyToClipboard = func(s string) error { copied = s; return nil }
	t.Cleanup(func() { copyToClipboard = prevCopy })

	code, stdout, _ = run(t, "share", "--config", cfgPath, "--url", "http://localhost:5000/?layout=stale", "--copy")
	link := strings.TrimSpace(stdout)
	if code != 0 || copied != link || strings.Contains(link, "stale") || !strings.HasPrefix(link, "http://localhost:5000/?layout=") {
		t.Fatalf("share --url = %d %q (copied %q)", code, link, copied)
	}

	code, stdout, _ = run(t, "apply", "--config", cfgPath, "--profile", "tablet", "--no-reload", link)
	if code != 0 || !strings.Contains(stdout, "profile tablet") {
		t.Fatalf("apply link = %d %q", code, stdout)
	}
	if len(*reasons) != 1 {
		t.Fatalf("--no-reload still reloaded: %v", *reasons)
	}
}

func TestLayout_ApplyInvalidToken(t *testing.T) {
	cfgPath := writeConfig(t)
	reasons := stubReload(t)

	code, _, stderr := run(t, "apply", "--config", cfgPath, "bm90IGpzb24=")
	if code != 1 || !strings.Contains(stderr, "Failed to apply layout") {
		t.Fatalf("apply = %d %q", code, stderr)
	}
	if len(*reasons) != 0 {
		t.Fatalf("reloaded after failure")
	}
	if code, _, _ := run(t, "show", "--config", cfgPath, "--raw"); code != 1 {
		t.Fatalf("record written after invalid token")
	}
	if code, _, _ := run(t, "apply", "--config", cfgPath); code != 2 {
		t.Fatalf("missing token exit = %d", code)
	}
}

func TestLayout_Reset(t *testing.T) {
	cfgPath := writeConfig(t)
	stubReload(t)

	token := base64.StdEncoding.EncodeToString([]byte(sharedRecord))
	if code, _, _ := run(t, "apply", "--config", cfgPath, "--no-reload", token); code != 0 {
		t.Fatalf("apply failed")
	}

	prev := confirmReset
	t.Cleanup(func() { confirmReset = prev })

	confirmReset = func(string) (bool, error) { return false, nil }
	if code, stdout, _ := run(t, "reset", "--config", cfgPath); code != 0 || !strings.Contains(stdout, "Cancelled") {
		t.Fatalf("cancelled reset = %d %q", code, stdout)
	}
	if code, _, _ := run(t, "show", "--config", cfgPath, "--raw"); code != 0 {
		t.Fatalf("record removed after cancel")
	}

	confirmReset = func(string) (bool, error) { return false, errors.New("prompt must not run") }
	code, stdout, _ := run(t, "reset", "--config", cfgPath, "--yes")
	if code != 0 || !strings.Contains(stdout, "Layout reset") || !strings.Contains(stdout, "Reloaded 1") {
		t.Fatalf("reset = %d %q", code, stdout)
	}
	if code, _, _ := run(t, "show", "--config", cfgPath, "--raw"); code != 1 {
		t.Fatalf("record still stored")
	}
}

func TestLayout_UnknownCommand(t *testing.T) {
	if code, _, _ := run(t, "bogus"); code != 2 {
		t.Fatalf("exit = %d", code)
	}
	if code, _, _ := run(t); code != 2 {
		t.Fatalf("exit = %d", code)
	}
}

func TestConfigValidate(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if code := runConfig([]string{"validate", "--path", writeConfig(t)}, &stdout, &stderr); code != 0 {
		t.Fatalf("validate = %d %q", code, stderr.String())
	}

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(bad, []byte("windows:\n  breakpoint: 0\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	stderr.Reset()
	if code := runConfig([]string{"validate", "--path", bad}, &stdout, &stderr); code != 1 || !strings.Contains(stderr.String(), "breakpoint") {
		t.Fatalf("invalid config = %d %q", code, stderr.String())
	}
}

func TestConfigPrintDefaults(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if code := runConfig([]string{"print", "--defaults"}, &stdout, &stderr); code != 0 {
		t.Fatalf("print = %d", code)
	}
	if !strings.Contains(stdout.String(), "cyberpodolia_windows_v1") {
		t.Fatalf("defaults = %q", stdout.String())
	}
}
