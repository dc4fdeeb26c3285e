package config

import (
	"context"
	stderrors "errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/vango-dev/toast/internal/errors"
	"github.com/vango-dev/toast/pkg/toast"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func TestDefaults(t *testing.T) {
	cfg := Defaults()
	if cfg.Server.Addr != DefaultAddr {
		t.Errorf("Addr = %q", cfg.Server.Addr)
	}
	if cfg.Toast.Duration.Std() != toast.DefaultDuration || cfg.Toast.DebounceTime.Std() != toast.DefaultDebounceTime {
		t.Errorf("Toast = %+v", cfg.Toast)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoadEmptyPath(t *testing.T) {
	t.Setenv("TOASTD_ADDR", "")
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") error: %v", err)
	}
	if cfg.Path() != "" || cfg.Server.Addr != DefaultAddr {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestLoadYAML(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "toastd.yaml", `
server:
  addr: "127.0.0.1:9000"
toast:
  duration: 5s
  debounceTime: 200
  rateLimit: 2.5
log:
  level: debug
  format: json
announcements:
  - schedule: "@every 1h"
    type: warning
    message: Backup running
    duration: 0
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Server.Addr != "127.0.0.1:9000" {
		t.Errorf("Addr = %q", cfg.Server.Addr)
	}
	if cfg.Toast.Duration.Std() != 5*time.Second || cfg.Toast.DebounceTime.Std() != 200*time.Millisecond {
		t.Errorf("Toast = %+v", cfg.Toast)
	}
	if cfg.Burst() != 3 {
		t.Errorf("Burst() = %d, want 3", cfg.Burst())
	}
	if len(cfg.Announcements) != 1 || cfg.Announcements[0].Duration == nil || *cfg.Announcements[0].Duration != 0 {
		t.Errorf("Announcements = %+v", cfg.Announcements)
	}
	// Untouched sections keep their defaults.
	if !cfg.Metrics.Enabled || cfg.Metrics.Namespace != "toast" {
		t.Errorf("Metrics = %+v", cfg.Metrics)
	}
	if cfg.Path() != path {
		t.Errorf("Path() = %q", cfg.Path())
	}
	d := cfg.ToastDefaults()
	if d.Duration != 5*time.Second || d.DebounceTime != 200*time.Millisecond {
		t.Errorf("ToastDefaults() = %+v", d)
	}
}

func TestLoadJSON(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "toastd.json", `{
  "toast": {"duration": "1.5s", "debounceTime": 50},
  "demo": {"enabled": true, "interval": "100ms"}
}`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Toast.Duration.Std() != 1500*time.Millisecond || cfg.Toast.DebounceTime.Std() != 50*time.Millisecond {
		t.Errorf("Toast = %+v", cfg.Toast)
	}
	if !cfg.Demo.Enabled || cfg.Demo.Interval.Std() != 100*time.Millisecond {
		t.Errorf("Demo = %+v", cfg.Demo)
	}
}

func TestDefaultDemoOutlastsDebounce(t *testing.T) {
	cfg := Defaults()
	cfg.Demo.Enabled = true
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default demo config should validate: %v", err)
	}

	cfg.Toast.DebounceTime = 0
	cfg.Demo.Interval = Duration(toast.DefaultDebounceTime)
	if err := cfg.Validate(); err == nil {
		t.Error("interval equal to the fallback debounce should be rejected")
	}
}

func TestLoadEmptyYAMLKeepsDefaults(t *testing.T) {
	path := writeFile(t, t.TempDir(), "empty.yml", "")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Toast.Duration.Std() != toast.DefaultDuration {
		t.Errorf("Duration = %s", cfg.Toast.Duration)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("TOASTD_ADDR", ":7070")
	t.Setenv("TOASTD_LOG_LEVEL", "warn")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Server.Addr != ":7070" || cfg.Log.Level != "warn" {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name string
		path string
		code string
	}{
		{"missing file", filepath.Join(dir, "nope.yaml"), "C001"},
		{"bad extension", writeFile(t, dir, "toastd.toml", "x = 1"), "C002"},
		{"bad yaml", writeFile(t, dir, "bad.yaml", "toast: [1, 2"), "C002"},
		{"unknown field", writeFile(t, dir, "unknown.json", `{"toasts": {}}`), "C002"},
		{"bad duration", writeFile(t, dir, "dur.yaml", "toast:\n  duration: soon\n"), "C002"},
		{"negative duration", writeFile(t, dir, "neg.yaml", "toast:\n  duration: -1s\n"), "C003"},
		{"bad cron", writeFile(t, dir, "cron.yaml", "announcements:\n  - schedule: \"every day\"\n    message: x\n"), "C003"},
		{"bad announcement type", writeFile(t, dir, "type.yaml", "announcements:\n  - schedule: \"@daily\"\n    type: loud\n    message: x\n"), "C003"},
		{"bad log format", writeFile(t, dir, "log.json", `{"log": {"format": "xml"}}`), "C003"},
		{"demo faster than debounce", writeFile(t, dir, "demo.yaml", "demo:\n  enabled: true\n  interval: 250ms\n"), "C003"},
		{"demo equal to debounce", writeFile(t, dir, "demo.json", `{"toast": {"debounceTime": "500ms"}, "demo": {"enabled": true, "interval": "500ms"}}`), "C003"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.path)
			if err == nil {
				t.Fatal("expected error")
			}
			if got := errors.Code(err); got != tt.code {
				t.Errorf("code = %q, want %q (err: %v)", got, tt.code, err)
			}
		})
	}
}

func TestValidateWrapsReadError(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	if !stderrors.Is(err, os.ErrNotExist) {
		t.Errorf("expected wrapped os.ErrNotExist, got %v", err)
	}
}

func TestNewLogger(t *testing.T) {
	cfg := Defaults()
	cfg.Log.Format = "json"
	cfg.Log.Level = "debug"

	var buf strings.Builder
	logger := cfg.NewLogger(&buf)
	logger.Debug("hello", "k", "v")

	if !strings.Contains(buf.String(), `"msg":"hello"`) {
		t.Errorf("expected JSON output, got %q", buf.String())
	}
	if !logger.Enabled(context.Background(), slog.LevelDebug) {
		t.Error("debug level not enabled")
	}
}

func TestWatchReloads(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "toastd.yaml", "toast:\n  duration: 2s\n")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan *Config, 4)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, nil, func(cfg *Config) { got <- cfg })
	}()

	// Give the watcher time to register the directory.
	time.Sleep(100 * time.Millisecond)

	// An invalid write is ignored.
	writeFile(t, dir, "toastd.yaml", "toast:\n  duration: -2s\n")
	time.Sleep(ReloadDelay + 150*time.Millisecond)
	select {
	case cfg := <-got:
		t.Fatalf("invalid config delivered: %+v", cfg.Toast)
	default:
	}

	writeFile(t, dir, "toastd.yaml", "toast:\n  duration: 4s\n")
	select {
	case cfg := <-got:
		if cfg.Toast.Duration.Std() != 4*time.Second {
			t.Errorf("Duration = %s, want 4s", cfg.Toast.Duration)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("no reload after file change")
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Watch() error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Watch did not return after cancel")
	}
}
