package main

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/vango-dev/toast/internal/config"
	"github.com/vango-dev/toast/pkg/toast"
)

// metricsRegistry is shared because the Prometheus middleware registers
// its collectors once per process.
var metricsRegistry = prometheus.NewRegistry()

func testServer(t *testing.T, cfg *config.Config) (*server, *httptest.Server) {
	t.Helper()
	if cfg == nil {
		cfg = config.Defaults()
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	s, err := newServer(cfg, logger, metricsRegistry, metricsRegistry)
	if err != nil {
		t.Fatalf("newServer: %v", err)
	}
	ts := httptest.NewServer(s.router)
	t.Cleanup(func() {
		s.reg.CloseAll()
		s.hub.Close()
		ts.Close()
	})
	return s, ts
}

func get(t *testing.T, url string) (int, string) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(body)
}

func TestHealth(t *testing.T) {
	s, ts := testServer(t, nil)
	s.reg.Info("hello")

	code, body := get(t, ts.URL+"/health")
	if code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	var health struct {
		Status  string `json:"status"`
		Toasts  int    `json:"toasts"`
		Clients int    `json:"clients"`
	}
	if err := json.Unmarshal([]byte(body), &health); err != nil {
		t.Fatalf("decode %q: %v", body, err)
	}
	if health.Status != "ok" || health.Toasts != 1 || health.Clients != 0 {
		t.Errorf("health = %+v", health)
	}
}

func TestPageServed(t *testing.T) {
	_, ts := testServer(t, nil)

	code, body := get(t, ts.URL+"/")
	if code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if !strings.Contains(body, "TOAST_WS_PATH") || !strings.Contains(body, `"/ws"`) {
		t.Errorf("page does not point at /ws:\n%s", body)
	}
}

func TestAPIShowReachesMetricsAndHub(t *testing.T) {
	s, ts := testServer(t, nil)

	resp, err := http.Post(ts.URL+"/toasts", "application/json",
		strings.NewReader(`{"type":"success","message":"Saved","key":"saved"}`))
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	if s.hub.Live() != 1 {
		t.Errorf("hub live = %d, want 1", s.hub.Live())
	}

	_, body := get(t, ts.URL+"/metrics")
	if !strings.Contains(body, `toast_paints_total{type="success"}`) {
		t.Errorf("metrics missing paints counter:\n%s", body)
	}
}

func TestMetricsDisabled(t *testing.T) {
	cfg := config.Defaults()
	cfg.Metrics.Enabled = false
	_, ts := testServer(t, cfg)

	code, _ := get(t, ts.URL+"/metrics")
	if code == http.StatusOK {
		t.Errorf("/metrics served with metrics disabled")
	}
}

func TestWebSocketCloseRemovesRecord(t *testing.T) {
	s, ts := testServer(t, nil)
	key := s.reg.Show(toastOptions("Deploying"))

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var frame struct {
		Action string           `json:"action"`
		Toasts []map[string]any `json:"toasts"`
	}
	if err := conn.ReadJSON(&frame); err != nil {
		t.Fatalf("read snapshot: %v", err)
	}
	if frame.Action != "snapshot" || len(frame.Toasts) != 1 || frame.Toasts[0]["key"] != key {
		t.Fatalf("snapshot = %+v", frame)
	}

	if err := conn.WriteJSON(map[string]string{"action": "close", "key": key}); err != nil {
		t.Fatalf("write: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for s.reg.Has(key) && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if s.reg.Has(key) {
		t.Errorf("record %q still live after client close", key)
	}
}

func TestNewServerRejectsBadAnnouncement(t *testing.T) {
	cfg := config.Defaults()
	cfg.Announcements = []config.Announcement{{Schedule: "not a cron", Message: "x"}}

	if _, err := newServer(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)), metricsRegistry, metricsRegistry); err == nil {
		t.Fatal("expected error for invalid schedule")
	}
}

func TestReloadAppliesDefaults(t *testing.T) {
	s, _ := testServer(t, nil)

	cfg := config.Defaults()
	cfg.Toast.Duration = config.Duration(7 * time.Second)
	cfg.Announcements = []config.Announcement{{Schedule: "@every 1h", Message: "standup"}}
	s.reload(cfg)

	if got := s.reg.Defaults().Duration; got != 7*time.Second {
		t.Errorf("default duration = %v, want 7s", got)
	}
	if s.schedule.Len() != 1 {
		t.Errorf("schedule entries = %d, want 1", s.schedule.Len())
	}
}

func TestCheckOrigin(t *testing.T) {
	tests := []struct {
		name    string
		allowed []string
		origin  string
		want    bool
	}{
		{"no origin", nil, "", true},
		{"same host", nil, "http://example.com", true},
		{"foreign", nil, "http://evil.test", false},
		{"listed", []string{"http://app.test"}, "http://app.test", true},
		{"wildcard", []string{"*"}, "http://evil.test", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "http://example.com/ws", nil)
			if tt.origin != "" {
				r.Header.Set("Origin", tt.origin)
			}
			if got := checkOrigin(tt.allowed)(r); got != tt.want {
				t.Errorf("checkOrigin = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSendCommand(t *testing.T) {
	s, ts := testServer(t, nil)

	var out bytes.Buffer
	cmd := rootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"send", "Build", "finished", "--server", ts.URL, "--type", "success", "--key", "build-42", "--forever"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("send: %v", err)
	}

	if got := strings.TrimSpace(out.String()); got != "build-42" {
		t.Errorf("printed key = %q", got)
	}
	rec, ok := s.reg.Get("build-42")
	if !ok {
		t.Fatal("record not created")
	}
	if rec.Message != "Build finished" || rec.Duration != 0 {
		t.Errorf("record = %+v", rec)
	}
}

func TestSendCommandServerError(t *testing.T) {
	_, ts := testServer(t, nil)

	cmd := rootCmd()
	cmd.SetOut(io.Discard)
	cmd.SetArgs([]string{"send", "x", "--server", ts.URL, "--type", "loud"})
	err := cmd.Execute()
	if err == nil || !strings.Contains(err.Error(), "R002") {
		t.Fatalf("err = %v, want R002", err)
	}
}

func TestSendRequestDuration(t *testing.T) {
	req := sendOptions{typ: "info", duration: 1500 * time.Millisecond, hideTitle: true}.request("m")
	if req.Duration == nil || *req.Duration != 1500 {
		t.Errorf("Duration = %v", req.Duration)
	}
	if req.ShowTitle == nil || *req.ShowTitle {
		t.Errorf("ShowTitle = %v", req.ShowTitle)
	}

	req = sendOptions{typ: "info"}.request("m")
	if req.Duration != nil || req.ShowTitle != nil {
		t.Errorf("defaults should be omitted: %+v", req)
	}
}

func TestVersionShort(t *testing.T) {
	var out bytes.Buffer
	cmd := rootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"version", "--short"})
	if err := cmd.Execute(); err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(out.String()) != version {
		t.Errorf("output = %q", out.String())
	}
}

func toastOptions(message string) toast.Options {
	return toast.Options{Type: toast.TypeInfo, Message: message, Duration: toast.Duration(0)}
}
