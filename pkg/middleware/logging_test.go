package middleware

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/vango-dev/toast/pkg/toast"
	"github.com/vango-dev/toast/pkg/toast/toasttest"
)

func TestLoggingMiddleware(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	rec := toasttest.NewRenderer()
	r := Logging(logger)(rec)

	h, err := r.Paint(toast.Record{Key: "k1", Type: toast.TypeInfo})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := r.Remove(h); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"op=paint", "key=k1", "op=remove", "handle=h-k1", "component=renderer"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
}

func TestLoggingMiddleware_Failure(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn}))

	rec := toasttest.NewRenderer()
	rec.PaintErr = errors.New("detached")
	r := Logging(logger)(rec)

	if _, err := r.Paint(toast.Record{Key: "k1"}); err == nil {
		t.Fatal("expected error to propagate")
	}
	out := buf.String()
	if !strings.Contains(out, "level=WARN") || !strings.Contains(out, "error=detached") {
		t.Errorf("expected warning with error, got:\n%s", out)
	}
}

func TestLoggingMiddleware_NilLogger(t *testing.T) {
	r := Logging(nil)(toasttest.NewRenderer())
	if _, err := r.Paint(toast.Record{Key: "k"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
