package middleware

import (
	"errors"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/vango-dev/toast/pkg/toast"
	"github.com/vango-dev/toast/pkg/toast/toasttest"
)

func TestOpenTelemetryMiddleware_SpanPerNotification(t *testing.T) {
	rec := toasttest.NewRenderer()
	extracted := 0
	tr := OpenTelemetry(
		WithTracerProvider(noop.NewTracerProvider()),
		WithIncludeMessage(true),
		WithAttributeExtractor(func(toast.Record) []attribute.KeyValue {
			extracted++
			return []attribute.KeyValue{attribute.String("test.attr", "ok")}
		}),
	)(rec).(*tracingRenderer)

	h, err := tr.Paint(toast.Record{Key: "a", Type: toast.TypeSuccess, Title: "Saved", ShowTitle: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tr.openSpans() != 1 {
		t.Fatalf("openSpans() = %d, want 1", tr.openSpans())
	}

	if err := tr.Repaint(h, toast.Record{Key: "a", Type: toast.TypeSuccess}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := tr.Remove(h); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tr.openSpans() != 0 {
		t.Fatalf("openSpans() = %d after remove, want 0", tr.openSpans())
	}
	if extracted != 2 {
		t.Errorf("extractor called %d times, want 2 (paint + repaint)", extracted)
	}
	if rec.Count(toasttest.OpPaint) != 1 || rec.Count(toasttest.OpRemove) != 1 {
		t.Errorf("calls not forwarded: %+v", rec.Calls())
	}
}

func TestOpenTelemetryMiddleware_PaintErrorEndsSpan(t *testing.T) {
	rec := toasttest.NewRenderer()
	rec.PaintErr = errors.New("boom")
	tr := OpenTelemetry()(rec).(*tracingRenderer)

	if _, err := tr.Paint(toast.Record{Key: "a"}); !errors.Is(err, rec.PaintErr) {
		t.Fatalf("expected error %v, got %v", rec.PaintErr, err)
	}
	if tr.openSpans() != 0 {
		t.Fatalf("openSpans() = %d, want 0", tr.openSpans())
	}
}

func TestOpenTelemetryMiddleware_FilterSkipsTracing(t *testing.T) {
	rec := toasttest.NewRenderer()
	tr := OpenTelemetry(
		WithFilter(func(r toast.Record) bool { return r.Type == toast.TypeError }),
	)(rec).(*tracingRenderer)

	h, err := tr.Paint(toast.Record{Key: "a", Type: toast.TypeInfo})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tr.openSpans() != 0 {
		t.Fatal("expected no span when filter skips tracing")
	}

	// Untraced handles pass through.
	if err := tr.Remove(h); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Live() != 0 {
		t.Fatal("remove not forwarded")
	}
}

func TestOpenTelemetryMiddleware_WithRegistry(t *testing.T) {
	sched := toasttest.NewScheduler()
	rec := toasttest.NewRenderer()
	reg := toast.New(toast.Chain(rec, OpenTelemetry(WithTracerName("test"))), toast.WithScheduler(sched))

	key := reg.Warning("careful")
	sched.Advance(toast.DefaultDuration)
	if reg.Has(key) || rec.Live() != 0 {
		t.Fatal("expected notification to expire through the middleware")
	}
}
