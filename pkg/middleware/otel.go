package middleware

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/toast/pkg/toast"
)

// Default tracer name for notification spans.
const defaultTracerName = "toast"

// OTelConfig configures the OpenTelemetry middleware.
type OTelConfig struct {
	// TracerName is the name of the tracer (default: "toast").
	TracerName string

	// TracerProvider overrides the global provider.
	TracerProvider trace.TracerProvider

	// IncludeMessage adds the message text to spans.
	// May contain user data - disabled by default.
	IncludeMessage bool

	// Filter determines which notifications to trace.
	// Return true to trace, false to skip. If nil, all are traced.
	Filter func(rec toast.Record) bool

	// AttributeExtractor adds custom attributes to each span.
	AttributeExtractor func(rec toast.Record) []attribute.KeyValue

	tracer trace.Tracer
}

// OTelOption configures the OpenTelemetry middleware.
type OTelOption func(*OTelConfig)

// WithTracerName sets the tracer name.
func WithTracerName(name string) OTelOption {
	return func(c *OTelConfig) {
		c.TracerName = name
	}
}

// WithTracerProvider sets the tracer provider.
func WithTracerProvider(tp trace.TracerProvider) OTelOption {
	return func(c *OTelConfig) {
		c.TracerProvider = tp
	}
}

// WithIncludeMessage enables recording the message text.
func WithIncludeMessage(include bool) OTelOption {
	return func(c *OTelConfig) {
		c.IncludeMessage = include
	}
}

// WithFilter sets a filter function for notifications.
func WithFilter(filter func(rec toast.Record) bool) OTelOption {
	return func(c *OTelConfig) {
		c.Filter = filter
	}
}

// WithAttributeExtractor sets a custom attribute extractor.
func WithAttributeExtractor(extractor func(rec toast.Record) []attribute.KeyValue) OTelOption {
	return func(c *OTelConfig) {
		c.AttributeExtractor = extractor
	}
}

func defaultOTelConfig() OTelConfig {
	return OTelConfig{
		TracerName: defaultTracerName,
	}
}

// OpenTelemetry creates renderer middleware that traces each notification
// as one span covering its time on screen.
//
// The middleware:
//   - Starts a span on paint with key, type and duration attributes
//   - Adds a "repaint" event for every in-place update
//   - Ends the span on remove
//   - Records renderer errors and sets span status
//
// The tracer uses the global OpenTelemetry tracer provider unless
// WithTracerProvider is given. Configure it in main() before painting:
//
//	otel.SetTracerProvider(tp)
func OpenTelemetry(opts ...OTelOption) toast.Middleware {
	config := defaultOTelConfig()
	for _, opt := range opts {
		opt(&config)
	}

	tp := config.TracerProvider
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	config.tracer = tp.Tracer(config.TracerName)

	return func(next toast.Renderer) toast.Renderer {
		return &tracingRenderer{
			next:   next,
			config: config,
			spans:  make(map[toast.Handle]trace.Span),
		}
	}
}

type tracingRenderer struct {
	next   toast.Renderer
	config OTelConfig

	mu    sync.Mutex
	spans map[toast.Handle]trace.Span
}

func (r *tracingRenderer) attributes(rec toast.Record) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String("toast.key", rec.Key),
		attribute.String("toast.type", string(rec.Type)),
		attribute.Int64("toast.duration_ms", rec.Duration.Milliseconds()),
		attribute.Bool("toast.closable", rec.Closable),
	}
	if title := rec.VisibleTitle(); title != "" {
		attrs = append(attrs, attribute.String("toast.title", title))
	}
	if r.config.IncludeMessage {
		attrs = append(attrs, attribute.String("toast.message", rec.Message))
	}
	if r.config.AttributeExtractor != nil {
		attrs = append(attrs, r.config.AttributeExtractor(rec)...)
	}
	return attrs
}

func (r *tracingRenderer) Paint(rec toast.Record) (toast.Handle, error) {
	if r.config.Filter != nil && !r.config.Filter(rec) {
		return r.next.Paint(rec)
	}

	_, span := r.config.tracer.Start(
		context.Background(),
		"toast."+string(rec.Type),
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(r.attributes(rec)...),
		trace.WithTimestamp(time.Now()),
	)

	h, err := r.next.Paint(rec)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		span.End()
		return h, err
	}

	r.mu.Lock()
	r.spans[h] = span
	r.mu.Unlock()
	return h, nil
}

func (r *tracingRenderer) Repaint(h toast.Handle, rec toast.Record) error {
	err := r.next.Repaint(h, rec)

	r.mu.Lock()
	span, ok := r.spans[h]
	r.mu.Unlock()
	if !ok {
		return err
	}

	span.AddEvent("repaint", trace.WithAttributes(r.attributes(rec)...))
	if err != nil {
		span.RecordError(err)
	}
	return err
}

func (r *tracingRenderer) Remove(h toast.Handle) error {
	err := r.next.Remove(h)

	r.mu.Lock()
	span, ok := r.spans[h]
	delete(r.spans, h)
	r.mu.Unlock()
	if !ok {
		return err
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
	return err
}

// openSpans returns the number of notifications with a span in flight.
func (r *tracingRenderer) openSpans() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.spans)
}
