// Package middleware provides renderer middleware for toast registries.
//
// This package includes:
//   - OpenTelemetry tracing: one span per notification on screen
//   - Prometheus metrics: paints, updates, removals and visible time
//   - Structured logging of renderer calls
//
// Middleware wraps a toast.Renderer and is composed with toast.Chain. The
// first middleware listed is the outermost:
//
//	renderer := toast.Chain(h,
//	    middleware.Logging(logger),
//	    middleware.Prometheus(),
//	    middleware.OpenTelemetry(),
//	)
//	reg := toast.New(renderer)
//
// # OpenTelemetry Middleware
//
// A span starts when a notification is painted, collects a "repaint" event
// for every in-place update and ends when the notification is removed, so
// span duration is time on screen.
//
//	middleware.OpenTelemetry(
//	    middleware.WithTracerName("my-app"),
//	    middleware.WithFilter(func(rec toast.Record) bool {
//	        return rec.Type == toast.TypeError
//	    }),
//	)
//
// # Prometheus Metrics
//
// The Prometheus middleware registers its collectors once per process:
//   - toast_paints_total: Notifications painted by type
//   - toast_active: Notifications currently on screen
//   - toast_visible_seconds: Time on screen histogram
//   - toast_render_errors_total: Renderer failures by operation
//
// Then expose metrics:
//
//	http.Handle("/metrics", promhttp.Handler())
package middleware
