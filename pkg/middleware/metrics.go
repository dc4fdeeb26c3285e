package middleware

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/vango-dev/toast/pkg/toast"
)

// MetricsConfig configures the Prometheus metrics middleware.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "toast").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for visible time in seconds.
	// Default: 0.5s to 5m.
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures the Prometheus metrics middleware.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "toast",
		Buckets:   []float64{0.5, 1, 2, 3, 5, 10, 30, 60, 300},
		Registry:  prometheus.DefaultRegisterer,
	}
}

// metrics holds the Prometheus metrics for notifications.
type metrics struct {
	paintsTotal    *prometheus.CounterVec
	repaintsTotal  *prometheus.CounterVec
	removesTotal   prometheus.Counter
	active         prometheus.Gauge
	visibleSeconds *prometheus.HistogramVec
	renderErrors   *prometheus.CounterVec
}

// globalMetrics is the singleton metrics instance.
// Created on first call to Prometheus().
var (
	globalMetrics   *metrics
	globalMetricsMu sync.Mutex
)

func initMetrics(config MetricsConfig) *metrics {
	factory := promauto.With(config.Registry)

	return &metrics{
		paintsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "paints_total",
			Help:        "Total number of notifications painted, by type",
			ConstLabels: config.ConstLabels,
		}, []string{"type"}),

		repaintsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "repaints_total",
			Help:        "Total number of in-place notification updates, by type",
			ConstLabels: config.ConstLabels,
		}, []string{"type"}),

		removesTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "removes_total",
			Help:        "Total number of notifications removed",
			ConstLabels: config.ConstLabels,
		}),

		active: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "active",
			Help:        "Number of notifications currently painted",
			ConstLabels: config.ConstLabels,
		}),

		visibleSeconds: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "visible_seconds",
			Help:        "Time between paint and remove in seconds, by type",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"type"}),

		renderErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "render_errors_total",
			Help:        "Total renderer failures by operation",
			ConstLabels: config.ConstLabels,
		}, []string{"op"}),
	}
}

// Prometheus creates renderer middleware that collects notification metrics.
//
// Metrics collected:
//   - toast_paints_total: Counter of painted notifications by type
//   - toast_repaints_total: Counter of in-place updates by type
//   - toast_removes_total: Counter of removed notifications
//   - toast_active: Gauge of notifications currently painted
//   - toast_visible_seconds: Histogram of time on screen by type
//   - toast_render_errors_total: Counter of renderer failures by operation
//
// Example:
//
//	renderer := toast.Chain(h, middleware.Prometheus(middleware.WithNamespace("myapp")))
//	reg := toast.New(renderer)
//
//	// Expose metrics endpoint
//	http.Handle("/metrics", promhttp.Handler())
func Prometheus(opts ...MetricsOption) toast.Middleware {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}

	// Initialize metrics once
	globalMetricsMu.Lock()
	if globalMetrics == nil {
		globalMetrics = initMetrics(config)
	}
	m := globalMetrics
	globalMetricsMu.Unlock()

	return func(next toast.Renderer) toast.Renderer {
		return &metricsRenderer{
			next:  next,
			m:     m,
			shown: make(map[toast.Handle]shown),
		}
	}
}

type shown struct {
	typ   toast.Type
	since time.Time
}

type metricsRenderer struct {
	next toast.Renderer
	m    *metrics

	mu    sync.Mutex
	shown map[toast.Handle]shown
}

func (r *metricsRenderer) Paint(rec toast.Record) (toast.Handle, error) {
	h, err := r.next.Paint(rec)
	if err != nil {
		r.m.renderErrors.WithLabelValues("paint").Inc()
		return h, err
	}

	r.m.paintsTotal.WithLabelValues(string(rec.Type)).Inc()
	r.m.active.Inc()

	r.mu.Lock()
	r.shown[h] = shown{typ: rec.Type, since: time.Now()}
	r.mu.Unlock()
	return h, nil
}

func (r *metricsRenderer) Repaint(h toast.Handle, rec toast.Record) error {
	err := r.next.Repaint(h, rec)
	if err != nil {
		r.m.renderErrors.WithLabelValues("repaint").Inc()
		return err
	}

	r.m.repaintsTotal.WithLabelValues(string(rec.Type)).Inc()

	r.mu.Lock()
	if s, ok := r.shown[h]; ok {
		s.typ = rec.Type
		r.shown[h] = s
	}
	r.mu.Unlock()
	return nil
}

func (r *metricsRenderer) Remove(h toast.Handle) error {
	r.mu.Lock()
	s, ok := r.shown[h]
	delete(r.shown, h)
	r.mu.Unlock()

	err := r.next.Remove(h)
	if err != nil {
		r.m.renderErrors.WithLabelValues("remove").Inc()
	}

	// The registry forgets the handle either way.
	r.m.removesTotal.Inc()
	if ok {
		r.m.active.Dec()
		r.m.visibleSeconds.WithLabelValues(string(s.typ)).Observe(time.Since(s.since).Seconds())
	}
	return err
}

// Collector exposes the notification metrics for custom registrations.
type Collector struct {
	PaintsTotal    *prometheus.CounterVec
	RepaintsTotal  *prometheus.CounterVec
	RemovesTotal   prometheus.Counter
	Active         prometheus.Gauge
	VisibleSeconds *prometheus.HistogramVec
	RenderErrors   *prometheus.CounterVec
}

// GetMetrics returns the global metrics collector.
// Returns nil if Prometheus middleware has not been initialized.
func GetMetrics() *Collector {
	globalMetricsMu.Lock()
	defer globalMetricsMu.Unlock()

	if globalMetrics == nil {
		return nil
	}
	return &Collector{
		PaintsTotal:    globalMetrics.paintsTotal,
		RepaintsTotal:  globalMetrics.repaintsTotal,
		RemovesTotal:   globalMetrics.removesTotal,
		Active:         globalMetrics.active,
		VisibleSeconds: globalMetrics.visibleSeconds,
		RenderErrors:   globalMetrics.renderErrors,
	}
}
