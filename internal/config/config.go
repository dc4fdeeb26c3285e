package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"

	"github.com/vango-dev/toast/internal/errors"
	"github.com/vango-dev/toast/pkg/toast"
)

const (
	// DefaultAddr is the default listen address.
	DefaultAddr = ":8080"

	// DefaultShutdownTimeout bounds graceful shutdown.
	DefaultShutdownTimeout = 10 * time.Second

	// DefaultDemoInterval is how often the demo counter ticks. It must
	// exceed the debounce time or the counter never settles long enough
	// to render.
	DefaultDemoInterval = 2 * time.Second
)

// Config is the complete toastd configuration.
type Config struct {
	Server        ServerConfig   `json:"server" yaml:"server"`
	Toast         ToastConfig    `json:"toast" yaml:"toast"`
	Log           LogConfig      `json:"log" yaml:"log"`
	Metrics       MetricsConfig  `json:"metrics" yaml:"metrics"`
	Tracing       TracingConfig  `json:"tracing" yaml:"tracing"`
	Demo          DemoConfig     `json:"demo" yaml:"demo"`
	Announcements []Announcement `json:"announcements,omitempty" yaml:"announcements,omitempty"`

	// path stores where the config was loaded from.
	path string
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	// Addr is the listen address (default ":8080").
	Addr string `json:"addr" yaml:"addr"`

	// ShutdownTimeout bounds graceful shutdown (default 10s).
	ShutdownTimeout Duration `json:"shutdownTimeout" yaml:"shutdownTimeout"`

	// AllowedOrigins lists extra WebSocket origins. "*" allows any.
	AllowedOrigins []string `json:"allowedOrigins,omitempty" yaml:"allowedOrigins,omitempty"`
}

// ToastConfig configures the notification registry.
type ToastConfig struct {
	// Duration is the default auto-close delay (default 3s).
	Duration Duration `json:"duration" yaml:"duration"`

	// DebounceTime is the default watch quiet period (default 1s).
	DebounceTime Duration `json:"debounceTime" yaml:"debounceTime"`

	// RateLimit caps new notifications per second. 0 disables the limit.
	RateLimit float64 `json:"rateLimit" yaml:"rateLimit"`

	// Burst is the rate limiter burst (default: RateLimit rounded up).
	Burst int `json:"burst" yaml:"burst"`
}

// LogConfig configures logging.
type LogConfig struct {
	// Level is debug, info, warn or error (default info).
	Level string `json:"level" yaml:"level"`

	// Format is text or json (default text).
	Format string `json:"format" yaml:"format"`
}

// MetricsConfig configures Prometheus metrics.
type MetricsConfig struct {
	Enabled   bool   `json:"enabled" yaml:"enabled"`
	Namespace string `json:"namespace" yaml:"namespace"`
}

// TracingConfig configures OpenTelemetry spans.
type TracingConfig struct {
	Enabled    bool   `json:"enabled" yaml:"enabled"`
	TracerName string `json:"tracerName" yaml:"tracerName"`
}

// DemoConfig configures the built-in demo feed.
type DemoConfig struct {
	Enabled  bool     `json:"enabled" yaml:"enabled"`
	Interval Duration `json:"interval" yaml:"interval"`
}

// Announcement is a notification shown on a cron schedule.
type Announcement struct {
	// Schedule is a standard 5-field cron expression or a descriptor
	// such as "@every 1h".
	Schedule string `json:"schedule" yaml:"schedule"`

	Type    string `json:"type" yaml:"type"`
	Title   string `json:"title" yaml:"title"`
	Message string `json:"message" yaml:"message"`

	// Duration overrides the default auto-close delay when set.
	Duration *Duration `json:"duration,omitempty" yaml:"duration,omitempty"`
}

// Defaults returns a configuration with default values.
func Defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            DefaultAddr,
			ShutdownTimeout: Duration(DefaultShutdownTimeout),
		},
		Toast: ToastConfig{
			Duration:     Duration(toast.DefaultDuration),
			DebounceTime: Duration(toast.DefaultDebounceTime),
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Metrics: MetricsConfig{
			Enabled:   true,
			Namespace: "toast",
		},
		Tracing: TracingConfig{
			TracerName: "toastd",
		},
		Demo: DemoConfig{
			Interval: Duration(DefaultDemoInterval),
		},
	}
}

// Load reads the configuration file at path on top of the defaults and
// applies environment overrides. An empty path returns the defaults with
// overrides. The result is validated.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.New("C001").
				WithDetail(path).
				Wrap(err)
		}
		if err := decode(path, data, cfg); err != nil {
			return nil, err
		}
		cfg.path = path
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decode(path string, data []byte, cfg *Config) error {
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		err = dec.Decode(cfg)
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		err = dec.Decode(cfg)
		if err == io.EOF {
			// Empty file: keep the defaults.
			err = nil
		}
	default:
		return errors.New("C002").
			WithDetailf("unsupported config extension %q", filepath.Ext(path)).
			WithSuggestion("Use a .json, .yaml or .yml file")
	}
	if err != nil {
		return errors.New("C002").
			WithDetail(path).
			WithSuggestion("Check the file syntax and field names").
			Wrap(err)
	}
	return nil
}

// applyEnv applies environment variable overrides.
func (c *Config) applyEnv() {
	if addr := os.Getenv("TOASTD_ADDR"); addr != "" {
		c.Server.Addr = addr
	}
	if level := os.Getenv("TOASTD_LOG_LEVEL"); level != "" {
		c.Log.Level = level
	}
}

// Validate checks the configuration for out-of-range values.
func (c *Config) Validate() error {
	invalid := func(format string, args ...any) error {
		return errors.New("C003").WithDetailf(format, args...)
	}

	if c.Server.Addr == "" {
		return invalid("server.addr must not be empty")
	}
	if c.Server.ShutdownTimeout < 0 {
		return invalid("server.shutdownTimeout must not be negative, got %s", c.Server.ShutdownTimeout)
	}
	if c.Toast.Duration < 0 {
		return invalid("toast.duration must not be negative, got %s", c.Toast.Duration)
	}
	if c.Toast.DebounceTime < 0 {
		return invalid("toast.debounceTime must not be negative, got %s", c.Toast.DebounceTime)
	}
	if c.Toast.RateLimit < 0 {
		return invalid("toast.rateLimit must not be negative, got %v", c.Toast.RateLimit)
	}
	if c.Toast.Burst < 0 {
		return invalid("toast.burst must not be negative, got %d", c.Toast.Burst)
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		return invalid("log.level: %v", err)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return invalid("log.format must be text or json, got %q", c.Log.Format)
	}
	if c.Demo.Enabled {
		if debounce := c.debounceTime(); c.Demo.Interval.Std() <= debounce {
			return invalid("demo.interval must be longer than the debounce time %s, got %s", debounce, c.Demo.Interval)
		}
	}

	for i, a := range c.Announcements {
		if _, err := cron.ParseStandard(a.Schedule); err != nil {
			return invalid("announcements[%d].schedule %q: %v", i, a.Schedule, err)
		}
		if _, err := toast.ParseType(a.Type); err != nil {
			return invalid("announcements[%d].type: %v", i, err)
		}
		if a.Message == "" {
			return invalid("announcements[%d].message must not be empty", i)
		}
		if a.Duration != nil && *a.Duration < 0 {
			return invalid("announcements[%d].duration must not be negative, got %s", i, *a.Duration)
		}
	}
	return nil
}

// Path returns the file the config was loaded from, or "".
func (c *Config) Path() string {
	return c.path
}

// ToastDefaults returns the registry defaults described by the config.
func (c *Config) ToastDefaults() toast.Defaults {
	return toast.Defaults{
		Duration:     c.Toast.Duration.Std(),
		DebounceTime: c.Toast.DebounceTime.Std(),
	}
}

// debounceTime returns the quiet period watch sessions use, after the
// registry's fallback for unset values.
func (c *Config) debounceTime() time.Duration {
	if d := c.Toast.DebounceTime.Std(); d > 0 {
		return d
	}
	return toast.DefaultDebounceTime
}

// Burst returns the rate limiter burst, defaulting to the rate rounded up.
func (c *Config) Burst() int {
	if c.Toast.Burst > 0 {
		return c.Toast.Burst
	}
	b := int(c.Toast.RateLimit)
	if float64(b) < c.Toast.RateLimit {
		b++
	}
	if b < 1 {
		b = 1
	}
	return b
}

// NewLogger builds a logger writing to w according to the log settings.
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	level, _ := parseLevel(c.Log.Level)
	opts := &slog.HandlerOptions{Level: level}

	var h slog.Handler
	if c.Log.Format == "json" {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	return slog.New(h)
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown level %q", s)
	}
}
