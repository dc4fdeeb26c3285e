package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"slices"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/vango-dev/toast/internal/config"
	"github.com/vango-dev/toast/internal/demo"
	"github.com/vango-dev/toast/internal/schedule"
	"github.com/vango-dev/toast/pkg/api"
	"github.com/vango-dev/toast/pkg/hub"
	"github.com/vango-dev/toast/pkg/middleware"
	"github.com/vango-dev/toast/pkg/toast"
)

func serveCmd() *cobra.Command {
	var (
		configPath string
		addr       string
		withDemo   bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the notification server",
		Long: `Start the notification server.

Serves the JSON API under /toasts, the WebSocket stream under /ws,
a demo page under / and Prometheus metrics under /metrics.

Examples:
  toastd serve
  toastd serve --config toastd.yaml
  toastd serve --addr :9000 --demo`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}
			if withDemo {
				cfg.Demo.Enabled = true
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			printBanner()
			return runServe(ctx, cfg)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Config file (.json, .yaml or .yml)")
	cmd.Flags().StringVarP(&addr, "addr", "a", "", "Listen address (default from config)")
	cmd.Flags().BoolVar(&withDemo, "demo", false, "Run the demo data feed")

	return cmd
}

// server holds the wired components of a running toastd.
type server struct {
	reg      *toast.Registry
	hub      *hub.Hub
	schedule *schedule.Service
	router   chi.Router
	logger   *slog.Logger
}

func newServer(cfg *config.Config, logger *slog.Logger, registerer prometheus.Registerer, gatherer prometheus.Gatherer) (*server, error) {
	h := hub.New(
		hub.WithLogger(logger),
		hub.WithCheckOrigin(checkOrigin(cfg.Server.AllowedOrigins)),
	)

	mws := []toast.Middleware{middleware.Logging(logger)}
	if cfg.Metrics.Enabled {
		mws = append(mws, middleware.Prometheus(
			middleware.WithNamespace(cfg.Metrics.Namespace),
			middleware.WithRegistry(registerer),
		))
	}
	if cfg.Tracing.Enabled {
		mws = append(mws, middleware.OpenTelemetry(middleware.WithTracerName(cfg.Tracing.TracerName)))
	}

	opts := []toast.Option{
		toast.WithLogger(logger),
		toast.WithDefaults(cfg.ToastDefaults()),
	}
	if cfg.Toast.RateLimit > 0 {
		opts = append(opts, toast.WithRateLimit(rate.Limit(cfg.Toast.RateLimit), cfg.Burst()))
	}
	reg := toast.New(toast.Chain(h, mws...), opts...)

	h.OnClose(reg.Close)
	h.OnAction(func(key, id string) {
		logger.Info("toast action", "key", key, "action", id)
		reg.Close(key)
	})

	sched := schedule.New(reg, logger)
	if err := sched.Apply(cfg.Announcements); err != nil {
		return nil, err
	}

	r := chi.NewRouter()
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"status":"ok","toasts":%d,"clients":%d}`, reg.Len(), h.ClientCount())
	})
	r.Handle("/ws", h)
	r.Handle("/", hub.PageHandler("/ws"))
	if cfg.Metrics.Enabled {
		r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}
	api.New(reg, logger).Mount(r)

	return &server{reg: reg, hub: h, schedule: sched, router: r, logger: logger}, nil
}

// reload applies a changed config file.
func (s *server) reload(cfg *config.Config) {
	s.reg.SetDefaults(cfg.ToastDefaults())
	if err := s.schedule.Apply(cfg.Announcements); err != nil {
		s.logger.Warn("announcements not reloaded", "error", err)
	}
}

func runServe(ctx context.Context, cfg *config.Config) error {
	logger := cfg.NewLogger(os.Stderr)
	slog.SetDefault(logger)

	s, err := newServer(cfg, logger, prometheus.DefaultRegisterer, prometheus.DefaultGatherer)
	if err != nil {
		return err
	}

	s.schedule.Start()
	if cfg.Path() == "" {
		warn("No config file given, using defaults")
	}
	if n := s.schedule.Len(); n > 0 {
		info(fmt.Sprintf("%d scheduled announcements", n))
	}

	if cfg.Demo.Enabled {
		feed := demo.New(s.reg, logger)
		go feed.Run(ctx, cfg.Demo.Interval.Std())
		info("Demo feed running")
	}

	if path := cfg.Path(); path != "" {
		go func() {
			if err := config.Watch(ctx, path, logger, s.reload); err != nil {
				logger.Warn("config watch stopped", "error", err)
			}
		}()
	}

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	success(fmt.Sprintf("Listening on %s", cfg.Server.Addr))

	errCh := make(chan error, 1)
	go func() {
		logger.Info("toastd is ready", "addr", cfg.Server.Addr, "version", version)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout.Std())
	defer cancel()

	s.schedule.Stop(shutdownCtx)
	s.reg.CloseAll()
	s.hub.Close()
	return srv.Shutdown(shutdownCtx)
}

// checkOrigin accepts same-host origins plus the configured ones. "*"
// accepts any origin.
func checkOrigin(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || slices.Contains(allowed, "*") {
			return true
		}
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		if strings.EqualFold(u.Host, r.Host) {
			return true
		}
		return slices.Contains(allowed, origin)
	}
}
