// Package schedule shows configured announcements on cron schedules.
package schedule

import (
	"context"
	"log/slog"
	"sync"

	"github.com/robfig/cron/v3"

	"github.com/vango-dev/toast/internal/config"
	"github.com/vango-dev/toast/internal/errors"
	"github.com/vango-dev/toast/pkg/toast"
)

// Shower displays a notification. *toast.Registry implements it.
type Shower interface {
	Show(opts toast.Options) string
}

// Service runs announcement jobs.
type Service struct {
	mu      sync.Mutex
	shower  Shower
	log     *slog.Logger
	parser  cron.Parser
	c       *cron.Cron
	entries []cron.EntryID
	running bool
}

// New creates a stopped Service that shows announcements through shower.
func New(shower Shower, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	return &Service{
		shower: shower,
		log:    log.With("component", "schedule"),
		parser: parser,
		c:      cron.New(cron.WithParser(parser)),
	}
}

// Apply replaces every scheduled announcement. On error nothing changes.
func (s *Service) Apply(anns []config.Announcement) error {
	schedules := make([]cron.Schedule, len(anns))
	for i, a := range anns {
		sched, err := s.parser.Parse(a.Schedule)
		if err != nil {
			return errors.New("C003").WithDetailf("announcement schedule %q", a.Schedule).Wrap(err)
		}
		schedules[i] = sched
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range s.entries {
		s.c.Remove(id)
	}
	s.entries = s.entries[:0]

	for i, a := range anns {
		id := s.c.Schedule(schedules[i], cron.FuncJob(s.job(a)))
		s.entries = append(s.entries, id)
	}
	s.log.Info("announcements scheduled", slog.Int("count", len(anns)))
	return nil
}

// job builds the function run for an announcement.
func (s *Service) job(a config.Announcement) func() {
	typ, err := toast.ParseType(a.Type)
	if err != nil {
		typ = toast.TypeInfo
	}
	opts := toast.Options{
		Type:    typ,
		Title:   a.Title,
		Message: a.Message,
	}
	if a.Duration != nil {
		opts.Duration = toast.Duration(a.Duration.Std())
	}

	return func() {
		key := s.shower.Show(opts)
		s.log.Debug("announcement shown", slog.String("key", key), slog.String("schedule", a.Schedule))
	}
}

// Len returns the number of scheduled announcements.
func (s *Service) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Start begins running jobs. Calling Start twice is a no-op.
func (s *Service) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.running = true
	s.c.Start()
	s.log.Info("scheduler started")
}

// Stop halts the scheduler and waits for running jobs until ctx is done.
func (s *Service) Stop(ctx context.Context) {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	done := s.c.Stop().Done()
	s.mu.Unlock()

	select {
	case <-done:
	case <-ctx.Done():
		s.log.Warn("scheduler stop timed out")
	}
}
