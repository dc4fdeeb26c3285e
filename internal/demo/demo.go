// Package demo drives a live data feed through watch sessions so a fresh
// toastd shows debounced notifications without any client.
package demo

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/vango-dev/toast/pkg/reactive"
	"github.com/vango-dev/toast/pkg/toast"
)

// statusEvery is how many ticks pass between status flips.
const statusEvery = 40

// Feed is a counter that ticks on an interval and a status map that flips
// periodically. Both are watched through the registry.
type Feed struct {
	count  *reactive.Signal[int]
	status *reactive.Signal[map[string]string]
	owner  *reactive.Owner

	counter  *toast.Session[int]
	statuses *toast.Session[map[string]string]

	mu    sync.Mutex
	ticks int
	log   *slog.Logger
}

// New creates a feed whose watch sessions render through reg.
func New(reg *toast.Registry, log *slog.Logger) *Feed {
	if log == nil {
		log = slog.Default()
	}
	f := &Feed{
		count:  reactive.NewSignal(0),
		status: reactive.NewSignal(map[string]string{"api": "healthy"}),
		owner:  reactive.NewOwner(nil),
		log:    log.With("component", "demo"),
	}

	counterOpts := toast.CounterWatch[int]()
	counterOpts.Owner = f.owner
	f.counter = toast.Watch(reg, f.count, counterOpts)

	statusOpts := toast.FieldChangeWatch[string]()
	statusOpts.Type = toast.TypeWarning
	statusOpts.Closable = true
	statusOpts.Owner = f.owner
	f.statuses = toast.Watch(reg, f.status, statusOpts)

	return f
}

// Tick advances the feed by one step.
func (f *Feed) Tick() {
	f.mu.Lock()
	f.ticks++
	n := f.ticks
	f.mu.Unlock()

	f.count.Update(func(v int) int { return v + 1 })

	if n%statusEvery == 0 {
		f.status.Update(func(m map[string]string) map[string]string {
			next := map[string]string{"api": "healthy"}
			if m["api"] == "healthy" {
				next["api"] = "degraded"
			}
			return next
		})
	}
}

// Run ticks every interval until ctx is done, then stops the feed.
func (f *Feed) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	defer f.Stop()

	f.log.Info("demo feed started", "interval", interval)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			f.Tick()
		}
	}
}

// Count returns the current counter value.
func (f *Feed) Count() int {
	return f.count.Get()
}

// Status returns the current status map.
func (f *Feed) Status() map[string]string {
	return f.status.Get()
}

// Counter returns the counter's watch session.
func (f *Feed) Counter() *toast.Session[int] {
	return f.counter
}

// Stop ends both watch sessions and removes their notifications.
func (f *Feed) Stop() {
	f.owner.Dispose()
}
