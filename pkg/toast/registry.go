package toast

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"golang.org/x/time/rate"

	terrors "github.com/vango-dev/toast/internal/errors"
)

// Defaults are the durations applied when options leave them unset.
type Defaults struct {
	// Duration is the auto-close delay for Show (default 3s).
	Duration time.Duration

	// DebounceTime is the quiet period for watch sessions (default 1s).
	DebounceTime time.Duration
}

func (d Defaults) normalized() Defaults {
	if d.Duration <= 0 {
		d.Duration = DefaultDuration
	}
	if d.DebounceTime <= 0 {
		d.DebounceTime = DefaultDebounceTime
	}
	return d
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger used for diagnostics (default: slog.Default()).
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithScheduler replaces the wall-clock scheduler. If s also has a
// Now() time.Time method, record timestamps come from it.
func WithScheduler(s Scheduler) Option {
	return func(r *Registry) {
		if s != nil {
			r.sched = s
		}
	}
}

// WithRateLimit drops new notifications beyond limit per second with the
// given burst. Updates to live notifications are never limited.
func WithRateLimit(limit rate.Limit, burst int) Option {
	return func(r *Registry) {
		r.limiter = rate.NewLimiter(limit, burst)
	}
}

// WithDefaults sets the default durations.
func WithDefaults(d Defaults) Option {
	return func(r *Registry) {
		r.defaults = d.normalized()
	}
}

// WithKeyFunc replaces GenerateKey.
func WithKeyFunc(fn func() string) Option {
	return func(r *Registry) {
		if fn != nil {
			r.newKey = fn
		}
	}
}

// Registry owns the live notifications: it allocates keys, stores records,
// drives the Renderer and runs auto-close timers.
//
// No method returns an error or panics. Operations that cannot complete
// (no renderer attached, unknown key, renderer failure) are logged and
// dropped, so a failed notification never takes the caller down.
//
// It is safe for concurrent use.
type Registry struct {
	mu       sync.Mutex
	renderer Renderer
	records  map[string]*entry
	sessions map[sessionCloser]struct{}

	sched    Scheduler
	logger   *slog.Logger
	limiter  *rate.Limiter
	defaults Defaults
	newKey   func() string
}

type entry struct {
	rec    Record
	handle Handle
	timer  timerSlot
}

// sessionCloser is implemented by watch sessions so CloseAll can reach them.
type sessionCloser interface {
	Close()
}

// New creates a Registry that paints through renderer. A nil renderer is
// allowed; Show drops notifications until Attach is called.
func New(renderer Renderer, opts ...Option) *Registry {
	r := &Registry{
		renderer: renderer,
		records:  make(map[string]*entry),
		sessions: make(map[sessionCloser]struct{}),
		sched:    RealScheduler(),
		logger:   slog.Default(),
		defaults: Defaults{}.normalized(),
		newKey:   GenerateKey,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.With("component", "toast")
	return r
}

// Attach sets the renderer used for subsequent notifications.
func (r *Registry) Attach(renderer Renderer) {
	r.mu.Lock()
	r.renderer = renderer
	r.mu.Unlock()
}

// SetDefaults replaces the default durations. Running timers keep the
// duration they were started with.
func (r *Registry) SetDefaults(d Defaults) {
	r.mu.Lock()
	r.defaults = d.normalized()
	r.mu.Unlock()
}

// Defaults returns the current default durations.
func (r *Registry) Defaults() Defaults {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.defaults
}

// Show displays a notification and returns its key, or "" if it was
// dropped. If opts.Key names a live notification, that notification is
// updated in place (auto-close timer restarted) and the same key returned.
func (r *Registry) Show(opts Options) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.renderer == nil {
		r.warn("toast dropped", terrors.New("T001"))
		return ""
	}

	d := r.resolveDuration(opts.Duration)

	if opts.Key != "" {
		if e, ok := r.records[opts.Key]; ok {
			r.updateLocked(e, patchFrom(opts, d))
			return opts.Key
		}
	}

	now := r.now()
	if r.limiter != nil && !r.limiter.AllowN(now, 1) {
		r.warn("toast dropped", terrors.New("T004"))
		return ""
	}

	key := opts.Key
	if key == "" {
		key = r.allocKey()
	}

	rec := Record{
		Key:       key,
		Type:      opts.Type.orInfo(),
		Title:     opts.Title,
		Message:   opts.Message,
		Duration:  d,
		ShowTitle: !opts.HideTitle,
		Closable:  opts.Closable,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if opts.Action != nil {
		a := *opts.Action
		rec.Action = &a
	}

	var h Handle
	err := r.call("paint", func() (err error) {
		h, err = r.renderer.Paint(rec.clone())
		return err
	})
	if err != nil {
		r.warn("toast dropped", terrors.New("T005").Wrap(err))
		return ""
	}

	e := &entry{rec: rec, handle: h}
	r.records[key] = e
	if d > 0 {
		r.armLocked(e)
	}

	r.logger.Debug("toast shown", "key", key, "type", string(rec.Type), "duration", d)
	return key
}

// Success shows a success notification with the default duration.
//
//	reg.Success("Changes saved!")
//	reg.Success("Your changes have been saved.", "Settings")
func (r *Registry) Success(message string, title ...string) string {
	return r.Show(typed(TypeSuccess, message, title))
}

// Warning shows a warning notification with the default duration.
func (r *Registry) Warning(message string, title ...string) string {
	return r.Show(typed(TypeWarning, message, title))
}

// Error shows an error notification with the default duration.
func (r *Registry) Error(message string, title ...string) string {
	return r.Show(typed(TypeError, message, title))
}

// Info shows an info notification with the default duration.
func (r *Registry) Info(message string, title ...string) string {
	return r.Show(typed(TypeInfo, message, title))
}

func typed(t Type, message string, title []string) Options {
	opts := Options{Type: t, Message: message}
	if len(title) > 0 {
		opts.Title = title[0]
	}
	return opts
}

// Update merges p into the notification with the given key and repaints
// it. Unknown keys are ignored. The auto-close timer keeps running unless
// p.ResetTimer is set.
func (r *Registry) Update(key string, p Patch) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.records[key]
	if !ok {
		r.logger.Debug("toast update ignored", append([]any{"key", key}, terrors.New("T002").LogAttrs()...)...)
		return
	}
	if p.Duration != nil {
		d := r.resolveDuration(p.Duration)
		p.Duration = &d
	}
	r.updateLocked(e, p)
}

func (r *Registry) updateLocked(e *entry, p Patch) {
	e.rec.apply(p)
	e.rec.UpdatedAt = r.now()

	if r.renderer != nil {
		rec := e.rec.clone()
		if err := r.call("repaint", func() error { return r.renderer.Repaint(e.handle, rec) }); err != nil {
			r.warn("toast repaint failed", terrors.New("T005").Wrap(err))
		}
	}

	if p.ResetTimer {
		if e.rec.Duration > 0 {
			r.armLocked(e)
		} else {
			e.timer.stop()
		}
	}
}

// Close removes the notification with the given key. Unknown keys are
// ignored.
func (r *Registry) Close(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e, ok := r.records[key]; ok {
		r.removeLocked(e)
	}
}

// CloseAll closes every watch session bound to this registry and removes
// every notification. All pending timers are cancelled before it returns.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	sessions := make([]sessionCloser, 0, len(r.sessions))
	for s := range r.sessions {
		sessions = append(sessions, s)
	}
	r.mu.Unlock()

	for _, s := range sessions {
		s.Close()
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.orderedLocked() {
		r.removeLocked(e)
	}
}

// Get returns a copy of the record with the given key.
func (r *Registry) Get(key string) (Record, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.records[key]
	if !ok {
		return Record{}, false
	}
	return e.rec.clone(), true
}

// Has reports whether a notification with the given key is live.
func (r *Registry) Has(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.records[key]
	return ok
}

// Len returns the number of live notifications.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.records)
}

// Snapshot returns copies of all live records, oldest first.
func (r *Registry) Snapshot() []Record {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries := r.orderedLocked()
	out := make([]Record, len(entries))
	for i, e := range entries {
		out[i] = e.rec.clone()
	}
	return out
}

func (r *Registry) orderedLocked() []*entry {
	entries := make([]*entry, 0, len(r.records))
	for _, e := range r.records {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i].rec, entries[j].rec
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.Key < b.Key
	})
	return entries
}

func (r *Registry) armLocked(e *entry) {
	e.timer.arm(r.sched, e.rec.Duration, func(gen uint64) {
		r.expire(e, gen)
	})
}

// expire runs when an auto-close timer fires.
func (r *Registry) expire(e *entry, gen uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if cur, ok := r.records[e.rec.Key]; !ok || cur != e || !e.timer.claim(gen) {
		return
	}
	r.logger.Debug("toast expired", "key", e.rec.Key)
	r.removeLocked(e)
}

func (r *Registry) removeLocked(e *entry) {
	e.timer.stop()
	delete(r.records, e.rec.Key)

	if r.renderer == nil {
		return
	}
	if err := r.call("remove", func() error { return r.renderer.Remove(e.handle) }); err != nil {
		r.warn("toast remove failed", terrors.New("T005").Wrap(err))
	}
}

// resolveDuration applies the default to nil and clamps negative values.
func (r *Registry) resolveDuration(d *time.Duration) time.Duration {
	switch {
	case d == nil:
		return r.defaults.Duration
	case *d < 0:
		r.warn("toast duration clamped", terrors.New("T003").WithDetailf("duration %s replaced by %s", *d, r.defaults.Duration))
		return r.defaults.Duration
	default:
		return *d
	}
}

func (r *Registry) allocKey() string {
	key := r.newKey()
	for i := 1; ; i++ {
		if _, taken := r.records[key]; !taken && key != "" {
			return key
		}
		key = fmt.Sprintf("%s-%d", r.newKey(), i)
	}
}

// now returns the scheduler's notion of time when it has one.
func (r *Registry) now() time.Time {
	if c, ok := r.sched.(interface{ Now() time.Time }); ok {
		return c.Now()
	}
	return time.Now()
}

// call runs a renderer operation, converting panics into errors.
func (r *Registry) call(op string, fn func() error) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("renderer %s panicked: %v", op, p)
		}
	}()
	return fn()
}

func (r *Registry) warn(msg string, te *terrors.ToastError) {
	r.logger.Warn(msg, te.LogAttrs()...)
}

func (r *Registry) addSession(s sessionCloser) {
	r.mu.Lock()
	r.sessions[s] = struct{}{}
	r.mu.Unlock()
}

func (r *Registry) removeSession(s sessionCloser) {
	r.mu.Lock()
	delete(r.sessions, s)
	r.mu.Unlock()
}
