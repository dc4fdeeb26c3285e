package toast

import (
	"sync"
	"time"

	terrors "github.com/vango-dev/toast/internal/errors"
)

// State is the lifecycle state of a watch session.
type State int

const (
	// StateIdle means no change is pending and nothing is shown.
	StateIdle State = iota
	// StateDebouncing means a change is waiting for the quiet period to end.
	// A notification from an earlier change may still be visible.
	StateDebouncing
	// StateVisible means the latest change is rendered and the auto-close
	// timer is running.
	StateVisible
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateDebouncing:
		return "debouncing"
	case StateVisible:
		return "visible"
	default:
		return "unknown"
	}
}

// DefaultWatchTitle is the title of data notifications when none is set.
const DefaultWatchTitle = "Data updated"

// Source is a reactive value a session can watch. Subscribe must call fn
// after every change with the new and previous values, and return a
// function that cancels the subscription.
type Source[T any] interface {
	Get() T
	Subscribe(fn func(newValue, oldValue T)) (unsubscribe func())
}

// Formatter renders the message for a change from oldValue to newValue.
type Formatter[T any] func(newValue, oldValue T) string

// Teardown is a scope that runs cleanups when its UI unit goes away,
// such as *reactive.Owner.
type Teardown interface {
	OnCleanup(fn func())
}

// WatchOptions configures a watch session.
type WatchOptions[T any] struct {
	Type Type

	// Title defaults to DefaultWatchTitle.
	Title     string
	HideTitle bool
	Closable  bool

	// Duration is how long the notification stays after the last render.
	// nil uses the registry default; zero keeps it until Close.
	Duration *time.Duration

	// DebounceTime is the quiet period before a change is rendered.
	// Values <= 0 use the registry default.
	DebounceTime time.Duration

	// Format defaults to DefaultFormat.
	Format Formatter[T]

	// Immediate pushes the source's current value through the session as
	// soon as watching starts.
	Immediate bool

	// Owner stops the session when it is disposed.
	Owner Teardown
}

// Session binds a stream of values to a single notification. Rapid changes
// are coalesced: only the last value seen before DebounceTime of quiet is
// rendered, and the same notification is updated in place for as long as
// changes keep arriving.
//
// It is safe for concurrent use.
type Session[T any] struct {
	mu  sync.Mutex
	reg *Registry

	typ          Type
	title        string
	hideTitle    bool
	closable     bool
	duration     time.Duration
	debounceTime time.Duration
	format       Formatter[T]

	previous T
	latest   T
	debounce timerSlot
	closer   timerSlot
	key      string
	state    State
	stopped  bool

	unsubscribe func()
}

// Watch starts a session that follows src. Every change reported by src is
// fed to Session.Update. The session ends when Stop is called or
// opts.Owner is disposed.
//
//	count := reactive.NewSignal(0)
//	s := toast.Watch(reg, count, toast.WatchOptions[int]{
//	    DebounceTime: 50 * time.Millisecond,
//	    Duration:     toast.Duration(200 * time.Millisecond),
//	})
//	defer s.Stop()
func Watch[T any](reg *Registry, src Source[T], opts WatchOptions[T]) *Session[T] {
	s := NewSession(reg, src.Get(), opts)

	unsubscribe := src.Subscribe(func(newValue, _ T) {
		s.Update(newValue)
	})

	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		unsubscribe()
		return s
	}
	s.unsubscribe = unsubscribe
	s.mu.Unlock()

	if opts.Immediate {
		s.Update(src.Get())
	}
	return s
}

// NewSession creates a session without a source. Values are pushed with
// Update; initial is the "previous" value for the first message.
func NewSession[T any](reg *Registry, initial T, opts WatchOptions[T]) *Session[T] {
	defaults := reg.Defaults()

	s := &Session[T]{
		reg:          reg,
		typ:          opts.Type.orInfo(),
		title:        opts.Title,
		hideTitle:    opts.HideTitle,
		closable:     opts.Closable,
		duration:     defaults.Duration,
		debounceTime: opts.DebounceTime,
		format:       opts.Format,
		previous:     initial,
	}
	if s.title == "" {
		s.title = DefaultWatchTitle
	}
	if s.debounceTime <= 0 {
		s.debounceTime = defaults.DebounceTime
	}
	if s.format == nil {
		s.format = DefaultFormat[T]
	}
	if opts.Duration != nil {
		if *opts.Duration < 0 {
			reg.warn("watch duration clamped", terrors.New("T003").WithDetailf("duration %s replaced by %s", *opts.Duration, defaults.Duration))
		} else {
			s.duration = *opts.Duration
		}
	}

	reg.addSession(s)
	if opts.Owner != nil {
		opts.Owner.OnCleanup(s.Stop)
	}
	return s
}

// Update records a new value and restarts the debounce timer. Values
// arriving before the timer fires replace each other; only the last one
// is rendered.
func (s *Session[T]) Update(value T) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return
	}
	s.latest = value
	s.debounce.arm(s.reg.sched, s.debounceTime, s.fire)
	s.state = StateDebouncing
}

// fire renders the latest value once the quiet period is over.
func (s *Session[T]) fire(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped || !s.debounce.claim(gen) {
		return
	}

	value := s.latest
	msg := s.format(value, s.previous)
	s.previous = value

	if s.key != "" && s.reg.Has(s.key) {
		s.reg.Update(s.key, Patch{Message: &msg})
	} else {
		s.key = s.reg.Show(Options{
			Type:      s.typ,
			Title:     s.title,
			Message:   msg,
			Duration:  Duration(0),
			HideTitle: s.hideTitle,
			Closable:  s.closable,
		})
	}

	if s.key == "" {
		// Dropped by the registry; nothing to keep alive.
		s.closer.stop()
		s.state = StateIdle
		return
	}

	if s.duration > 0 {
		s.closer.arm(s.reg.sched, s.duration, s.expire)
	} else {
		s.closer.stop()
	}
	s.state = StateVisible
}

// expire closes the notification when the auto-close timer fires.
func (s *Session[T]) expire(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped || !s.closer.claim(gen) {
		return
	}
	if s.key != "" {
		s.reg.Close(s.key)
		s.key = ""
	}
	if !s.debounce.pending() {
		s.state = StateIdle
	}
}

// Close cancels both timers and removes the notification. The session
// stays usable: the next Update starts a new cycle.
func (s *Session[T]) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closeLocked()
}

func (s *Session[T]) closeLocked() {
	s.debounce.stop()
	s.closer.stop()
	if s.key != "" {
		s.reg.Close(s.key)
		s.key = ""
	}
	s.state = StateIdle
}

// Stop tears the session down: timers are cancelled, the notification is
// removed and the source subscription is dropped. Later updates are
// ignored. Stop is idempotent.
func (s *Session[T]) Stop() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.closeLocked()
	s.stopped = true
	unsubscribe := s.unsubscribe
	s.unsubscribe = nil
	s.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
	s.reg.removeSession(s)
}

// IsActive reports whether the session's notification is on screen.
func (s *Session[T]) IsActive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.key != "" && s.reg.Has(s.key)
}

// State returns the session's lifecycle state.
func (s *Session[T]) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateVisible && !s.reg.Has(s.key) {
		return StateIdle
	}
	return s.state
}

// Key returns the key of the bound notification, or "".
func (s *Session[T]) Key() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.key
}

// Stopped reports whether Stop has been called.
func (s *Session[T]) Stopped() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopped
}
