package toasttest

import (
	"sync"
	"time"

	"github.com/vango-dev/toast/pkg/toast"
)

// Epoch is the starting time of every Scheduler.
var Epoch = time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

// Scheduler is a manual clock implementing toast.Scheduler.
// Timers fire synchronously inside Advance, in due order.
type Scheduler struct {
	mu     sync.Mutex
	now    time.Time
	seq    uint64
	timers []*timer

	// lateStops makes Stop lose the race with the callback.
	lateStops bool
}

type timer struct {
	s       *Scheduler
	due     time.Time
	seq     uint64
	fn      func()
	stopped bool
}

// NewScheduler returns a Scheduler whose clock starts at Epoch.
func NewScheduler() *Scheduler {
	return &Scheduler{now: Epoch}
}

// Now returns the current virtual time.
func (s *Scheduler) Now() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}

// Elapsed returns the virtual time since Epoch.
func (s *Scheduler) Elapsed() time.Duration {
	return s.Now().Sub(Epoch)
}

// AfterFunc schedules fn to run once the clock reaches now+d.
func (s *Scheduler) AfterFunc(d time.Duration, fn func()) toast.Timer {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	t := &timer{s: s, due: s.now.Add(d), seq: s.seq, fn: fn}
	s.timers = append(s.timers, t)
	return t
}

// LateStops makes every Stop report false and leave the callback queued,
// the way a time.AfterFunc callback that has already started cannot be
// cancelled. Callbacks still fire when the clock reaches them.
func (s *Scheduler) LateStops() *Scheduler {
	s.mu.Lock()
	s.lateStops = true
	s.mu.Unlock()
	return s
}

// Stop cancels the timer.
func (t *timer) Stop() bool {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()

	if t.s.lateStops {
		return false
	}

	for i, other := range t.s.timers {
		if other == t {
			t.s.timers = append(t.s.timers[:i], t.s.timers[i+1:]...)
			t.stopped = true
			return true
		}
	}
	return false
}

// Advance moves the clock forward by d, firing every timer that comes due
// on the way. Timers scheduled by callbacks fire too if they fall inside
// the window.
func (s *Scheduler) Advance(d time.Duration) {
	s.mu.Lock()
	target := s.now.Add(d)
	s.mu.Unlock()

	for {
		s.mu.Lock()
		next := -1
		for i, t := range s.timers {
			if t.due.After(target) {
				continue
			}
			if next < 0 || t.due.Before(s.timers[next].due) ||
				(t.due.Equal(s.timers[next].due) && t.seq < s.timers[next].seq) {
				next = i
			}
		}
		if next < 0 {
			s.now = target
			s.mu.Unlock()
			return
		}

		t := s.timers[next]
		s.timers = append(s.timers[:next], s.timers[next+1:]...)
		if t.due.After(s.now) {
			s.now = t.due
		}
		s.mu.Unlock()

		t.fn()
	}
}

// Pending returns the number of timers that have not fired or been stopped.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}
