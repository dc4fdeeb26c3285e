package toast

import "time"

// Timer is a pending callback created by a Scheduler.
type Timer interface {
	// Stop cancels the timer. It reports whether the call stopped the
	// timer; stopping a fired or stopped timer is a no-op.
	Stop() bool
}

// Scheduler defers callbacks. The default scheduler uses time.AfterFunc;
// tests substitute a manual clock (see package toasttest).
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type realScheduler struct{}

func (realScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// RealScheduler returns the wall-clock scheduler used when no
// WithScheduler option is given.
func RealScheduler() Scheduler {
	return realScheduler{}
}

// timerSlot is a scoped timer handle owned by a single record or session.
//
// The owner's mutex guards the slot. Every arm or stop bumps the
// generation, and callbacks receive the generation they were armed with;
// a callback whose generation is no longer current was cancelled and must
// not touch state.
type timerSlot struct {
	timer Timer
	gen   uint64
}

// arm cancels any pending timer and schedules fire(gen) after d.
func (s *timerSlot) arm(sched Scheduler, d time.Duration, fire func(gen uint64)) {
	s.stop()
	gen := s.gen
	s.timer = sched.AfterFunc(d, func() { fire(gen) })
}

// stop cancels the pending timer, if any. Safe to call repeatedly.
func (s *timerSlot) stop() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.gen++
}

// claim reports whether gen is the armed generation and, if so, disarms
// the slot so the same firing cannot be handled twice.
func (s *timerSlot) claim(gen uint64) bool {
	if s.timer == nil || s.gen != gen {
		return false
	}
	s.timer = nil
	s.gen++
	return true
}

// pending reports whether a timer is armed.
func (s *timerSlot) pending() bool {
	return s.timer != nil
}
