// Package toasttest provides testing helpers for code that shows
// notifications.
//
// # Manual Clock
//
// Scheduler replaces wall-clock timers. Nothing fires until the test
// advances time:
//
//	sched := toasttest.NewScheduler()
//	rec := toasttest.NewRenderer()
//	reg := toast.New(rec, toast.WithScheduler(sched))
//
//	reg.Success("saved")
//	sched.Advance(3 * time.Second)
//	if rec.Live() != 0 {
//	    t.Fatal("expected the toast to auto-close")
//	}
//
// # Recording Renderer
//
// Renderer records every Paint, Repaint and Remove call and tracks what is
// currently on screen.
package toasttest
