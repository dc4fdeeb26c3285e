// Package toast manages transient feedback notifications for server-driven
// UIs: success, warning, error and info messages that appear, update in
// place and go away on their own.
//
// # Registry
//
// A Registry owns every live notification. It is constructed once at
// startup with the Renderer that draws notifications and passed to the code
// that needs it:
//
//	reg := toast.New(hub, toast.WithLogger(logger))
//
//	key := reg.Success("Project deleted")
//	reg.Update(key, toast.Patch{Message: ptr("Project archived")})
//	reg.Close(key)
//
// Notifications close themselves after Options.Duration (3s by default).
// A zero duration keeps them until Close or CloseAll:
//
//	reg.Show(toast.Options{
//	    Type:     toast.TypeError,
//	    Message:  "disk full",
//	    Duration: toast.Duration(0),
//	})
//
// # Watching Data
//
// Watch binds a reactive value to one notification. Changes are debounced
// (1s by default) so that a burst of updates renders once, with the last
// value, and a value that keeps changing keeps the same notification on
// screen instead of stacking new ones:
//
//	progress := reactive.NewSignal(0)
//	s := toast.Watch(reg, progress, toast.CounterWatch[int]())
//	defer s.Stop()
//
// # Renderers
//
// A Renderer paints, repaints and removes notifications. EmitRenderer turns
// them into "toast" custom events for any client-side toast library; package
// hub streams them to browsers over WebSocket; package middleware adds
// metrics, tracing and logging around any Renderer.
//
// # Failure Policy
//
// Nothing in this package panics or returns errors to the caller. Showing a
// notification with no renderer attached, updating an unknown key or a
// failing renderer results in a dropped notification and a log line.
package toast
