// Package hub streams notifications to browsers over WebSocket.
//
// A Hub is a toast.Renderer. Every paint, repaint and remove is encoded as a
// JSON frame and queued to each connected client; a client that falls
// behind is dropped rather than blocking the registry. New clients first
// receive a snapshot frame with every notification currently on screen.
//
// Browsers can send frames back:
//
//	{"action": "close",  "key": "toast-..."}
//	{"action": "action", "key": "toast-...", "id": "undo-7"}
//
// which are delivered to the OnClose and OnAction callbacks. Those run on
// the connection's read goroutine, so they may call into the registry.
//
//	h := hub.New(hub.WithLogger(logger))
//	reg := toast.New(h)
//	h.OnClose(reg.Close)
//	mux.Handle("/ws", h)
//	mux.Handle("/", hub.PageHandler("/ws"))
package hub
