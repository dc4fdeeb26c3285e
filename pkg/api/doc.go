// Package api exposes a toast.Registry over HTTP as JSON.
//
// Routes, relative to where the router is mounted:
//
//	GET    /toasts         list live notifications, oldest first
//	POST   /toasts         show a notification
//	DELETE /toasts         close every notification
//	GET    /toasts/{key}   fetch one notification
//	PATCH  /toasts/{key}   update a notification in place
//	DELETE /toasts/{key}   close a notification
//
// Durations are integer milliseconds. Errors are returned as
// {"code": "R003", "message": "...", "detail": "..."}.
package api
