package toast

// EventName is the custom event name dispatched by EmitRenderer.
// Client-side code should listen for this event.
const EventName = "toast"

// Frame actions carried in the "action" field of every emitted event.
const (
	ActionPaint   = "paint"
	ActionRepaint = "repaint"
	ActionRemove  = "remove"
)

// Emitter dispatches a named custom event to the client. A framework
// request context with an Emit method satisfies it.
type Emitter interface {
	Emit(name string, data any)
}

// EmitRenderer renders notifications as custom events. It draws nothing
// itself, leaving the visuals to any client-side toast library.
//
// The client receives a CustomEvent with:
//   - event.type = "toast"
//   - event.detail = { action: "paint|repaint|remove", key: "...", level: "success|error|warning|info", ... }
type EmitRenderer struct {
	emitter Emitter
}

// NewEmitRenderer returns a Renderer that emits events through e.
func NewEmitRenderer(e Emitter) *EmitRenderer {
	return &EmitRenderer{emitter: e}
}

// Paint emits a paint event. The handle is the record key.
func (r *EmitRenderer) Paint(rec Record) (Handle, error) {
	r.emitter.Emit(EventName, EventDetail(ActionPaint, rec))
	return Handle(rec.Key), nil
}

// Repaint emits a repaint event.
func (r *EmitRenderer) Repaint(_ Handle, rec Record) error {
	r.emitter.Emit(EventName, EventDetail(ActionRepaint, rec))
	return nil
}

// Remove emits a remove event.
func (r *EmitRenderer) Remove(h Handle) error {
	r.emitter.Emit(EventName, map[string]any{
		"action": ActionRemove,
		"key":    string(h),
	})
	return nil
}

// EventDetail builds the event payload for rec.
func EventDetail(action string, rec Record) map[string]any {
	detail := map[string]any{
		"action":   action,
		"key":      rec.Key,
		"level":    string(rec.Type),
		"message":  rec.Message,
		"duration": rec.Duration.Milliseconds(),
		"closable": rec.Closable,
	}
	if title := rec.VisibleTitle(); title != "" {
		detail["title"] = title
	}
	if rec.Action != nil {
		detail["actionLabel"] = rec.Action.Label
		detail["actionID"] = rec.Action.ID
	}
	return detail
}
