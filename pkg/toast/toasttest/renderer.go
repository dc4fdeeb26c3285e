package toasttest

import (
	"sync"

	"github.com/vango-dev/toast/pkg/toast"
)

// Operations recorded by Renderer.
const (
	OpPaint   = "paint"
	OpRepaint = "repaint"
	OpRemove  = "remove"
)

// Call is one recorded renderer invocation.
type Call struct {
	Op     string
	Handle toast.Handle
	Record toast.Record
}

// Renderer records calls and keeps the set of painted notifications.
type Renderer struct {
	mu    sync.Mutex
	calls []Call
	live  map[toast.Handle]toast.Record

	// PaintErr, when set, is returned by Paint and nothing is painted.
	PaintErr error
}

var _ toast.Renderer = (*Renderer)(nil)

// NewRenderer returns an empty recording renderer.
func NewRenderer() *Renderer {
	return &Renderer{live: make(map[toast.Handle]toast.Record)}
}

// Paint records the call; the handle is "h-" + key.
func (r *Renderer) Paint(rec toast.Record) (toast.Handle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.PaintErr != nil {
		return "", r.PaintErr
	}
	h := toast.Handle("h-" + rec.Key)
	r.calls = append(r.calls, Call{Op: OpPaint, Handle: h, Record: rec})
	r.live[h] = rec
	return h, nil
}

// Repaint records the call.
func (r *Renderer) Repaint(h toast.Handle, rec toast.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.calls = append(r.calls, Call{Op: OpRepaint, Handle: h, Record: rec})
	r.live[h] = rec
	return nil
}

// Remove records the call.
func (r *Renderer) Remove(h toast.Handle) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.calls = append(r.calls, Call{Op: OpRemove, Handle: h})
	delete(r.live, h)
	return nil
}

// Calls returns a copy of all recorded calls.
func (r *Renderer) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Call(nil), r.calls...)
}

// Count returns how many calls of op were recorded.
func (r *Renderer) Count(op string) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for _, c := range r.calls {
		if c.Op == op {
			n++
		}
	}
	return n
}

// Live returns the number of painted, not yet removed notifications.
func (r *Renderer) Live() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.live)
}

// Visible returns the record painted under h.
func (r *Renderer) Visible(h toast.Handle) (toast.Record, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.live[h]
	return rec, ok
}

// Last returns the most recent call.
func (r *Renderer) Last() (Call, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.calls) == 0 {
		return Call{}, false
	}
	return r.calls[len(r.calls)-1], true
}

// Reset forgets recorded calls but keeps the live set.
func (r *Renderer) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = nil
}
