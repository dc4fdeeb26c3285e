package toast_test

import (
	"testing"
	"time"

	"github.com/vango-dev/toast/pkg/toast"
	"github.com/vango-dev/toast/pkg/toast/toasttest"
)

// mockEmitter captures events like a framework request context.
type mockEmitter struct {
	emittedEvents []emittedEvent
}

type emittedEvent struct {
	name string
	data any
}

func (m *mockEmitter) Emit(name string, data any) {
	m.emittedEvents = append(m.emittedEvents, emittedEvent{name: name, data: data})
}

func (m *mockEmitter) detail(t *testing.T, i int) map[string]any {
	t.Helper()
	if i >= len(m.emittedEvents) {
		t.Fatalf("expected at least %d events, got %d", i+1, len(m.emittedEvents))
	}
	ev := m.emittedEvents[i]
	if ev.name != toast.EventName {
		t.Errorf("event name = %q, want %q", ev.name, toast.EventName)
	}
	data, ok := ev.data.(map[string]any)
	if !ok {
		t.Fatalf("event data is %T, want map[string]any", ev.data)
	}
	return data
}

func TestEmitRendererLifecycle(t *testing.T) {
	em := &mockEmitter{}
	sched := toasttest.NewScheduler()
	reg := toast.New(toast.NewEmitRenderer(em), toast.WithScheduler(sched))

	key := reg.Show(toast.Options{
		Type:     toast.TypeSuccess,
		Title:    "Settings",
		Message:  "Saved",
		Duration: toast.Duration(2 * time.Second),
		Closable: true,
		Action:   &toast.Action{Label: "Undo", ID: "undo-7"},
	})
	msg := "Saved again"
	reg.Update(key, toast.Patch{Message: &msg})
	sched.Advance(2 * time.Second)

	if len(em.emittedEvents) != 3 {
		t.Fatalf("expected 3 events, got %d", len(em.emittedEvents))
	}

	paint := em.detail(t, 0)
	want := map[string]any{
		"action":      toast.ActionPaint,
		"key":         key,
		"level":       "success",
		"title":       "Settings",
		"message":     "Saved",
		"duration":    int64(2000),
		"closable":    true,
		"actionLabel": "Undo",
		"actionID":    "undo-7",
	}
	for k, v := range want {
		if paint[k] != v {
			t.Errorf("paint[%q] = %v, want %v", k, paint[k], v)
		}
	}

	repaint := em.detail(t, 1)
	if repaint["action"] != toast.ActionRepaint || repaint["message"] != "Saved again" {
		t.Errorf("repaint = %v", repaint)
	}

	remove := em.detail(t, 2)
	if remove["action"] != toast.ActionRemove || remove["key"] != key || len(remove) != 2 {
		t.Errorf("remove = %v", remove)
	}
}

func TestEventDetailOmitsHiddenTitle(t *testing.T) {
	d := toast.EventDetail(toast.ActionPaint, toast.Record{
		Key:       "k",
		Type:      toast.TypeInfo,
		Title:     "Secret",
		Message:   "m",
		ShowTitle: false,
	})
	if _, ok := d["title"]; ok {
		t.Errorf("hidden title emitted: %v", d)
	}
	if _, ok := d["actionLabel"]; ok {
		t.Errorf("action emitted without one: %v", d)
	}
}
