package toast

import (
	"fmt"
	"time"
)

// Type represents the toast notification type.
type Type string

const (
	TypeSuccess Type = "success"
	TypeError   Type = "error"
	TypeWarning Type = "warning"
	TypeInfo    Type = "info"
)

// Valid reports whether t is one of the four known types.
func (t Type) Valid() bool {
	switch t {
	case TypeSuccess, TypeError, TypeWarning, TypeInfo:
		return true
	}
	return false
}

// ParseType converts s into a Type. The empty string parses as TypeInfo.
func ParseType(s string) (Type, error) {
	if s == "" {
		return TypeInfo, nil
	}
	t := Type(s)
	if !t.Valid() {
		return "", fmt.Errorf("toast: unknown type %q", s)
	}
	return t, nil
}

// orInfo returns t, or TypeInfo when t is not a known type.
func (t Type) orInfo() Type {
	if t.Valid() {
		return t
	}
	return TypeInfo
}

const (
	// DefaultDuration is how long a notification stays visible when
	// Options.Duration is nil.
	DefaultDuration = 3 * time.Second

	// DefaultDebounceTime is the quiet period a watch session waits for
	// before rendering a data change.
	DefaultDebounceTime = time.Second
)

// Duration returns a pointer to d for use in Options.Duration.
// Duration(0) keeps the notification until it is closed explicitly.
func Duration(d time.Duration) *time.Duration {
	return &d
}

// Action is an optional button rendered inside a notification.
type Action struct {
	Label string `json:"label"`
	ID    string `json:"id"`
}

// Options describes a notification to show.
type Options struct {
	// Type defaults to TypeInfo.
	Type Type

	Title   string
	Message string

	// Duration is the auto-close delay. nil uses the registry default,
	// zero never auto-closes.
	Duration *time.Duration

	// HideTitle suppresses the title when rendering.
	HideTitle bool

	Closable bool

	// Key addresses an existing notification. Showing an existing key
	// updates that notification instead of creating a new one.
	Key string

	Action *Action
}

// Patch is a partial update applied by Registry.Update.
// Nil fields are left unchanged.
type Patch struct {
	Type      *Type
	Title     *string
	Message   *string
	Duration  *time.Duration
	ShowTitle *bool
	Closable  *bool
	Action    *Action

	// ResetTimer restarts the auto-close timer with the (possibly
	// updated) duration.
	ResetTimer bool
}

// Record is the state of a live notification.
type Record struct {
	Key       string        `json:"key"`
	Type      Type          `json:"type"`
	Title     string        `json:"title,omitempty"`
	Message   string        `json:"message"`
	Duration  time.Duration `json:"-"`
	ShowTitle bool          `json:"showTitle"`
	Closable  bool          `json:"closable"`
	Action    *Action       `json:"action,omitempty"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

// VisibleTitle returns the title a renderer should draw.
func (r Record) VisibleTitle() string {
	if !r.ShowTitle {
		return ""
	}
	return r.Title
}

// clone returns a copy that shares no pointers with r.
func (r Record) clone() Record {
	if r.Action != nil {
		a := *r.Action
		r.Action = &a
	}
	return r
}

// apply merges p into r and reports whether anything changed.
func (r *Record) apply(p Patch) bool {
	changed := false
	if p.Type != nil && p.Type.orInfo() != r.Type {
		r.Type = p.Type.orInfo()
		changed = true
	}
	if p.Title != nil && *p.Title != r.Title {
		r.Title = *p.Title
		changed = true
	}
	if p.Message != nil && *p.Message != r.Message {
		r.Message = *p.Message
		changed = true
	}
	if p.Duration != nil && *p.Duration != r.Duration {
		r.Duration = *p.Duration
		changed = true
	}
	if p.ShowTitle != nil && *p.ShowTitle != r.ShowTitle {
		r.ShowTitle = *p.ShowTitle
		changed = true
	}
	if p.Closable != nil && *p.Closable != r.Closable {
		r.Closable = *p.Closable
		changed = true
	}
	if p.Action != nil {
		a := *p.Action
		r.Action = &a
		changed = true
	}
	return changed
}

// patchFrom converts full options into a patch, used when Show hits an
// existing key.
func patchFrom(o Options, d time.Duration) Patch {
	t := o.Type.orInfo()
	showTitle := !o.HideTitle
	return Patch{
		Type:       &t,
		Title:      &o.Title,
		Message:    &o.Message,
		Duration:   &d,
		ShowTitle:  &showTitle,
		Closable:   &o.Closable,
		Action:     o.Action,
		ResetTimer: true,
	}
}
