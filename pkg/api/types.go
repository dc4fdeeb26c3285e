package api

import (
	"math"
	"time"

	terrors "github.com/vango-dev/toast/internal/errors"
	"github.com/vango-dev/toast/pkg/toast"
)

// MaxDurationMillis is the largest duration, in either direction, a
// request may carry.
const MaxDurationMillis = math.MaxInt64 / int64(time.Millisecond)

// ShowRequest is the body of POST /toasts.
type ShowRequest struct {
	Type    string `json:"type"`
	Title   string `json:"title"`
	Message string `json:"message"`

	// Duration in milliseconds. Omitted uses the default, 0 never
	// auto-closes.
	Duration *int64 `json:"duration"`

	// ShowTitle defaults to true.
	ShowTitle *bool `json:"showTitle"`

	Closable bool          `json:"closable"`
	Key      string        `json:"key"`
	Action   *toast.Action `json:"action"`
}

// UpdateRequest is the body of PATCH /toasts/{key}. Omitted fields are
// left unchanged.
type UpdateRequest struct {
	Type       *string       `json:"type"`
	Title      *string       `json:"title"`
	Message    *string       `json:"message"`
	Duration   *int64        `json:"duration"`
	ShowTitle  *bool         `json:"showTitle"`
	Closable   *bool         `json:"closable"`
	Action     *toast.Action `json:"action"`
	ResetTimer bool          `json:"resetTimer"`
}

// Toast is the JSON form of a live notification.
type Toast struct {
	toast.Record

	// Duration in milliseconds.
	Duration int64 `json:"duration"`
}

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

func fromRecord(rec toast.Record) Toast {
	return Toast{Record: rec, Duration: rec.Duration.Milliseconds()}
}

func millis(ms *int64) (*time.Duration, *terrors.ToastError) {
	if ms == nil {
		return nil, nil
	}
	if *ms > MaxDurationMillis || *ms < -MaxDurationMillis {
		return nil, terrors.New("R001").WithDetailf("duration %d is out of range (max %d ms)", *ms, MaxDurationMillis)
	}
	return toast.Duration(time.Duration(*ms) * time.Millisecond), nil
}

func (req ShowRequest) options() (toast.Options, *terrors.ToastError) {
	typ, err := toast.ParseType(req.Type)
	if err != nil {
		return toast.Options{}, terrors.New("R002").WithDetail(err.Error())
	}
	d, te := millis(req.Duration)
	if te != nil {
		return toast.Options{}, te
	}
	return toast.Options{
		Type:      typ,
		Title:     req.Title,
		Message:   req.Message,
		Duration:  d,
		HideTitle: req.ShowTitle != nil && !*req.ShowTitle,
		Closable:  req.Closable,
		Key:       req.Key,
		Action:    req.Action,
	}, nil
}

func (req UpdateRequest) patch() (toast.Patch, *terrors.ToastError) {
	d, te := millis(req.Duration)
	if te != nil {
		return toast.Patch{}, te
	}
	p := toast.Patch{
		Title:      req.Title,
		Message:    req.Message,
		Duration:   d,
		ShowTitle:  req.ShowTitle,
		Closable:   req.Closable,
		Action:     req.Action,
		ResetTimer: req.ResetTimer,
	}
	if req.Type != nil {
		typ, err := toast.ParseType(*req.Type)
		if err != nil {
			return toast.Patch{}, terrors.New("R002").WithDetail(err.Error())
		}
		p.Type = &typ
	}
	return p, nil
}
