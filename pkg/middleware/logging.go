package middleware

import (
	"log/slog"

	"github.com/vango-dev/toast/pkg/toast"
)

// Logging creates renderer middleware that logs every renderer call at
// debug level and every renderer failure at warn level.
func Logging(logger *slog.Logger) toast.Middleware {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "renderer")

	return func(next toast.Renderer) toast.Renderer {
		return &loggingRenderer{next: next, logger: logger}
	}
}

type loggingRenderer struct {
	next   toast.Renderer
	logger *slog.Logger
}

func (r *loggingRenderer) Paint(rec toast.Record) (toast.Handle, error) {
	h, err := r.next.Paint(rec)
	r.log("paint", err, "key", rec.Key, "type", string(rec.Type), "handle", string(h))
	return h, err
}

func (r *loggingRenderer) Repaint(h toast.Handle, rec toast.Record) error {
	err := r.next.Repaint(h, rec)
	r.log("repaint", err, "key", rec.Key, "type", string(rec.Type), "handle", string(h))
	return err
}

func (r *loggingRenderer) Remove(h toast.Handle) error {
	err := r.next.Remove(h)
	r.log("remove", err, "handle", string(h))
	return err
}

func (r *loggingRenderer) log(op string, err error, attrs ...any) {
	attrs = append([]any{"op", op}, attrs...)
	if err != nil {
		r.logger.Warn("renderer call failed", append(attrs, "error", err)...)
		return
	}
	r.logger.Debug("renderer call", attrs...)
}
