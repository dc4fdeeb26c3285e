package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	terrors "github.com/vango-dev/toast/internal/errors"
	"github.com/vango-dev/toast/pkg/toast"
)

const maxBodyBytes = 64 << 10

// Handler serves the notification API for one registry.
type Handler struct {
	reg    *toast.Registry
	logger *slog.Logger
}

// New returns a Handler for reg. A nil logger uses slog.Default().
func New(reg *toast.Registry, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{reg: reg, logger: logger.With("component", "api")}
}

// Routes returns a router with the /toasts endpoints.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	h.Mount(r)
	return r
}

// Mount adds the /toasts endpoints to r.
func (h *Handler) Mount(r chi.Router) {
	r.Route("/toasts", func(r chi.Router) {
		r.Get("/", h.list)
		r.Post("/", h.show)
		r.Delete("/", h.closeAll)

		r.Route("/{key}", func(r chi.Router) {
			r.Get("/", h.get)
			r.Patch("/", h.update)
			r.Delete("/", h.close)
		})
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	records := h.reg.Snapshot()
	out := make([]Toast, len(records))
	for i, rec := range records {
		out[i] = fromRecord(rec)
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	var req ShowRequest
	if !h.decode(w, r, &req) {
		return
	}
	opts, te := req.options()
	if te != nil {
		h.fail(w, http.StatusBadRequest, te)
		return
	}

	key := h.reg.Show(opts)
	if key == "" {
		h.fail(w, http.StatusServiceUnavailable, terrors.New("R004"))
		return
	}

	rec, ok := h.reg.Get(key)
	if !ok {
		// Closed between Show and Get; report the key only.
		writeJSON(w, http.StatusCreated, map[string]string{"key": key})
		return
	}
	writeJSON(w, http.StatusCreated, fromRecord(rec))
}

func (h *Handler) closeAll(w http.ResponseWriter, r *http.Request) {
	h.reg.CloseAll()
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	rec, ok := h.reg.Get(key)
	if !ok {
		h.notFound(w, key)
		return
	}
	writeJSON(w, http.StatusOK, fromRecord(rec))
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	if !h.reg.Has(key) {
		h.notFound(w, key)
		return
	}

	var req UpdateRequest
	if !h.decode(w, r, &req) {
		return
	}
	p, te := req.patch()
	if te != nil {
		h.fail(w, http.StatusBadRequest, te)
		return
	}

	h.reg.Update(key, p)

	rec, ok := h.reg.Get(key)
	if !ok {
		h.notFound(w, key)
		return
	}
	writeJSON(w, http.StatusOK, fromRecord(rec))
}

func (h *Handler) close(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	if !h.reg.Has(key) {
		h.notFound(w, key)
		return
	}
	h.reg.Close(key)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		h.fail(w, http.StatusBadRequest, terrors.New("R001").Wrap(err))
		return false
	}
	return true
}

func (h *Handler) notFound(w http.ResponseWriter, key string) {
	h.fail(w, http.StatusNotFound, terrors.New("R003").WithDetailf("no notification with key %q", key))
}

func (h *Handler) fail(w http.ResponseWriter, status int, te *terrors.ToastError) {
	h.logger.Debug("request failed", append([]any{"status", status}, te.LogAttrs()...)...)

	detail := te.Detail
	if te.Wrapped != nil {
		detail = te.Wrapped.Error()
	}
	writeJSON(w, status, ErrorResponse{Code: te.Code, Message: te.Message, Detail: detail})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
