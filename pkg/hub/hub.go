package hub

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vango-dev/toast/pkg/toast"
)

// Frame actions sent to clients in addition to the paint, repaint and
// remove actions defined by package toast.
const (
	ActionSnapshot = "snapshot"
)

// Inbound frame actions.
const (
	ActionClose  = "close"
	ActionAction = "action"
)

var errClosed = errors.New("hub: closed")

// ClientMessage is a frame sent by a browser.
type ClientMessage struct {
	Action string `json:"action"`
	Key    string `json:"key"`
	ID     string `json:"id,omitempty"`
}

// Option configures a Hub.
type Option func(*Hub)

// WithLogger sets the logger (default: slog.Default()).
func WithLogger(logger *slog.Logger) Option {
	return func(h *Hub) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// WithCheckOrigin sets the upgrade origin check. The default accepts only
// same-host origins, as gorilla/websocket does.
func WithCheckOrigin(fn func(r *http.Request) bool) Option {
	return func(h *Hub) {
		h.upgrader.CheckOrigin = fn
	}
}

// WithSendBuffer sets how many frames may queue per client before it is
// dropped (default 64).
func WithSendBuffer(n int) Option {
	return func(h *Hub) {
		if n > 0 {
			h.sendBuffer = n
		}
	}
}

// WithWriteTimeout sets the per-frame write deadline (default 10s).
func WithWriteTimeout(d time.Duration) Option {
	return func(h *Hub) {
		if d > 0 {
			h.writeTimeout = d
		}
	}
}

// WithHeartbeat sets the ping interval (default 30s).
func WithHeartbeat(d time.Duration) Option {
	return func(h *Hub) {
		if d > 0 {
			h.heartbeat = d
		}
	}
}

// Hub manages WebSocket clients and renders notifications to them.
type Hub struct {
	mu      sync.RWMutex
	clients map[*client]struct{}
	live    map[toast.Handle]liveEntry
	seq     uint64
	closed  bool

	cbMu     sync.RWMutex
	onClose  func(key string)
	onAction func(key, id string)

	upgrader     websocket.Upgrader
	logger       *slog.Logger
	sendBuffer   int
	writeTimeout time.Duration
	heartbeat    time.Duration
}

type liveEntry struct {
	seq    uint64
	detail map[string]any
}

var _ toast.Renderer = (*Hub)(nil)

// New creates a Hub.
func New(opts ...Option) *Hub {
	h := &Hub{
		clients: make(map[*client]struct{}),
		live:    make(map[toast.Handle]liveEntry),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		logger:       slog.Default(),
		sendBuffer:   64,
		writeTimeout: 10 * time.Second,
		heartbeat:    30 * time.Second,
	}
	for _, opt := range opts {
		opt(h)
	}
	h.logger = h.logger.With("component", "hub")
	return h
}

// OnClose sets the callback for close requests from clients.
func (h *Hub) OnClose(fn func(key string)) {
	h.cbMu.Lock()
	h.onClose = fn
	h.cbMu.Unlock()
}

// OnAction sets the callback for action button clicks from clients.
func (h *Hub) OnAction(fn func(key, id string)) {
	h.cbMu.Lock()
	h.onAction = fn
	h.cbMu.Unlock()
}

// Paint broadcasts a paint frame. The handle is the record key.
func (h *Hub) Paint(rec toast.Record) (toast.Handle, error) {
	hd := toast.Handle(rec.Key)
	detail := toast.EventDetail(toast.ActionPaint, rec)

	h.mu.Lock()
	defer h.mu.Unlock()

	h.seq++
	h.live[hd] = liveEntry{seq: h.seq, detail: detail}
	h.broadcastLocked(detail)
	return hd, nil
}

// Repaint broadcasts a repaint frame.
func (h *Hub) Repaint(hd toast.Handle, rec toast.Record) error {
	detail := toast.EventDetail(toast.ActionRepaint, rec)

	h.mu.Lock()
	defer h.mu.Unlock()

	if e, ok := h.live[hd]; ok {
		e.detail = detail
		h.live[hd] = e
	}
	h.broadcastLocked(detail)
	return nil
}

// Remove broadcasts a remove frame.
func (h *Hub) Remove(hd toast.Handle) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	delete(h.live, hd)
	h.broadcastLocked(map[string]any{
		"action": toast.ActionRemove,
		"key":    string(hd),
	})
	return nil
}

// broadcastLocked queues a frame to every client without blocking.
// Clients whose queue is full are dropped.
func (h *Hub) broadcastLocked(frame any) {
	data, err := json.Marshal(frame)
	if err != nil {
		h.logger.Error("encode frame", "error", err)
		return
	}

	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			h.logger.Warn("client too slow, dropping", "remote", c.remote)
			h.dropLocked(c)
		}
	}
}

// snapshotLocked returns the live notifications in paint order.
func (h *Hub) snapshotLocked() []map[string]any {
	entries := make([]liveEntry, 0, len(h.live))
	for _, e := range h.live {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].seq < entries[j].seq })

	out := make([]map[string]any, len(entries))
	for i, e := range entries {
		out[i] = e.detail
	}
	return out
}

// ServeHTTP upgrades the request to a WebSocket connection and serves it
// until the client disconnects.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Debug("upgrade failed", "error", err)
		return
	}

	c := &client{
		hub:    h,
		conn:   conn,
		send:   make(chan []byte, h.sendBuffer),
		remote: r.RemoteAddr,
	}

	// Registering and queueing the snapshot under one lock guarantees the
	// client sees every frame after the snapshot and none before it.
	if err := h.register(c); err != nil {
		h.logger.Debug("client rejected", "remote", c.remote, "error", err)
		conn.Close()
		return
	}
	h.logger.Debug("client connected", "remote", c.remote)

	go c.writePump()
	c.readPump()
}

func (h *Hub) register(c *client) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return errClosed
	}
	data, err := json.Marshal(map[string]any{
		"action": ActionSnapshot,
		"toasts": h.snapshotLocked(),
	})
	if err != nil {
		return err
	}
	c.send <- data
	h.clients[c] = struct{}{}
	return nil
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.dropLocked(c)
}

func (h *Hub) dropLocked(c *client) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.send)
}

func (h *Hub) dispatch(msg ClientMessage) {
	h.cbMu.RLock()
	onClose, onAction := h.onClose, h.onAction
	h.cbMu.RUnlock()

	switch msg.Action {
	case ActionClose:
		if onClose != nil && msg.Key != "" {
			onClose(msg.Key)
		}
	case ActionAction:
		if onAction != nil && msg.Key != "" {
			onAction(msg.Key, msg.ID)
		}
	default:
		h.logger.Debug("unknown client action", "action", msg.Action)
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Live returns the number of notifications currently painted.
func (h *Hub) Live() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.live)
}

// Close disconnects all clients and refuses new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closed = true
	for c := range h.clients {
		h.dropLocked(c)
	}
}
