// Package hub tracks live viewer connections and fans announcements out to
// them.
//
// Every registered connection gets its own writer goroutine fed by a bounded
// queue. Broadcast only enqueues, under the hub lock, so a slow viewer never
// stalls the others and every viewer sees broadcasts in call order. A viewer
// whose write fails, times out, or whose queue is full is dropped from the hub
// and closed.
package hub

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/playperu/resultboard/internal/metrics"
)

const (
	defaultQueueSize    = 16
	defaultWriteTimeout = 5 * time.Second
)

// Conn is one viewer's live transport session.
type Conn interface {
	Write(ctx context.Context, msg []byte) error
	Close() error
}

// Option configures a Hub at construction.
type Option func(*Hub)

// WithQueueSize sets how many undelivered messages a viewer may lag behind
// before it is dropped.
func WithQueueSize(n int) Option {
	return func(h *Hub) {
		if n > 0 {
			h.queueSize = n
		}
	}
}

// WithWriteTimeout bounds a single write to a viewer. A viewer whose write
// exceeds it is dropped.
func WithWriteTimeout(d time.Duration) Option {
	return func(h *Hub) {
		if d > 0 {
			h.writeTimeout = d
		}
	}
}

// WithMetrics records connection counts and delivery failures in m.
func WithMetrics(m *metrics.Hub) Option {
	return func(h *Hub) { h.metrics = m }
}

// Hub is the registry of live viewers. Each viewer has its own writer
// goroutine and bounded queue.
type Hub struct {
	logger       *slog.Logger
	queueSize    int
	writeTimeout time.Duration
	metrics      *metrics.Hub

	mu      sync.Mutex
	clients map[Conn]*writer
	closed  bool
}

// New returns an empty hub. Without options viewers may lag 16 messages and
// each write is given 5 seconds.
func New(logger *slog.Logger, opts ...Option) *Hub {
	h := &Hub{
		logger:       logger,
		queueSize:    defaultQueueSize,
		writeTimeout: defaultWriteTimeout,
		clients:      make(map[Conn]*writer),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register adds conn to the active set. Registering a connection that is
// already present is a no-op. After Close, conn is closed immediately.
func (h *Hub) Register(conn Conn) {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		_ = conn.Close()
		return
	}
	if _, ok := h.clients[conn]; ok {
		h.mu.Unlock()
		return
	}
	w := newWriter(conn, h.queueSize)
	h.clients[conn] = w
	n := len(h.clients)
	h.mu.Unlock()

	go w.run(h)

	if h.metrics != nil {
		h.metrics.ActiveConnections.Inc()
	}
	h.logger.Debug("viewer registered", "viewers", n)
}

// Unregister removes conn from the active set. Removing an absent connection
// is a no-op. The caller keeps ownership of conn and is responsible for
// closing it.
func (h *Hub) Unregister(conn Conn) {
	if h.remove(conn) {
		h.logger.Debug("viewer unregistered", "viewers", h.Len())
	}
}

// Broadcast queues msg for every connection registered at the time of the
// call and returns how many connections it was queued for. msg must not be
// modified afterwards.
func (h *Hub) Broadcast(msg []byte) int {
	var (
		queued int
		slow   []Conn
	)

	h.mu.Lock()
	for conn, w := range h.clients {
		select {
		case w.send <- msg:
			queued++
		default:
			slow = append(slow, conn)
		}
	}
	h.mu.Unlock()

	for _, conn := range slow {
		h.drop(conn, metrics.ReasonQueueFull, nil)
	}

	if h.metrics != nil {
		h.metrics.Broadcasts.Inc()
	}
	return queued
}

// Len returns the number of registered connections.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close drops and closes every connection. Later registrations are refused.
func (h *Hub) Close() error {
	h.mu.Lock()
	h.closed = true
	clients := h.clients
	h.clients = make(map[Conn]*writer)
	h.mu.Unlock()

	for conn, w := range clients {
		w.stop()
		_ = conn.Close()
		if h.metrics != nil {
			h.metrics.ActiveConnections.Dec()
		}
	}
	return nil
}

func (h *Hub) remove(conn Conn) bool {
	h.mu.Lock()
	w, ok := h.clients[conn]
	if ok {
		delete(h.clients, conn)
	}
	h.mu.Unlock()

	if !ok {
		return false
	}
	w.stop()
	if h.metrics != nil {
		h.metrics.ActiveConnections.Dec()
	}
	return true
}

// drop removes a connection after a delivery failure and closes it so the
// transport's read loop ends as well.
func (h *Hub) drop(conn Conn, reason string, err error) {
	if !h.remove(conn) {
		return
	}
	_ = conn.Close()

	if h.metrics != nil {
		h.metrics.DeliveryFailures.WithLabelValues(reason).Inc()
	}
	h.logger.Debug("viewer dropped", "reason", reason, "error", err)
}

type writer struct {
	conn     Conn
	send     chan []byte
	done     chan struct{}
	stopOnce sync.Once
}

func newWriter(conn Conn, queueSize int) *writer {
	return &writer{
		conn: conn,
		send: make(chan []byte, queueSize),
		done: make(chan struct{}),
	}
}

func (w *writer) run(h *Hub) {
	for {
		select {
		case msg := <-w.send:
			// Never write after removal, even if messages are still queued.
			select {
			case <-w.done:
				return
			default:
			}

			ctx, cancel := context.WithTimeout(context.Background(), h.writeTimeout)
			err := w.conn.Write(ctx, msg)
			cancel()
			if err != nil {
				h.drop(w.conn, metrics.ReasonWrite, err)
				return
			}
		case <-w.done:
			return
		}
	}
}

func (w *writer) stop() {
	w.stopOnce.Do(func() { close(w.done) })
}
