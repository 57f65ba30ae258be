// Package viewer serves the WebSocket endpoint that display screens connect
// to. Viewers only listen: anything they send is read and discarded.
package viewer

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"nhooyr.io/websocket"

	"github.com/playperu/resultboard/internal/hub"
)

// Registry is the part of the hub the endpoint needs.
type Registry interface {
	Register(conn hub.Conn)
	Unregister(conn hub.Conn)
}

type Handler struct {
	logger       *slog.Logger
	registry     Registry
	clock        clockwork.Clock
	pingInterval time.Duration
}

// NewHandler creates the viewer endpoint. A zero pingInterval disables
// keepalive pings.
func NewHandler(logger *slog.Logger, registry Registry, clock clockwork.Clock, pingInterval time.Duration) *Handler {
	return &Handler{
		logger:       logger,
		registry:     registry,
		clock:        clock,
		pingInterval: pingInterval,
	}
}

func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.serve)
	return r
}

func (h *Handler) serve(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		h.logger.Error("websocket accept failed", "error", err)
		return
	}
	defer conn.CloseNow()

	logger := h.logger.With("viewer_id", uuid.NewString())

	c := &wsConn{conn: conn}
	h.registry.Register(c)
	defer h.registry.Unregister(c)
	logger.Info("viewer connected")

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	go func() {
		if err := keepalive(ctx, h.clock, h.pingInterval, conn.Ping); err != nil {
			logger.Debug("viewer ping failed", "error", err)
			conn.CloseNow()
		}
	}()

	for {
		if _, _, err := conn.Read(ctx); err != nil {
			logger.Info("viewer disconnected", "status", websocket.CloseStatus(err))
			return
		}
	}
}

// keepalive pings every interval until ctx is done or a ping fails.
func keepalive(ctx context.Context, clock clockwork.Clock, interval time.Duration, ping func(context.Context) error) error {
	if interval <= 0 {
		<-ctx.Done()
		return nil
	}

	ticker := clock.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.Chan():
			pctx, cancel := context.WithTimeout(ctx, interval)
			err := ping(pctx)
			cancel()
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return err
			}
		}
	}
}

// wsConn adapts a WebSocket connection to hub.Conn.
type wsConn struct {
	conn *websocket.Conn
}

func (c *wsConn) Write(ctx context.Context, msg []byte) error {
	return c.conn.Write(ctx, websocket.MessageText, msg)
}

func (c *wsConn) Close() error {
	return c.conn.CloseNow()
}
