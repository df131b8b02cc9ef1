package daemon

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"harness/internal/registry"
	"harness/pkg/logging"
)

const (
	writeWait          = 10 * time.Second
	pongWait           = 60 * time.Second
	pingPeriod         = (pongWait * 9) / 10
	maxMessageBytes    = 1 << 20
	outboundBufferSize = 256
)

// connection is one accepted WebSocket client: a request/response
// dispatcher plus an outbound queue shared by responses and any Event
// frames the connection has subscribed to. A single writer goroutine owns
// the socket for writes so responses and events never interleave
// mid-frame.
type connection struct {
	id   string
	conn *websocket.Conn
	srv  *Server

	outbound chan any

	mu         sync.Mutex
	subscribed map[registry.EventType]bool
}

// newConnection assigns the connection a random ID rather than a sequence
// number, since it doubles as the registry subscription ID and must stay
// unique across daemon restarts that might otherwise replay small integers.
func newConnection(srv *Server, conn *websocket.Conn) *connection {
	return &connection{
		id:         "conn-" + uuid.NewString(),
		conn:       conn,
		srv:        srv,
		outbound:   make(chan any, outboundBufferSize),
		subscribed: make(map[registry.EventType]bool),
	}
}

// serve runs the connection's read and write pumps until either side
// closes the socket, then tears down its registry subscription.
func (c *connection) serve(ctx context.Context) {
	log := logging.WithSession(c.id)
	log.Info().Msg("client connected")

	done := make(chan struct{})
	go c.writePump(done)
	c.readPump(ctx, log)
	close(done)

	_ = c.srv.reg.Unsubscribe(context.Background(), c.id)
	log.Info().Msg("client disconnected")
}

func (c *connection) readPump(ctx context.Context, log zerolog.Logger) {
	c.conn.SetReadLimit(maxMessageBytes)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			return
		}

		req, err := decodeRequest(raw)
		if err != nil {
			c.send(errorResponse(err))
			continue
		}
		c.send(c.srv.dispatch(ctx, c, req))
	}
}

func (c *connection) writePump(done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-c.outbound:
			if !ok {
				return
			}
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			_ = c.conn.Close()
			return
		}
	}
}

// send enqueues a frame, disconnecting the connection if its outbound
// buffer is already full rather than letting a slow client block the
// dispatcher.
func (c *connection) send(msg any) {
	select {
	case c.outbound <- msg:
	default:
		logging.WithSession(c.id).Warn().Msg("outbound buffer full, disconnecting")
		_ = c.conn.Close()
	}
}

// applySubscriptionDelta adds or removes event types from the connection's
// subscription and re-subscribes to the registry with the resulting set
// (or unsubscribes entirely once it's empty).
func (c *connection) applySubscriptionDelta(ctx context.Context, add, remove []registry.EventType) error {
	c.mu.Lock()
	for _, t := range remove {
		delete(c.subscribed, t)
	}
	for _, t := range add {
		c.subscribed[t] = true
	}
	types := make([]registry.EventType, 0, len(c.subscribed))
	for t := range c.subscribed {
		types = append(types, t)
	}
	c.mu.Unlock()

	_ = c.srv.reg.Unsubscribe(ctx, c.id)
	if len(types) == 0 {
		return nil
	}

	events, err := c.srv.reg.Subscribe(ctx, registry.EventSubscription{ID: c.id, Events: types})
	if err != nil {
		return err
	}
	go c.forwardEvents(events)
	return nil
}

func (c *connection) forwardEvents(events <-chan registry.Event) {
	for evt := range events {
		c.send(eventFrame(evt))
	}
}
