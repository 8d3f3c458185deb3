package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/campusconnect/campusconnect/internal/app/coordinator"
	"github.com/campusconnect/campusconnect/internal/pkg/identity"
	"github.com/campusconnect/campusconnect/internal/pkg/metrics"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum intent size allowed from peer
	maxMessageSize = 64 * 1024

	// Outbound frames buffered per connection
	sendBuffer = 256
)

func newUpgrader(origins []string) websocket.Upgrader {
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		allowed[o] = true
	}
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			// An empty list accepts every origin
			if len(allowed) == 0 || allowed["*"] {
				return true
			}
			return allowed[r.Header.Get("Origin")]
		},
	}
}

// Client is a middleman between the websocket connection and the
// coordinator of that connection
type Client struct {
	hub *Hub

	// The WebSocket connection
	conn *websocket.Conn

	// Buffered channel of outbound frames
	send chan []byte

	// Identity the connection signed in with, empty when anonymous
	uid  string
	addr string

	identity *identity.Session
	coord    *coordinator.Coordinator
	expiry   *time.Timer

	ctx    context.Context
	cancel context.CancelFunc

	mu        sync.Mutex
	closed    bool
	closeOnce sync.Once

	// Logger instance
	logger zerolog.Logger
}

func newClient(hub *Hub, conn *websocket.Conn, session *identity.Session, logger zerolog.Logger) *Client {
	ctx, cancel := context.WithCancel(context.Background())
	c := &Client{
		hub:      hub,
		conn:     conn,
		send:     make(chan []byte, sendBuffer),
		addr:     conn.RemoteAddr().String(),
		identity: session,
		ctx:      ctx,
		cancel:   cancel,
	}
	if id := session.Current(); id != nil {
		c.uid = id.UID
	}
	c.logger = logger.With().Str("uid", c.uid).Str("addr", c.addr).Logger()
	return c
}

// Send implements coordinator.Sink. A connection that cannot keep up is dropped.
func (c *Client) Send(f coordinator.Frame) {
	data, err := json.Marshal(f)
	if err != nil {
		c.logger.Error().Err(err).Str("frame", f.Type).Msg("Failed to marshal frame")
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.send <- data:
		metrics.IncWSFrame("out", f.Type)
	default:
		c.logger.Warn().Msg("Send buffer full, dropping connection")
		c.closed = true
		close(c.send)
	}
}

// close stops the coordinator and ends writePump. Safe to call repeatedly.
func (c *Client) close() {
	c.closeOnce.Do(func() {
		if c.expiry != nil {
			c.expiry.Stop()
		}
		if c.coord != nil {
			c.coord.Close()
		}
		c.cancel()
	})

	c.mu.Lock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
	c.mu.Unlock()
}

// readPump turns inbound messages into intents for the coordinator
func (c *Client) readPump() {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error { c.conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.logger.Info().Msg("WebSocket closed normally")
			} else if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Warn().Err(err).Msg("Unexpected WebSocket close")
			} else {
				c.logger.Debug().Err(err).Msg("WebSocket read error")
			}
			break
		}

		var intent coordinator.Intent
		if err := json.Unmarshal(message, &intent); err != nil || intent.Type == "" {
			c.logger.Debug().Err(err).Str("message", string(message)).Msg("Failed to unmarshal intent")
			c.Send(coordinator.Frame{Type: coordinator.FrameAlert, Message: coordinator.AlertUnknownIntent})
			continue
		}
		metrics.IncWSFrame("in", string(intent.Type))

		// Failures reach the client as alert frames.
		_ = c.coord.Handle(c.ctx, intent)
	}
}

// writePump writes queued frames to the websocket connection, one message each
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The connection was closed
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
