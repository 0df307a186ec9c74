package ws

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/dkozyar/parlor/internal/infrastructure/logging"
	"github.com/dkozyar/parlor/internal/infrastructure/metrics"
)

const (
	writeWait = 10 * time.Second
	pongWait  = 60 * time.Second

	// Must fire before the read deadline expires.
	pingPeriod = (pongWait * 9) / 10
)

// Client owns one websocket connection: a read goroutine feeding the
// lifecycle and a write goroutine draining the send buffer. It is the
// Transport registered in the directory for this connection.
type Client struct {
	conn      *websocket.Conn
	lifecycle *Lifecycle
	log       logging.Logger
	metrics   *metrics.Signaling

	session *Session
	send    chan *Message
	done    chan struct{}

	maxMessageSize int64
	closeOnce      sync.Once
}

func NewClient(
	conn *websocket.Conn,
	lifecycle *Lifecycle,
	log logging.Logger,
	m *metrics.Signaling,
	sendBuffer int,
	maxMessageSize int64,
) *Client {
	c := &Client{
		conn:           conn,
		lifecycle:      lifecycle,
		log:            log,
		metrics:        m,
		send:           make(chan *Message, sendBuffer),
		done:           make(chan struct{}),
		maxMessageSize: maxMessageSize,
	}
	c.session = lifecycle.NewSession(uuid.NewString(), c)
	return c
}

func (c *Client) Session() *Session { return c.session }

// Enqueue hands a frame to the write goroutine without blocking. A full
// buffer or a closing connection rejects the frame.
func (c *Client) Enqueue(msg *Message) bool {
	select {
	case <-c.done:
		return false
	default:
	}

	select {
	case c.send <- msg:
		return true
	case <-c.done:
		return false
	default:
		return false
	}
}

// Close tears the connection down. The send channel is never closed;
// WritePump observes done instead, so concurrent Enqueue calls stay safe.
func (c *Client) Close() error {
	c.closeOnce.Do(func() {
		close(c.done)
		_ = c.conn.Close()
	})
	return nil
}

// ReadPump consumes inbound frames until the connection drops, then treats
// the drop as an implicit departure. Frames that fail to decode are logged
// and skipped; the connection stays up.
func (c *Client) ReadPump(ctx context.Context) {
	defer func() {
		c.lifecycle.HandleClose(ctx, c.session)
		_ = c.Close()
	}()

	c.conn.SetReadLimit(c.maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Debug(logging.Transport, logging.Pump, "read loop ended", map[logging.ExtraKey]any{
					logging.ConnectionID: c.session.ID,
					logging.ErrorMessage: err.Error(),
				})
			}
			return
		}

		var msg Message
		if err := json.Unmarshal(raw, &msg); err != nil {
			c.metrics.SignalsDropped.WithLabelValues(metrics.DropReasonMalformed).Inc()
			c.log.Debug(logging.Transport, logging.Pump, "malformed frame dropped", map[logging.ExtraKey]any{
				logging.ConnectionID: c.session.ID,
			})
			continue
		}

		c.lifecycle.HandleMessage(ctx, c.session, &msg)
	}
}

// WritePump serializes outbound frames and keeps the connection alive with
// pings. It exits when Close fires or a write fails.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		// Closing the conn unblocks ReadPump, which runs the departure
		// handling; session state is only ever touched on that goroutine.
		_ = c.Close()
	}()

	for {
		select {
		case msg := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}
