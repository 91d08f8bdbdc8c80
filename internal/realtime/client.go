package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 4096
)

var ErrClientDisconnected = errors.New("client disconnected")

// Client owns one live WebSocket connection. Outbound frames go through a
// buffered send channel drained by writePump; the channel is never closed,
// pumps exit when the client context is cancelled.
type Client struct {
	id       string
	userID   string
	username string
	conn     *websocket.Conn
	send     chan []byte

	ctx    context.Context
	cancel context.CancelFunc
	closed int32
}

func NewClient(conn *websocket.Conn, userID, username string) *Client {
	ctx, cancel := context.WithCancel(context.Background())

	return &Client{
		id:       uuid.New().String(),
		userID:   userID,
		username: username,
		conn:     conn,
		send:     make(chan []byte, 256),
		ctx:      ctx,
		cancel:   cancel,
	}
}

func (c *Client) ID() string {
	return c.id
}

func (c *Client) UserID() string {
	return c.userID
}

func (c *Client) Username() string {
	return c.username
}

func (c *Client) isClosed() bool {
	return atomic.LoadInt32(&c.closed) == 1
}

// close marks the client dead, cancels its context and closes the underlying
// connection so both pumps unblock. Safe to call more than once.
func (c *Client) close() {
	if atomic.CompareAndSwapInt32(&c.closed, 0, 1) {
		c.cancel()
		if c.conn != nil {
			c.conn.Close()
		}
		slog.Debug("Client closed", "clientID", c.id, "userID", c.userID)
	}
}

// Send queues one frame for delivery. A full buffer or a closed client is a
// transport failure: the client is closed and ErrClientDisconnected returned.
func (c *Client) Send(frame any) error {
	if c.isClosed() {
		return ErrClientDisconnected
	}

	data, err := json.Marshal(frame)
	if err != nil {
		return err
	}

	select {
	case c.send <- data:
		return nil
	case <-c.ctx.Done():
		return ErrClientDisconnected
	default:
		slog.Warn("Send buffer full, closing client", "clientID", c.id, "userID", c.userID)
		c.close()
		return ErrClientDisconnected
	}
}

// readPump reads inbound frames and hands each one to handler, in arrival
// order. It returns when the transport closes or errors, closing the client.
func (c *Client) readPump(handler func(raw []byte)) {
	defer c.close()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				slog.Error("WebSocket error", "clientID", c.id, "userID", c.userID, "error", err)
			} else {
				slog.Debug("WebSocket connection closed", "clientID", c.id, "userID", c.userID)
			}
			return
		}
		handler(raw)
	}
}

// writePump drains the send channel to the connection and keeps the peer
// alive with periodic pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.close()
	}()

	for {
		select {
		case data := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				slog.Debug("Error writing message", "clientID", c.id, "userID", c.userID, "error", err)
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				slog.Debug("Error sending ping", "clientID", c.id, "userID", c.userID, "error", err)
				return
			}

		case <-c.ctx.Done():
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}
	}
}
