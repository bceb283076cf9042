package http

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024
)

// Client is one websocket connection. Only the write goroutine touches conn for writes.
type Client struct {
	id   string
	conn *websocket.Conn
	send chan []byte
	log  zerolog.Logger

	// rooms is guarded by Hub.mu
	rooms map[string]struct{}

	quitOnce sync.Once
	quit     chan struct{}
}

func newClient(id string, conn *websocket.Conn, queue int, logger zerolog.Logger) *Client {
	return &Client{
		id:    id,
		conn:  conn,
		send:  make(chan []byte, queue),
		log:   logger,
		rooms: make(map[string]struct{}),
		quit:  make(chan struct{}),
	}
}

// enqueue must be called with Hub.mu held (read or write) so send is not closed underneath.
func (c *Client) enqueue(msg []byte) {
	if msg == nil {
		return
	}
	select {
	case c.send <- msg:
	default:
		c.log.Warn().Msg("send queue full, dropping message")
	}
}

// kick asks the writer to flush and close the connection.
func (c *Client) kick() {
	c.quitOnce.Do(func() { close(c.quit) })
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.write(msg); err != nil {
				c.log.Debug().Err(err).Msg("ws write error")
				return
			}
		case <-c.quit:
			c.flush()
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "disconnected by server"))
			return
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) flush() {
	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.write(msg); err != nil {
				return
			}
		default:
			return
		}
	}
}

func (c *Client) write(msg []byte) error {
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(websocket.TextMessage, msg)
}
