package session

import (
	"context"
	"time"

	"github.com/gorilla/websocket"
)

// Conn abstracts the persistent transport under a session so the state
// machine is testable without a live websocket.
type Conn interface {
	// ReadMessage blocks until the next text frame or transport failure.
	ReadMessage(ctx context.Context) ([]byte, error)

	// WriteMessage sends one text frame. Implementations must tolerate
	// concurrent callers or be guarded by the session's write lock.
	WriteMessage(ctx context.Context, data []byte) error

	// Close tears down the transport. Idempotent.
	Close() error
}

// wsConn adapts a gorilla websocket connection to Conn.
type wsConn struct {
	conn         *websocket.Conn
	writeTimeout time.Duration
}

func newWSConn(conn *websocket.Conn, writeTimeout time.Duration) *wsConn {
	return &wsConn{conn: conn, writeTimeout: writeTimeout}
}

func (c *wsConn) ReadMessage(ctx context.Context) ([]byte, error) {
	// gorilla reads do not take a context; connection close unblocks them,
	// which the session guarantees on cancellation.
	_, data, err := c.conn.ReadMessage()
	return data, err
}

func (c *wsConn) WriteMessage(ctx context.Context, data []byte) error {
	if c.writeTimeout > 0 {
		if err := c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout)); err != nil {
			return err
		}
	}
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

func (c *wsConn) Close() error {
	return c.conn.Close()
}
