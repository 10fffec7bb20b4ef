package realtime

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// writeWait bounds how long a single observer may stall a broadcast write.
const writeWait = 5 * time.Second

// WSConn adapts a gorilla websocket connection to the hub's Conn interface.
// gorilla allows one concurrent writer per connection, so writes are
// serialized with a mutex.
type WSConn struct {
	mu sync.Mutex
	ws *websocket.Conn
}

func NewWSConn(ws *websocket.Conn) *WSConn {
	return &WSConn{ws: ws}
}

func (c *WSConn) WriteText(msg string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.ws.SetWriteDeadline(time.Now().Add(writeWait))
	return c.ws.WriteMessage(websocket.TextMessage, []byte(msg))
}

func (c *WSConn) Close() error {
	return c.ws.Close()
}
