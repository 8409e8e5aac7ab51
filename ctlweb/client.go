package ctlweb

import (
	"github.com/gorilla/websocket"
)

// client is a single telemetry subscriber.
type client struct {
	socket *websocket.Conn
	send   chan []byte // Snapshots to write; closed by the room
}

// read discards anything the client sends and returns when it disconnects.
func (c *client) read() {
	defer c.socket.Close()
	for {
		if _, _, err := c.socket.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *client) write() {
	defer c.socket.Close()
	for msg := range c.send {
		if err := c.socket.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
}
