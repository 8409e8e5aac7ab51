// Package ctlweb connects the controller to websocket clients: a room that
// broadcasts telemetry and an endpoint that accepts setpoints and samples.
package ctlweb

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/antonellabarisic/mmuav-gazebo/control"
)

// Port is the default port for the controller's web interface.
const Port = 8000

// Room broadcasts every status snapshot to all connected clients.
type Room struct {
	forward chan []byte      // JSON snapshots queued by Publish
	join    chan *client     // Subscribers that just connected
	leave   chan *client     // Subscribers that disconnected
	clients map[*client]bool // Owned by Run
	done    chan struct{}    // Closed when Run returns
	log     *zap.Logger
}

// NewRoom returns a room with no subscribers.  Call Run before publishing.
func NewRoom(log *zap.Logger) *Room {
	return &Room{
		forward: make(chan []byte, statusBacklog),
		join:    make(chan *client),
		leave:   make(chan *client),
		clients: make(map[*client]bool),
		done:    make(chan struct{}),
		log:     log,
	}
}

// Run serves the room until ctx is cancelled, then disconnects all clients.
func (r *Room) Run(ctx context.Context) {
	defer close(r.done)
	for {
		select {
		case <-ctx.Done():
			for c := range r.clients {
				delete(r.clients, c)
				close(c.send)
			}
			r.log.Info("CtlWeb: Room closed")
			return
		case c := <-r.join:
			r.clients[c] = true
			r.log.Info("CtlWeb: New client joined", zap.Int("clients", len(r.clients)))
		case c := <-r.leave:
			if r.clients[c] {
				delete(r.clients, c)
				close(c.send)
			}
			r.log.Info("CtlWeb: Client left", zap.Int("clients", len(r.clients)))
		case msg := <-r.forward:
			for c := range r.clients {
				select {
				case c.send <- msg:
				default:
					r.log.Debug("CtlWeb: Subscriber behind, snapshot dropped")
				}
			}
		}
	}
}

// Publish queues a snapshot for broadcast.  It never blocks; snapshots are
// dropped while the room is behind.
func (r *Room) Publish(s *control.StatusSnapshot) {
	msg, err := json.Marshal(s)
	if err != nil {
		r.log.Warn("CtlWeb: Couldn't encode status", zap.Error(err))
		return
	}
	select {
	case r.forward <- msg:
	default:
	}
}

const (
	// Large enough for one encoded snapshot
	frameBufferSize = 4096
	// Snapshots held for a slow subscriber before they are dropped
	statusBacklog = 10
)

var upgrader = &websocket.Upgrader{ReadBufferSize: frameBufferSize, WriteBufferSize: frameBufferSize}

func (r *Room) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	socket, err := upgrader.Upgrade(w, req, nil)
	if err != nil {
		r.log.Warn("CtlWeb: Upgrade failed", zap.Error(err))
		return
	}
	c := &client{
		socket: socket,
		send:   make(chan []byte, statusBacklog),
	}
	select {
	case r.join <- c:
	case <-r.done:
		socket.Close()
		return
	}
	defer func() {
		select {
		case r.leave <- c:
		case <-r.done:
		}
	}()
	go c.write()
	c.read()
}
