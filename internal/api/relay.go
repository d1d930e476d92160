package api

import (
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/percy-raskova/babylon-sub001/internal/event"
	"github.com/percy-raskova/babylon-sub001/internal/world"
)

// RelayTag is the registry tag of the websocket relay observer.
const RelayTag = "relay"

// maxRelayConns caps concurrent websocket clients.
const maxRelayConns = 8

// tickBatch is the wire frame pushed to websocket clients: one committed
// tick and its ordered events.
type tickBatch struct {
	Tick   uint64        `json:"tick"`
	Digest string        `json:"digest"`
	Events []event.Event `json:"events"`
}

// Relay is the observer end of the websocket stream. Each committed tick's
// event batch is fanned out to connected clients; a client that cannot keep
// up is dropped rather than allowed to backpressure the tick boundary.
type Relay struct {
	mu      sync.Mutex
	clients map[*relayClient]bool
}

type relayClient struct {
	conn *websocket.Conn
	send chan tickBatch
}

// NewRelay returns a relay with no clients.
func NewRelay() *Relay {
	return &Relay{clients: make(map[*relayClient]bool)}
}

func (r *Relay) Tag() string { return RelayTag }

func (r *Relay) OnTick(before, after *world.State, events []event.Event) {
	batch := tickBatch{Tick: after.Tick, Digest: after.Digest(), Events: events}

	r.mu.Lock()
	defer r.mu.Unlock()
	for c := range r.clients {
		select {
		case c.send <- batch:
		default:
			// Slow consumer: drop it, the simulation does not wait.
			slog.Info("relay client dropped", "reason", "slow consumer")
			delete(r.clients, c)
			close(c.send)
		}
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

func (r *Relay) handleWS(w http.ResponseWriter, req *http.Request) {
	r.mu.Lock()
	if len(r.clients) >= maxRelayConns {
		r.mu.Unlock()
		http.Error(w, "too many stream connections", http.StatusServiceUnavailable)
		return
	}
	r.mu.Unlock()

	conn, err := upgrader.Upgrade(w, req, nil)
	if err != nil {
		slog.Debug("websocket upgrade failed", "error", err)
		return
	}

	c := &relayClient{conn: conn, send: make(chan tickBatch, 64)}
	r.mu.Lock()
	r.clients[c] = true
	r.mu.Unlock()

	go r.writeLoop(c)
}

func (r *Relay) writeLoop(c *relayClient) {
	defer c.conn.Close()
	for batch := range c.send {
		if err := c.conn.WriteJSON(batch); err != nil {
			r.mu.Lock()
			if r.clients[c] {
				delete(r.clients, c)
				close(c.send)
			}
			r.mu.Unlock()
			return
		}
	}
}

// Close drops all clients.
func (r *Relay) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for c := range r.clients {
		delete(r.clients, c)
		close(c.send)
	}
}
