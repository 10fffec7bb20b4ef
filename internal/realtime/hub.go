package realtime

import (
	"log"
	"sync"
)

// Conn is the minimal surface the hub needs from an observer connection.
type Conn interface {
	WriteText(msg string) error
	Close() error
}

// Hub owns the set of live observer connections. The backing map is never
// handed out: callers get point-in-time copies via Snapshot, so broadcast
// iteration is immune to concurrent Add/Remove.
type Hub struct {
	mu    sync.Mutex
	conns map[Conn]struct{}
}

func NewHub() *Hub {
	return &Hub{conns: make(map[Conn]struct{})}
}

// Add registers a connection. It never rejects.
func (h *Hub) Add(c Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conns[c] = struct{}{}
	activeObservers.Set(float64(len(h.conns)))
}

// Remove unregisters a connection. Removing an unknown or already removed
// connection is a no-op.
func (h *Hub) Remove(c Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.conns, c)
	activeObservers.Set(float64(len(h.conns)))
}

// Snapshot returns an independent copy of the current connection set.
func (h *Hub) Snapshot() []Conn {
	h.mu.Lock()
	defer h.mu.Unlock()

	conns := make([]Conn, 0, len(h.conns))
	for c := range h.conns {
		conns = append(conns, c)
	}
	return conns
}

func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.conns)
}

// Broadcast delivers msg to every connection present in a snapshot taken at
// call time. A broken or nil connection is pruned and the loop moves on; one
// bad observer never blocks delivery to the rest. Fire-and-forget: no retry,
// no error returned.
func (h *Hub) Broadcast(msg string) {
	for _, c := range h.Snapshot() {
		if c == nil {
			h.Remove(c)
			continue
		}
		if err := c.WriteText(msg); err != nil {
			log.Printf("hub: dropping observer after failed send: %v", err)
			h.Remove(c)
			c.Close()
			broadcastFailures.Inc()
			continue
		}
		broadcastsSent.Inc()
	}
}
