package handlers

import (
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/xavierca1/artisan-crm/internal/realtime"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

type WSHandler struct {
	Hub *realtime.Hub
}

func NewWSHandler(hub *realtime.Hub) *WSHandler {
	return &WSHandler{Hub: hub}
}

// Handle upgrades the connection, registers it with the hub and relays any
// inbound text to every observer. The read loop doubles as disconnect
// detection: when the client closes, the connection is removed immediately.
func (h *WSHandler) Handle(w http.ResponseWriter, r *http.Request) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws handler: upgrade failed: %v", err)
		return
	}

	conn := realtime.NewWSConn(ws)
	h.Hub.Add(conn)
	log.Printf("ws handler: observer connected: %s", ws.RemoteAddr())

	defer func() {
		h.Hub.Remove(conn)
		ws.Close()
		log.Printf("ws handler: observer disconnected: %s", ws.RemoteAddr())
	}()

	for {
		_, msg, err := ws.ReadMessage()
		if err != nil {
			return
		}
		h.Hub.Broadcast("Real-time update: " + string(msg))
	}
}
