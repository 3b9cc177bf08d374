// internal/server/hub.go
package server

import (
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	reloadMessage = "reload"
	writeWait     = 2 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The dev server only listens for the local browser.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Hub tracks the browsers waiting for a reload. All writes to a connection
// happen under mu, so each connection has a single writer.
type Hub struct {
	mu    sync.Mutex
	conns map[*websocket.Conn]struct{}
}

func newHub() *Hub {
	return &Hub{conns: make(map[*websocket.Conn]struct{})}
}

func (h *Hub) add(conn *websocket.Conn) {
	h.mu.Lock()
	h.conns[conn] = struct{}{}
	n := len(h.conns)
	h.mu.Unlock()
	log.Printf("Live-reload client connected (%d open).", n)
}

func (h *Hub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	_, ok := h.conns[conn]
	delete(h.conns, conn)
	h.mu.Unlock()
	if ok {
		conn.Close()
		log.Println("Live-reload client disconnected.")
	}
}

func (h *Hub) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.conns)
}

// send writes one frame with a deadline so a stalled tab cannot hold up a
// rebuild. The caller holds mu.
func send(conn *websocket.Conn, messageType int, data []byte) error {
	if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return conn.WriteMessage(messageType, data)
}

// broadcast sends message to every client and drops the ones that fail.
func (h *Hub) broadcast(message []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.conns {
		if err := send(conn, websocket.TextMessage, message); err != nil {
			log.Printf("Dropping live-reload client: %v", err)
			conn.Close()
			delete(h.conns, conn)
		}
	}
}

// closeAll says goodbye to every client on shutdown.
func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	bye := websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down")
	for conn := range h.conns {
		_ = send(conn, websocket.CloseMessage, bye)
		conn.Close()
		delete(h.conns, conn)
	}
}

// serveWs upgrades the request and holds the connection until the peer
// goes away. Browsers never send anything; reading only detects the close.
func serveWs(hub *Hub, w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade for %s failed: %v", r.RemoteAddr, err)
		return
	}
	hub.add(conn)
	defer hub.remove(conn)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
