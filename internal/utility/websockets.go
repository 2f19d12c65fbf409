package utility

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// RefreshMessage tells a waiting page to reload itself.
const RefreshMessage = "REFRESH"

var Upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Same-origin only: the socket is opened by our own loading page.
	CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || origin == "http://"+r.Host || origin == "https://"+r.Host
	},
}

// Hub holds the open sockets of each session. A session can have several
// tabs open, so every registered connection gets the message.
type Hub struct {
	mu      sync.Mutex
	clients map[string]map[*websocket.Conn]struct{}
}

func NewHub() *Hub {
	return &Hub{clients: make(map[string]map[*websocket.Conn]struct{})}
}

// Register a new client connection
func (h *Hub) Register(sessionID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	conns, ok := h.clients[sessionID]
	if !ok {
		conns = make(map[*websocket.Conn]struct{})
		h.clients[sessionID] = conns
	}
	conns[conn] = struct{}{}
	log.Debug().Str("session_id", sessionID).Msg("WebSocket Client Connected")
}

// Unregister a client (when they close the tab)
func (h *Hub) Unregister(sessionID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if conns, ok := h.clients[sessionID]; ok {
		delete(conns, conn)
		if len(conns) == 0 {
			delete(h.clients, sessionID)
		}
		log.Debug().Str("session_id", sessionID).Msg("WebSocket Client Disconnected")
	}
}

// Forget closes and drops every connection of a session.
func (h *Hub) Forget(sessionID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.clients[sessionID] {
		conn.Close()
	}
	delete(h.clients, sessionID)
}

// Notify tells every page of a session to reload.
func (h *Hub) Notify(sessionID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for conn := range h.clients[sessionID] {
		if err := conn.WriteMessage(websocket.TextMessage, []byte(RefreshMessage)); err != nil {
			log.Warn().Err(err).Str("session_id", sessionID).Msg("Failed to send WS message, removing client")
			conn.Close()
			delete(h.clients[sessionID], conn)
		}
	}
	if len(h.clients[sessionID]) == 0 {
		delete(h.clients, sessionID)
	}
}

// Count returns the number of open connections for a session.
func (h *Hub) Count(sessionID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients[sessionID])
}
