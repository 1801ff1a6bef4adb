package web

import (
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"pocketgrove/internal/world"
)

var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

type wsMsg struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// Hub fans a session's events out to its open sockets.
type Hub struct {
	mu    sync.Mutex
	conns map[string]map[*websocket.Conn]struct{}
}

func NewHub() *Hub {
	return &Hub{conns: map[string]map[*websocket.Conn]struct{}{}}
}

func (h *Hub) add(id string, c *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.conns[id] == nil {
		h.conns[id] = map[*websocket.Conn]struct{}{}
	}
	h.conns[id][c] = struct{}{}
}

func (h *Hub) remove(id string, c *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.dropLocked(id, c)
}

func (h *Hub) dropLocked(id string, c *websocket.Conn) {
	set := h.conns[id]
	if _, ok := set[c]; !ok {
		return
	}
	delete(set, c)
	if len(set) == 0 {
		delete(h.conns, id)
	}
	_ = c.Close()
}

// send writes to one socket. Writes are serialized by the hub lock.
func (h *Hub) send(id string, c *websocket.Conn, m wsMsg) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := c.WriteJSON(m); err != nil {
		log.Printf("ws: write error to %s: %v", id, err)
		h.dropLocked(id, c)
	}
}

// Publish sends events to every socket of the session.
func (h *Hub) Publish(id string, events []world.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.conns[id] {
		if err := c.WriteJSON(wsMsg{Type: "events", Data: events}); err != nil {
			log.Printf("ws: write error to %s: %v", id, err)
			h.dropLocked(id, c)
		}
	}
}

// Conns reports how many sockets the session has open.
func (h *Hub) Conns(id string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.conns[id])
}

// GET /ws streams the session's events. The client only listens; intents
// go through the HTTP API.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	e, id, err := s.getOrCreateEntry(r.Context(), w, r)
	if err != nil {
		http.Error(w, "failed to load session", http.StatusInternalServerError)
		return
	}
	if s.Hub == nil {
		http.Error(w, "event stream disabled", http.StatusNotFound)
		return
	}
	conn, err := upgrader.Upgrade(w, r, w.Header())
	if err != nil {
		log.Printf("ws: upgrade %s: %v", id, err)
		return
	}
	log.Printf("ws: connect session=%s from=%s", id, r.RemoteAddr)

	e.mu.Lock()
	hud := e.game.HUD()
	e.mu.Unlock()
	s.Hub.add(id, conn)
	s.Hub.send(id, conn, wsMsg{Type: "hello", Data: world.Event{Kind: world.HUDEvent, HUD: &hud}})

	go func() {
		defer func() {
			s.Hub.remove(id, conn)
			log.Printf("ws: closed session=%s", id)
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}
