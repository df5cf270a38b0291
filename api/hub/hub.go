package hub

import (
	"encoding/json"
	"log"
	"net/http"
	"net/url"
	"sync"

	"github.com/gorilla/websocket"
)

// Event is one watchdog state transition pushed to websocket subscribers:
// watchdog.created, watchdog.alert, watchdog.recovered, watchdog.deleted.
type Event struct {
	Type       string      `json:"type"`
	WatchdogID string      `json:"watchdogId"`
	Payload    interface{} `json:"payload,omitempty"`
}

type subscriber struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub fans transition events out to connected websocket clients. Delivery is
// best effort: a subscriber that can't keep up is dropped.
type Hub struct {
	mu          sync.Mutex
	subscribers map[*subscriber]bool
	events      chan []byte
	upgrader    websocket.Upgrader
}

func New(allowedOrigins []string) *Hub {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}

	return &Hub{
		subscribers: make(map[*subscriber]bool),
		events:      make(chan []byte, 256),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true // non-browser clients
				}
				if allowed[origin] {
					return true
				}
				u, err := url.Parse(origin)
				if err != nil {
					return false
				}
				h := u.Hostname()
				return h == "localhost" || h == "127.0.0.1" || h == "::1"
			},
		},
	}
}

// Run pumps queued events to every subscriber. It never returns; main runs
// it on its own goroutine for the process lifetime.
func (h *Hub) Run() {
	for msg := range h.events {
		h.mu.Lock()
		for s := range h.subscribers {
			select {
			case s.send <- msg:
			default:
				delete(h.subscribers, s)
				close(s.send)
			}
		}
		h.mu.Unlock()
	}
}

// Broadcast queues an event for all subscribers without blocking the caller.
func (h *Hub) Broadcast(evt Event) {
	data, err := json.Marshal(evt)
	if err != nil {
		log.Printf("hub: marshal error: %v", err)
		return
	}
	select {
	case h.events <- data:
	default:
		log.Printf("hub: event queue full, dropping %s", evt.Type)
	}
}

func (h *Hub) HandleConnect(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("hub: upgrade: %v", err)
		return
	}

	s := &subscriber{conn: conn, send: make(chan []byte, 64)}
	h.mu.Lock()
	h.subscribers[s] = true
	h.mu.Unlock()

	go s.writePump()
	go s.readPump(h)
}

func (h *Hub) drop(s *subscriber) {
	h.mu.Lock()
	if h.subscribers[s] {
		delete(h.subscribers, s)
		close(s.send)
	}
	h.mu.Unlock()
}

func (s *subscriber) writePump() {
	defer s.conn.Close()
	for msg := range s.send {
		if err := s.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
}

func (s *subscriber) readPump(h *Hub) {
	defer func() {
		h.drop(s)
		s.conn.Close()
	}()
	for {
		if _, _, err := s.conn.ReadMessage(); err != nil {
			return
		}
	}
}
