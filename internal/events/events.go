// Package events broadcasts path-search events (spec §6: "searching",
// "found", "skipped") to connected WebSocket clients, so a live viewer can
// watch a route search unfold.
package events

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/nervalabs/routecore/internal/graph"
	"github.com/nervalabs/routecore/internal/hooks"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// wireEvent is the JSON shape pushed to every connected client.
type wireEvent struct {
	Type      graph.EventType `json:"type"`
	Timestamp int64           `json:"timestampUnixMs"`
	Handlers  []string        `json:"handlers"`
	Formats   []string        `json:"formats"`
	Cost      float64         `json:"cost,omitempty"`
}

func encode(event graph.EventType, path graph.Path, now time.Time) []byte {
	we := wireEvent{Type: event, Timestamp: now.UnixMilli()}
	for _, n := range path {
		if n.Handler != nil {
			we.Handlers = append(we.Handlers, n.Handler.Name())
		}
		we.Formats = append(we.Formats, n.Format.Format)
	}
	data, err := json.Marshal(we)
	if err != nil {
		return []byte(`{"type":"` + string(event) + `"}`)
	}
	return data
}

// Hub fans search events out to every connected WebSocket client. The zero
// value is not usable; construct with NewHub.
type Hub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]bool

	broadcast  chan []byte
	register   chan *websocket.Conn
	unregister chan *websocket.Conn
	done       chan struct{}
	once       sync.Once

	logger hooks.Logger
	now    func() time.Time
}

// NewHub creates a Hub. logger may be nil. Events are timestamped with
// time.Now.
func NewHub(logger hooks.Logger) *Hub {
	return &Hub{
		clients:    make(map[*websocket.Conn]bool),
		broadcast:  make(chan []byte, 256),
		register:   make(chan *websocket.Conn),
		unregister: make(chan *websocket.Conn),
		done:       make(chan struct{}),
		logger:     logger,
		now:        time.Now,
	}
}

// Run processes register/unregister/broadcast events until Stop is called.
// Call it in its own goroutine.
func (h *Hub) Run() {
	for {
		select {
		case conn := <-h.register:
			h.mu.Lock()
			h.clients[conn] = true
			h.mu.Unlock()

		case conn := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[conn]; ok {
				delete(h.clients, conn)
				conn.Close()
			}
			h.mu.Unlock()

		case msg := <-h.broadcast:
			h.mu.Lock()
			for conn := range h.clients {
				if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
					delete(h.clients, conn)
					conn.Close()
				}
			}
			h.mu.Unlock()

		case <-h.done:
			h.mu.Lock()
			for conn := range h.clients {
				conn.Close()
				delete(h.clients, conn)
			}
			h.mu.Unlock()
			return
		}
	}
}

// Stop shuts the hub down and closes all client connections. Safe to call
// more than once.
func (h *Hub) Stop() {
	h.once.Do(func() { close(h.done) })
}

// Listener returns a graph.Listener that publishes every event this hub
// receives to its connected clients, suitable for graph.Graph.AddListener.
func (h *Hub) Listener() graph.Listener {
	return func(event graph.EventType, path graph.Path) {
		select {
		case h.broadcast <- encode(event, path, h.now()):
		default:
			if h.logger != nil {
				h.logger.Warn("events.broadcast_dropped", "event", string(event))
			}
		}
	}
}

// ServeWS upgrades an HTTP connection to a WebSocket and registers it with
// the hub for the lifetime of the connection.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		if h.logger != nil {
			h.logger.Warn("events.upgrade_failed", "error", err.Error())
		}
		return
	}
	h.register <- conn

	go func() {
		defer func() { h.unregister <- conn }()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}
	}()
}

// ClientCount returns the number of currently connected clients.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}
