package events

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

// Event is a change notification pushed to connected admin dashboards
type Event struct {
	Type      string    `json:"type"` // e.g. "announcement.created"
	ID        string    `json:"id,omitempty"`
	Actor     string    `json:"actor,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Publisher is the sending side of the hub
type Publisher interface {
	Publish(ev Event)
}

const (
	sendBuffer = 16
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second
)

type client struct {
	send chan Event
}

// Hub fans events out to every connected websocket client. A client that
// cannot keep up is dropped rather than blocking publishers.
type Hub struct {
	mu       sync.Mutex
	clients  map[*client]struct{}
	upgrader websocket.Upgrader
}

// NewHub creates a hub. allowedOrigins restricts the websocket handshake; an
// empty list only admits same-origin requests.
func NewHub(allowedOrigins []string) *Hub {
	origins := map[string]bool{}
	for _, o := range allowedOrigins {
		origins[o] = true
	}
	h := &Hub{clients: map[*client]struct{}{}}
	h.upgrader = websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || origins[origin] || origin == "http://"+r.Host || origin == "https://"+r.Host
		},
	}
	return h
}

// Publish delivers ev to all clients without blocking
func (h *Hub) Publish(ev Event) {
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now().UTC()
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- ev:
		default:
			delete(h.clients, c)
			close(c.send)
		}
	}
}

// Clients returns the number of connected clients
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *Hub) register() *client {
	c := &client{send: make(chan Event, sendBuffer)}
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	return c
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

// HandleWebSocket upgrades the request and streams events until the peer goes away
func (h *Hub) HandleWebSocket(c echo.Context) error {
	ws, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}
	defer ws.Close()

	cl := h.register()
	defer h.unregister(cl)

	// Reader goroutine only exists to notice the close frame
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-closed:
			return nil
		case ev, ok := <-cl.send:
			ws.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				ws.WriteMessage(websocket.CloseMessage, []byte{})
				return nil
			}
			if err := ws.WriteJSON(ev); err != nil {
				c.Logger().Debugf("events: write failed: %v", err)
				return nil
			}
		case <-ticker.C:
			ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return nil
			}
		}
	}
}
