package timeclock

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/clipperdesk/clipperdesk/pkg/logging"
)

// ClockEvent is pushed to the owner dashboard whenever a clock action lands.
type ClockEvent struct {
	BarberID  string      `json:"barber_id"`
	Action    EntryKind   `json:"action"`
	Timestamp time.Time   `json:"timestamp"`
	Status    ShiftStatus `json:"status"`
}

// LiveHub fans clock events out to connected dashboard websockets.
type LiveHub struct {
	upgrader websocket.Upgrader
	logger   *logging.Logger

	mu      sync.Mutex
	clients map[*websocket.Conn]*liveClient
}

// liveClient wraps a connection with its own write lock; gorilla/websocket
// permits at most one concurrent writer per connection.
type liveClient struct {
	writeMu sync.Mutex
	conn    *websocket.Conn
}

func (c *liveClient) writeJSON(v any) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteJSON(v)
}

// NewLiveHub creates an empty hub.
func NewLiveHub(logger *logging.Logger) *LiveHub {
	if logger == nil {
		logger = logging.Default()
	}
	return &LiveHub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Origin is enforced by the CORS/auth middleware upstream.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		logger:  logger,
		clients: make(map[*websocket.Conn]*liveClient),
	}
}

// ServeWS handles GET /timeclock/live, upgrading to a websocket that receives
// ClockEvent frames until the client disconnects.
func (h *LiveHub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", "error", err)
		return
	}

	h.mu.Lock()
	h.clients[conn] = &liveClient{conn: conn}
	h.mu.Unlock()

	// Reader goroutine exists only to observe close frames.
	go func() {
		defer h.drop(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// Broadcast sends the event to every connected client, dropping any that
// fail to write. Safe on a nil hub and safe to call from concurrent
// handlers: each client's write lock keeps frames from interleaving.
func (h *LiveHub) Broadcast(event ClockEvent) {
	if h == nil {
		return
	}
	h.mu.Lock()
	clients := make([]*liveClient, 0, len(h.clients))
	for _, c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	for _, c := range clients {
		if err := c.writeJSON(event); err != nil {
			h.drop(c.conn)
		}
	}
}

// ClientCount reports connected dashboards.
func (h *LiveHub) ClientCount() int {
	if h == nil {
		return 0
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *LiveHub) drop(conn *websocket.Conn) {
	h.mu.Lock()
	_, present := h.clients[conn]
	delete(h.clients, conn)
	h.mu.Unlock()
	if present {
		_ = conn.Close()
	}
}
