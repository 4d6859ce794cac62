package handlers

import (
	"net/http"
	"sync"
	"time"

	updater "openhab_updater"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// Send/receive timing configuration and message size limits.
const (
	writeWait     = 10 * time.Second
	pongWait      = 60 * time.Second
	pingPeriod    = (pongWait * 9) / 10
	maxMsgSize    = 1 << 12 // 4 KB
	clientBacklog = 16      // buffered outcomes per client
)

// Envelope used for WebSocket messages.
type wsEnvelope struct {
	Type  string      `json:"type"`
	Data  interface{} `json:"data,omitempty"`
	Error string      `json:"error,omitempty"`
}

// outcomeHub fans terminal outcomes out to connected WebSocket clients.
// Slow clients drop messages instead of blocking the dispatcher.
type outcomeHub struct {
	mu      sync.Mutex
	clients map[chan updater.UpdateOutcome]struct{}
}

func newOutcomeHub() *outcomeHub {
	return &outcomeHub{clients: make(map[chan updater.UpdateOutcome]struct{})}
}

func (hub *outcomeHub) register() chan updater.UpdateOutcome {
	ch := make(chan updater.UpdateOutcome, clientBacklog)
	hub.mu.Lock()
	hub.clients[ch] = struct{}{}
	hub.mu.Unlock()
	return ch
}

func (hub *outcomeHub) unregister(ch chan updater.UpdateOutcome) {
	hub.mu.Lock()
	delete(hub.clients, ch)
	hub.mu.Unlock()
}

func (hub *outcomeHub) broadcast(o updater.UpdateOutcome) {
	hub.mu.Lock()
	defer hub.mu.Unlock()
	for ch := range hub.clients {
		select {
		case ch <- o:
		default: // client too slow, drop
		}
	}
}

// BroadcastOutcome pushes a terminal outcome to all connected clients.
// Registered as a dispatcher observer in main().
func (h *Handler) BroadcastOutcome(o updater.UpdateOutcome) {
	h.hub.broadcast(o)
}

// Upgrader for HTTP -> WebSocket. Consider tightening CheckOrigin in production.
var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true }, // TODO: restrict origins for production
}

func (h *Handler) wsConnect(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		if h.log != nil {
			h.log.Errorw("ws_upgrade_failed", "err", err)
		}
		return
	}
	defer func() { _ = conn.Close() }()

	conn.SetReadLimit(maxMsgSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	// Reader goroutine to handle control frames and detect disconnects.
	done := make(chan struct{})
	go h.startReader(conn, done)

	outcomes := h.hub.register()
	defer h.hub.unregister(outcomes)

	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()

	for {
		select {
		case <-done:
			return
		case <-c.Request.Context().Done():
			return
		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				if h.log != nil {
					h.log.Infow("ws_ping_failed", "err", err)
				}
				return
			}
		case o := <-outcomes:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(wsEnvelope{Type: "outcome", Data: o}); err != nil {
				if h.log != nil {
					h.log.Infow("ws_write_failed", "err", err)
				}
				return
			}
		}
	}
}

// startReader drains incoming messages to handle control frames and detect closure.
func (h *Handler) startReader(conn *websocket.Conn, done chan<- struct{}) {
	defer close(done)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if h.log != nil {
				h.log.Infow("ws_read_closed", "err", err)
			}
			return
		}
	}
}
