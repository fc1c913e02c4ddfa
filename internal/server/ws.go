package server

import (
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
)

const writeWait = 2 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// StateHandler pushes session state to websocket clients.
type StateHandler struct {
	states *Broadcaster
	logger *log.Logger
}

// NewStateHandler creates a StateHandler reading from b.
func NewStateHandler(b *Broadcaster, logger *log.Logger) *StateHandler {
	return &StateHandler{states: b, logger: logger}
}

// ServeHTTP upgrades the request and forwards state messages until the
// client goes away.
func (h *StateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Debug("websocket upgrade failed", "err", err)
		return
	}
	defer conn.Close()

	msgs, unsubscribe := h.states.subscribe()
	defer unsubscribe()

	// Reading detects the close frame; clients send nothing else.
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-gone:
			return
		case <-r.Context().Done():
			return
		case msg := <-msgs:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		}
	}
}
