package ws

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	status "solarfleet/internal/status/domain"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// Handler upgrades connections onto the live status feed.
type Handler struct {
	hub    *Hub
	logger *log.Logger
}

// NewHandler constructs a feed handler.
func NewHandler(hub *Hub, logger *log.Logger) *Handler {
	return &Handler{hub: hub, logger: logger}
}

// ServeHTTP handles GET /api/v1/status/live.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.hub == nil {
		http.Error(w, "server not ready", http.StatusServiceUnavailable)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		if h.logger != nil {
			h.logger.Printf("status feed: upgrade error: %v", err)
		}
		return
	}

	client := &Client{hub: h.hub, conn: conn, send: make(chan []byte, 16)}
	h.hub.Register(client)
	go client.writePump()

	// Read loop only drains control frames and detects disconnect.
	go func() {
		defer h.hub.Unregister(client)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// StatusLister loads the current fleet status list.
type StatusLister interface {
	Status(ctx context.Context, plantIDs []int64) ([]status.DeviceStatus, error)
}

// Feeder polls the status list and broadcasts it to subscribers.
type Feeder struct {
	hub      *Hub
	lister   StatusLister
	interval time.Duration
	logger   *log.Logger
}

// NewFeeder constructs a feeder. Interval defaults to one minute.
func NewFeeder(hub *Hub, lister StatusLister, interval time.Duration, logger *log.Logger) *Feeder {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Feeder{hub: hub, lister: lister, interval: interval, logger: logger}
}

// Run broadcasts until the context is cancelled.
func (f *Feeder) Run(ctx context.Context) {
	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if f.hub.ClientCount() == 0 {
				continue
			}
			list, err := f.lister.Status(ctx, nil)
			if err != nil {
				if f.logger != nil {
					f.logger.Printf("status feed: list error: %v", err)
				}
				continue
			}
			payload, err := json.Marshal(list)
			if err != nil {
				continue
			}
			f.hub.Broadcast(payload)
		}
	}
}
