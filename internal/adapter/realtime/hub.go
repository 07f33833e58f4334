package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"user-pref-service/internal/adapter/cache"
	"user-pref-service/internal/auth"
	"user-pref-service/internal/domain/event"
	"user-pref-service/pkg/metrics"
)

// Frame is what connected clients receive for every event.
type Frame struct {
	Event     event.Type     `json:"event"`
	Data      map[string]any `json:"data,omitempty"`
	Timestamp int64          `json:"timestamp"`
}

// Config holds the hub settings.
type Config struct {
	WriteTimeout   time.Duration
	PingInterval   time.Duration
	SendBuffer     int
	AllowedOrigins []string
}

// Hub tracks the websocket clients of this replica and fans events out to them.
// It implements queue.Notifier.
type Hub struct {
	mu       sync.RWMutex
	clients  map[*Client]struct{}
	store    cache.ConnectionStore
	upgrader websocket.Upgrader
	cfg      Config
	log      *zap.Logger
}

// NewHub creates a hub. Connection state is mirrored into store when it is not nil.
func NewHub(store cache.ConnectionStore, cfg Config, log *zap.Logger) *Hub {
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 10 * time.Second
	}
	if cfg.PingInterval <= 0 {
		cfg.PingInterval = 30 * time.Second
	}
	if cfg.SendBuffer <= 0 {
		cfg.SendBuffer = 16
	}

	h := &Hub{
		clients: make(map[*Client]struct{}),
		store:   store,
		cfg:     cfg,
		log:     log,
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkOrigin,
	}
	return h
}

// Serve upgrades the request and attaches the connection to identity. The request
// context is not used past the upgrade: the connection outlives the handler.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, identity *auth.Identity) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	clientID := identity.ClientID
	if clientID == "" {
		clientID = uuid.NewString()
	}

	c := &Client{
		hub:      h,
		conn:     conn,
		send:     make(chan []byte, h.cfg.SendBuffer),
		clientID: clientID,
		username: identity.Username,
	}

	ctx := context.WithoutCancel(r.Context())
	h.register(ctx, c, r.RemoteAddr)

	go c.writePump()
	go c.readPump(ctx)
	return nil
}

// Broadcast queues an event to every client.
func (h *Hub) Broadcast(_ context.Context, t event.Type, data map[string]any) int {
	return h.deliver(t, data, func(*Client) bool { return true })
}

// Notify queues an event to the clients of username or clientID.
func (h *Hub) Notify(_ context.Context, username, clientID string, t event.Type, data map[string]any) int {
	return h.deliver(t, data, func(c *Client) bool {
		return (username != "" && c.username == username) || (clientID != "" && c.clientID == clientID)
	})
}

// Count returns the number of connected clients.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects every client. The read pumps unregister them.
func (h *Hub) Close() {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		_ = c.conn.Close()
	}
}

func (h *Hub) deliver(t event.Type, data map[string]any, match func(*Client) bool) int {
	frame, err := json.Marshal(Frame{Event: t, Data: data, Timestamp: time.Now().UnixMilli()})
	if err != nil {
		h.log.Error("failed to encode frame", zap.String("event", string(t)), zap.Error(err))
		return 0
	}

	// the read lock also keeps unregister from closing a send channel mid-delivery
	h.mu.RLock()
	defer h.mu.RUnlock()

	n := 0
	for c := range h.clients {
		if !match(c) {
			continue
		}
		select {
		case c.send <- frame:
			n++
		default:
			h.log.Warn("client send buffer full, dropping frame",
				zap.String("client_id", c.clientID),
				zap.String("event", string(t)),
			)
		}
	}

	metrics.RecordWebSocketDelivery(string(t), n)
	return n
}

func (h *Hub) register(ctx context.Context, c *Client, remoteAddr string) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	metrics.WebSocketConnected()
	h.log.Info("websocket client connected", zap.String("client_id", c.clientID), zap.String("username", c.username))

	if h.store == nil {
		return
	}
	err := h.store.Save(ctx, cache.Connection{
		ClientID:    c.clientID,
		Username:    c.username,
		RemoteAddr:  remoteAddr,
		ConnectedAt: time.Now().UTC(),
	})
	if err != nil {
		h.log.Warn("failed to store connection state", zap.String("client_id", c.clientID), zap.Error(err))
	}
}

func (h *Hub) unregister(ctx context.Context, c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, c)
	close(c.send)

	shared := false
	for other := range h.clients {
		if other.clientID == c.clientID {
			shared = true
			break
		}
	}
	h.mu.Unlock()

	metrics.WebSocketDisconnected()
	h.log.Info("websocket client disconnected", zap.String("client_id", c.clientID))

	if h.store == nil || shared {
		return
	}
	if err := h.store.Delete(ctx, c.clientID); err != nil {
		h.log.Warn("failed to delete connection state", zap.String("client_id", c.clientID), zap.Error(err))
	}
}

func (h *Hub) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || len(h.cfg.AllowedOrigins) == 0 || slices.Contains(h.cfg.AllowedOrigins, "*") {
		return true
	}
	return slices.Contains(h.cfg.AllowedOrigins, origin)
}
