package api

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/nerrad567/apiconsole/internal/infrastructure/config"
	"github.com/nerrad567/apiconsole/internal/infrastructure/logging"
	"github.com/nerrad567/apiconsole/internal/metrics"
)

// Hub tracks WebSocket clients and fans reading events out to the ones
// subscribed to each channel.
//
// Thread Safety:
//   - All methods are safe for concurrent use from multiple goroutines.
type Hub struct {
	limits wsLimits
	logger *logging.Logger

	mu      sync.RWMutex
	clients map[*WSClient]struct{}
}

// NewHub creates a hub. Unset limits in cfg fall back to defaults.
func NewHub(cfg config.WebSocketConfig, logger *logging.Logger) *Hub {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Hub{
		limits:  newWSLimits(cfg),
		logger:  logger.With("component", "ws-hub"),
		clients: make(map[*WSClient]struct{}),
	}
}

// Run blocks until ctx is cancelled, then disconnects every client.
func (h *Hub) Run(ctx context.Context) {
	<-ctx.Done()
	h.closeAll()
}

// Register adds a client.
func (h *Hub) Register(client *WSClient) {
	h.mu.Lock()
	h.clients[client] = struct{}{}
	count := len(h.clients)
	h.mu.Unlock()

	metrics.WebSocketClients.Set(float64(count))
	h.logger.Debug("websocket client connected", "clients", count, "subject", client.subject)
}

// Unregister removes a client and stops its writer. Repeated calls are no-ops.
func (h *Hub) Unregister(client *WSClient) {
	h.mu.Lock()
	_, existed := h.clients[client]
	delete(h.clients, client)
	count := len(h.clients)
	h.mu.Unlock()

	if !existed {
		return
	}
	client.close()
	metrics.WebSocketClients.Set(float64(count))
	h.logger.Debug("websocket client disconnected", "clients", count, "subject", client.subject)
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast sends an event message on channel to every subscribed client.
// Clients whose send buffer is full miss the message.
func (h *Hub) Broadcast(channel string, payload any) {
	data, err := json.Marshal(WSMessage{
		Type:      WSTypeEvent,
		EventType: channel,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Payload:   payload,
	})
	if err != nil {
		h.logger.Error("encoding broadcast failed", "channel", channel, "error", err)
		return
	}

	var delivered, dropped int
	for _, client := range h.snapshot() {
		if !client.isSubscribed(channel) {
			continue
		}
		if client.trySend(data) {
			delivered++
		} else {
			dropped++
		}
	}

	if dropped > 0 {
		h.logger.Warn("broadcast dropped for slow clients", "channel", channel, "dropped", dropped)
	}
	if delivered > 0 {
		h.logger.Debug("broadcast sent", "channel", channel, "recipients", delivered)
	}
}

// snapshot copies the client set so sends happen without the hub lock.
func (h *Hub) snapshot() []*WSClient {
	h.mu.RLock()
	defer h.mu.RUnlock()
	clients := make([]*WSClient, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	return clients
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	clients := h.clients
	h.clients = make(map[*WSClient]struct{})
	h.mu.Unlock()

	for c := range clients {
		c.close()
		if c.conn != nil {
			c.conn.Close()
		}
	}
	metrics.WebSocketClients.Set(0)
}
