package api

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/nerrad567/apiconsole/internal/dth22"
	"github.com/nerrad567/apiconsole/internal/infrastructure/config"
)

// Message types.
const (
	WSTypeSubscribe   = "subscribe"
	WSTypeUnsubscribe = "unsubscribe"
	WSTypePing        = "ping"
	WSTypePong        = "pong"
	WSTypeEvent       = "event"
	WSTypeResponse    = "response"
	WSTypeError       = "error"
)

const (
	wsSendBufferSize = 256

	defaultMaxMessageSize = 8192
	defaultPingInterval   = 30 * time.Second
	defaultPongTimeout    = 10 * time.Second
)

// wsChannels are the channels a client may subscribe to.
var wsChannels = map[string]struct{}{
	string(dth22.EventCreated): {},
	string(dth22.EventUpdated): {},
}

// WSMessage is the envelope for every message the server sends.
type WSMessage struct {
	Type      string `json:"type"`
	ID        string `json:"id,omitempty"`
	EventType string `json:"event_type,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
	Payload   any    `json:"payload,omitempty"`
}

// WSSubscribePayload is the payload of subscribe and unsubscribe requests.
type WSSubscribePayload struct {
	Channels []string `json:"channels"`
}

// wsRequest is a client message with its payload left encoded.
type wsRequest struct {
	Type    string          `json:"type"`
	ID      string          `json:"id"`
	Payload json.RawMessage `json:"payload"`
}

type wsLimits struct {
	readLimit    int64
	pingInterval time.Duration
	pongWait     time.Duration
}

func newWSLimits(cfg config.WebSocketConfig) wsLimits {
	l := wsLimits{
		readLimit:    int64(cfg.MaxMessageSize),
		pingInterval: time.Duration(cfg.PingInterval) * time.Second,
		pongWait:     time.Duration(cfg.PongTimeout) * time.Second,
	}
	if l.readLimit <= 0 {
		l.readLimit = defaultMaxMessageSize
	}
	if l.pingInterval <= 0 {
		l.pingInterval = defaultPingInterval
	}
	if l.pongWait <= 0 {
		l.pongWait = defaultPongTimeout
	}
	return l
}

// readDeadline is how long a connection may stay silent.
func (l wsLimits) readDeadline() time.Time {
	return time.Now().Add(l.pingInterval + l.pongWait)
}

// Origins are enforced by the CORS middleware, not the upgrader.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// WSClient is one WebSocket connection.
type WSClient struct {
	hub     *Hub
	conn    *websocket.Conn
	subject string // authenticated caller, empty when auth is off

	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once

	mu            sync.RWMutex
	subscriptions map[string]struct{}
}

func newWSClient(hub *Hub, conn *websocket.Conn, subject string) *WSClient {
	return &WSClient{
		hub:           hub,
		conn:          conn,
		subject:       subject,
		send:          make(chan []byte, wsSendBufferSize),
		done:          make(chan struct{}),
		subscriptions: make(map[string]struct{}),
	}
}

// handleWebSocket upgrades the request and starts the client's pumps. When
// auth is enabled the route sits behind authMiddleware.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	var subject string
	if p := principalFromContext(r.Context()); p != nil {
		subject = p.Subject
	}

	client := newWSClient(s.hub, conn, subject)
	s.hub.Register(client)

	go client.writePump()
	go client.readPump()
}

// close stops the writer. Safe to call more than once.
func (c *WSClient) close() {
	c.closeOnce.Do(func() { close(c.done) })
}

// trySend queues data without blocking. It reports false when the client is
// closed or its buffer is full.
func (c *WSClient) trySend(data []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

func (c *WSClient) readPump() {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	limits := c.hub.limits
	c.conn.SetReadLimit(limits.readLimit)
	c.conn.SetReadDeadline(limits.readDeadline()) //nolint:errcheck // a failed deadline surfaces on the next read
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(limits.readDeadline())
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.logger.Warn("websocket read error", "error", err)
			}
			return
		}
		// Application messages count as liveness too.
		c.conn.SetReadDeadline(limits.readDeadline()) //nolint:errcheck // see above
		c.handleMessage(data)
	}
}

func (c *WSClient) writePump() {
	limits := c.hub.limits
	ticker := time.NewTicker(limits.pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	write := func(messageType int, data []byte) error {
		c.conn.SetWriteDeadline(time.Now().Add(limits.pongWait)) //nolint:errcheck // write error is checked
		return c.conn.WriteMessage(messageType, data)
	}

	for {
		select {
		case data := <-c.send:
			if err := write(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			if err := write(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			write(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "")) //nolint:errcheck // connection is closing
			return
		}
	}
}

func (c *WSClient) handleMessage(data []byte) {
	var req wsRequest
	if err := json.Unmarshal(data, &req); err != nil {
		c.replyError("", "invalid JSON message")
		return
	}

	switch req.Type {
	case WSTypeSubscribe:
		c.handleSubscription(req, true)
	case WSTypeUnsubscribe:
		c.handleSubscription(req, false)
	case WSTypePing:
		c.reply(req.ID, WSTypePong, nil)
	default:
		c.replyError(req.ID, "unknown message type: "+req.Type)
	}
}

// handleSubscription adds or removes channels. A subscribe naming any
// unknown channel is rejected as a whole.
func (c *WSClient) handleSubscription(req wsRequest, subscribe bool) {
	var p WSSubscribePayload
	if len(req.Payload) > 0 {
		if err := json.Unmarshal(req.Payload, &p); err != nil {
			c.replyError(req.ID, "invalid "+req.Type+" payload")
			return
		}
	}
	if len(p.Channels) == 0 {
		c.replyError(req.ID, "channels required")
		return
	}

	if subscribe {
		for _, ch := range p.Channels {
			if _, ok := wsChannels[ch]; !ok {
				c.replyError(req.ID, "unknown channel: "+ch)
				return
			}
		}
	}

	c.mu.Lock()
	for _, ch := range p.Channels {
		if subscribe {
			c.subscriptions[ch] = struct{}{}
		} else {
			delete(c.subscriptions, ch)
		}
	}
	c.mu.Unlock()

	key := "unsubscribed"
	if subscribe {
		key = "subscribed"
	}
	c.reply(req.ID, WSTypeResponse, map[string]any{key: p.Channels})
}

func (c *WSClient) isSubscribed(channel string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.subscriptions[channel]
	return ok
}

func (c *WSClient) reply(id, msgType string, payload any) {
	data, err := json.Marshal(WSMessage{
		Type:      msgType,
		ID:        id,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Payload:   payload,
	})
	if err != nil {
		c.hub.logger.Error("encoding websocket reply failed", "error", err)
		return
	}
	c.trySend(data)
}

func (c *WSClient) replyError(id, message string) {
	c.reply(id, WSTypeError, map[string]string{"message": message})
}
