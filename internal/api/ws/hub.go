package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/planetprotrader/backend/internal/state"
	"github.com/planetprotrader/backend/pkg/logger"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBufferSize = 256
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Source returns the current value of one topic, sent to clients on connect
type Source func() interface{}

// subscribeMsg is sent by clients to narrow or widen their topics.
// {"action":"subscribe","topics":["bots","trading"]}
type subscribeMsg struct {
	Action string   `json:"action"`
	Topics []string `json:"topics"`
}

type client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
	subs map[string]bool // empty means every topic
	mu   sync.RWMutex

	// closed is set under hub.mu once send is closed
	closed bool
}

// Hub streams state changes from the bus to WebSocket clients
// ⭐ SSOT: the only place changes leave the process over WebSocket
type Hub struct {
	clients    map[*client]bool
	broadcast  chan state.Change
	register   chan *client
	unregister chan *client
	done       chan struct{} // closed when Run returns
	bus        state.Bus
	sources    map[string]Source
	mu         sync.RWMutex
	logger     *logger.Logger
}

// NewHub creates a hub fed by bus. sources provide the snapshot sent on connect.
func NewHub(bus state.Bus, sources map[string]Source, log *logger.Logger) *Hub {
	return &Hub{
		clients:    make(map[*client]bool),
		broadcast:  make(chan state.Change, sendBufferSize),
		register:   make(chan *client),
		unregister: make(chan *client),
		done:       make(chan struct{}),
		bus:        bus,
		sources:    sources,
		logger:     log.WithComponent("ws"),
	}
}

// Run pumps bus changes to clients until ctx is cancelled
func (h *Hub) Run(ctx context.Context) error {
	defer close(h.done)

	changes, err := h.bus.Subscribe(ctx)
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for c := range h.clients {
				close(c.send)
				c.closed = true
				delete(h.clients, c)
			}
			h.mu.Unlock()
			return ctx.Err()

		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = true
			h.mu.Unlock()
			h.logger.WithField("total_clients", h.ClientCount()).Info("Client connected")

		case c := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
				c.closed = true
			}
			h.mu.Unlock()
			h.logger.WithField("total_clients", h.ClientCount()).Info("Client disconnected")

		case change, ok := <-changes:
			if !ok {
				h.logger.Warn("State bus subscription closed")
				changes = nil
				continue
			}
			h.deliver(change)
		}
	}
}

func (h *Hub) deliver(change state.Change) {
	data, err := json.Marshal(change)
	if err != nil {
		h.logger.WithError(err).Warn("Failed to encode change")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		if !c.isSubscribed(change.Topic) {
			continue
		}
		select {
		case c.send <- data:
		default:
			h.logger.WithField("topic", change.Topic).Warn("Dropping change for slow client")
		}
	}
}

// HandleWS upgrades the request and registers the client
// GET /ws
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WithError(err).Warn("WebSocket upgrade failed")
		return
	}

	c := &client{
		hub:  h,
		conn: conn,
		send: make(chan []byte, sendBufferSize),
		subs: make(map[string]bool),
	}

	select {
	case h.register <- c:
	case <-h.done:
		conn.Close()
		return
	}
	c.sendSnapshot()

	go c.writePump()
	go c.readPump()
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Topics lists the topics that have a snapshot source
func (h *Hub) Topics() []string {
	topics := make([]string, 0, len(h.sources))
	for t := range h.sources {
		topics = append(topics, t)
	}
	sort.Strings(topics)
	return topics
}

// sendSnapshot queues the current value of every topic as a change
func (c *client) sendSnapshot() {
	for _, topic := range c.hub.Topics() {
		change, err := state.NewChange(topic, c.hub.sources[topic]())
		if err != nil {
			continue
		}
		data, err := json.Marshal(change)
		if err != nil {
			continue
		}
		c.queue(data)
	}
}

// queue drops data once the hub has closed the client's send channel
func (c *client) queue(data []byte) {
	c.hub.mu.RLock()
	defer c.hub.mu.RUnlock()
	if c.closed {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}

func (c *client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.logger.WithError(err).Warn("Unexpected close")
			}
			return
		}

		var sub subscribeMsg
		if err := json.Unmarshal(message, &sub); err == nil {
			c.handleSubscription(sub)
		}
	}
}

func (c *client) handleSubscription(msg subscribeMsg) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch msg.Action {
	case "subscribe":
		for _, t := range msg.Topics {
			c.subs[t] = true
		}
	case "unsubscribe":
		for _, t := range msg.Topics {
			delete(c.subs, t)
		}
	}
}

func (c *client) isSubscribed(topic string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.subs) == 0 || c.subs[topic]
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
