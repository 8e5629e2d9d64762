package websocket

import (
	"context"
	"strings"
	"sync"
	"time"

	"tts-guard-backend/config"
	"tts-guard-backend/internal/events"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type MessageType string

const (
	MessageTypeEvent       MessageType = "EVENT"
	MessageTypeSubscribe   MessageType = "SUBSCRIBE"
	MessageTypeUnsubscribe MessageType = "UNSUBSCRIBE"
	MessageTypePing        MessageType = "PING"
	MessageTypePong        MessageType = "PONG"
	MessageTypeError       MessageType = "ERROR"
)

type WebSocketMessage struct {
	Type      MessageType `json:"type"`
	Topic     string      `json:"topic,omitempty"`
	Payload   interface{} `json:"payload"`
	Timestamp time.Time   `json:"timestamp"`
}

// Client is one dashboard connection. A client with no topics receives
// every event.
type Client struct {
	ID     uuid.UUID
	UserID uuid.UUID
	Conn   *websocket.Conn
	Hub    *Hub
	Send   chan WebSocketMessage
	topics map[string]bool
	mu     sync.RWMutex
}

func NewClient(hub *Hub, userID uuid.UUID, conn *websocket.Conn, topics ...string) *Client {
	c := &Client{
		ID:     uuid.New(),
		UserID: userID,
		Conn:   conn,
		Hub:    hub,
		Send:   make(chan WebSocketMessage, 256),
		topics: make(map[string]bool),
	}
	c.Subscribe(topics...)
	return c
}

// Hub fans domain events out to connected clients. It implements
// events.Publisher.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan WebSocketMessage
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan WebSocketMessage, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run serves the hub until ctx is cancelled, then closes every client.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for client := range h.clients {
				delete(h.clients, client)
				close(client.Send)
			}
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.Send)
			}
			h.mu.Unlock()

		case message := <-h.broadcast:
			h.deliver(message)
		}
	}
}

func (h *Hub) Register(c *Client)   { h.register <- c }
func (h *Hub) Unregister(c *Client) { h.unregister <- c }

// TopicOf maps "inspection.completed" to "inspection".
func TopicOf(t events.Type) string {
	s := string(t)
	if i := strings.IndexByte(s, '.'); i > 0 {
		return s[:i]
	}
	return s
}

// Publish never blocks: when the hub is saturated the event is dropped.
func (h *Hub) Publish(e events.Event) {
	msg := WebSocketMessage{
		Type:      MessageTypeEvent,
		Topic:     TopicOf(e.Type),
		Payload:   e,
		Timestamp: e.Timestamp,
	}
	select {
	case h.broadcast <- msg:
	default:
		config.Logger.Warn("Realtime hub saturated, dropping event", zap.String("type", string(e.Type)))
	}
}

// deliver drops clients whose send buffer is full.
func (h *Hub) deliver(message WebSocketMessage) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients {
		if !client.Wants(message.Topic) {
			continue
		}
		select {
		case client.Send <- message:
		default:
			close(client.Send)
			delete(h.clients, client)
		}
	}
}

func (h *Hub) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (c *Client) Subscribe(topics ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, t := range topics {
		if t = strings.TrimSpace(strings.ToLower(t)); t != "" {
			c.topics[t] = true
		}
	}
}

func (c *Client) Unsubscribe(topics ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, t := range topics {
		delete(c.topics, strings.TrimSpace(strings.ToLower(t)))
	}
}

func (c *Client) Wants(topic string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.topics) == 0 || c.topics[topic]
}

// Topics returns the current subscriptions.
func (c *Client) Topics() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, 0, len(c.topics))
	for t := range c.topics {
		out = append(out, t)
	}
	return out
}
