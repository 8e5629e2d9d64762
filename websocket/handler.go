package websocket

import (
	"strings"
	"time"

	"tts-guard-backend/config"
	"tts-guard-backend/token"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"
)

// AuthService defines a token validator interface
type AuthService interface {
	VerifyToken(token string) (*token.Payload, error)
}

type WsHandler struct {
	hub  *Hub
	auth AuthService
}

func NewWsHandler(hub *Hub, auth AuthService) *WsHandler {
	return &WsHandler{hub: hub, auth: auth}
}

// HandleWebSocket authenticates with the access token cookie and upgrades.
// ?topics=inspection,complaint narrows the stream.
func (h *WsHandler) HandleWebSocket(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}

	tokenStr := c.Cookies("access_token")
	if tokenStr == "" {
		config.Logger.Warn("WebSocket connection attempted without access token cookie")
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Unauthorized",
			"error":   "Authentication required",
		})
	}
	payload, err := h.auth.VerifyToken(tokenStr)
	if err != nil {
		config.Logger.Warn("Invalid access token for WebSocket", zap.Error(err))
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Unauthorized",
			"error":   "Invalid or expired token",
		})
	}

	var topics []string
	if raw := c.Query("topics"); raw != "" {
		topics = strings.Split(raw, ",")
	}

	return websocket.New(func(conn *websocket.Conn) {
		client := NewClient(h.hub, payload.UserID, conn, topics...)
		h.hub.Register(client)

		config.Logger.Info("WebSocket client registered",
			zap.String("clientID", client.ID.String()),
			zap.String("email", payload.Email),
			zap.Strings("topics", client.Topics()))

		go client.writePump()
		client.readPump()
	})(c)
}

func (c *Client) readPump() {
	defer func() {
		config.Logger.Info("WebSocket client disconnecting", zap.String("clientID", c.ID.String()))
		c.Hub.Unregister(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(64 * 1024)
	c.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		var msg WebSocketMessage
		if err := c.Conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				config.Logger.Warn("WebSocket unexpected close",
					zap.String("clientID", c.ID.String()),
					zap.Error(err))
			}
			return
		}
		c.handleMessage(msg)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(30 * time.Second)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteJSON(message); err != nil {
				config.Logger.Debug("WebSocket write error", zap.String("clientID", c.ID.String()), zap.Error(err))
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleMessage applies a client control message. Dashboards only listen,
// so the only inbound messages are subscription changes and pings.
func (c *Client) handleMessage(msg WebSocketMessage) {
	switch msg.Type {
	case MessageTypeSubscribe:
		c.Subscribe(topicsFrom(msg)...)
		c.reply(MessageTypeSubscribe, map[string]interface{}{"topics": c.Topics()})
	case MessageTypeUnsubscribe:
		c.Unsubscribe(topicsFrom(msg)...)
		c.reply(MessageTypeUnsubscribe, map[string]interface{}{"topics": c.Topics()})
	case MessageTypePing:
		c.reply(MessageTypePong, nil)
	default:
		config.Logger.Warn("Unknown WebSocket message type",
			zap.String("type", string(msg.Type)),
			zap.String("clientID", c.ID.String()))
		c.reply(MessageTypeError, map[string]interface{}{"message": "Unknown message type: " + string(msg.Type)})
	}
}

// topicsFrom accepts {"topic":"x"} or {"payload":{"topics":["x","y"]}}.
func topicsFrom(msg WebSocketMessage) []string {
	var out []string
	if msg.Topic != "" {
		out = append(out, msg.Topic)
	}
	if payload, ok := msg.Payload.(map[string]interface{}); ok {
		if list, ok := payload["topics"].([]interface{}); ok {
			for _, t := range list {
				if s, ok := t.(string); ok {
					out = append(out, s)
				}
			}
		}
	}
	return out
}

func (c *Client) reply(t MessageType, payload interface{}) {
	select {
	case c.Send <- WebSocketMessage{Type: t, Payload: payload, Timestamp: time.Now()}:
	default:
		config.Logger.Debug("WebSocket reply dropped, send buffer full", zap.String("clientID", c.ID.String()))
	}
}
