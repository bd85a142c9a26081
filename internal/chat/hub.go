// internal/chat/hub.go
package chat

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/exportplatform/export-api/internal/i18n"
	"github.com/exportplatform/export-api/internal/middleware"
	"github.com/exportplatform/export-api/internal/models"
	"github.com/exportplatform/export-api/internal/services"
	"github.com/exportplatform/export-api/internal/utils"
)

// Event names on the wire.
const (
	EventJoinChat    = "join-chat"
	EventJoinedChat  = "joined-chat"
	EventSendMessage = "send-message"
	EventNewMessage  = "new-message"
	EventError       = "error"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 16 * 1024
	sendBuffer     = 32
)

// Service is the part of the chat service the relay needs.
type Service interface {
	Authorize(caller *models.User, chatID uuid.UUID) (*models.Chat, error)
	SendMessage(sender *models.User, chatID uuid.UUID, text string) (*models.Message, error)
}

type Event struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

type outgoingEvent struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

type joinPayload struct {
	ChatID uuid.UUID `json:"chat_id"`
}

type sendPayload struct {
	ChatID uuid.UUID `json:"chat_id"`
	Text   string    `json:"text"`
}

// Hub keeps the in-memory rooms, one per chat, and relays stored messages
// to every connection joined to the room.
type Hub struct {
	service  Service
	upgrader websocket.Upgrader

	mu    sync.RWMutex
	rooms map[uuid.UUID]map[*Client]struct{}
}

func NewHub(service Service, allowedOrigins []string) *Hub {
	h := &Hub{
		service: service,
		rooms:   make(map[uuid.UUID]map[*Client]struct{}),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     originChecker(allowedOrigins),
	}
	return h
}

func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, a := range allowed {
			if a == "*" || strings.EqualFold(a, origin) {
				return true
			}
		}
		return false
	}
}

// ServeWS upgrades an authenticated request and starts the connection
// pumps.
func (h *Hub) ServeWS(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		utils.UnauthorizedResponse(c, "")
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logrus.WithError(err).Debug("Websocket upgrade failed")
		return
	}

	client := &Client{
		hub:   h,
		conn:  conn,
		user:  user,
		lang:  utils.GetLangFromContext(c),
		send:  make(chan []byte, sendBuffer),
		rooms: make(map[uuid.UUID]struct{}),
	}

	go client.writePump()
	go client.readPump()
}

// BroadcastMessage sends a new-message event to the message's room.
func (h *Hub) BroadcastMessage(message *models.Message) {
	payload, err := json.Marshal(outgoingEvent{
		Type: EventNewMessage,
		Data: gin.H{"message": message},
	})
	if err != nil {
		logrus.WithError(err).Error("Failed to encode chat message")
		return
	}

	var slow []*Client
	h.mu.RLock()
	for client := range h.rooms[message.ChatID] {
		select {
		case client.send <- payload:
		default:
			slow = append(slow, client)
		}
	}
	h.mu.RUnlock()

	for _, client := range slow {
		client.close()
	}
}

// RoomSize reports how many connections joined a chat.
func (h *Hub) RoomSize(chatID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[chatID])
}

func (h *Hub) join(client *Client, chatID uuid.UUID) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if client.closed {
		return
	}
	room, ok := h.rooms[chatID]
	if !ok {
		room = make(map[*Client]struct{})
		h.rooms[chatID] = room
	}
	room[client] = struct{}{}
	client.rooms[chatID] = struct{}{}
}

// leaveAll drops the client from every room. The caller holds h.mu.
func (h *Hub) leaveAll(client *Client) {
	for chatID := range client.rooms {
		room := h.rooms[chatID]
		delete(room, client)
		if len(room) == 0 {
			delete(h.rooms, chatID)
		}
	}
	client.rooms = map[uuid.UUID]struct{}{}
}

// Client is one websocket connection of an authenticated user.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	user *models.User
	lang string
	send chan []byte

	// guarded by hub.mu
	rooms  map[uuid.UUID]struct{}
	closed bool
}

// close leaves all rooms and closes the send queue once. Sends happen
// under hub.mu as well, so none can hit the closed channel.
func (c *Client) close() {
	c.hub.mu.Lock()
	defer c.hub.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	c.hub.leaveAll(c)
	close(c.send)
}

func (c *Client) readPump() {
	defer func() {
		c.close()
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logrus.WithError(err).WithField("user_id", c.user.ID).Debug("Websocket closed unexpectedly")
			}
			return
		}

		var event Event
		if err := json.Unmarshal(data, &event); err != nil {
			c.sendError(i18n.KeyValidationInvalid)
			continue
		}
		c.handle(event)
	}
}

func (c *Client) handle(event Event) {
	switch event.Type {
	case EventJoinChat:
		var p joinPayload
		if err := json.Unmarshal(event.Data, &p); err != nil || p.ChatID == uuid.Nil {
			c.sendError(i18n.KeyValidationInvalid)
			return
		}
		if _, err := c.hub.service.Authorize(c.user, p.ChatID); err != nil {
			c.sendServiceError(err)
			return
		}
		c.hub.join(c, p.ChatID)
		c.emit(EventJoinedChat, gin.H{"chat_id": p.ChatID})

	case EventSendMessage:
		var p sendPayload
		if err := json.Unmarshal(event.Data, &p); err != nil || p.ChatID == uuid.Nil {
			c.sendError(i18n.KeyValidationInvalid)
			return
		}
		// The sender is always the authenticated user; the stored message
		// reaches the room through BroadcastMessage.
		if _, err := c.hub.service.SendMessage(c.user, p.ChatID, p.Text); err != nil {
			c.sendServiceError(err)
		}

	default:
		c.sendError(i18n.KeyValidationInvalid)
	}
}

func (c *Client) sendServiceError(err error) {
	var se *services.Error
	if errors.As(err, &se) {
		c.sendError(se.Key)
		return
	}
	logrus.WithError(err).WithField("user_id", c.user.ID).Error("Chat relay failure")
	c.sendError(i18n.KeyInternalError)
}

func (c *Client) sendError(key string) {
	c.emit(EventError, gin.H{"message": i18n.T(c.lang, key)})
}

// emit queues an event for this connection only. A full queue drops it.
func (c *Client) emit(eventType string, data interface{}) {
	payload, err := json.Marshal(outgoingEvent{Type: eventType, Data: data})
	if err != nil {
		return
	}

	c.hub.mu.RLock()
	defer c.hub.mu.RUnlock()
	if c.closed {
		return
	}
	select {
	case c.send <- payload:
	default:
	}
}

func (c *Client) writePump() {
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
