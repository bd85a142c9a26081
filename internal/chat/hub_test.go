package chat

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/exportplatform/export-api/internal/middleware"
	"github.com/exportplatform/export-api/internal/models"
	"github.com/exportplatform/export-api/internal/services"
	"github.com/exportplatform/export-api/internal/testutil"
)

type relayFixture struct {
	db     *gorm.DB
	hub    *Hub
	server *httptest.Server
	chat   *models.Chat
	client *models.User
	owner  *models.User
}

func newRelayFixture(t *testing.T) *relayFixture {
	gin.SetMode(gin.TestMode)
	db := testutil.NewDB(t)

	owner := testutil.CreateUser(t, db, models.RoleClient, "owner@example.com")
	company := testutil.CreateCompany(t, db, owner, "Neva Motors")
	client := testutil.CreateUser(t, db, models.RoleClient, "buyer@example.com")

	chatService := services.NewChatService(db, services.NewNotificationService(db, nil))
	hub := NewHub(chatService, []string{"*"})
	chatService.SetBroadcaster(hub)

	chat, err := chatService.OpenChat(client, company.ID)
	require.NoError(t, err)

	r := gin.New()
	r.GET("/socket", middleware.SocketToken(), middleware.AuthRequired(), middleware.LoadUser(db), hub.ServeWS)
	server := httptest.NewServer(r)
	t.Cleanup(server.Close)

	return &relayFixture{db: db, hub: hub, server: server, chat: chat, client: client, owner: owner}
}

func (f *relayFixture) dial(t *testing.T, user *models.User) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(f.server.URL, "http") + "/socket?token=" + testutil.Token(t, user)
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusSwitchingProtocols, resp.StatusCode)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, eventType string, data interface{}) {
	t.Helper()
	require.NoError(t, conn.WriteJSON(outgoingEvent{Type: eventType, Data: data}))
}

func receive(t *testing.T, conn *websocket.Conn) Event {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var event Event
	require.NoError(t, conn.ReadJSON(&event))
	return event
}

func TestRelayBroadcastsToRoom(t *testing.T) {
	f := newRelayFixture(t)

	buyer := f.dial(t, f.client)
	seller := f.dial(t, f.owner)

	for _, conn := range []*websocket.Conn{buyer, seller} {
		send(t, conn, EventJoinChat, gin.H{"chat_id": f.chat.ID})
		assert.Equal(t, EventJoinedChat, receive(t, conn).Type)
	}
	assert.Equal(t, 2, f.hub.RoomSize(f.chat.ID))

	send(t, buyer, EventSendMessage, gin.H{"chat_id": f.chat.ID, "text": "  Is the sedan still available?  "})

	for _, conn := range []*websocket.Conn{buyer, seller} {
		event := receive(t, conn)
		require.Equal(t, EventNewMessage, event.Type)

		var payload struct {
			Message models.Message `json:"message"`
		}
		require.NoError(t, json.Unmarshal(event.Data, &payload))
		assert.Equal(t, "Is the sedan still available?", payload.Message.Text)
		assert.Equal(t, f.client.ID, payload.Message.SenderID)
	}

	var stored int64
	f.db.Model(&models.Message{}).Where("chat_id = ?", f.chat.ID).Count(&stored)
	assert.Equal(t, int64(1), stored)
}

func TestRelayRejectsOutsiders(t *testing.T) {
	f := newRelayFixture(t)
	stranger := testutil.CreateUser(t, f.db, models.RoleClient, "stranger@example.com")
	conn := f.dial(t, stranger)

	send(t, conn, EventJoinChat, gin.H{"chat_id": f.chat.ID})
	assert.Equal(t, EventError, receive(t, conn).Type)

	send(t, conn, EventSendMessage, gin.H{"chat_id": f.chat.ID, "text": "hello"})
	assert.Equal(t, EventError, receive(t, conn).Type)

	send(t, conn, "unknown", nil)
	assert.Equal(t, EventError, receive(t, conn).Type)

	assert.Zero(t, f.hub.RoomSize(f.chat.ID))
}

func TestRelayRequiresToken(t *testing.T) {
	f := newRelayFixture(t)
	url := "ws" + strings.TrimPrefix(f.server.URL, "http") + "/socket"

	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestOriginChecker(t *testing.T) {
	check := originChecker([]string{"https://export.example.com"})

	req := httptest.NewRequest(http.MethodGet, "/socket", nil)
	assert.True(t, check(req))

	req.Header.Set("Origin", "https://EXPORT.example.com")
	assert.True(t, check(req))

	req.Header.Set("Origin", "https://evil.example.com")
	assert.False(t, check(req))
}

func TestSlowClientIsDroppedSafely(t *testing.T) {
	hub := NewHub(nil, nil)
	client := &Client{hub: hub, user: &models.User{}, send: make(chan []byte, 1), rooms: make(map[uuid.UUID]struct{})}
	chatID := uuid.New()
	hub.join(client, chatID)

	// the first broadcast fills the queue, the second drops the client
	hub.BroadcastMessage(&models.Message{ChatID: chatID, Text: "one"})
	hub.BroadcastMessage(&models.Message{ChatID: chatID, Text: "two"})
	assert.Zero(t, hub.RoomSize(chatID))

	assert.NotPanics(t, func() {
		client.emit(EventError, gin.H{"message": "late"})
		client.close()
	})

	hub.join(client, chatID)
	assert.Zero(t, hub.RoomSize(chatID))

	queued := 0
	for range client.send {
		queued++
	}
	assert.Equal(t, 1, queued)
}
