// internal/handlers/chat.go
package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/exportplatform/export-api/internal/services"
	"github.com/exportplatform/export-api/internal/utils"
)

const defaultMessageLimit = 100

type ChatHandler struct {
	chatService *services.ChatService
}

func NewChatHandler(chatService *services.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

// GET /cabinet/chats
func (h *ChatHandler) ListChats(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	chats, err := h.chatService.ListChats(user)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.NoCache(c)
	utils.SuccessResponse(c, chats)
}

// POST /exporters/:id/chat
func (h *ChatHandler) OpenChat(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	companyID, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	chat, err := h.chatService.OpenChat(user, companyID)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, chat)
}

// GET /cabinet/chats/:id/messages?limit=
func (h *ChatHandler) ListMessages(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	chatID, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultMessageLimit)))
	if err != nil || limit < 1 {
		limit = defaultMessageLimit
	}

	messages, err := h.chatService.ListMessages(user, chatID, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.NoCache(c)
	utils.SuccessResponse(c, messages)
}

// POST /cabinet/chats/:id/messages
// REST fallback for clients without a socket; delivery to the room is the
// same as for socket messages.
func (h *ChatHandler) SendMessage(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	chatID, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	var req services.SendMessageRequest
	if !bindJSON(c, &req) {
		return
	}

	message, err := h.chatService.SendMessage(user, chatID, req.Text)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.CreatedResponse(c, message)
}
