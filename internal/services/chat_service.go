// internal/services/chat_service.go
package services

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/exportplatform/export-api/internal/database"
	"github.com/exportplatform/export-api/internal/i18n"
	"github.com/exportplatform/export-api/internal/models"
)

const MaxMessageLength = 4000

// MessageBroadcaster relays a stored message to the chat's live room.
type MessageBroadcaster interface {
	BroadcastMessage(message *models.Message)
}

type ChatService struct {
	db            *gorm.DB
	notifications *NotificationService
	broadcaster   MessageBroadcaster
}

type SendMessageRequest struct {
	Text string `json:"text" validate:"required,max=4000"`
}

func NewChatService(db *gorm.DB, notifications *NotificationService) *ChatService {
	return &ChatService{db: db, notifications: notifications}
}

func (s *ChatService) SetBroadcaster(b MessageBroadcaster) {
	s.broadcaster = b
}

func chatParties(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Company", func(db *gorm.DB) *gorm.DB { return db.Select("id", "name") }).
		Preload("Client", func(db *gorm.DB) *gorm.DB { return db.Select("id", "name", "image") })
}

// ListChats returns the caller's own chats as a client together with the
// chats of the caller's company.
func (s *ChatService) ListChats(caller *models.User) ([]models.Chat, error) {
	query := chatParties(s.db).Order("updated_at DESC")
	if caller.CompanyID != nil {
		query = query.Where("client_id = ? OR company_id = ?", caller.ID, *caller.CompanyID)
	} else {
		query = query.Where("client_id = ?", caller.ID)
	}

	var chats []models.Chat
	if err := query.Find(&chats).Error; err != nil {
		return nil, fmt.Errorf("failed to list chats: %w", err)
	}
	return chats, nil
}

// OpenChat returns the caller's chat with an active company, creating it
// on first contact.
func (s *ChatService) OpenChat(caller *models.User, companyID uuid.UUID) (*models.Chat, error) {
	var company models.Company
	if err := s.db.First(&company, "id = ?", companyID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCompanyNotFound
		}
		return nil, err
	}
	if !company.IsActive() {
		return nil, ErrCompanyNotFound
	}
	if caller.BelongsTo(company.ID) {
		return nil, ErrChatOwnCompany
	}

	chat := models.Chat{CompanyID: company.ID, ClientID: caller.ID}
	err := s.db.Where("company_id = ? AND client_id = ?", company.ID, caller.ID).FirstOrCreate(&chat).Error
	if err != nil && database.IsUniqueViolation(err) {
		err = s.db.Where("company_id = ? AND client_id = ?", company.ID, caller.ID).First(&chat).Error
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open chat: %w", err)
	}

	chat.Company = &company
	return &chat, nil
}

// Authorize loads a chat the caller takes part in.
func (s *ChatService) Authorize(caller *models.User, chatID uuid.UUID) (*models.Chat, error) {
	var chat models.Chat
	if err := s.db.First(&chat, "id = ?", chatID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrChatNotFound
		}
		return nil, err
	}

	if chat.ClientID != caller.ID && !caller.BelongsTo(chat.CompanyID) {
		return nil, ErrChatDenied
	}
	return &chat, nil
}

func (s *ChatService) ListMessages(caller *models.User, chatID uuid.UUID, limit int) ([]models.Message, error) {
	if _, err := s.Authorize(caller, chatID); err != nil {
		return nil, err
	}

	query := s.db.
		Preload("Sender", withAuthorName).
		Where("chat_id = ?", chatID).
		Order("created_at ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var messages []models.Message
	if err := query.Find(&messages).Error; err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	return messages, nil
}

// SendMessage stores a message from the caller, relays it to the room and
// notifies the other side of the chat.
func (s *ChatService) SendMessage(sender *models.User, chatID uuid.UUID, text string) (*models.Message, error) {
	text = strings.TrimSpace(text)
	if text == "" || utf8.RuneCountInString(text) > MaxMessageLength {
		return nil, ErrMessageInvalid
	}

	chat, err := s.Authorize(sender, chatID)
	if err != nil {
		return nil, err
	}

	message := &models.Message{
		ChatID:    chat.ID,
		CompanyID: chat.CompanyID,
		SenderID:  sender.ID,
		Text:      text,
	}
	err = database.WithTransaction(s.db, func(tx *gorm.DB) error {
		if err := tx.Create(message).Error; err != nil {
			return err
		}
		return tx.Model(&models.Chat{}).Where("id = ?", chat.ID).
			UpdateColumn("updated_at", message.CreatedAt).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save message: %w", err)
	}

	message.Sender = &models.User{Name: sender.Name, Image: sender.Image}
	message.Sender.ID = sender.ID

	if s.broadcaster != nil {
		s.broadcaster.BroadcastMessage(message)
	}

	data := map[string]interface{}{"chat_id": chat.ID, "message_id": message.ID}
	title := L(i18n.KeyNotifyMessageTitle, sender.Name)
	body := L(i18n.KeyNotifyMessageText, preview(text))
	if sender.ID == chat.ClientID {
		s.notifications.notifyBestEffort(s.notifications.NotifyCompany(
			chat.CompanyID, sender.ID, models.NotificationTypeMessage, title, body, data,
		), "chat_message")
	} else {
		s.notifications.notifyBestEffort(s.notifications.Notify(
			[]uuid.UUID{chat.ClientID}, models.NotificationTypeMessage, title, body, data,
		), "chat_message")
	}

	return message, nil
}

func preview(text string) string {
	const limit = 140
	if utf8.RuneCountInString(text) <= limit {
		return text
	}
	return string([]rune(text)[:limit]) + "…"
}
