// internal/services/notification_service.go
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/exportplatform/export-api/internal/i18n"
	"github.com/exportplatform/export-api/internal/models"
)

type NotificationService struct {
	db   *gorm.DB
	mail *MailService
	now  func() time.Time
}

type CreateNotificationRequest struct {
	UserID uuid.UUID               `json:"user_id" validate:"required"`
	Type   models.NotificationType `json:"type" validate:"required"`
	Title  string                  `json:"title" validate:"required,max=255"`
	Text   string                  `json:"text" validate:"required"`
	Email  bool                    `json:"send_email,omitempty"`
}

type MarkReadRequest struct {
	NotificationID *uuid.UUID `json:"notification_id"`
}

type DeleteNotificationRequest struct {
	NotificationID *uuid.UUID `json:"notification_id"`
	DeleteAll      bool       `json:"delete_all"`
}

// Localized is a catalog key with its format arguments. Notifications
// store the key and are translated for the reader when listed.
type Localized struct {
	Key  string
	Args []interface{}
}

func L(key string, args ...interface{}) Localized {
	return Localized{Key: key, Args: args}
}

type notificationParams struct {
	Title []interface{} `json:"title,omitempty"`
	Text  []interface{} `json:"text,omitempty"`
}

func NewNotificationService(db *gorm.DB, mail *MailService) *NotificationService {
	return &NotificationService{db: db, mail: mail, now: time.Now}
}

// List returns the newest notifications translated into lang, plus the
// unread count.
func (s *NotificationService) List(userID uuid.UUID, limit int, lang string) ([]models.Notification, int64, error) {
	var notifications []models.Notification
	query := s.db.Where("user_id = ?", userID).Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&notifications).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list notifications: %w", err)
	}

	var unread int64
	if err := s.db.Model(&models.Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Count(&unread).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}

	for i := range notifications {
		localize(&notifications[i], lang)
	}
	return notifications, unread, nil
}

// localize translates catalog keys. Free text written by an admin has no
// catalog entry and comes back unchanged.
func localize(n *models.Notification, lang string) {
	var params notificationParams
	if len(n.Params) > 0 {
		if err := json.Unmarshal(n.Params, &params); err != nil {
			logrus.WithError(err).WithField("notification_id", n.ID).Warn("Bad notification params")
		}
	}
	n.Title = i18n.T(lang, n.Title, params.Title...)
	n.Text = i18n.T(lang, n.Text, params.Text...)
}

// Create is the admin broadcast of a single notification.
func (s *NotificationService) Create(ctx context.Context, caller *models.User, req *CreateNotificationRequest) (*models.Notification, error) {
	if !caller.IsAdmin() {
		return nil, ErrAccessDenied
	}

	var target models.User
	if err := s.db.First(&target, "id = ?", req.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	notification := &models.Notification{
		UserID: target.ID,
		Type:   req.Type,
		Title:  req.Title,
		Text:   req.Text,
	}
	if err := s.db.Create(notification).Error; err != nil {
		return nil, fmt.Errorf("failed to create notification: %w", err)
	}

	if req.Email && s.mail != nil {
		if err := s.mail.SendNotification(ctx, target.Email, notification); err != nil {
			logrus.WithError(err).WithField("user_id", target.ID).Warn("Failed to email notification")
		}
	}

	return notification, nil
}

// MarkRead marks one notification, or every unread one when id is nil.
func (s *NotificationService) MarkRead(userID uuid.UUID, id *uuid.UUID) (int64, error) {
	now := s.now()
	updates := map[string]interface{}{"read": true, "read_at": now}

	if id != nil {
		result := s.db.Model(&models.Notification{}).
			Where("id = ? AND user_id = ?", *id, userID).
			Updates(updates)
		if result.Error != nil {
			return 0, result.Error
		}
		if result.RowsAffected == 0 {
			return 0, ErrNotificationFound
		}
		return result.RowsAffected, nil
	}

	result := s.db.Model(&models.Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Updates(updates)
	return result.RowsAffected, result.Error
}

func (s *NotificationService) Delete(userID uuid.UUID, req *DeleteNotificationRequest) (int64, error) {
	switch {
	case req.DeleteAll:
		result := s.db.Where("user_id = ?", userID).Delete(&models.Notification{})
		return result.RowsAffected, result.Error

	case req.NotificationID != nil:
		result := s.db.Where("id = ? AND user_id = ?", *req.NotificationID, userID).Delete(&models.Notification{})
		if result.Error != nil {
			return 0, result.Error
		}
		if result.RowsAffected == 0 {
			return 0, ErrNotificationFound
		}
		return result.RowsAffected, nil

	default:
		return 0, ErrNotificationScope
	}
}

// Notify stores one in-app notification per distinct recipient.
func (s *NotificationService) Notify(userIDs []uuid.UUID, notificationType models.NotificationType, title, text Localized, data map[string]interface{}) error {
	var payload datatypes.JSON
	if data != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			return fmt.Errorf("failed to encode notification data: %w", err)
		}
		payload = datatypes.JSON(raw)
	}

	var params datatypes.JSON
	if len(title.Args) > 0 || len(text.Args) > 0 {
		raw, err := json.Marshal(notificationParams{Title: title.Args, Text: text.Args})
		if err != nil {
			return fmt.Errorf("failed to encode notification params: %w", err)
		}
		params = datatypes.JSON(raw)
	}

	seen := make(map[uuid.UUID]bool, len(userIDs))
	notifications := make([]models.Notification, 0, len(userIDs))
	for _, id := range userIDs {
		if id == uuid.Nil || seen[id] {
			continue
		}
		seen[id] = true
		notifications = append(notifications, models.Notification{
			UserID: id,
			Type:   notificationType,
			Title:  title.Key,
			Text:   text.Key,
			Data:   payload,
			Params: params,
		})
	}

	if len(notifications) == 0 {
		return nil
	}
	if err := s.db.Create(&notifications).Error; err != nil {
		return fmt.Errorf("failed to create notifications: %w", err)
	}
	return nil
}

// NotifyCompany notifies every member of a company except the excluded user.
func (s *NotificationService) NotifyCompany(companyID uuid.UUID, exclude uuid.UUID, notificationType models.NotificationType, title, text Localized, data map[string]interface{}) error {
	var memberIDs []uuid.UUID
	if err := s.db.Model(&models.User{}).
		Where("company_id = ? AND id <> ?", companyID, exclude).
		Pluck("id", &memberIDs).Error; err != nil {
		return fmt.Errorf("failed to load company members: %w", err)
	}
	return s.Notify(memberIDs, notificationType, title, text, data)
}

// notifyBestEffort logs instead of failing the caller's request.
func (s *NotificationService) notifyBestEffort(err error, event string) {
	if err != nil {
		logrus.WithError(err).WithField("event", event).Warn("Failed to create notification")
	}
}
