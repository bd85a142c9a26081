// internal/handlers/notification.go
package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/exportplatform/export-api/internal/i18n"
	"github.com/exportplatform/export-api/internal/services"
	"github.com/exportplatform/export-api/internal/utils"
)

const defaultNotificationLimit = 50

type NotificationHandler struct {
	notificationService *services.NotificationService
}

func NewNotificationHandler(notificationService *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

// GET /cabinet/notifications?limit=
func (h *NotificationHandler) ListNotifications(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	user, ok := currentUser(c)
	if !ok {
		return
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultNotificationLimit)))
	if err != nil || limit < 1 {
		limit = defaultNotificationLimit
	}

	notifications, unread, err := h.notificationService.List(user.ID, limit, lang)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.NoCache(c)
	utils.SuccessResponse(c, gin.H{
		"notifications": notifications,
		"unread":        unread,
	})
}

// POST /admin/notifications
func (h *NotificationHandler) CreateNotification(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req services.CreateNotificationRequest
	if !bindJSON(c, &req) {
		return
	}

	notification, err := h.notificationService.Create(c.Request.Context(), user, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message":      i18n.T(lang, i18n.KeyNotificationCreated),
		"notification": notification,
	})
}

// PUT /cabinet/notifications/read
// An empty body marks every unread notification.
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req services.MarkReadRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
			return
		}
	}

	updated, err := h.notificationService.MarkRead(user.ID, req.NotificationID)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyNotificationMarkedRead),
		"updated": updated,
	})
}

// DELETE /cabinet/notifications
func (h *NotificationHandler) DeleteNotifications(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req services.DeleteNotificationRequest
	if !bindJSON(c, &req) {
		return
	}

	deleted, err := h.notificationService.Delete(user.ID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyNotificationDeleted),
		"deleted": deleted,
	})
}
