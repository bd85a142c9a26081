// internal/handlers/common.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/exportplatform/export-api/internal/database"
	"github.com/exportplatform/export-api/internal/i18n"
	"github.com/exportplatform/export-api/internal/middleware"
	"github.com/exportplatform/export-api/internal/models"
	"github.com/exportplatform/export-api/internal/services"
	"github.com/exportplatform/export-api/internal/utils"
)

// respondError maps a service error onto the response envelope.
func respondError(c *gin.Context, err error) {
	lang := utils.GetLangFromContext(c)

	message := ""
	var se *services.Error
	if errors.As(err, &se) {
		message = i18n.T(lang, se.Key)
	}

	switch {
	case errors.Is(err, services.ErrInvalidInput):
		utils.BadRequestResponse(c, message, nil)
	case errors.Is(err, services.ErrUnauthorized):
		utils.UnauthorizedResponse(c, message)
	case errors.Is(err, services.ErrForbidden):
		utils.ForbiddenResponse(c, message)
	case errors.Is(err, services.ErrNotFound):
		utils.ErrorResponse(c, http.StatusNotFound, "NOT_FOUND", message, nil)
	case errors.Is(err, services.ErrConflict), database.IsUniqueViolation(err):
		utils.ConflictResponse(c, message)
	default:
		logrus.WithError(err).WithFields(logrus.Fields{
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
		}).Error("Request failed")
		utils.InternalErrorResponse(c, "")
	}
}

// bindJSON decodes and validates a JSON body, answering 400 on failure.
func bindJSON(c *gin.Context, req interface{}) bool {
	lang := utils.GetLangFromContext(c)

	if err := c.ShouldBindJSON(req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return false
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return false
	}
	return true
}

func paramUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		lang := utils.GetLangFromContext(c)
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, name), nil)
		return uuid.Nil, false
	}
	return id, true
}

// currentUser returns the loaded caller or answers 401.
func currentUser(c *gin.Context) (*models.User, bool) {
	user := middleware.CurrentUser(c)
	if user == nil {
		utils.UnauthorizedResponse(c, "")
		return nil, false
	}
	return user, true
}
