// internal/handlers/export_request.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/exportplatform/export-api/internal/i18n"
	"github.com/exportplatform/export-api/internal/middleware"
	"github.com/exportplatform/export-api/internal/services"
	"github.com/exportplatform/export-api/internal/utils"
)

type ExportRequestHandler struct {
	exportRequestService *services.ExportRequestService
}

func NewExportRequestHandler(exportRequestService *services.ExportRequestService) *ExportRequestHandler {
	return &ExportRequestHandler{exportRequestService: exportRequestService}
}

// POST /export-requests
// Anonymous visitors may submit; a session links the request to its client.
func (h *ExportRequestHandler) Create(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	var req services.CreateExportRequest
	if !bindJSON(c, &req) {
		return
	}

	request, err := h.exportRequestService.Create(middleware.CurrentUser(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyExportRequestCreated),
		"request": request,
	})
}

// GET /cabinet/export-requests?status=&page=&limit=
func (h *ExportRequestHandler) ListForCompany(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	params := utils.GetPaginationParams(c)
	requests, total, err := h.exportRequestService.ListForCompany(user, c.Query("status"), params)
	if err != nil {
		respondError(c, err)
		return
	}

	result := utils.CreatePaginationResult(requests, total, params)
	utils.SetPaginationHeaders(c, result)
	utils.PaginatedResponse(c, result)
}

// PUT /cabinet/export-requests/:id/status
func (h *ExportRequestHandler) UpdateStatus(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	user, ok := currentUser(c)
	if !ok {
		return
	}

	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	var req services.UpdateExportRequestStatus
	if !bindJSON(c, &req) {
		return
	}

	request, err := h.exportRequestService.UpdateStatus(user, id, req.Status)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyExportRequestUpdated),
		"request": request,
	})
}
