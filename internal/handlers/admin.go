// internal/handlers/admin.go
package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/exportplatform/export-api/internal/i18n"
	"github.com/exportplatform/export-api/internal/services"
	"github.com/exportplatform/export-api/internal/utils"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var userActionMessages = map[string]string{
	"block":   i18n.KeyUserBlocked,
	"unblock": i18n.KeyUserUnblocked,
}

var companyActionMessages = map[string]string{
	"approve": i18n.KeyCompanyApproved,
	"block":   i18n.KeyCompanyBlocked,
	"unblock": i18n.KeyCompanyUnblocked,
}

type AdminHandler struct {
	adminService *services.AdminService
}

func NewAdminHandler(adminService *services.AdminService) *AdminHandler {
	return &AdminHandler{
		adminService: adminService,
	}
}

func auditMeta(c *gin.Context) services.AuditMeta {
	return services.AuditMeta{
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	}
}

// GET /admin/dashboard/stats
func (h *AdminHandler) GetDashboardStats(c *gin.Context) {
	stats, err := h.adminService.GetDashboardStats()
	if err != nil {
		respondError(c, err)
		return
	}

	utils.NoCache(c)
	utils.SuccessResponse(c, gin.H{
		"stats": stats,
	})
}

// GET /admin/users?role=&status=&search=
func (h *AdminHandler) GetUsers(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	filter := services.AdminUserFilter{
		PaginationParams: params,
		Role:             c.Query("role"),
		Status:           c.Query("status"),
	}

	users, total, err := h.adminService.GetUsers(filter)
	if err != nil {
		respondError(c, err)
		return
	}

	result := utils.CreatePaginationResult(users, total, params)
	utils.SetPaginationHeaders(c, result)
	utils.PaginatedResponse(c, result)
}

// PUT /admin/users/:id/status
func (h *AdminHandler) UpdateUserStatus(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	admin, ok := currentUser(c)
	if !ok {
		return
	}

	userID, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	var req services.AdminActionRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.adminService.UpdateUserStatus(admin, userID, req.Action, auditMeta(c))
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, userActionMessages[req.Action]),
		"user":    user,
	})
}

// GET /admin/companies?status=&search=
func (h *AdminHandler) GetCompanies(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	filter := services.AdminCompanyFilter{
		PaginationParams: params,
		Status:           c.Query("status"),
	}

	companies, total, err := h.adminService.GetCompanies(filter)
	if err != nil {
		respondError(c, err)
		return
	}

	result := utils.CreatePaginationResult(companies, total, params)
	utils.SetPaginationHeaders(c, result)
	utils.PaginatedResponse(c, result)
}

// PUT /admin/companies/:id/status
func (h *AdminHandler) UpdateCompanyStatus(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	admin, ok := currentUser(c)
	if !ok {
		return
	}

	companyID, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	var req services.AdminActionRequest
	if !bindJSON(c, &req) {
		return
	}

	company, err := h.adminService.UpdateCompanyStatus(c.Request.Context(), admin, companyID, req.Action, auditMeta(c))
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, companyActionMessages[req.Action]),
		"company": company,
	})
}

// GET /admin/audit-logs
func (h *AdminHandler) GetAuditLogs(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	logs, total, err := h.adminService.GetAuditLogs(params)
	if err != nil {
		respondError(c, err)
		return
	}

	result := utils.CreatePaginationResult(logs, total, params)
	utils.SetPaginationHeaders(c, result)
	utils.PaginatedResponse(c, result)
}

// GET /admin/export/companies
func (h *AdminHandler) ExportCompanies(c *gin.Context) {
	var buf bytes.Buffer
	if err := h.adminService.ExportCompanies(&buf); err != nil {
		respondError(c, err)
		return
	}
	sendWorkbook(c, "companies", &buf)
}

// GET /admin/export/users
func (h *AdminHandler) ExportUsers(c *gin.Context) {
	var buf bytes.Buffer
	if err := h.adminService.ExportUsers(&buf); err != nil {
		respondError(c, err)
		return
	}
	sendWorkbook(c, "users", &buf)
}

func sendWorkbook(c *gin.Context, name string, buf *bytes.Buffer) {
	filename := fmt.Sprintf("%s-%s.xlsx", name, time.Now().UTC().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	utils.NoCache(c)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
