// internal/services/admin_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"github.com/exportplatform/export-api/internal/i18n"
	"github.com/exportplatform/export-api/internal/models"
	"github.com/exportplatform/export-api/internal/utils"
)

type AdminService struct {
	db            *gorm.DB
	notifications *NotificationService
	companies     *CompanyService
	now           func() time.Time
}

type AdminDashboardStats struct {
	TotalUsers          int64            `json:"total_users"`
	NewUsersThisMonth   int64            `json:"new_users_this_month"`
	UsersByRole         map[string]int64 `json:"users_by_role"`
	UsersByStatus       map[string]int64 `json:"users_by_status"`
	TotalCompanies      int64            `json:"total_companies"`
	CompaniesByStatus   map[string]int64 `json:"companies_by_status"`
	TotalReviews        int64            `json:"total_reviews"`
	TotalMessages       int64            `json:"total_messages"`
	TotalExportRequests int64            `json:"total_export_requests"`
}

type AdminUserFilter struct {
	utils.PaginationParams
	Role   string
	Status string
}

type AdminCompanyFilter struct {
	utils.PaginationParams
	Status string
}

type AdminActionRequest struct {
	Action string `json:"action" validate:"required"`
}

// AuditMeta identifies the request behind an admin action.
type AuditMeta struct {
	IPAddress string
	UserAgent string
}

func NewAdminService(db *gorm.DB, notifications *NotificationService, companies *CompanyService) *AdminService {
	return &AdminService{
		db:            db,
		notifications: notifications,
		companies:     companies,
		now:           time.Now,
	}
}

// Dashboard Statistics
func (s *AdminService) GetDashboardStats() (*AdminDashboardStats, error) {
	stats := &AdminDashboardStats{}
	now := s.now().UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	var err error
	if stats.UsersByRole, err = s.groupCount(&models.User{}, "role"); err != nil {
		return nil, err
	}
	if stats.UsersByStatus, err = s.groupCount(&models.User{}, "status"); err != nil {
		return nil, err
	}
	if stats.CompaniesByStatus, err = s.groupCount(&models.Company{}, "status"); err != nil {
		return nil, err
	}
	for _, n := range stats.UsersByRole {
		stats.TotalUsers += n
	}
	for _, n := range stats.CompaniesByStatus {
		stats.TotalCompanies += n
	}

	counts := []struct {
		query *gorm.DB
		dest  *int64
	}{
		{s.db.Model(&models.User{}).Where("created_at >= ?", monthStart), &stats.NewUsersThisMonth},
		{s.db.Model(&models.Review{}), &stats.TotalReviews},
		{s.db.Model(&models.Message{}), &stats.TotalMessages},
		{s.db.Model(&models.ExportRequest{}), &stats.TotalExportRequests},
	}
	for _, c := range counts {
		if err := c.query.Count(c.dest).Error; err != nil {
			return nil, fmt.Errorf("failed to compute stats: %w", err)
		}
	}

	return stats, nil
}

func (s *AdminService) groupCount(model interface{}, column string) (map[string]int64, error) {
	var rows []struct {
		Bucket string
		Count  int64
	}
	if err := s.db.Model(model).
		Select(column + " AS bucket, COUNT(*) AS count").
		Group(column).
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to group %s: %w", column, err)
	}

	out := make(map[string]int64, len(rows))
	for _, r := range rows {
		out[r.Bucket] = r.Count
	}
	return out, nil
}

// User Management
func (s *AdminService) GetUsers(filter AdminUserFilter) ([]models.User, int64, error) {
	query := s.db.Model(&models.User{})

	if filter.Role != "" {
		query = query.Where("role = ?", filter.Role)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Search != "" {
		searchTerm := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ?", searchTerm, searchTerm)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	allowedSortFields := []string{"created_at", "updated_at", "name", "email", "role", "status"}
	query = utils.ApplySort(query, filter.PaginationParams, allowedSortFields)
	query = utils.ApplyPagination(query, filter.PaginationParams)

	var users []models.User
	if err := query.Find(&users).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch users: %w", err)
	}

	return users, total, nil
}

func (s *AdminService) UpdateUserStatus(admin *models.User, userID uuid.UUID, action string, meta AuditMeta) (*models.User, error) {
	var status models.UserStatus
	switch action {
	case "block":
		status = models.UserStatusBlocked
	case "unblock":
		status = models.UserStatusActive
	default:
		return nil, ErrInvalidAction
	}

	if status == models.UserStatusBlocked && userID == admin.ID {
		return nil, ErrCannotBlockSelf
	}

	var user models.User
	if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	oldStatus := user.Status
	user.Status = status
	if err := s.db.Model(&user).Update("status", status).Error; err != nil {
		return nil, fmt.Errorf("failed to update user status: %w", err)
	}

	s.createAuditLog(admin.ID, "UPDATE_USER_STATUS", "user", &userID,
		map[string]interface{}{"status": oldStatus},
		map[string]interface{}{"status": status}, meta)

	return &user, nil
}

// Company Management
func (s *AdminService) GetCompanies(filter AdminCompanyFilter) ([]models.Company, int64, error) {
	query := s.db.Model(&models.Company{})

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Search != "" {
		searchTerm := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ? OR inn LIKE ?", searchTerm, searchTerm, searchTerm)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count companies: %w", err)
	}

	allowedSortFields := []string{"created_at", "updated_at", "name", "status", "view_count"}
	query = utils.ApplySort(query, filter.PaginationParams, allowedSortFields)
	query = utils.ApplyPagination(query, filter.PaginationParams)

	var companies []models.Company
	if err := query.Find(&companies).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch companies: %w", err)
	}

	return companies, total, nil
}

// UpdateCompanyStatus approves, blocks or unblocks a company and tells its
// owner.
func (s *AdminService) UpdateCompanyStatus(ctx context.Context, admin *models.User, companyID uuid.UUID, action string, meta AuditMeta) (*models.Company, error) {
	var status models.CompanyStatus
	switch action {
	case "approve", "unblock":
		status = models.CompanyStatusActive
	case "block":
		status = models.CompanyStatusBlocked
	default:
		return nil, ErrInvalidAction
	}

	var company models.Company
	if err := s.db.First(&company, "id = ?", companyID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCompanyNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	oldStatus := company.Status
	company.Status = status
	if err := s.db.Model(&company).Update("status", status).Error; err != nil {
		return nil, fmt.Errorf("failed to update company status: %w", err)
	}

	s.createAuditLog(admin.ID, "UPDATE_COMPANY_STATUS", "company", &companyID,
		map[string]interface{}{"status": oldStatus},
		map[string]interface{}{"status": status, "action": action}, meta)

	if company.OwnerID != nil {
		s.notifications.notifyBestEffort(s.notifications.Notify(
			[]uuid.UUID{*company.OwnerID},
			models.NotificationTypeCompanyStatus,
			L(i18n.KeyNotifyCompanyStatusTitle),
			L(i18n.KeyNotifyCompanyStatusText, company.Name, string(status)),
			map[string]interface{}{"company_id": company.ID, "status": status},
		), "company_status")
	}

	if s.companies != nil {
		s.companies.Reindex(ctx, company.ID)
	}
	return &company, nil
}

func (s *AdminService) GetAuditLogs(params utils.PaginationParams) ([]models.AuditLog, int64, error) {
	query := s.db.Model(&models.AuditLog{})
	if params.Search != "" {
		query = query.Where("action = ? OR resource_type = ?", params.Search, params.Search)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count audit logs: %w", err)
	}

	var logs []models.AuditLog
	if err := utils.ApplyPagination(query.Order("created_at DESC"), params).
		Preload("User", func(db *gorm.DB) *gorm.DB { return db.Select("id", "name", "email") }).
		Find(&logs).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch audit logs: %w", err)
	}
	return logs, total, nil
}

// Spreadsheet exports
func (s *AdminService) ExportCompanies(w io.Writer) error {
	var companies []models.Company
	if err := s.db.Order("created_at DESC").Find(&companies).Error; err != nil {
		return fmt.Errorf("failed to load companies: %w", err)
	}

	header := []string{"ID", "Name", "Status", "Country", "Email", "Phone", "INN", "OGRN", "Views", "Created"}
	rows := make([][]interface{}, 0, len(companies))
	for _, c := range companies {
		rows = append(rows, []interface{}{
			c.ID.String(), c.Name, string(c.Status), c.Country, c.Email, c.Phone,
			c.INN, c.OGRN, c.ViewCount, c.CreatedAt.Format(time.RFC3339),
		})
	}
	return writeSheet(w, "Companies", header, rows)
}

func (s *AdminService) ExportUsers(w io.Writer) error {
	var users []models.User
	if err := s.db.Order("created_at DESC").Find(&users).Error; err != nil {
		return fmt.Errorf("failed to load users: %w", err)
	}

	header := []string{"ID", "Name", "Email", "Phone", "Role", "Status", "Company", "Created"}
	rows := make([][]interface{}, 0, len(users))
	for _, u := range users {
		company := ""
		if u.CompanyID != nil {
			company = u.CompanyID.String()
		}
		rows = append(rows, []interface{}{
			u.ID.String(), u.Name, u.Email, u.PhoneNumber(), string(u.Role), string(u.Status),
			company, u.CreatedAt.Format(time.RFC3339),
		})
	}
	return writeSheet(w, "Users", header, rows)
}

func writeSheet(w io.Writer, sheet string, header []string, rows [][]interface{}) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return err
	}

	for col, title := range header {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, title); err != nil {
			return err
		}
	}

	for r, row := range rows {
		for col, value := range row {
			cell, err := excelize.CoordinatesToCellName(col+1, r+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return err
			}
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write spreadsheet: %w", err)
	}
	return nil
}

// Helper methods
func (s *AdminService) createAuditLog(userID uuid.UUID, action, resourceType string, resourceID *uuid.UUID, oldValues, newValues map[string]interface{}, meta AuditMeta) {
	auditLog := &models.AuditLog{
		UserID:       &userID,
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		OldValues:    oldValues,
		NewValues:    newValues,
		IPAddress:    meta.IPAddress,
		UserAgent:    meta.UserAgent,
	}

	if err := s.db.Create(auditLog).Error; err != nil {
		logrus.WithError(err).WithField("action", action).Warn("Failed to write audit log")
	}
}
