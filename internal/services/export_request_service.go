// internal/services/export_request_service.go
package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/exportplatform/export-api/internal/i18n"
	"github.com/exportplatform/export-api/internal/models"
	"github.com/exportplatform/export-api/internal/utils"
)

type ExportRequestService struct {
	db            *gorm.DB
	notifications *NotificationService
}

type CreateExportRequest struct {
	FirstName string     `json:"first_name" validate:"required,max=100"`
	LastName  string     `json:"last_name" validate:"required,max=100"`
	Email     string     `json:"email" validate:"required,email"`
	Phone     string     `json:"phone" validate:"max=32"`
	CarType   string     `json:"car_type" validate:"required,max=100"`
	Country   string     `json:"country" validate:"required,max=100"`
	Brands    []string   `json:"brands" validate:"max=20,dive,max=100"`
	BudgetMin int64      `json:"budget_min" validate:"min=0"`
	BudgetMax int64      `json:"budget_max" validate:"min=0"`
	Comments  string     `json:"comments" validate:"max=5000"`
	Terms     bool       `json:"terms"`
	CompanyID *uuid.UUID `json:"company_id"`
}

type UpdateExportRequestStatus struct {
	Status models.ExportRequestStatus `json:"status" validate:"required"`
}

func NewExportRequestService(db *gorm.DB, notifications *NotificationService) *ExportRequestService {
	return &ExportRequestService{db: db, notifications: notifications}
}

// Create stores a client's export request. The client may be anonymous.
func (s *ExportRequestService) Create(client *models.User, req *CreateExportRequest) (*models.ExportRequest, error) {
	if !req.Terms {
		return nil, ErrExportRequestTerms
	}
	if req.BudgetMax > 0 && req.BudgetMin > req.BudgetMax {
		return nil, ErrExportRequestBudget
	}

	if req.CompanyID != nil {
		var company models.Company
		if err := s.db.First(&company, "id = ?", *req.CompanyID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrCompanyNotFound
			}
			return nil, err
		}
		if !company.IsActive() {
			return nil, ErrCompanyNotFound
		}
	}

	brands := models.StringList{}
	for _, b := range req.Brands {
		if b = strings.TrimSpace(b); b != "" {
			brands = append(brands, b)
		}
	}

	request := &models.ExportRequest{
		CompanyID: req.CompanyID,
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Email:     normalizeEmail(req.Email),
		Phone:     strings.TrimSpace(req.Phone),
		CarType:   strings.TrimSpace(req.CarType),
		Country:   strings.TrimSpace(req.Country),
		Brands:    brands,
		BudgetMin: req.BudgetMin,
		BudgetMax: req.BudgetMax,
		Comments:  req.Comments,
		Status:    models.ExportRequestStatusNew,
	}
	if client != nil {
		request.ClientID = &client.ID
	}

	if err := s.db.Create(request).Error; err != nil {
		return nil, fmt.Errorf("failed to create export request: %w", err)
	}

	if request.CompanyID != nil {
		exclude := uuid.Nil
		if client != nil {
			exclude = client.ID
		}
		s.notifications.notifyBestEffort(s.notifications.NotifyCompany(
			*request.CompanyID, exclude,
			models.NotificationTypeExportRequest,
			L(i18n.KeyNotifyExportRequestTitle),
			L(i18n.KeyNotifyExportRequestText, request.FirstName, request.LastName, request.CarType, request.Country),
			map[string]interface{}{"export_request_id": request.ID},
		), "export_request_created")
	}

	return request, nil
}

func (s *ExportRequestService) ListForCompany(caller *models.User, status string, params utils.PaginationParams) ([]models.ExportRequest, int64, error) {
	companyID, err := companyOf(caller)
	if err != nil {
		return nil, 0, err
	}

	query := s.db.Model(&models.ExportRequest{}).Where("company_id = ?", companyID)
	if status != "" {
		if !models.ExportRequestStatus(status).Valid() {
			return nil, 0, ErrExportRequestStatus
		}
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count export requests: %w", err)
	}

	var requests []models.ExportRequest
	if err := utils.ApplyPagination(query.Order("created_at DESC"), params).Find(&requests).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list export requests: %w", err)
	}
	return requests, total, nil
}

func (s *ExportRequestService) UpdateStatus(caller *models.User, id uuid.UUID, status models.ExportRequestStatus) (*models.ExportRequest, error) {
	if !status.Valid() {
		return nil, ErrExportRequestStatus
	}

	var request models.ExportRequest
	if err := s.db.First(&request, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrExportRequestNotFound
		}
		return nil, err
	}

	if request.CompanyID == nil {
		if !caller.IsAdmin() {
			return nil, ErrAccessDenied
		}
	} else if err := checkOwnership(caller, *request.CompanyID); err != nil {
		return nil, err
	}

	request.Status = status
	if err := s.db.Model(&request).Update("status", status).Error; err != nil {
		return nil, fmt.Errorf("failed to update export request: %w", err)
	}
	return &request, nil
}
