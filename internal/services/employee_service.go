// internal/services/employee_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/exportplatform/export-api/internal/database"
	"github.com/exportplatform/export-api/internal/i18n"
	"github.com/exportplatform/export-api/internal/models"
)

type EmployeeService struct {
	db            *gorm.DB
	mail          *MailService
	notifications *NotificationService
}

type AddEmployeeRequest struct {
	Email string      `json:"email" validate:"required,email"`
	Role  models.Role `json:"role" validate:"required,oneof=ADMIN COMPANY"`
}

func NewEmployeeService(db *gorm.DB, mail *MailService, notifications *NotificationService) *EmployeeService {
	return &EmployeeService{db: db, mail: mail, notifications: notifications}
}

func (s *EmployeeService) List(caller *models.User) ([]models.User, error) {
	companyID, err := companyOf(caller)
	if err != nil {
		return nil, err
	}

	var employees []models.User
	if err := s.db.
		Select("id", "name", "email", "phone", "image", "role", "status", "company_id", "created_at", "updated_at").
		Where("company_id = ?", companyID).
		Order("created_at DESC").
		Find(&employees).Error; err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	return employees, nil
}

// managedCompany loads the caller's company and checks that the caller may
// manage its staff: platform admins and the company owner only.
func (s *EmployeeService) managedCompany(caller *models.User) (*models.Company, error) {
	companyID, err := companyOf(caller)
	if err != nil {
		return nil, err
	}

	var company models.Company
	if err := s.db.First(&company, "id = ?", companyID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCompanyNotFound
		}
		return nil, err
	}

	if !caller.IsAdmin() && !company.IsOwner(caller.ID) {
		return nil, ErrEmployeeManageDenied
	}
	return &company, nil
}

// Add links an existing user to the caller's company, or invites a new
// one who sets a password through the reset flow.
func (s *EmployeeService) Add(ctx context.Context, caller *models.User, req *AddEmployeeRequest) (*models.User, error) {
	company, err := s.managedCompany(caller)
	if err != nil {
		return nil, err
	}
	if req.Role == models.RoleAdmin && !caller.IsAdmin() {
		return nil, ErrEmployeeGrantDenied
	}

	email := normalizeEmail(req.Email)

	var user models.User
	err = s.db.Where("email = ?", email).First(&user).Error
	switch {
	case err == nil:
		if user.BelongsTo(company.ID) {
			return nil, ErrEmployeeAlreadyMember
		}
		if user.CompanyID != nil {
			return nil, ErrEmployeeOtherCompany
		}

		if err := s.db.Model(&user).Updates(map[string]interface{}{
			"company_id": company.ID,
			"role":       req.Role,
		}).Error; err != nil {
			return nil, fmt.Errorf("failed to link employee: %w", err)
		}
		user.CompanyID = &company.ID
		user.Role = req.Role

		s.notifications.notifyBestEffort(s.notifications.Notify(
			[]uuid.UUID{user.ID},
			models.NotificationTypeEmployee,
			L(i18n.KeyNotifyEmployeeTitle),
			L(i18n.KeyNotifyEmployeeText, company.Name),
			map[string]interface{}{"company_id": company.ID},
		), "employee_added")
		return &user, nil

	case errors.Is(err, gorm.ErrRecordNotFound):
		user = models.User{
			Name:      strings.SplitN(email, "@", 2)[0],
			Email:     email,
			Role:      req.Role,
			Status:    models.UserStatusActive,
			CompanyID: &company.ID,
		}
		if err := s.db.Create(&user).Error; err != nil {
			if database.IsUniqueViolation(err) {
				return nil, ErrEmailTaken
			}
			return nil, fmt.Errorf("failed to create employee: %w", err)
		}

		if err := s.mail.SendInvitation(ctx, &user, company.Name); err != nil {
			logrus.WithError(err).WithField("email", email).Warn("Failed to send employee invitation")
		}
		return &user, nil

	default:
		return nil, fmt.Errorf("database error: %w", err)
	}
}

// Remove unlinks an employee, who keeps the account as a client.
func (s *EmployeeService) Remove(caller *models.User, employeeID uuid.UUID) error {
	company, err := s.managedCompany(caller)
	if err != nil {
		return err
	}
	if employeeID == caller.ID {
		return ErrEmployeeRemoveSelf
	}

	var employee models.User
	if err := s.db.First(&employee, "id = ?", employeeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrEmployeeNotFound
		}
		return err
	}

	if !employee.BelongsTo(company.ID) {
		return ErrEmployeeNotInCompany
	}
	if company.IsOwner(employee.ID) {
		return ErrEmployeeRemoveOwner
	}

	if err := s.db.Model(&employee).Updates(map[string]interface{}{
		"company_id": nil,
		"role":       models.RoleClient,
	}).Error; err != nil {
		return fmt.Errorf("failed to remove employee: %w", err)
	}
	return nil
}
