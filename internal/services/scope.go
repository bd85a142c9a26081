// internal/services/scope.go
package services

import (
	"github.com/google/uuid"

	"github.com/exportplatform/export-api/internal/models"
)

// companyOf resolves the company a cabinet caller acts for.
func companyOf(user *models.User) (uuid.UUID, error) {
	if user == nil || user.CompanyID == nil {
		return uuid.Nil, ErrCompanyNotFound
	}
	return *user.CompanyID, nil
}

// checkOwnership rejects a resource that belongs to another company.
func checkOwnership(user *models.User, resourceCompanyID uuid.UUID) error {
	if user.IsAdmin() {
		return nil
	}
	if !user.BelongsTo(resourceCompanyID) {
		return ErrAccessDenied
	}
	return nil
}
