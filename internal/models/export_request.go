// internal/models/export_request.go
package models

import "github.com/google/uuid"

// ExportRequest is a client's request for a vehicle export, optionally
// addressed to one company.
type ExportRequest struct {
	BaseModel
	CompanyID *uuid.UUID          `json:"company_id" gorm:"type:uuid;index"`
	ClientID  *uuid.UUID          `json:"client_id" gorm:"type:uuid;index"`
	FirstName string              `json:"first_name" gorm:"size:100;not null"`
	LastName  string              `json:"last_name" gorm:"size:100;not null"`
	Email     string              `json:"email" gorm:"size:255;not null"`
	Phone     string              `json:"phone" gorm:"size:32"`
	CarType   string              `json:"car_type" gorm:"size:100;not null"`
	Country   string              `json:"country" gorm:"size:100;not null"`
	Brands    StringList          `json:"brands"`
	BudgetMin int64               `json:"budget_min"`
	BudgetMax int64               `json:"budget_max"`
	Comments  string              `json:"comments" gorm:"type:text"`
	Status    ExportRequestStatus `json:"status" gorm:"type:varchar(20);not null;default:'new';index"`
}
