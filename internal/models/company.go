// internal/models/company.go
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const DefaultDeliveryTime = "By arrangement"

type Company struct {
	BaseModel
	Name         string        `json:"name" gorm:"size:255;not null;index"`
	Description  string        `json:"description" gorm:"type:text"`
	Email        string        `json:"email" gorm:"size:255"`
	Phone        string        `json:"phone" gorm:"size:32"`
	Website      string        `json:"website" gorm:"size:255"`
	Address      string        `json:"address" gorm:"type:text"`
	Country      string        `json:"country" gorm:"size:100;index"`
	Languages    StringList    `json:"languages"`
	DeliveryTime string        `json:"delivery_time" gorm:"size:255"`
	Status       CompanyStatus `json:"status" gorm:"type:varchar(20);not null;default:'pending';index"`
	OwnerID      *uuid.UUID    `json:"owner_id" gorm:"type:uuid;index"`
	ViewCount    int64         `json:"view_count" gorm:"not null;default:0"`

	// Legal details
	INN          string `json:"inn" gorm:"size:12"`
	KPP          string `json:"kpp" gorm:"size:9"`
	OGRN         string `json:"ogrn" gorm:"size:15"`
	LegalAddress string `json:"legal_address" gorm:"type:text"`

	// Banking details
	BankName    string `json:"bank_name" gorm:"size:255"`
	BankAccount string `json:"bank_account" gorm:"size:20"`
	BankBIK     string `json:"bank_bik" gorm:"size:9"`
	CorrAccount string `json:"corr_account" gorm:"size:20"`

	// Relationships
	Employees  []User     `json:"employees,omitempty" gorm:"foreignKey:CompanyID"`
	Images     []Image    `json:"images,omitempty" gorm:"foreignKey:CompanyID"`
	Documents  []Document `json:"documents,omitempty" gorm:"foreignKey:CompanyID"`
	Categories []Category `json:"categories,omitempty" gorm:"foreignKey:CompanyID"`
	Reviews    []Review   `json:"reviews,omitempty" gorm:"foreignKey:CompanyID"`
}

func (c *Company) IsActive() bool {
	return c.Status == CompanyStatusActive
}

func (c *Company) IsOwner(userID uuid.UUID) bool {
	return c.OwnerID != nil && *c.OwnerID == userID
}

// CompanyView is one visit of the public exporter page.
type CompanyView struct {
	ID        uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	CompanyID uuid.UUID  `json:"company_id" gorm:"type:uuid;not null;index"`
	ViewerID  *uuid.UUID `json:"viewer_id" gorm:"type:uuid"`
	IPAddress string     `json:"ip_address" gorm:"size:45"`
	CreatedAt time.Time  `json:"created_at" gorm:"index"`
}

func (v *CompanyView) BeforeCreate(tx *gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}
