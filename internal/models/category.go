// internal/models/category.go
package models

import "github.com/google/uuid"

// Category groups companies in the catalog. A nil CompanyID marks a
// platform-wide category.
type Category struct {
	BaseModel
	Name        string     `json:"name" gorm:"size:255;not null"`
	Slug        string     `json:"slug" gorm:"size:255;not null;uniqueIndex"`
	Description string     `json:"description" gorm:"type:text"`
	CompanyID   *uuid.UUID `json:"company_id" gorm:"type:uuid;index"`
}
