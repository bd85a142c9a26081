// internal/models/media.go
package models

import "github.com/google/uuid"

type Image struct {
	BaseModel
	CompanyID  uuid.UUID `json:"company_id" gorm:"type:uuid;not null;index"`
	URL        string    `json:"url" gorm:"size:1024;not null"`
	StorageKey string    `json:"-" gorm:"size:512"`
	IsLogo     bool      `json:"is_logo" gorm:"not null;default:false;index"`
	MimeType   string    `json:"mime_type" gorm:"size:100"`
	Size       int64     `json:"size"`
}

type Document struct {
	BaseModel
	CompanyID  uuid.UUID `json:"company_id" gorm:"type:uuid;not null;index"`
	Name       string    `json:"name" gorm:"size:255;not null"`
	URL        string    `json:"url" gorm:"size:1024;not null"`
	StorageKey string    `json:"-" gorm:"size:512"`
	MimeType   string    `json:"type" gorm:"size:100"`
	Size       int64     `json:"size"`
}
