// internal/models/notification.go
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Notification struct {
	BaseModel
	UserID uuid.UUID        `json:"user_id" gorm:"type:uuid;not null;index"`
	Type   NotificationType `json:"type" gorm:"type:varchar(50);not null"`
	Title  string           `json:"title" gorm:"size:255;not null"`
	Text   string           `json:"text" gorm:"type:text;not null"`
	Read   bool             `json:"read" gorm:"not null;default:false;index"`
	ReadAt *time.Time       `json:"read_at,omitempty"`
	Data   datatypes.JSON   `json:"data,omitempty"`

	// Format arguments when Title and Text hold catalog keys.
	Params datatypes.JSON `json:"-"`
}
