// internal/models/review.go
package models

import (
	"time"

	"github.com/google/uuid"
)

type Review struct {
	BaseModel
	CompanyID   uuid.UUID  `json:"company_id" gorm:"type:uuid;not null;uniqueIndex:idx_reviews_company_author"`
	AuthorID    uuid.UUID  `json:"author_id" gorm:"type:uuid;not null;uniqueIndex:idx_reviews_company_author"`
	Rating      int        `json:"rating" gorm:"not null"`
	Text        string     `json:"text" gorm:"type:text;not null"`
	Response    string     `json:"response,omitempty" gorm:"type:text"`
	RespondedAt *time.Time `json:"responded_at,omitempty"`

	// Relationships
	Author *User `json:"author,omitempty" gorm:"foreignKey:AuthorID"`
}
