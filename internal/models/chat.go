// internal/models/chat.go
package models

import "github.com/google/uuid"

// Chat is the conversation between one client and one company.
type Chat struct {
	BaseModel
	CompanyID uuid.UUID `json:"company_id" gorm:"type:uuid;not null;uniqueIndex:idx_chats_company_client"`
	ClientID  uuid.UUID `json:"client_id" gorm:"type:uuid;not null;uniqueIndex:idx_chats_company_client"`

	// Relationships
	Company *Company `json:"company,omitempty" gorm:"foreignKey:CompanyID"`
	Client  *User    `json:"client,omitempty" gorm:"foreignKey:ClientID"`
}

type Message struct {
	BaseModel
	ChatID    uuid.UUID `json:"chat_id" gorm:"type:uuid;not null;index"`
	CompanyID uuid.UUID `json:"company_id" gorm:"type:uuid;not null;index"`
	SenderID  uuid.UUID `json:"sender_id" gorm:"type:uuid;not null"`
	Text      string    `json:"text" gorm:"type:text;not null"`

	// Relationships
	Sender *User `json:"sender,omitempty" gorm:"foreignKey:SenderID"`
}
