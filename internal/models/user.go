// internal/models/user.go
package models

import (
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type User struct {
	BaseModel
	Name             string     `json:"name" gorm:"size:255;not null"`
	Email            string     `json:"email" gorm:"uniqueIndex;size:255;not null"`
	Phone            *string    `json:"phone" gorm:"uniqueIndex;size:32"`
	PasswordHash     string     `json:"-" gorm:"size:255"`
	Role             Role       `json:"role" gorm:"type:varchar(20);not null;default:'CLIENT';index"`
	Status           UserStatus `json:"status" gorm:"type:varchar(20);not null;default:'active';index"`
	Image            string     `json:"image,omitempty" gorm:"size:512"`
	CompanyID        *uuid.UUID `json:"company_id" gorm:"type:uuid;index"`
	ResetCodeHash    string     `json:"-" gorm:"size:64;index"`
	ResetCodeExpires *time.Time `json:"-"`
	LastLoginAt      *time.Time `json:"last_login_at,omitempty"`

	// Relationships
	Company *Company `json:"company,omitempty" gorm:"foreignKey:CompanyID"`
}

func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hashedPassword)
	return nil
}

func (u *User) CheckPassword(password string) error {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
}

// HasPassword is false for invited employees who never completed a reset.
func (u *User) HasPassword() bool {
	return u.PasswordHash != ""
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// BelongsTo reports whether the user is an employee of the given company.
func (u *User) BelongsTo(companyID uuid.UUID) bool {
	return u.CompanyID != nil && *u.CompanyID == companyID
}

func (u *User) PhoneNumber() string {
	if u.Phone == nil {
		return ""
	}
	return *u.Phone
}
